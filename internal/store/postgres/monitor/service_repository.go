package monitor

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goto/pulse/core/monitor"
	"github.com/goto/pulse/internal/errors"
	"github.com/goto/pulse/internal/store/postgres"
)

// ServiceRepository manages the status board service rows that verdicts are
// posted against.
type ServiceRepository struct {
	db *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{db: pool}
}

func (s *ServiceRepository) Exists(ctx context.Context, serviceID string) (bool, error) {
	query := `SELECT count(1) FROM services WHERE service_id = $1`

	var count int
	if err := s.db.QueryRow(ctx, query, serviceID).Scan(&count); err != nil {
		return false, errors.Wrap(monitor.EntityService, "unable to check service "+serviceID, err)
	}
	return count > 0, nil
}

// Create inserts a service row, treating a unique violation as already
// exists so concurrent syncs stay idempotent.
func (s *ServiceRepository) Create(ctx context.Context, serviceID, label, serviceType string) error {
	insertService := `INSERT INTO services (service_id, label, service_type, status_config, metric_config, enabled, created_at, updated_at)
VALUES ($1, $2, $3, '{}', '{}', TRUE, NOW(), NOW())`

	_, err := s.db.Exec(ctx, insertService, serviceID, label, serviceType)
	if err != nil {
		if postgres.ErrorCodeEqual(err, postgres.ErrPgCodeUniqueConstraints) {
			return errors.AlreadyExists(monitor.EntityService, "service already exists "+serviceID)
		}
		return errors.Wrap(monitor.EntityService, "unable to create service "+serviceID, err)
	}
	return nil
}
