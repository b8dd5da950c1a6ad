package event

import (
	"time"

	"github.com/google/uuid"
)

// Event carries the identity shared by all published events.
type Event struct {
	ID         uuid.UUID
	OccurredAt time.Time
}

func NewBaseEvent() (Event, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         id,
		OccurredAt: time.Now(),
	}, nil
}
