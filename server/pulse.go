package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goto/salt/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goto/pulse/config"
	"github.com/goto/pulse/core/event/moderator"
	"github.com/goto/pulse/core/monitor/service"
	"github.com/goto/pulse/ext/notify/statusboard"
	"github.com/goto/pulse/ext/registry"
	"github.com/goto/pulse/ext/transport/kafka"
	"github.com/goto/pulse/internal/store/postgres"
	monitorRepo "github.com/goto/pulse/internal/store/postgres/monitor"
	"github.com/goto/pulse/internal/telemetry"
	"github.com/goto/pulse/internal/utils"
)

const (
	shutdownWait = 30 * time.Second

	dbPingRetryMax       = 3
	dbPingRetryBackoffMs = 500
)

type setupFn func() error

type PulseServer struct {
	conf   *config.ServerConfig
	logger log.Logger

	httpAddr   string
	httpServer *http.Server

	dbPool *pgxpool.Pool

	eventHandler moderator.Handler

	cleanupFn []func()
}

// New starts the monitoring loop and the HTTP listener. The returned server
// must be shut down with Shutdown even when New returns an error.
func New(conf *config.ServerConfig) (*PulseServer, error) {
	logger := NewLogger(conf.Log.Level.String())
	srv := &PulseServer{
		conf:     conf,
		logger:   logger,
		httpAddr: fmt.Sprintf(":%d", conf.Serve.Port),
	}

	if err := srv.setup(); err != nil {
		return srv, err
	}

	srv.logger.Info("starting pulse", "version", conf.Version.String(), "listen", srv.httpAddr)
	srv.startListening()
	return srv, nil
}

func (s *PulseServer) setup() error {
	setupFns := []setupFn{
		s.setupTelemetry,
		s.setupPublisher,
		s.setupDB,
		s.setupMonitoring,
		s.setupHTTPServer,
	}
	for _, fn := range setupFns {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func (s *PulseServer) setupTelemetry() error {
	telemetry.MetricServer = s.conf.Telemetry.MetricServerAddr
	return nil
}

func (s *PulseServer) setupPublisher() error {
	if s.conf.Publisher == nil {
		s.eventHandler = moderator.NoOpHandler{}
		return nil
	}
	ch := make(chan []byte, s.conf.Publisher.Buffer)
	ctx, cancel := context.WithCancel(context.Background())

	switch s.conf.Publisher.Type {
	case "kafka":
		var kafkaConfig config.PublisherKafkaConfig
		if err := mapstructure.Decode(s.conf.Publisher.Config, &kafkaConfig); err != nil {
			cancel()
			return err
		}
		writer := kafka.NewWriter(kafkaConfig.BrokerURLs, kafkaConfig.Topic, s.logger)
		worker := moderator.NewWorker(ch, writer, time.Second*time.Duration(kafkaConfig.BatchIntervalSecond), s.logger)
		go worker.Run(ctx)
		s.cleanupFn = append(s.cleanupFn, func() {
			cancel()
			if err := worker.Close(); err != nil {
				s.logger.Error("error closing publisher worker: %s", err)
			}
		})
	default:
		cancel()
		return fmt.Errorf("publisher type %s is not supported", s.conf.Publisher.Type)
	}

	s.eventHandler = moderator.NewEventHandler(ch, s.logger)
	return nil
}

func (s *PulseServer) setupDB() error {
	if s.conf.Serve.DB.DSN == "" {
		s.logger.Warn("no database configured, status board rows will not be auto-created")
		return nil
	}

	migrateFn := func() error {
		return postgres.Migrate(s.conf.Serve.DB.DSN)
	}
	if err := utils.Retry(s.logger, dbPingRetryMax, dbPingRetryBackoffMs, migrateFn); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	dbPool, err := postgres.Open(s.conf.Serve.DB)
	if err != nil {
		return fmt.Errorf("error opening database connection pool: %w", err)
	}
	s.dbPool = dbPool
	return nil
}

func (s *PulseServer) setupMonitoring() error {
	auth, err := registry.NewRegistryAuth(s.conf.Monitor.Registry.Host, s.conf.Monitor.Registry.AuthToken)
	if err != nil {
		return err
	}
	workflowRegistry := registry.NewRegistry(s.logger, registry.NewClient(), auth)

	var serviceRepo service.ServiceRepository
	if s.dbPool != nil {
		serviceRepo = monitorRepo.NewServiceRepository(s.dbPool)
	}
	syncService := service.NewSyncService(s.logger, workflowRegistry, serviceRepo)

	var notifier service.VerdictNotifier
	if s.conf.Monitor.ReportEndpoint != "" {
		notifier = statusboard.NewReporter(s.conf.Monitor.ReportEndpoint)
	} else {
		s.logger.Warn("no report endpoint configured, verdicts will not be delivered")
	}
	reportService := service.NewReportService(s.logger, workflowRegistry, notifier, s.eventHandler)

	worker := service.NewMonitorWorker(s.logger, syncService, reportService)
	ctx, cancel := context.WithCancel(context.Background())
	s.cleanupFn = append(s.cleanupFn, cancel)
	worker.ScheduleMonitoring(ctx, time.Duration(s.conf.Monitor.TickIntervalInSeconds)*time.Second)
	return nil
}

func (s *PulseServer) setupHTTPServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "pulse %s", s.conf.Version.String())
	})
	s.httpServer = &http.Server{
		Addr:              s.httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

func (s *PulseServer) startListening() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error: %s", err)
		}
	}()
}

func (s *PulseServer) Shutdown() {
	s.logger.Info("shutting down server")
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("error shutting down http server: %s", err)
		}
	}

	for _, fn := range s.cleanupFn {
		fn()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	s.logger.Info("server shutdown complete")
}
