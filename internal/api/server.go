package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hunttickets/internal/cache"
	"hunttickets/internal/config"
	"hunttickets/internal/database"
	"hunttickets/internal/handlers"
	"hunttickets/internal/messaging"
	"hunttickets/internal/metrics"
	"hunttickets/internal/repository"
	"hunttickets/internal/search"
	"hunttickets/internal/security"
	"hunttickets/internal/service"

	"github.com/gin-gonic/gin"
)

const poolStatsInterval = 15 * time.Second

// Server wires the configured backends into the HTTP API.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	search   *search.ElasticsearchClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer connects the database and the optional backends. NATS, Valkey
// and Elasticsearch failures are logged and the server runs without them.
func NewServer(cfg *config.Config, version string) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.Database); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	signer, err := security.NewSigner(cfg.TokenSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	s := &Server{
		config: cfg,
		db:     db,
		repos:  repository.NewRepositories(db),
	}

	opts := service.Options{
		Signer:        signer,
		StrictDeletes: cfg.StrictDeletes,
	}

	if cfg.NATS.Enabled {
		if s.nats, err = messaging.NewNATSClient(cfg.NATS); err != nil {
			slog.Warn("Activity events disabled", "error", err)
		} else {
			opts.Publisher = s.nats
		}
	}

	if cfg.Valkey.Enabled() {
		if s.valkey, err = cache.NewValkeyClient(cfg.Valkey); err != nil {
			slog.Warn("Stats cache disabled", "error", err)
		} else {
			opts.Cache = s.valkey
		}
	}

	if cfg.Elasticsearch.Enabled() {
		if s.search, err = search.NewElasticsearchClient(cfg.Elasticsearch); err != nil {
			slog.Warn("Event search disabled", "error", err)
		} else {
			opts.Search = s.search
		}
	}

	s.services = service.NewServices(s.repos, opts)

	h := handlers.NewHandlers(s.services, handlers.Options{
		Signer:     signer,
		Checks:     s.healthChecks(),
		Production: cfg.IsProduction(),
		Version:    version,
	})

	s.router = NewRouter(h, RouterConfig{
		BasePath:       cfg.BasePath,
		APIKeys:        cfg.APIKeys,
		RequestTimeout: cfg.RequestTimeout(),
	})

	return s, nil
}

func (s *Server) healthChecks() []handlers.HealthCheck {
	checks := []handlers.HealthCheck{{
		Name: "database",
		Check: func(ctx context.Context) error {
			if hc := s.db.HealthCheck(ctx); hc.Status != "healthy" {
				return errors.New(hc.Error)
			}
			return nil
		},
	}}
	if s.valkey != nil {
		checks = append(checks, handlers.HealthCheck{Name: "valkey", Check: s.valkey.Ping})
	}
	if s.search != nil {
		checks = append(checks, handlers.HealthCheck{Name: "elasticsearch", Check: s.search.HealthCheck})
	}
	return checks
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.monitorPool(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", s.config.Port, "base_path", s.config.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// monitorPool exports the pool usage and warns when it runs hot.
func (s *Server) monitorPool(ctx context.Context) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := s.db.GetPoolStats()
			metrics.SetPoolStats(stats.OpenConns, stats.InUse)
			s.db.WarnOnPressure()
		}
	}
}

// GetRouter returns the router for tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backend connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
