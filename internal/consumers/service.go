package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"hunttickets/internal/cache"
	"hunttickets/internal/config"
	"hunttickets/internal/database"
	"hunttickets/internal/messaging"
	"hunttickets/internal/models"
	"hunttickets/internal/repository"
	"hunttickets/internal/service"

	"github.com/nats-io/stan.go"
)

// ConsumerService subscribes to the activity subjects published by the API.
type ConsumerService struct {
	cfg      config.ConsumerConfig
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	handlers *Handlers
	sweep    *StatusSweepJob
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	cs := &ConsumerService{cfg: cfg.Consumer, db: db, nats: natsClient}

	// stats cache entries must be dropped when the consumer changes a status
	opts := service.Options{}
	if cfg.Valkey.Enabled() {
		if cs.valkey, err = cache.NewValkeyClient(cfg.Valkey); err != nil {
			slog.Warn("Stats cache disabled", "error", err)
		} else {
			opts.Cache = cs.valkey
		}
	}

	repos := repository.NewRepositories(db)
	events := service.NewEventService(repos.Events, opts)

	cs.handlers = NewHandlers(events)
	cs.sweep = NewStatusSweepJob(events, cfg.Consumer.SweepInterval)
	return cs, nil
}

func (cs *ConsumerService) Start(ctx context.Context) error {
	slog.Info("Starting NATS consumers...")

	routes := map[string]func(context.Context, *models.ActivityEvent) error{
		models.SubjectEventUpdated:    cs.handlers.EventUpdated,
		models.SubjectEventCreated:    cs.handlers.Audit,
		models.SubjectEventDeleted:    cs.handlers.Audit,
		models.SubjectTicketCreated:   cs.handlers.Audit,
		models.SubjectTicketUpdated:   cs.handlers.Audit,
		models.SubjectTicketDeleted:   cs.handlers.Audit,
		models.SubjectPoliciesCreated: cs.handlers.Audit,
		models.SubjectPoliciesUpdated: cs.handlers.Audit,
		models.SubjectPoliciesDeleted: cs.handlers.Audit,
	}

	for _, subject := range models.ActivitySubjects {
		sub, err := cs.nats.SubscribeQueue(subject, cs.cfg.Queue, cs.handlers.Handle(subject, routes[subject]))
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		cs.subs = append(cs.subs, sub)
	}

	cs.sweep.Start(ctx)

	slog.Info("All consumers started successfully", "subjects", len(cs.subs))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	cs.sweep.Stop()

	for _, sub := range cs.subs {
		// Close keeps the durable position; Unsubscribe would drop it
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.valkey != nil {
		if err := cs.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

// Ping reports whether the database is reachable.
func (cs *ConsumerService) Ping(ctx context.Context) error {
	return cs.db.PingContext(ctx)
}
