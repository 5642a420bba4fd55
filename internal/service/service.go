package service

import (
	"context"
	"time"

	"hunttickets/internal/logger"
	"hunttickets/internal/metrics"
	"hunttickets/internal/models"
	"hunttickets/internal/repository"
	"hunttickets/internal/security"
)

// Publisher delivers activity events to the message broker.
type Publisher interface {
	Publish(subject string, data any) error
}

// StatsCache stores aggregated statistics per resource.
type StatsCache interface {
	GetStats(ctx context.Context, resource string, dst any) (bool, error)
	SetStats(ctx context.Context, resource string, stats any) error
	InvalidateStats(ctx context.Context, resource string) error
}

// EventSearcher is the full-text event index.
type EventSearcher interface {
	Search(ctx context.Context, f *models.EventFilters) ([]int64, error)
	IndexEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

// Options carries the optional collaborators; nil fields are skipped.
type Options struct {
	Publisher     Publisher
	Cache         StatsCache
	Search        EventSearcher
	Signer        *security.Signer
	StrictDeletes bool
	Now           func() time.Time
}

type Services struct {
	Events   *EventService
	Tickets  *TicketService
	Policies *PoliciesService
}

func NewServices(repos *repository.Repositories, opts Options) *Services {
	return &Services{
		Events:   NewEventService(repos.Events, opts),
		Tickets:  NewTicketService(repos.Tickets, opts),
		Policies: NewPoliciesService(repos.Policies, repos.Producers, opts),
	}
}

// Stats cache keys
const (
	resourceEvents   = "events"
	resourceTickets  = "tickets"
	resourcePolicies = "policies"
)

// notifier is shared by the services for activity events and cached stats.
type notifier struct {
	pub   Publisher
	cache StatsCache
	now   func() time.Time
}

func newNotifier(opts Options) notifier {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return notifier{pub: opts.Publisher, cache: opts.Cache, now: now}
}

// emit logs a mutation and publishes it. Publish failures are logged only;
// the mutation has already been stored.
func (n notifier) emit(ctx context.Context, subject, resourceID string, details map[string]any) {
	attrs := []any{"resource_id", resourceID}
	for k, v := range details {
		attrs = append(attrs, k, v)
	}
	logger.Activity(ctx, subject, attrs...)

	if n.pub == nil {
		return
	}
	err := n.pub.Publish(subject, models.ActivityEvent{
		Action:     subject,
		ResourceID: resourceID,
		RequestID:  logger.RequestIDFromContext(ctx),
		Details:    details,
		Service:    logger.ServiceName,
		Timestamp:  n.now().UTC(),
	})
	metrics.ActivityPublished.WithLabelValues(subject, metrics.Result(err)).Inc()
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to publish activity event", "subject", subject, "error", err)
	}
}

func (n notifier) invalidate(ctx context.Context, resource string) {
	if n.cache == nil {
		return
	}
	if err := n.cache.InvalidateStats(ctx, resource); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate stats cache", "resource", resource, "error", err)
	}
}

// cachedStats fills dst from the cache or, on a miss, from compute, and
// stores the fresh value.
func (n notifier) cachedStats(ctx context.Context, resource string, dst any, compute func() error) error {
	if n.cache != nil {
		hit, err := n.cache.GetStats(ctx, resource, dst)
		switch {
		case err != nil:
			metrics.StatsCacheLookups.WithLabelValues(resource, "error").Inc()
			logger.WithContext(ctx).Warn("Stats cache lookup failed", "resource", resource, "error", err)
		case hit:
			metrics.StatsCacheLookups.WithLabelValues(resource, "hit").Inc()
			return nil
		default:
			metrics.StatsCacheLookups.WithLabelValues(resource, "miss").Inc()
		}
	}

	if err := compute(); err != nil {
		return err
	}

	if n.cache != nil {
		if err := n.cache.SetStats(ctx, resource, dst); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache stats", "resource", resource, "error", err)
		}
	}
	return nil
}
