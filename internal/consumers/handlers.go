package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/logger"
	"hunttickets/internal/metrics"
	"hunttickets/internal/models"

	"github.com/nats-io/stan.go"
)

const handleTimeout = 10 * time.Second

// EventReconciler recomputes stored event statuses.
type EventReconciler interface {
	List(ctx context.Context, f *models.EventFilters) ([]models.Event, error)
	ReconcileStatus(ctx context.Context, id int64) (*models.Event, error)
}

type Handlers struct {
	events EventReconciler
}

func NewHandlers(events EventReconciler) *Handlers {
	return &Handlers{events: events}
}

// errSkip marks a message that can never be processed; it is acked and dropped.
var errSkip = errors.New("message skipped")

// acker is the part of *stan.Msg the handlers need.
type acker interface {
	Ack() error
}

// Handle decodes an activity event, runs fn and acks the message unless fn
// failed with a retryable error.
func (h *Handlers) Handle(subject string, fn func(ctx context.Context, ev *models.ActivityEvent) error) stan.MsgHandler {
	return func(m *stan.Msg) {
		h.handle(subject, m.Data, m, fn)
	}
}

// handle reports whether the message was acked.
func (h *Handlers) handle(subject string, data []byte, msg acker, fn func(ctx context.Context, ev *models.ActivityEvent) error) bool {
	err := h.process(subject, data, fn)
	metrics.ConsumedMessages.WithLabelValues(subject, metrics.Result(err)).Inc()
	if err != nil && !errors.Is(err, errSkip) {
		logger.Get().Error("Failed to process message, awaiting redelivery", "subject", subject, "error", err)
		return false
	}
	if ackErr := msg.Ack(); ackErr != nil {
		logger.Get().Error("Failed to ack message", "subject", subject, "error", ackErr)
		return false
	}
	return true
}

func (h *Handlers) process(subject string, data []byte, fn func(ctx context.Context, ev *models.ActivityEvent) error) error {
	var ev models.ActivityEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logger.Get().Error("Failed to unmarshal activity event", "subject", subject, "error", err)
		return fmt.Errorf("%w: %v", errSkip, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	if ev.RequestID != "" {
		ctx = logger.ContextWithRequestID(ctx, ev.RequestID)
	}
	return fn(ctx, &ev)
}

// EventUpdated marks the event sold out once its capacity is reached.
func (h *Handlers) EventUpdated(ctx context.Context, ev *models.ActivityEvent) error {
	id, err := strconv.ParseInt(ev.ResourceID, 10, 64)
	if err != nil {
		logger.WithContext(ctx).Warn("Event update with invalid resource id", "resource_id", ev.ResourceID)
		return fmt.Errorf("%w: invalid event id %q", errSkip, ev.ResourceID)
	}

	updated, err := h.events.ReconcileStatus(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		logger.WithContext(ctx).Info("Updated event no longer exists", "event_id", id)
		return nil
	}
	if err != nil {
		return err
	}

	logger.WithContext(ctx).Debug("Event status reconciled", "event_id", id, "status", updated.Status)
	return nil
}

// Audit records activity that needs no processing beyond the log.
func (h *Handlers) Audit(ctx context.Context, ev *models.ActivityEvent) error {
	logger.WithContext(ctx).Info("Activity received",
		"action", ev.Action,
		"resource_id", ev.ResourceID,
		"service", ev.Service,
		"details", ev.Details,
		"published_at", ev.Timestamp,
	)
	return nil
}
