package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"want-salon-backend/models"
)

type EventKind string

const (
	EventCreated   EventKind = "appointment.created"
	EventEdited    EventKind = "appointment.edited"
	EventMoved     EventKind = "appointment.moved"
	EventCancelled EventKind = "appointment.cancelled"
	EventCompleted EventKind = "appointment.completed"
)

// FieldChange is one field an update actually changed, keyed by its API name.
type FieldChange struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Event is emitted by the ledger after a mutation has committed.
type Event struct {
	Kind        EventKind
	Master      models.Master
	Appointment models.Appointment
	Changes     []FieldChange

	// set for moves
	PreviousDate string
	PreviousTime string

	OccurredAt time.Time
}

// EventPublisher receives committed ledger events. Publish must not fail the
// caller: implementations log their own delivery problems.
type EventPublisher interface {
	Publish(ctx context.Context, e Event)
}

// FanOut hands an event to every publisher in order. A publisher that
// panics is logged and skipped so the rest still run.
type FanOut struct {
	publishers []EventPublisher
	log        *zap.Logger
}

func NewFanOut(log *zap.Logger, publishers ...EventPublisher) *FanOut {
	return &FanOut{publishers: publishers, log: log}
}

func (f *FanOut) Add(p EventPublisher) {
	f.publishers = append(f.publishers, p)
}

func (f *FanOut) Publish(ctx context.Context, e Event) {
	for _, pub := range f.publishers {
		if pub != nil {
			f.publishOne(ctx, pub, e)
		}
	}
}

func (f *FanOut) publishOne(ctx context.Context, pub EventPublisher, e Event) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("event publisher panicked",
				zap.String("type", string(e.Kind)),
				zap.Any("panic", r),
			)
		}
	}()
	pub.Publish(ctx, e)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}
