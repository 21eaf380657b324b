package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams ledger events as JSON, keyed by appointment id so
// that events for one appointment stay ordered. Each event is flushed on its
// own since publishing happens on the request path.
type KafkaPublisher struct {
	writer  kafkaWriter
	timeout time.Duration
	log     *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration, log *zap.Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              1,
		BatchTimeout:           5 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, timeout: timeout, log: log}
}

type eventPayload struct {
	EventID      string        `json:"event_id"`
	Type         EventKind     `json:"type"`
	OccurredAt   time.Time     `json:"occurred_at"`
	MasterID     string        `json:"master_id"`
	MasterName   string        `json:"master_name"`
	Appointment  eventSnapshot `json:"appointment"`
	Changes      []FieldChange `json:"changes,omitempty"`
	PreviousDate string        `json:"previous_date,omitempty"`
	PreviousTime string        `json:"previous_time,omitempty"`
}

type eventSnapshot struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Duration    int     `json:"duration"`
	ClientName  string  `json:"client_name"`
	Comment     string  `json:"comment"`
	Status      string  `json:"status"`
	CashPayment float64 `json:"cash_payment"`
	CardPayment float64 `json:"card_payment"`
}

func encodeEvent(eventID string, e Event) ([]byte, error) {
	a := e.Appointment
	return json.Marshal(eventPayload{
		EventID:    eventID,
		Type:       e.Kind,
		OccurredAt: e.OccurredAt,
		MasterID:   strconv.FormatInt(e.Master.ID, 10),
		MasterName: e.Master.Name,
		Appointment: eventSnapshot{
			ID:          strconv.FormatInt(a.ID, 10),
			Date:        a.Date,
			Time:        a.Time,
			Duration:    a.Duration,
			ClientName:  a.ClientName,
			Comment:     a.Comment,
			Status:      string(a.Status),
			CashPayment: a.CashPayment,
			CardPayment: a.CardPayment,
		},
		Changes:      e.Changes,
		PreviousDate: e.PreviousDate,
		PreviousTime: e.PreviousTime,
	})
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) {
	eventID := uuid.NewString()
	payload, err := encodeEvent(eventID, e)
	if err != nil {
		p.log.Error("event encode failed", zap.String("type", string(e.Kind)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.Appointment.ID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "event_type", Value: []byte(e.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("event publish failed",
			zap.String("type", string(e.Kind)),
			zap.Int64("appointment_id", e.Appointment.ID),
			zap.Error(err),
		)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
