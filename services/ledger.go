package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"want-salon-backend/models"
	"want-salon-backend/repository"
	"want-salon-backend/utils"
)

// ChangeKind classifies what an update did to an appointment.
type ChangeKind string

const (
	ChangeNone   ChangeKind = "none"
	ChangeEdited ChangeKind = "edited"
	ChangeMoved  ChangeKind = "moved"
)

type NewAppointment struct {
	Date       string
	Time       string
	Duration   int
	ClientName string
	Comment    string
}

// AppointmentPatch is a partial update. Nil fields are left untouched.
type AppointmentPatch struct {
	Date       *string
	Time       *string
	Duration   *int
	ClientName *string
	Comment    *string
	Status     *models.AppointmentStatus
	Payment    *models.Payment
}

func (p AppointmentPatch) IsEmpty() bool {
	return p.Date == nil && p.Time == nil && p.Duration == nil && p.ClientName == nil &&
		p.Comment == nil && p.Status == nil && p.Payment == nil
}

type UpdateResult struct {
	Appointment *models.Appointment
	Kind        ChangeKind
	Changes     []FieldChange
}

// AppointmentLedger owns appointment records. Every mutation runs in one
// store transaction and publishes its event only after commit.
type AppointmentLedger struct {
	store     repository.Store
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

func NewAppointmentLedger(store repository.Store, publisher EventPublisher, log *zap.Logger) *AppointmentLedger {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &AppointmentLedger{store: store, publisher: publisher, log: log, now: time.Now}
}

func (l *AppointmentLedger) emit(ctx context.Context, e Event) {
	e.OccurredAt = l.now()
	l.publisher.Publish(ctx, e)
}

func requireMaster(ctx context.Context, tx repository.Store, masterID int64) (*models.Master, error) {
	m, err := tx.Masters().FindByID(ctx, masterID)
	if err != nil {
		if errors.Is(err, repository.ErrMasterNotFound) {
			return nil, masterNotFound(masterID)
		}
		return nil, err
	}
	return m, nil
}

func requireAppointment(ctx context.Context, tx repository.Store, masterID, id int64) (*models.Appointment, error) {
	a, err := tx.Appointments().FindForMaster(ctx, masterID, id)
	if err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return nil, appointmentNotFound(id)
		}
		return nil, err
	}
	return a, nil
}

func validateDate(field, value string) error {
	if !utils.IsDate(value) {
		return utils.Validation("Invalid date format, expected YYYY-MM-DD", map[string]any{
			"field": field,
			"value": value,
		})
	}
	return nil
}

func (l *AppointmentLedger) Create(ctx context.Context, masterID int64, in NewAppointment) (*models.Appointment, error) {
	if err := validateDate("date", in.Date); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Time) == "" {
		return nil, utils.Validation("Time is required", map[string]any{"field": "time"})
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, utils.Validation("Client name is required", map[string]any{"field": "clientName"})
	}
	if in.Duration < 0 {
		return nil, utils.Validation("Duration must be positive", map[string]any{"field": "duration"})
	}
	if in.Duration == 0 {
		in.Duration = models.DefaultDuration
	}

	a := &models.Appointment{
		MasterID:   masterID,
		Date:       in.Date,
		Time:       in.Time,
		Duration:   in.Duration,
		ClientName: in.ClientName,
		Comment:    in.Comment,
		Status:     models.StatusScheduled,
	}
	var master *models.Master
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if master, err = requireMaster(ctx, tx, masterID); err != nil {
			return err
		}
		return tx.Appointments().Create(ctx, a)
	})
	if err != nil {
		return nil, storageError("Failed to create appointment", err)
	}

	l.log.Info("appointment created", zap.Int64("id", a.ID), zap.Int64("master_id", masterID), zap.String("date", a.Date))
	l.emit(ctx, Event{Kind: EventCreated, Master: *master, Appointment: *a})
	return a, nil
}

func validatePatch(p AppointmentPatch) error {
	if p.Date != nil {
		if err := validateDate("date", *p.Date); err != nil {
			return err
		}
	}
	if p.Time != nil && strings.TrimSpace(*p.Time) == "" {
		return utils.Validation("Time cannot be empty", map[string]any{"field": "time"})
	}
	if p.ClientName != nil && strings.TrimSpace(*p.ClientName) == "" {
		return utils.Validation("Client name cannot be empty", map[string]any{"field": "clientName"})
	}
	if p.Duration != nil && *p.Duration <= 0 {
		return utils.Validation("Duration must be positive", map[string]any{"field": "duration"})
	}
	if p.Status != nil && !p.Status.Valid() {
		return utils.Validation("Invalid status", map[string]any{"field": "status", "value": string(*p.Status)})
	}
	if p.Payment != nil {
		if err := validatePayment(*p.Payment); err != nil {
			return err
		}
	}
	return nil
}

func validatePayment(p models.Payment) error {
	if p.Cash < 0 || p.Card < 0 {
		return utils.Validation("Payment amounts cannot be negative", map[string]any{"field": "payment"})
	}
	return nil
}

// applyPatch writes every present field into a and returns the ones whose
// value actually differed.
func applyPatch(a *models.Appointment, p AppointmentPatch) []FieldChange {
	var changes []FieldChange
	if p.Time != nil && *p.Time != a.Time {
		a.Time = *p.Time
		changes = append(changes, FieldChange{Field: "time", Value: a.Time})
	}
	if p.Date != nil && *p.Date != a.Date {
		a.Date = *p.Date
		changes = append(changes, FieldChange{Field: "date", Value: a.Date})
	}
	if p.ClientName != nil && *p.ClientName != a.ClientName {
		a.ClientName = *p.ClientName
		changes = append(changes, FieldChange{Field: "clientName", Value: a.ClientName})
	}
	if p.Comment != nil && *p.Comment != a.Comment {
		a.Comment = *p.Comment
		changes = append(changes, FieldChange{Field: "comment", Value: a.Comment})
	}
	if p.Duration != nil && *p.Duration != a.Duration {
		a.Duration = *p.Duration
		changes = append(changes, FieldChange{Field: "duration", Value: a.Duration})
	}
	if p.Status != nil && *p.Status != a.Status {
		a.Status = *p.Status
		changes = append(changes, FieldChange{Field: "status", Value: string(a.Status)})
	}
	if p.Payment != nil && *p.Payment != a.Payment() {
		a.CashPayment, a.CardPayment = p.Payment.Cash, p.Payment.Card
		changes = append(changes, FieldChange{Field: "payment", Value: *p.Payment})
	}
	return changes
}

// Update applies a partial patch. A change of date or time is a move; any
// other change is an edit. A patch that changes nothing publishes nothing.
func (l *AppointmentLedger) Update(ctx context.Context, masterID, id int64, patch AppointmentPatch) (*UpdateResult, error) {
	if err := validatePatch(patch); err != nil {
		l.log.Warn("appointment update rejected", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	var (
		master *models.Master
		result = &UpdateResult{Kind: ChangeNone}
		prev   models.Appointment
	)
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if master, err = requireMaster(ctx, tx, masterID); err != nil {
			return err
		}
		a, err := requireAppointment(ctx, tx, masterID, id)
		if err != nil {
			return err
		}
		prev = *a
		result.Appointment = a
		if patch.IsEmpty() {
			return nil
		}
		result.Changes = applyPatch(a, patch)
		if len(result.Changes) == 0 {
			return nil
		}
		return tx.Appointments().Save(ctx, a)
	})
	if err != nil {
		return nil, storageError("Failed to update appointment", err)
	}
	if len(result.Changes) == 0 {
		return result, nil
	}

	a := result.Appointment
	if a.Date != prev.Date || a.Time != prev.Time {
		result.Kind = ChangeMoved
		l.emit(ctx, Event{
			Kind:         EventMoved,
			Master:       *master,
			Appointment:  *a,
			Changes:      result.Changes,
			PreviousDate: prev.Date,
			PreviousTime: prev.Time,
		})
	} else {
		result.Kind = ChangeEdited
		l.emit(ctx, Event{Kind: EventEdited, Master: *master, Appointment: *a, Changes: result.Changes})
	}
	l.log.Info("appointment updated",
		zap.Int64("id", id),
		zap.String("kind", string(result.Kind)),
		zap.Int("changes", len(result.Changes)),
	)
	return result, nil
}

// Complete marks the appointment completed and overwrites both payment
// amounts, whatever its current status.
func (l *AppointmentLedger) Complete(ctx context.Context, masterID, id int64, payment models.Payment) (*models.Appointment, error) {
	if err := validatePayment(payment); err != nil {
		return nil, err
	}
	return l.setStatus(ctx, masterID, id, EventCompleted, func(a *models.Appointment) {
		a.Status = models.StatusCompleted
		a.CashPayment, a.CardPayment = payment.Cash, payment.Card
	})
}

// Cancel marks the appointment cancelled. Recorded payments are kept.
func (l *AppointmentLedger) Cancel(ctx context.Context, masterID, id int64) (*models.Appointment, error) {
	return l.setStatus(ctx, masterID, id, EventCancelled, func(a *models.Appointment) {
		a.Status = models.StatusCancelled
	})
}

func (l *AppointmentLedger) setStatus(ctx context.Context, masterID, id int64, kind EventKind, apply func(*models.Appointment)) (*models.Appointment, error) {
	var (
		master *models.Master
		out    *models.Appointment
	)
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if master, err = requireMaster(ctx, tx, masterID); err != nil {
			return err
		}
		a, err := requireAppointment(ctx, tx, masterID, id)
		if err != nil {
			return err
		}
		apply(a)
		if err := tx.Appointments().Save(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, storageError("Failed to update appointment status", err)
	}

	l.log.Info("appointment status changed", zap.Int64("id", id), zap.String("status", string(out.Status)))
	l.emit(ctx, Event{Kind: kind, Master: *master, Appointment: *out})
	return out, nil
}

// Delete removes the appointment permanently. No notification is sent.
func (l *AppointmentLedger) Delete(ctx context.Context, masterID, id int64) error {
	err := l.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := requireMaster(ctx, tx, masterID); err != nil {
			return err
		}
		if err := tx.Appointments().Delete(ctx, masterID, id); err != nil {
			if errors.Is(err, repository.ErrAppointmentNotFound) {
				return appointmentNotFound(id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return storageError("Failed to delete appointment", err)
	}
	l.log.Info("appointment deleted", zap.Int64("id", id), zap.Int64("master_id", masterID))
	return nil
}

// ListForMaster returns one master's appointments, optionally for one date.
func (l *AppointmentLedger) ListForMaster(ctx context.Context, masterID int64, date string) ([]models.Appointment, error) {
	if date != "" {
		if err := validateDate("date", date); err != nil {
			return nil, err
		}
	}
	if _, err := requireMaster(ctx, l.store, masterID); err != nil {
		return nil, storageError("Failed to retrieve appointments", err)
	}
	list, err := l.store.Appointments().List(ctx, repository.AppointmentFilter{MasterID: &masterID, Date: date})
	if err != nil {
		return nil, storageError("Failed to retrieve appointments", err)
	}
	return list, nil
}

// ListAll groups appointments by master id. Every matching master gets a key,
// even with no appointments; an unknown masterID yields an empty map.
func (l *AppointmentLedger) ListAll(ctx context.Context, date string, masterID *int64) (map[int64][]models.Appointment, error) {
	if date != "" {
		if err := validateDate("date", date); err != nil {
			return nil, err
		}
	}
	masters, err := l.store.Masters().List(ctx)
	if err != nil {
		return nil, storageError("Failed to retrieve appointments", err)
	}
	list, err := l.store.Appointments().List(ctx, repository.AppointmentFilter{MasterID: masterID, Date: date})
	if err != nil {
		return nil, storageError("Failed to retrieve appointments", err)
	}

	grouped := make(map[int64][]models.Appointment)
	for _, m := range masters {
		if masterID != nil && m.ID != *masterID {
			continue
		}
		grouped[m.ID] = []models.Appointment{}
	}
	for _, a := range list {
		if _, ok := grouped[a.MasterID]; ok {
			grouped[a.MasterID] = append(grouped[a.MasterID], a)
		}
	}
	return grouped, nil
}

// ListInRange returns appointments with start <= date <= end grouped by date.
// Both bounds are validated before anything is queried.
func (l *AppointmentLedger) ListInRange(ctx context.Context, start, end string, masterID *int64) (map[string][]models.Appointment, error) {
	if err := validateDate("start_date", start); err != nil {
		return nil, err
	}
	if err := validateDate("end_date", end); err != nil {
		return nil, err
	}
	list, err := l.store.Appointments().List(ctx, repository.AppointmentFilter{
		MasterID:  masterID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, storageError("Failed to retrieve appointments", err)
	}

	grouped := make(map[string][]models.Appointment)
	for _, a := range list {
		grouped[a.Date] = append(grouped[a.Date], a)
	}
	return grouped, nil
}

// MasterSchedule returns a master with all of its appointments ordered by
// date and then time.
func (l *AppointmentLedger) MasterSchedule(ctx context.Context, masterID int64) (*models.Master, []models.Appointment, error) {
	master, err := requireMaster(ctx, l.store, masterID)
	if err != nil {
		return nil, nil, storageError("Failed to retrieve master schedule", err)
	}
	list, err := l.store.Appointments().List(ctx, repository.AppointmentFilter{MasterID: &masterID})
	if err != nil {
		return nil, nil, storageError("Failed to retrieve master schedule", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Time < list[j].Time
	})
	return master, list, nil
}
