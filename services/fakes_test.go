package services

import (
	"context"
	"errors"
	"sync"

	"want-salon-backend/models"
	"want-salon-backend/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) kinds() []EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventKind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

func (p *recordingPublisher) last() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

// faultyStore wraps a store and fails chosen writes, including inside
// transactions.
type faultyStore struct {
	repository.Store
	masterSaveErr      error
	appointmentSaveErr error
	listErr            error
}

func (f *faultyStore) Masters() repository.MasterRepository {
	return faultyMasters{MasterRepository: f.Store.Masters(), saveErr: f.masterSaveErr, listErr: f.listErr}
}

func (f *faultyStore) Appointments() repository.AppointmentRepository {
	return faultyAppointments{AppointmentRepository: f.Store.Appointments(), saveErr: f.appointmentSaveErr, listErr: f.listErr}
}

func (f *faultyStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return f.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(&faultyStore{
			Store:              tx,
			masterSaveErr:      f.masterSaveErr,
			appointmentSaveErr: f.appointmentSaveErr,
			listErr:            f.listErr,
		})
	})
}

type faultyMasters struct {
	repository.MasterRepository
	saveErr error
	listErr error
}

func (m faultyMasters) Save(ctx context.Context, master *models.Master) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	return m.MasterRepository.Save(ctx, master)
}

func (m faultyMasters) List(ctx context.Context) ([]models.Master, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.MasterRepository.List(ctx)
}

type faultyAppointments struct {
	repository.AppointmentRepository
	saveErr error
	listErr error
}

func (a faultyAppointments) Save(ctx context.Context, apt *models.Appointment) error {
	if a.saveErr != nil {
		return a.saveErr
	}
	return a.AppointmentRepository.Save(ctx, apt)
}

func (a faultyAppointments) List(ctx context.Context, f repository.AppointmentFilter) ([]models.Appointment, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	return a.AppointmentRepository.List(ctx, f)
}

func (a faultyAppointments) Stats(ctx context.Context, f repository.AppointmentFilter) (models.Stats, error) {
	if a.listErr != nil {
		return models.Stats{}, a.listErr
	}
	return a.AppointmentRepository.Stats(ctx, f)
}

var errConnLost = errors.Join(repository.ErrUnavailable, errors.New("connection reset by peer"))
