package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"want-salon-backend/models"
)

type memoryData struct {
	masters      map[int64]models.Master
	appointments map[int64]models.Appointment
	nextMaster   int64
	nextAppt     int64
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		masters:      make(map[int64]models.Master, len(d.masters)),
		appointments: make(map[int64]models.Appointment, len(d.appointments)),
		nextMaster:   d.nextMaster,
		nextAppt:     d.nextAppt,
	}
	for k, v := range d.masters {
		c.masters[k] = v
	}
	for k, v := range d.appointments {
		c.appointments[k] = v
	}
	return c
}

// MemoryStore is an in-process Store. Transactions are serialised and roll
// back by restoring a snapshot.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			masters:      make(map[int64]models.Master),
			appointments: make(map[int64]models.Appointment),
		},
		now: time.Now,
	}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Masters() MasterRepository {
	return &memoryMasters{s: s}
}

func (s *MemoryStore) Appointments() AppointmentRepository {
	return &memoryAppointments{s: s}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

type memoryMasters struct {
	s *MemoryStore
}

func (r *memoryMasters) List(_ context.Context) ([]models.Master, error) {
	defer r.s.lock()()
	out := make([]models.Master, 0, len(r.s.data.masters))
	for _, m := range r.s.data.masters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryMasters) FindByID(_ context.Context, id int64) (*models.Master, error) {
	defer r.s.lock()()
	m, ok := r.s.data.masters[id]
	if !ok {
		return nil, ErrMasterNotFound
	}
	return &m, nil
}

func (r *memoryMasters) FindByTelegramID(_ context.Context, telegramID int64) (*models.Master, error) {
	defer r.s.lock()()
	for _, m := range r.s.data.masters {
		if m.TelegramID != nil && *m.TelegramID == telegramID {
			return &m, nil
		}
	}
	return nil, ErrMasterNotFound
}

func (r *memoryMasters) UsedColors(_ context.Context) ([]string, error) {
	defer r.s.lock()()
	seen := make(map[string]bool)
	var colors []string
	for _, m := range r.s.data.masters {
		if m.Color != "" && !seen[m.Color] {
			seen[m.Color] = true
			colors = append(colors, m.Color)
		}
	}
	sort.Strings(colors)
	return colors, nil
}

func (r *memoryMasters) Create(_ context.Context, m *models.Master) error {
	defer r.s.lock()()
	if m.TelegramID != nil {
		for _, existing := range r.s.data.masters {
			if existing.TelegramID != nil && *existing.TelegramID == *m.TelegramID {
				return errDuplicateTelegramID
			}
		}
	}
	r.s.data.nextMaster++
	m.ID = r.s.data.nextMaster
	if m.Role == "" {
		m.Role = models.RoleMaster
	}
	now := r.s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	r.s.data.masters[m.ID] = *m
	return nil
}

func (r *memoryMasters) Save(_ context.Context, m *models.Master) error {
	defer r.s.lock()()
	if _, ok := r.s.data.masters[m.ID]; !ok {
		return ErrMasterNotFound
	}
	m.UpdatedAt = r.s.now()
	r.s.data.masters[m.ID] = *m
	return nil
}

type memoryAppointments struct {
	s *MemoryStore
}

func matches(a models.Appointment, f AppointmentFilter) bool {
	if f.MasterID != nil && a.MasterID != *f.MasterID {
		return false
	}
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.StartDate != "" && a.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && a.Date > f.EndDate {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

func (r *memoryAppointments) Create(_ context.Context, a *models.Appointment) error {
	defer r.s.lock()()
	if _, ok := r.s.data.masters[a.MasterID]; !ok {
		return ErrMasterNotFound
	}
	r.s.data.nextAppt++
	a.ID = r.s.data.nextAppt
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.data.appointments[a.ID] = *a
	return nil
}

func (r *memoryAppointments) FindForMaster(_ context.Context, masterID, id int64) (*models.Appointment, error) {
	defer r.s.lock()()
	a, ok := r.s.data.appointments[id]
	if !ok || a.MasterID != masterID {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *memoryAppointments) Save(_ context.Context, a *models.Appointment) error {
	defer r.s.lock()()
	if _, ok := r.s.data.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	a.UpdatedAt = r.s.now()
	r.s.data.appointments[a.ID] = *a
	return nil
}

func (r *memoryAppointments) Delete(_ context.Context, masterID, id int64) error {
	defer r.s.lock()()
	a, ok := r.s.data.appointments[id]
	if !ok || a.MasterID != masterID {
		return ErrAppointmentNotFound
	}
	delete(r.s.data.appointments, id)
	return nil
}

func (r *memoryAppointments) List(_ context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	defer r.s.lock()()
	var out []models.Appointment
	for _, a := range r.s.data.appointments {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryAppointments) Stats(_ context.Context, f AppointmentFilter) (models.Stats, error) {
	defer r.s.lock()()
	var stats models.Stats
	for _, a := range r.s.data.appointments {
		if !matches(a, f) {
			continue
		}
		stats.TotalAppointments++
		if a.Status == models.StatusCompleted {
			stats.CompletedAppointments++
			stats.TotalRevenue += a.CashPayment + a.CardPayment
		}
	}
	return stats, nil
}
