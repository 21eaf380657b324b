package services

import (
	"context"
	"strconv"

	"want-salon-backend/models"
	"want-salon-backend/repository"
)

type StatsFilter struct {
	StartDate string
	EndDate   string
	MasterID  *int64
}

type StatsAggregator struct {
	store repository.Store
}

func NewStatsAggregator(store repository.Store) *StatsAggregator {
	return &StatsAggregator{store: store}
}

// Compute counts appointments in the filter and sums revenue over the
// completed ones. Bounds are validated before querying.
func (s *StatsAggregator) Compute(ctx context.Context, f StatsFilter) (models.Stats, error) {
	if f.StartDate != "" {
		if err := validateDate("start_date", f.StartDate); err != nil {
			return models.Stats{}, err
		}
	}
	if f.EndDate != "" {
		if err := validateDate("end_date", f.EndDate); err != nil {
			return models.Stats{}, err
		}
	}
	stats, err := s.store.Appointments().Stats(ctx, repository.AppointmentFilter{
		MasterID:  f.MasterID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	})
	if err != nil {
		return models.Stats{}, storageError("Failed to compute stats", err)
	}
	return stats, nil
}

// CashRegister totals the completed appointments of one day, overall and
// per master.
func (s *StatsAggregator) CashRegister(ctx context.Context, date string) (*models.CashRegister, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	list, err := s.store.Appointments().List(ctx, repository.AppointmentFilter{
		Date:   date,
		Status: models.StatusCompleted,
	})
	if err != nil {
		return nil, storageError("Failed to build cash register", err)
	}
	masters, err := s.store.Masters().List(ctx)
	if err != nil {
		return nil, storageError("Failed to build cash register", err)
	}
	names := make(map[int64]string, len(masters))
	for _, m := range masters {
		names[m.ID] = m.Name
	}

	reg := &models.CashRegister{Date: date, Masters: make(map[string]models.MasterCash)}
	for _, a := range list {
		reg.Total.Cash += a.CashPayment
		reg.Total.Card += a.CardPayment
		reg.AppointmentsCount++

		key := strconv.FormatInt(a.MasterID, 10)
		mc, ok := reg.Masters[key]
		if !ok {
			mc.Name = names[a.MasterID]
			if mc.Name == "" {
				mc.Name = "Unknown"
			}
		}
		mc.Cash += a.CashPayment
		mc.Card += a.CardPayment
		mc.Total = mc.Cash + mc.Card
		mc.Count++
		reg.Masters[key] = mc
	}
	reg.Total.Total = reg.Total.Cash + reg.Total.Card
	return reg, nil
}
