package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"want-salon-backend/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "salon.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// one connection keeps sqlite from locking against itself inside a transaction
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Master{}, &models.Appointment{}); err != nil {
		t.Fatal(err)
	}
	return NewGormStore(db)
}

// eachStore runs fn against every Store implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("gorm", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
}

func seedMaster(t *testing.T, s Store, name string, tg int64) *models.Master {
	t.Helper()
	m := &models.Master{Name: name, Role: models.RoleMaster, TelegramID: &tg}
	if err := s.Masters().Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	return m
}

func seedAppointment(t *testing.T, s Store, m *models.Master, date string, status models.AppointmentStatus, cash, card float64) *models.Appointment {
	t.Helper()
	a := &models.Appointment{
		MasterID:    m.ID,
		Date:        date,
		Time:        "10:00",
		Duration:    models.DefaultDuration,
		ClientName:  "C",
		Status:      status,
		CashPayment: cash,
		CardPayment: card,
	}
	if err := s.Appointments().Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestTransactionRollsBack(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seedMaster(t, s, "Anna", 1)

		boom := errors.New("boom")
		err := s.Transaction(ctx, func(tx Store) error {
			if err := tx.Masters().Create(ctx, &models.Master{Name: "Olga", Role: models.RoleMaster}); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
		masters, err := s.Masters().List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(masters) != 1 || masters[0].Name != "Anna" {
			t.Fatalf("rollback left %+v", masters)
		}
	})
}

func TestTransactionCommits(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		var created *models.Master
		err := s.Transaction(ctx, func(tx Store) error {
			created = &models.Master{Name: "Olga", Role: models.RoleMaster}
			if err := tx.Masters().Create(ctx, created); err != nil {
				return err
			}
			created.Color = "teal"
			return tx.Masters().Save(ctx, created)
		})
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.Masters().FindByID(ctx, created.ID)
		if err != nil || got.Color != "teal" {
			t.Fatalf("committed master = %+v, %v", got, err)
		}
	})
}

func TestMemoryRollbackRestoresIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedMaster(t, s, "Anna", 1)
	_ = s.Transaction(ctx, func(tx Store) error {
		_ = tx.Masters().Create(ctx, &models.Master{Name: "Olga"})
		return errors.New("boom")
	})
	if next := seedMaster(t, s, "Vera", 3); next.ID != 2 {
		t.Fatalf("next id = %d", next.ID)
	}
}

func TestMasterLookups(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		anna := seedMaster(t, s, "Anna", 77)

		byTG, err := s.Masters().FindByTelegramID(ctx, 77)
		if err != nil || byTG.ID != anna.ID {
			t.Fatalf("by telegram id = %+v, %v", byTG, err)
		}
		if _, err := s.Masters().FindByTelegramID(ctx, 78); !errors.Is(err, ErrMasterNotFound) {
			t.Fatalf("unknown telegram id: %v", err)
		}
		if _, err := s.Masters().FindByID(ctx, anna.ID+100); !errors.Is(err, ErrMasterNotFound) {
			t.Fatalf("unknown id: %v", err)
		}
	})
}

func TestDuplicateTelegramID(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		seedMaster(t, s, "Anna", 7)
		tg := int64(7)
		if err := s.Masters().Create(context.Background(), &models.Master{Name: "Dup", Role: models.RoleMaster, TelegramID: &tg}); err == nil {
			t.Fatal("duplicate telegram id accepted")
		}
	})
}

func TestUsedColorsSkipsEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a := seedMaster(t, s, "Anna", 1)
		seedMaster(t, s, "Olga", 2)
		b := seedMaster(t, s, "Vera", 3)
		a.Color, b.Color = "teal", "teal"
		for _, m := range []*models.Master{a, b} {
			if err := s.Masters().Save(ctx, m); err != nil {
				t.Fatal(err)
			}
		}
		colors, err := s.Masters().UsedColors(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(colors) != 1 || colors[0] != "teal" {
			t.Fatalf("colors = %v", colors)
		}
	})
}

func TestAppointmentFiltersAndStats(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		anna := seedMaster(t, s, "Anna", 1)
		olga := seedMaster(t, s, "Olga", 2)

		seedAppointment(t, s, anna, "2024-01-01", models.StatusCompleted, 100, 10)
		seedAppointment(t, s, anna, "2024-01-31", models.StatusScheduled, 0, 0)
		seedAppointment(t, s, olga, "2024-01-15", models.StatusCompleted, 40, 0)
		seedAppointment(t, s, olga, "2024-02-01", models.StatusCompleted, 1000, 0)

		tests := []struct {
			name string
			f    AppointmentFilter
			want int
		}{
			{"all", AppointmentFilter{}, 4},
			{"master", AppointmentFilter{MasterID: &anna.ID}, 2},
			{"date", AppointmentFilter{Date: "2024-01-15"}, 1},
			{"range inclusive", AppointmentFilter{StartDate: "2024-01-01", EndDate: "2024-01-31"}, 3},
			{"completed", AppointmentFilter{Status: models.StatusCompleted}, 3},
		}
		for _, tt := range tests {
			list, err := s.Appointments().List(ctx, tt.f)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != tt.want {
				t.Errorf("%s: got %d, want %d", tt.name, len(list), tt.want)
			}
		}

		stats, err := s.Appointments().Stats(ctx, AppointmentFilter{StartDate: "2024-01-01", EndDate: "2024-01-31"})
		if err != nil {
			t.Fatal(err)
		}
		if stats != (models.Stats{TotalAppointments: 3, CompletedAppointments: 2, TotalRevenue: 150}) {
			t.Fatalf("stats = %+v", stats)
		}

		empty, err := s.Appointments().Stats(ctx, AppointmentFilter{StartDate: "2030-01-01", EndDate: "2030-12-31"})
		if err != nil {
			t.Fatal(err)
		}
		if empty != (models.Stats{}) {
			t.Fatalf("empty range stats = %+v", empty)
		}
	})
}

func TestDeleteScopedToMaster(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		anna := seedMaster(t, s, "Anna", 1)
		olga := seedMaster(t, s, "Olga", 2)
		a := seedAppointment(t, s, anna, "2024-01-01", models.StatusScheduled, 0, 0)

		if err := s.Appointments().Delete(ctx, olga.ID, a.ID); !errors.Is(err, ErrAppointmentNotFound) {
			t.Fatalf("cross-master delete: %v", err)
		}
		if err := s.Appointments().Delete(ctx, anna.ID, a.ID); err != nil {
			t.Fatal(err)
		}
		if err := s.Appointments().Delete(ctx, anna.ID, a.ID); !errors.Is(err, ErrAppointmentNotFound) {
			t.Fatalf("second delete: %v", err)
		}
		if _, err := s.Appointments().FindForMaster(ctx, anna.ID, a.ID); !errors.Is(err, ErrAppointmentNotFound) {
			t.Fatalf("after delete: %v", err)
		}
	})
}

func TestAppointmentSave(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		anna := seedMaster(t, s, "Anna", 1)
		a := seedAppointment(t, s, anna, "2024-01-01", models.StatusScheduled, 0, 0)

		a.Status = models.StatusCompleted
		a.CashPayment, a.CardPayment = 300, 200
		if err := s.Appointments().Save(ctx, a); err != nil {
			t.Fatal(err)
		}
		got, err := s.Appointments().FindForMaster(ctx, anna.ID, a.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != models.StatusCompleted || got.Payment().Total() != 500 {
			t.Fatalf("saved = %+v", got)
		}
	})
}

func TestMemoryRejectsOrphanAppointment(t *testing.T) {
	err := NewMemoryStore().Appointments().Create(context.Background(), &models.Appointment{MasterID: 99})
	if !errors.Is(err, ErrMasterNotFound) {
		t.Fatalf("orphan appointment: %v", err)
	}
}

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("syntax error"), false},
		{ErrMasterNotFound, false},
		{fmt.Errorf("query: %w", ErrUnavailable), true},
		{fmt.Errorf("exec: %w", driver.ErrBadConn), true},
	}
	for _, tt := range tests {
		if got := IsUnavailable(tt.err); got != tt.want {
			t.Errorf("IsUnavailable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
