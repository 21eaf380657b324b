package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"want-salon-backend/models"
)

var (
	ErrMasterNotFound      = errors.New("master not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrUnavailable marks a transient storage fault.
	ErrUnavailable = errors.New("storage unavailable")
)

type MasterRepository interface {
	List(ctx context.Context) ([]models.Master, error)
	FindByID(ctx context.Context, id int64) (*models.Master, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.Master, error)
	UsedColors(ctx context.Context) ([]string, error)
	Create(ctx context.Context, m *models.Master) error
	Save(ctx context.Context, m *models.Master) error
}

// AppointmentFilter narrows appointment queries. Zero values mean "no filter".
// Date bounds are compared as strings, which is correct for YYYY-MM-DD.
type AppointmentFilter struct {
	MasterID  *int64
	Date      string
	StartDate string
	EndDate   string
	Status    models.AppointmentStatus
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	FindForMaster(ctx context.Context, masterID, id int64) (*models.Appointment, error)
	Save(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, masterID, id int64) error
	List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)
	Stats(ctx context.Context, f AppointmentFilter) (models.Stats, error)
}

// Store groups the repositories. Transaction runs fn against a store bound to
// a single transaction; any error returned by fn rolls everything back.
type Store interface {
	Masters() MasterRepository
	Appointments() AppointmentRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// IsUnavailable reports whether err is a connectivity fault worth retrying.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

var errDuplicateTelegramID = errors.New("duplicate telegram_id")
