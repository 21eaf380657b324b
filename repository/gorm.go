package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"want-salon-backend/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Masters() MasterRepository {
	return &gormMasters{db: s.db}
}

func (s *GormStore) Appointments() AppointmentRepository {
	return &gormAppointments{db: s.db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

type gormMasters struct {
	db *gorm.DB
}

func (r *gormMasters) List(ctx context.Context) ([]models.Master, error) {
	var masters []models.Master
	if err := r.db.WithContext(ctx).Order("id").Find(&masters).Error; err != nil {
		return nil, err
	}
	return masters, nil
}

func (r *gormMasters) FindByID(ctx context.Context, id int64) (*models.Master, error) {
	var m models.Master
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormMasters) FindByTelegramID(ctx context.Context, telegramID int64) (*models.Master, error) {
	var m models.Master
	if err := r.db.WithContext(ctx).First(&m, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMasterNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormMasters) UsedColors(ctx context.Context) ([]string, error) {
	var colors []string
	err := r.db.WithContext(ctx).Model(&models.Master{}).
		Where("color <> ''").
		Distinct().
		Pluck("color", &colors).Error
	return colors, err
}

func (r *gormMasters) Create(ctx context.Context, m *models.Master) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormMasters) Save(ctx context.Context, m *models.Master) error {
	return r.db.WithContext(ctx).Save(m).Error
}

type gormAppointments struct {
	db *gorm.DB
}

func (r *gormAppointments) filtered(ctx context.Context, f AppointmentFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if f.MasterID != nil {
		q = q.Where("master_id = ?", *f.MasterID)
	}
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.StartDate != "" {
		q = q.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("date <= ?", f.EndDate)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *gormAppointments) Create(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *gormAppointments) FindForMaster(ctx context.Context, masterID, id int64) (*models.Appointment, error) {
	var a models.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND master_id = ?", id, masterID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *gormAppointments) Save(ctx context.Context, a *models.Appointment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *gormAppointments) Delete(ctx context.Context, masterID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND master_id = ?", id, masterID).
		Delete(&models.Appointment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *gormAppointments) List(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	var out []models.Appointment
	if err := r.filtered(ctx, f).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *gormAppointments) Stats(ctx context.Context, f AppointmentFilter) (models.Stats, error) {
	var stats models.Stats
	if err := r.filtered(ctx, f).Count(&stats.TotalAppointments).Error; err != nil {
		return stats, err
	}

	var row struct {
		Completed int64
		Revenue   float64
	}
	err := r.filtered(ctx, f).
		Where("status = ?", models.StatusCompleted).
		Select("COUNT(*) AS completed, COALESCE(SUM(cash_payment + card_payment), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return stats, err
	}
	stats.CompletedAppointments = row.Completed
	stats.TotalRevenue = row.Revenue
	return stats, nil
}
