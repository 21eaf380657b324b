package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"want-salon-backend/models"
	"want-salon-backend/repository"
	"want-salon-backend/utils"
)

// MasterRegistry owns master records.
type MasterRegistry struct {
	store repository.Store
	log   *zap.Logger
}

func NewMasterRegistry(store repository.Store, log *zap.Logger) *MasterRegistry {
	return &MasterRegistry{store: store, log: log}
}

func (r *MasterRegistry) List(ctx context.Context) ([]models.Master, error) {
	masters, err := r.store.Masters().List(ctx)
	if err != nil {
		return nil, storageError("Failed to retrieve masters", err)
	}
	return masters, nil
}

func (r *MasterRegistry) Get(ctx context.Context, id int64) (*models.Master, error) {
	m, err := r.store.Masters().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMasterNotFound) {
			return nil, masterNotFound(id)
		}
		return nil, storageError("Failed to retrieve master", err)
	}
	return m, nil
}

// RegisterOrFetch returns the master linked to telegramID, creating one on
// first contact. On repeat calls name is ignored and the stored master is
// returned as is. created reports whether a new record was made.
func (r *MasterRegistry) RegisterOrFetch(ctx context.Context, telegramID int64, name string) (m *models.Master, created bool, err error) {
	existing, err := r.store.Masters().FindByTelegramID(ctx, telegramID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrMasterNotFound) {
		return nil, false, storageError("Failed to look up master", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, utils.Validation("Master name is required", map[string]any{"field": "name"})
	}

	tgID := telegramID
	m = &models.Master{Name: name, Role: models.RoleMaster, TelegramID: &tgID}
	err = r.store.Transaction(ctx, func(tx repository.Store) error {
		return createWithColor(ctx, tx, m)
	})
	if err != nil {
		// a concurrent registration for the same telegram id may have won
		if winner, findErr := r.store.Masters().FindByTelegramID(ctx, telegramID); findErr == nil {
			return winner, false, nil
		}
		r.log.Error("master registration failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return nil, false, storageError("Failed to register master", err)
	}

	r.log.Info("master registered",
		zap.Int64("id", m.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("color", m.Color),
	)
	return m, true, nil
}

// Seed creates a master without a chat identity, e.g. for administrators.
func (r *MasterRegistry) Seed(ctx context.Context, name, role string) (*models.Master, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Validation("Master name is required", map[string]any{"field": "name"})
	}
	if role == "" {
		role = models.RoleMaster
	}
	m := &models.Master{Name: name, Role: role}
	if err := r.store.Transaction(ctx, func(tx repository.Store) error {
		return createWithColor(ctx, tx, m)
	}); err != nil {
		return nil, storageError("Failed to seed master", err)
	}
	return m, nil
}

// createWithColor inserts m first so the color is derived from its persisted
// id. Two registrations racing here can still pick the same color.
func createWithColor(ctx context.Context, tx repository.Store, m *models.Master) error {
	m.Color = ""
	if err := tx.Masters().Create(ctx, m); err != nil {
		return err
	}
	used, err := tx.Masters().UsedColors(ctx)
	if err != nil {
		return err
	}
	m.Color = AssignUniqueColor(m.ID, used)
	return tx.Masters().Save(ctx, m)
}

func (r *MasterRegistry) UpdateName(ctx context.Context, id int64, name string) (*models.Master, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.Validation("Master name cannot be empty", map[string]any{"field": "name"})
	}
	return r.mutate(ctx, id, func(m *models.Master) { m.Name = name })
}

func (r *MasterRegistry) UpdateAvatar(ctx context.Context, id int64, avatar *string) (*models.Master, error) {
	if avatar == nil {
		return nil, utils.Validation("Avatar is required", map[string]any{"field": "avatar"})
	}
	value := *avatar
	return r.mutate(ctx, id, func(m *models.Master) { m.Avatar = &value })
}

func (r *MasterRegistry) mutate(ctx context.Context, id int64, apply func(*models.Master)) (*models.Master, error) {
	var out *models.Master
	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		m, err := tx.Masters().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrMasterNotFound) {
				return masterNotFound(id)
			}
			return err
		}
		apply(m)
		if err := tx.Masters().Save(ctx, m); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, storageError("Failed to update master", err)
	}
	return out, nil
}
