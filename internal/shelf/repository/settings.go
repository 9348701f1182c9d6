package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/pkg/database"
)

// SettingsRepository stores per-owner thresholds
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetThresholds returns nil without error when the owner never saved settings
func (r *SettingsRepository) GetThresholds(ctx context.Context, ownerID string) (*domain.Thresholds, error) {
	var th domain.Thresholds
	err := r.db.GetContext(ctx, &th,
		`SELECT soon_days, expired_grace_days FROM user_settings WHERE owner_id = $1`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get thresholds: %w", err)
	}
	return &th, nil
}

// SaveThresholds upserts the owner's thresholds and returns what was stored
func (r *SettingsRepository) SaveThresholds(ctx context.Context, ownerID string, th domain.Thresholds) (*domain.Thresholds, error) {
	query := `
		INSERT INTO user_settings (owner_id, soon_days, expired_grace_days)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE
		SET soon_days = EXCLUDED.soon_days,
		    expired_grace_days = EXCLUDED.expired_grace_days,
		    updated_at = NOW()
		RETURNING soon_days, expired_grace_days`

	var stored domain.Thresholds
	if err := r.db.GetContext(ctx, &stored, query, ownerID, th.SoonDays, th.ExpiredGraceDays); err != nil {
		return nil, mapErr("save thresholds", err)
	}
	return &stored, nil
}
