package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// GetSettings retrieves a cooperative's settings.
func (s *SQLiteStore) GetSettings(ctx context.Context, cooperativeID string) (*models.CooperativeSettings, error) {
	settings := &models.CooperativeSettings{}
	err := s.db.QueryRowContext(ctx,
		`SELECT cooperative_id, commission_rate, default_frequency
		 FROM cooperative_settings WHERE cooperative_id = ?`,
		cooperativeID,
	).Scan(&settings.CooperativeID, &settings.CommissionRate, &settings.DefaultFrequency)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settings for cooperative %s: %w", cooperativeID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// PutSettings creates or replaces a cooperative's settings.
func (s *SQLiteStore) PutSettings(ctx context.Context, settings *models.CooperativeSettings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cooperative_settings (cooperative_id, commission_rate, default_frequency)
		 VALUES (?, ?, ?)
		 ON CONFLICT (cooperative_id) DO UPDATE SET
		   commission_rate = excluded.commission_rate,
		   default_frequency = excluded.default_frequency`,
		settings.CooperativeID, settings.CommissionRate, settings.DefaultFrequency,
	)
	if err != nil {
		return fmt.Errorf("failed to put settings: %w", err)
	}
	return nil
}
