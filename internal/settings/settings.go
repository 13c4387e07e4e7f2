// Package settings provides implementations of the engine's settings
// provider.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/teedon/cooperative-manager-sub000/internal/models"
	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// Defaults used when a cooperative has no stored settings.
const (
	DefaultCommissionRate = 5.0
	DefaultFrequency      = models.FrequencyMonthly
)

// DBProvider reads per-cooperative settings from storage, falling back to the
// platform defaults for cooperatives that never configured any.
type DBProvider struct {
	store storage.SettingsStore
}

// NewDBProvider creates a provider backed by the given settings store.
func NewDBProvider(store storage.SettingsStore) *DBProvider {
	return &DBProvider{store: store}
}

// CommissionRate returns the cooperative's configured commission percentage.
func (p *DBProvider) CommissionRate(ctx context.Context, cooperativeID string) (float64, error) {
	s, err := p.store.GetSettings(ctx, cooperativeID)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultCommissionRate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	return s.CommissionRate, nil
}

// DefaultFrequency returns the cooperative's configured default cadence.
func (p *DBProvider) DefaultFrequency(ctx context.Context, cooperativeID string) (models.Frequency, error) {
	s, err := p.store.GetSettings(ctx, cooperativeID)
	if errors.Is(err, storage.ErrNotFound) {
		return DefaultFrequency, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	return s.DefaultFrequency, nil
}

// Static is a fixed-value provider, mainly for tests.
type Static struct {
	Rate      float64
	Frequency models.Frequency
}

// CommissionRate returns the fixed commission percentage.
func (s Static) CommissionRate(ctx context.Context, cooperativeID string) (float64, error) {
	return s.Rate, nil
}

// DefaultFrequency returns the fixed cadence.
func (s Static) DefaultFrequency(ctx context.Context, cooperativeID string) (models.Frequency, error) {
	return s.Frequency, nil
}
