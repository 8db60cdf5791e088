package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/parceltrack/internal/domain/errors"
	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/domain/repository"
)

// SettingsProvider serves the global settings singleton from a cache that
// is refreshed on every write.
type SettingsProvider struct {
	repo repository.SettingsRepository

	// writeMu serializes read-modify-write cycles in Update.
	writeMu sync.Mutex
	mu      sync.RWMutex
	cached *model.Settings
}

// NewSettingsProvider constructs SettingsProvider.
func NewSettingsProvider(repo repository.SettingsRepository) *SettingsProvider {
	return &SettingsProvider{repo: repo}
}

// Get returns the current settings, falling back to defaults when none are stored.
func (p *SettingsProvider) Get(ctx context.Context) (model.Settings, error) {
	p.mu.RLock()
	if p.cached != nil {
		s := *p.cached
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()
	return p.Reload(ctx)
}

// Reload drops the cache and reads settings from storage.
func (p *SettingsProvider) Reload(ctx context.Context) (model.Settings, error) {
	stored, err := p.repo.Get(ctx)
	var s model.Settings
	switch {
	case err == nil:
		s = *stored
	case errors.Is(err, domainErrors.ErrNotFound):
		s = model.DefaultSettings()
	default:
		return model.Settings{}, err
	}

	p.mu.Lock()
	p.cached = &s
	p.mu.Unlock()
	return s, nil
}

// Update applies patch and persists the result.
func (p *SettingsProvider) Update(ctx context.Context, patch model.SettingsPatch) (model.Settings, error) {
	if patch.GlobalReferralBonusPercentage != nil && patch.GlobalReferralBonusPercentage.IsNegative() {
		return model.Settings{}, domainErrors.ErrInvalidPercentage
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	current, err := p.Reload(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	if err := p.repo.Save(ctx, patch.Apply(current)); err != nil {
		p.invalidate()
		return model.Settings{}, err
	}
	return p.Reload(ctx)
}

// GlobalBonus returns the default referral percentage.
func (p *SettingsProvider) GlobalBonus(ctx context.Context) (decimal.Decimal, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.GlobalReferralBonusPercentage, nil
}

// SetGlobalBonus changes the default referral percentage.
func (p *SettingsProvider) SetGlobalBonus(ctx context.Context, percentage decimal.Decimal) (decimal.Decimal, error) {
	s, err := p.Update(ctx, model.SettingsPatch{GlobalReferralBonusPercentage: &percentage})
	if err != nil {
		return decimal.Zero, err
	}
	return s.GlobalReferralBonusPercentage, nil
}

func (p *SettingsProvider) invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}
