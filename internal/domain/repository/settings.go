package repository

import (
	"context"

	"github.com/polkiloo/parceltrack/internal/domain/model"
)

// SettingsRepository stores the global settings singleton.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, settings model.Settings) error
}
