package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/promptdeck/internal/model"
	"github.com/xxxsen/promptdeck/internal/store"
)

const settingsKey = "settings"

// SettingsService persists user settings and doubles as the semantic
// engine's SettingsSource: reads are best-effort and never propagate errors.
type SettingsService struct {
	store store.Store
}

func NewSettingsService(st store.Store) *SettingsService {
	return &SettingsService{store: st}
}

func (s *SettingsService) Load(ctx context.Context) model.Settings {
	var cfg model.Settings
	values, err := s.store.Get(ctx, settingsKey)
	if err != nil {
		logutil.GetLogger(ctx).Debug("settings read failed", zap.Error(err))
		return cfg
	}
	raw := values[settingsKey]
	if raw == "" {
		return cfg
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		logutil.GetLogger(ctx).Debug("settings decode failed", zap.Error(err))
		return model.Settings{}
	}
	return cfg
}

func (s *SettingsService) Save(ctx context.Context, cfg model.Settings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, map[string]string{settingsKey: string(data)})
}

func (s *SettingsService) SearchContext(ctx context.Context) string {
	return strings.TrimSpace(s.Load(ctx).SearchContext)
}
