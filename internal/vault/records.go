package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tabvault/tabvault/internal/types"
)

const (
	settingsKey    = "settings"
	lastCaptureKey = "last_capture"
)

// LoadSettings returns the persisted settings record. A missing or
// malformed record yields the fixed defaults; individual malformed fields
// fall back per field.
func (s *Store) LoadSettings(ctx context.Context) (types.Settings, error) {
	raw, err := s.getRecord(ctx, settingsKey)
	if err != nil {
		return types.Settings{}, err
	}
	if raw == nil {
		return types.DefaultSettings(), nil
	}
	return decodeSettings(raw), nil
}

// SaveSettings overwrites the settings record.
func (s *Store) SaveSettings(ctx context.Context, settings types.Settings) error {
	return s.setRecord(ctx, settingsKey, settings)
}

// SaveCaptureResult overwrites the single last-capture slot.
func (s *Store) SaveCaptureResult(ctx context.Context, result types.CaptureResult) error {
	return s.setRecord(ctx, lastCaptureKey, result)
}

// LoadCaptureResult returns the last capture result, or nil when no capture
// has ever been recorded.
func (s *Store) LoadCaptureResult(ctx context.Context) (*types.CaptureResult, error) {
	raw, err := s.getRecord(ctx, lastCaptureKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var result types.CaptureResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("vault: decode capture result: %w", err)
	}
	return &result, nil
}

func (s *Store) getRecord(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vault: read record %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *Store) setRecord(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("vault: encode record %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, string(data))
	if err != nil {
		return fmt.Errorf("vault: write record %s: %w", key, err)
	}
	return nil
}

// decodeSettings is the forward/backward-compatibility boundary for the
// settings record: every field decodes independently and falls back to its
// fixed default when absent or of the wrong type.
func decodeSettings(raw []byte) types.Settings {
	settings := types.DefaultSettings()

	var fields struct {
		KeepActiveTab              *bool   `json:"keep_active_tab"`
		ExcludePinnedTabs          *bool   `json:"exclude_pinned_tabs"`
		SessionNamePrefix          *string `json:"session_name_prefix"`
		SkipDuplicatesOnRestore    *bool   `json:"skip_duplicates_on_restore"`
		RestoreInBackgroundDefault *bool   `json:"restore_in_background_default"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return settings
	}
	if fields.KeepActiveTab != nil {
		settings.KeepActiveTab = *fields.KeepActiveTab
	}
	if fields.ExcludePinnedTabs != nil {
		settings.ExcludePinnedTabs = *fields.ExcludePinnedTabs
	}
	if fields.SessionNamePrefix != nil && *fields.SessionNamePrefix != "" {
		settings.SessionNamePrefix = *fields.SessionNamePrefix
	}
	if fields.SkipDuplicatesOnRestore != nil {
		settings.SkipDuplicatesOnRestore = *fields.SkipDuplicatesOnRestore
	}
	if fields.RestoreInBackgroundDefault != nil {
		settings.RestoreInBackgroundDefault = *fields.RestoreInBackgroundDefault
	}
	return settings
}
