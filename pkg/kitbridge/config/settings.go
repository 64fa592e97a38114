package config

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/destination"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/identity"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/observability"
)

// Recognized setting keys.
const (
	KeyUserIDField      = "userIdField"
	KeyEventInterval    = "eventInterval"
	KeyDatafileInterval = "datafileInterval"
	KeyProjectID        = "projectId"
)

// Settings are the parsed kit settings. Zero intervals are unset.
type Settings struct {
	Policy                   identity.Policy
	ProjectKey               string
	EventDispatchInterval    time.Duration
	DatafileDownloadInterval time.Duration
}

// ParseSettings extracts kit settings from cfg. Intervals that are not
// whole seconds are logged and left unset.
func ParseSettings(cfg Config, logger *slog.Logger) Settings {
	return Settings{
		Policy:                   identity.ParsePolicy(cfg.String(KeyUserIDField, "")),
		ProjectKey:               cfg.String(KeyProjectID, ""),
		EventDispatchInterval:    seconds(cfg, KeyEventInterval, logger),
		DatafileDownloadInterval: seconds(cfg, KeyDatafileInterval, logger),
	}
}

func seconds(cfg Config, key string, logger *slog.Logger) time.Duration {
	raw, ok := cfg.Lookup(key)
	if !ok || raw == "" {
		return 0
	}
	d, err := ParseSeconds(raw)
	if err != nil {
		observability.LogSettingSkipped(logger, key, raw, err)
		return 0
	}
	return d
}

// Destination returns the settings passed to a destination Starter.
func (s Settings) Destination() destination.Settings {
	return destination.Settings{
		ProjectKey:               s.ProjectKey,
		EventDispatchInterval:    s.EventDispatchInterval,
		DatafileDownloadInterval: s.DatafileDownloadInterval,
	}
}
