package rules

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hollisdean/homequest/internal/store"
)

// ThresholdRule is one partial-payout tier: the payout for a week whose
// total points reach MinPoints but miss the full-payout condition.
type ThresholdRule struct {
	MinPoints int             `json:"min_points"`
	Amount    decimal.Decimal `json:"amount"`
}

// Config is the domain configuration loaded from the settings table once
// per operation and passed into the engine by value. It is never cached
// across operations.
type Config struct {
	FullPayoutAmount decimal.Decimal
	Thresholds       []ThresholdRule
	Location         *time.Location
}

// loadConfig reads the payout and timezone settings. Malformed values
// degrade rather than fail: bad threshold JSON means no threshold matches
// (payout 0), a bad timezone falls back to UTC. Calculations never abort
// mid-flight over configuration.
func loadConfig(settings *store.SettingsStore, logger *slog.Logger) (Config, error) {
	cfg := Config{
		FullPayoutAmount: decimal.Zero,
		Location:         time.UTC,
	}

	if raw, err := settings.Get(store.KeyFullPayoutAmount); err != nil {
		return cfg, err
	} else if raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			logger.Warn("invalid full payout amount, using 0", "value", raw, "error", err)
		} else {
			cfg.FullPayoutAmount = amount
		}
	}

	if raw, err := settings.Get(store.KeyThresholdRules); err != nil {
		return cfg, err
	} else if raw != "" {
		var rules []ThresholdRule
		if err := json.Unmarshal([]byte(raw), &rules); err != nil {
			logger.Warn("invalid threshold rules, treating as none", "value", raw, "error", err)
		} else {
			cfg.Thresholds = rules
		}
	}

	if raw, err := settings.Get(store.KeyTimezone); err != nil {
		return cfg, err
	} else if raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			logger.Warn("invalid timezone, using UTC", "value", raw, "error", err)
		} else {
			cfg.Location = loc
		}
	}

	return cfg, nil
}
