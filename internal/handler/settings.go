package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/hollisdean/homequest/internal/rules"
	"github.com/hollisdean/homequest/internal/store"
	"github.com/hollisdean/homequest/internal/websocket"
)

type SettingsHandler struct {
	settings *store.SettingsStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: ss, hub: hub, logger: logger}
}

// Get returns the payout configuration and timezone. The PIN hash never
// leaves the server.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	var thresholds []rules.ThresholdRule
	if raw := all[store.KeyThresholdRules]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &thresholds); err != nil {
			h.logger.Warn("stored threshold rules unreadable", "error", err)
		}
	}
	if thresholds == nil {
		thresholds = []rules.ThresholdRule{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"full_payout_amount": all[store.KeyFullPayoutAmount],
		"threshold_rules":    thresholds,
		"timezone":           all[store.KeyTimezone],
	})
}

// Update applies a partial settings change. Absent fields are untouched.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullPayoutAmount *string               `json:"full_payout_amount"`
		ThresholdRules   []rules.ThresholdRule `json:"threshold_rules"`
		Timezone         *string               `json:"timezone"`
		ParentPIN        *string               `json:"parent_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.FullPayoutAmount != nil {
		amount, err := decimal.NewFromString(*req.FullPayoutAmount)
		if err != nil || amount.IsNegative() {
			writeError(w, http.StatusBadRequest, "full_payout_amount must be a non-negative decimal")
			return
		}
		if err := h.settings.Set(store.KeyFullPayoutAmount, amount.StringFixed(2)); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	if req.ThresholdRules != nil {
		for _, rule := range req.ThresholdRules {
			if rule.MinPoints < 0 || rule.Amount.IsNegative() {
				writeError(w, http.StatusBadRequest, "threshold rules must have non-negative min_points and amount")
				return
			}
		}
		data, err := json.Marshal(req.ThresholdRules)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to encode threshold rules")
			return
		}
		if err := h.settings.Set(store.KeyThresholdRules, string(data)); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			writeError(w, http.StatusBadRequest, "unknown timezone")
			return
		}
		if err := h.settings.Set(store.KeyTimezone, *req.Timezone); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	if req.ParentPIN != nil {
		if len(*req.ParentPIN) != 4 || !isDigits(*req.ParentPIN) {
			writeError(w, http.StatusBadRequest, "PIN must be exactly 4 digits")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.ParentPIN), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to hash PIN")
			return
		}
		if err := h.settings.Set(store.KeyParentPINHash, string(hash)); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("settings", "updated", 0, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
