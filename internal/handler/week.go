package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hollisdean/homequest/internal/model"
	"github.com/hollisdean/homequest/internal/rules"
	"github.com/hollisdean/homequest/internal/store"
	"github.com/hollisdean/homequest/internal/websocket"
)

type WeekHandler struct {
	engine    *rules.Engine
	summaries *store.SummaryStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewWeekHandler(engine *rules.Engine, ss *store.SummaryStore, hub *websocket.Hub, logger *slog.Logger) *WeekHandler {
	return &WeekHandler{engine: engine, summaries: ss, hub: hub, logger: logger}
}

func (h *WeekHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Close snapshots the current week for every child. Safe to call again:
// already-closed children are reported as skipped.
func (h *WeekHandler) Close(w http.ResponseWriter, r *http.Request) {
	reports, err := h.engine.CloseWeek(r.Context())
	if err != nil {
		h.logger.Error("close week", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to close week")
		return
	}
	if reports == nil {
		reports = []rules.CloseReport{}
	}

	h.broadcast(websocket.NewMessage("week", "closed", 0, nil))
	writeJSON(w, http.StatusOK, map[string]any{"results": reports})
}

// Reset wipes the current week's completions and reverses their effects.
func (h *WeekHandler) Reset(w http.ResponseWriter, r *http.Request) {
	reports, err := h.engine.ResetWeek(r.Context())
	if err != nil {
		h.logger.Error("reset week", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset week")
		return
	}
	if reports == nil {
		reports = []rules.ResetReport{}
	}

	h.broadcast(websocket.NewMessage("week", "reset", 0, nil))
	writeJSON(w, http.StatusOK, map[string]any{"results": reports})
}

// Payout previews a child's payout for a week without closing it. The
// week_start query parameter is optional and defaults to the current week.
func (h *WeekHandler) Payout(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	weekStart, err := parseDateParam(r.URL.Query().Get("week_start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "week_start must be YYYY-MM-DD")
		return
	}
	if weekStart.IsZero() {
		weekStart = time.Now()
	}

	result, err := h.engine.CalculateWeeklyPayout(r.Context(), id, weekStart)
	if errors.Is(err, rules.ErrNotFound) {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}
	if err != nil {
		h.logger.Error("calculate payout", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to calculate payout")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Summaries lists a child's closed weeks, newest first.
func (h *WeekHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	summaries, err := h.summaries.ListByChild(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}
	if summaries == nil {
		summaries = []model.WeekSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}
