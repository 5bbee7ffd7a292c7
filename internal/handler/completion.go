package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hollisdean/homequest/internal/rules"
	"github.com/hollisdean/homequest/internal/store"
	"github.com/hollisdean/homequest/internal/websocket"
)

type CompletionHandler struct {
	engine      *rules.Engine
	completions *store.CompletionStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewCompletionHandler(engine *rules.Engine, comps *store.CompletionStore, hub *websocket.Hub, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{engine: engine, completions: comps, hub: hub, logger: logger}
}

func (h *CompletionHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Create records a task completion and runs the rules pipeline. The date
// field is optional; when absent the completion counts toward today.
func (h *CompletionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID int64  `json:"child_id"`
		TaskID  int64  `json:"task_id"`
		Date    string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ChildID <= 0 || req.TaskID <= 0 {
		writeError(w, http.StatusBadRequest, "child_id and task_id required")
		return
	}

	date, err := parseDateParam(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	result, err := h.engine.RecordCompletion(r.Context(), req.ChildID, req.TaskID, date)
	if errors.Is(err, rules.ErrNotFound) {
		writeError(w, http.StatusNotFound, "child or task not found")
		return
	}
	if errors.Is(err, rules.ErrDuplicateCompletion) {
		writeError(w, http.StatusConflict, "task already completed for this date")
		return
	}
	if err != nil {
		h.logger.Error("record completion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record completion")
		return
	}

	extra := map[string]any{
		"child_id":     req.ChildID,
		"streak_count": result.StreakCount,
		"level_up":     result.LevelUp,
	}
	h.broadcast(websocket.NewMessage("completion", "recorded", result.CompletionID, extra))
	for _, b := range result.BadgesEarned {
		h.broadcast(websocket.NewMessage("badge", "earned", b.ID, map[string]any{
			"child_id": b.ChildID,
			"name":     b.Name,
		}))
	}

	writeJSON(w, http.StatusCreated, result)
}

// Recent lists approved completions from the last 7 days, newest first.
func (h *CompletionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	since := rules.DateOf(time.Now()).AddDate(0, 0, -7)

	details, err := h.completions.ListRecentDetails(since)
	if err != nil {
		h.logger.Error("recent completions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}
	if details == nil {
		details = []store.CompletionDetail{}
	}
	writeJSON(w, http.StatusOK, details)
}

// Delete reverses and removes a completion.
func (h *CompletionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	result, err := h.engine.RemoveCompletion(r.Context(), id)
	if errors.Is(err, rules.ErrNotFound) {
		writeError(w, http.StatusNotFound, "completion not found")
		return
	}
	if err != nil {
		h.logger.Error("remove completion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove completion")
		return
	}

	h.broadcast(websocket.NewMessage("completion", "removed", id, nil))
	writeJSON(w, http.StatusOK, result)
}
