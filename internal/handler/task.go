package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hollisdean/homequest/internal/model"
	"github.com/hollisdean/homequest/internal/rules"
	"github.com/hollisdean/homequest/internal/store"
	"github.com/hollisdean/homequest/internal/websocket"
)

type TaskHandler struct {
	tasks       *store.TaskStore
	completions *store.CompletionStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, comps *store.CompletionStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, completions: comps, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// todayTask is a task active today with the child's completion state.
type todayTask struct {
	model.Task
	CompletedToday bool `json:"completed_today"`
}

// Today lists the tasks active on the current weekday for one child,
// flagging those already completed.
func (h *TaskHandler) Today(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.ParseInt(r.URL.Query().Get("child_id"), 10, 64)
	if err != nil || childID <= 0 {
		writeError(w, http.StatusBadRequest, "child_id required")
		return
	}

	today := rules.DateOf(time.Now())
	weekday := rules.WeekdayIndex(today)

	tasks, err := h.tasks.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	completed, err := h.completions.ListApprovedTaskIDsOnDate(childID, today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list completions")
		return
	}

	result := []todayTask{}
	for _, t := range tasks {
		if !t.IsActiveOn(weekday) {
			continue
		}
		result = append(result, todayTask{Task: t, CompletedToday: completed[t.ID]})
	}

	writeJSON(w, http.StatusOK, result)
}

type taskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
	IsRequired  bool   `json:"is_required"`
	Streakable  bool   `json:"streakable"`
	ActiveDays  []int  `json:"active_days"`
}

func (r taskRequest) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.Points <= 0 {
		return "points must be positive"
	}
	switch model.TaskCategory(r.Category) {
	case model.CategoryDaily, model.CategoryBehaviour, model.CategoryWeekly:
	default:
		return "category must be DAILY, BEHAVIOUR or WEEKLY"
	}
	for _, d := range r.ActiveDays {
		if d < 0 || d > 6 {
			return "active_days entries must be 0-6 (Monday=0)"
		}
	}
	return ""
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.tasks.Create(strings.TrimSpace(req.Name), req.Description, req.Points, model.TaskCategory(req.Category), req.IsRequired, req.Streakable, req.ActiveDays)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.tasks.Update(id, strings.TrimSpace(req.Name), req.Description, req.Points, model.TaskCategory(req.Category), req.IsRequired, req.Streakable, req.ActiveDays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.tasks.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	// Completions cascade with the task row.
	if err := h.tasks.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
