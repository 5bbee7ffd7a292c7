package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hollisdean/homequest/internal/model"
	"github.com/hollisdean/homequest/internal/rules"
	"github.com/hollisdean/homequest/internal/store"
	"github.com/hollisdean/homequest/internal/websocket"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type ChildHandler struct {
	children    *store.ChildStore
	completions *store.CompletionStore
	badges      *store.BadgeStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewChildHandler(cs *store.ChildStore, comps *store.CompletionStore, bs *store.BadgeStore, hub *websocket.Hub, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{children: cs, completions: comps, badges: bs, hub: hub, logger: logger}
}

func (h *ChildHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// childWithStats is a child plus this week's points, for the dashboard.
type childWithStats struct {
	model.Child
	WeeklyPoints int `json:"weekly_points"`
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.children.List()
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list children")
		return
	}

	weekStart := rules.WeekStart(time.Now())
	weekEnd := weekStart.AddDate(0, 0, 6)

	result := make([]childWithStats, 0, len(children))
	for _, c := range children {
		points, err := h.completions.SumApprovedPointsInRange(c.ID, weekStart, weekEnd)
		if err != nil {
			h.logger.Error("weekly points", "child_id", c.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to compute weekly points")
			return
		}
		result = append(result, childWithStats{Child: c, WeeklyPoints: points})
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	child, err := h.children.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get child")
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	writeJSON(w, http.StatusOK, child)
}

type childRequest struct {
	Name        string `json:"name"`
	AvatarEmoji string `json:"avatar_emoji"`
	Color       string `json:"color"`
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.AvatarEmoji == "" {
		req.AvatarEmoji = "🙂"
	}
	if req.Color == "" {
		req.Color = "#3B82F6"
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeError(w, http.StatusBadRequest, "color must be a hex color (e.g. #FF0000)")
		return
	}

	exists, err := h.children.NameExists(req.Name, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check name")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "a child with that name already exists")
		return
	}

	child, err := h.children.Create(req.Name, req.AvatarEmoji, req.Color)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create child")
		return
	}

	h.broadcast(websocket.NewMessage("child", "created", child.ID, nil))
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.children.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get child")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.AvatarEmoji == "" {
		req.AvatarEmoji = existing.AvatarEmoji
	}
	if req.Color == "" {
		req.Color = existing.Color
	}
	if !hexColorRegexp.MatchString(req.Color) {
		writeError(w, http.StatusBadRequest, "color must be a hex color (e.g. #FF0000)")
		return
	}

	exists, err := h.children.NameExists(req.Name, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check name")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "a child with that name already exists")
		return
	}

	child, err := h.children.Update(id, req.Name, req.AvatarEmoji, req.Color)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update child")
		return
	}

	h.broadcast(websocket.NewMessage("child", "updated", child.ID, nil))
	writeJSON(w, http.StatusOK, child)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.children.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get child")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return
	}

	if err := h.children.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete child")
		return
	}

	h.broadcast(websocket.NewMessage("child", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChildHandler) Badges(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	badges, err := h.badges.ListByChild(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list badges")
		return
	}
	if badges == nil {
		badges = []model.Badge{}
	}
	writeJSON(w, http.StatusOK, badges)
}
