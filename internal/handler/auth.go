package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hollisdean/homequest/internal/middleware"
	"github.com/hollisdean/homequest/internal/store"
)

const sessionTTL = 7 * 24 * time.Hour

type AuthHandler struct {
	settings *store.SettingsStore
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewAuthHandler(settings *store.SettingsStore, sessions *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{settings: settings, sessions: sessions, logger: logger}
}

// Login verifies the parent PIN and issues a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.settings.Get(store.KeyParentPINHash)
	if err != nil || hash == "" {
		writeError(w, http.StatusInternalServerError, "PIN not configured")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}

	session, err := h.sessions.Create(sessionTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout deletes the current session, if any, and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Warn("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EnsureDefaultPIN hashes and stores the default parent PIN when none has
// been configured yet, so a fresh install is immediately usable.
func EnsureDefaultPIN(settings *store.SettingsStore, logger *slog.Logger) error {
	existing, err := settings.Get(store.KeyParentPINHash)
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := settings.Set(store.KeyParentPINHash, string(hash)); err != nil {
		return err
	}
	logger.Warn("parent PIN not set, default PIN 1234 configured; change it in settings")
	return nil
}
