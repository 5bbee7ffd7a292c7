package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hollisdean/homequest/internal/handler"
	"github.com/hollisdean/homequest/internal/middleware"
	"github.com/hollisdean/homequest/internal/rules"
	"github.com/hollisdean/homequest/internal/store"
	ws "github.com/hollisdean/homequest/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	childH       *handler.ChildHandler
	taskH        *handler.TaskHandler
	completionH  *handler.CompletionHandler
	weekH        *handler.WeekHandler
	settingsH    *handler.SettingsHandler
	authH        *handler.AuthHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	completionStore := store.NewCompletionStore(db)
	badgeStore := store.NewBadgeStore(db)
	summaryStore := store.NewSummaryStore(db)
	settingsStore := store.NewSettingsStore(db)
	sessionStore := store.NewSessionStore(db)

	engine := rules.New(db, logger.With("component", "rules"))

	return &Server{
		db:           db,
		hub:          hub,
		childH:       handler.NewChildHandler(childStore, completionStore, badgeStore, hub, logger.With("component", "child")),
		taskH:        handler.NewTaskHandler(taskStore, completionStore, hub, logger.With("component", "task")),
		completionH:  handler.NewCompletionHandler(engine, completionStore, hub, logger.With("component", "completion")),
		weekH:        handler.NewWeekHandler(engine, summaryStore, hub, logger.With("component", "week")),
		settingsH:    handler.NewSettingsHandler(settingsStore, hub, logger.With("component", "settings")),
		authH:        handler.NewAuthHandler(settingsStore, sessionStore, logger.With("component", "auth")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Kid-facing routes need no auth: the tablet on the kitchen counter is
	// the trust boundary, same as the original board.
	outerMux.HandleFunc("GET /api/children", s.childH.List)
	outerMux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	outerMux.HandleFunc("GET /api/children/{id}/badges", s.childH.Badges)
	outerMux.HandleFunc("GET /api/children/{id}/payout", s.weekH.Payout)
	outerMux.HandleFunc("GET /api/children/{id}/summaries", s.weekH.Summaries)
	outerMux.HandleFunc("GET /api/tasks", s.taskH.List)
	outerMux.HandleFunc("GET /api/tasks/today", s.taskH.Today)
	outerMux.HandleFunc("POST /api/completions", s.completionH.Create)
	outerMux.HandleFunc("GET /api/completions/recent", s.completionH.Recent)

	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// WebSocket
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	// Parent routes — wrapped with RequireParent middleware
	parentMux := http.NewServeMux()
	s.registerParentRoutes(parentMux)

	authMiddleware := middleware.RequireParent(s.sessionStore)
	outerMux.Handle("/api/admin/", http.StripPrefix("/api/admin", authMiddleware(parentMux)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerParentRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /children", s.childH.Create)
	mux.HandleFunc("PUT /children/{id}", s.childH.Update)
	mux.HandleFunc("DELETE /children/{id}", s.childH.Delete)

	mux.HandleFunc("POST /tasks", s.taskH.Create)
	mux.HandleFunc("PUT /tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /tasks/{id}", s.taskH.Delete)

	mux.HandleFunc("DELETE /completions/{id}", s.completionH.Delete)

	mux.HandleFunc("POST /week/close", s.weekH.Close)
	mux.HandleFunc("POST /week/reset", s.weekH.Reset)

	mux.HandleFunc("GET /settings", s.settingsH.Get)
	mux.HandleFunc("PUT /settings", s.settingsH.Update)
}
