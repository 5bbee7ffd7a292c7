package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hollisdean/homequest/internal/store"
)

// SessionCookieName is the cookie carrying the parent session token.
const SessionCookieName = "homequest_parent"

// RequireParent guards admin routes: the request must carry a valid,
// unexpired parent session cookie. Kid-facing routes are left open — this
// is a household app, the PIN keeps children out of the settings, not
// attackers out of the network.
func RequireParent(sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				denyParent(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				denyParent(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyParent(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "parent access required"})
}
