package handler

import (
	"net/http"

	"truckmonitor/internal/config"
	"truckmonitor/internal/logger"
)

// LoginHandler handles POST /auth/login by validating password and issuing an auth cookie.
// The API serves no pages, so success is reported as JSON rather than a redirect.
func LoginHandler(config *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed", logger)
			return
		}
		password := r.FormValue("password")
		if password != config.Password {
			writeError(w, http.StatusUnauthorized, "Invalid password", logger)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "authenticated",
			Value:    "true",
			Path:     "/",
			MaxAge:   2592000, // 30 days
			HttpOnly: true,
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"}, logger)
	}
}
