package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// AgentKey guards an endpoint behind the shared X-Agent-Key secret used by
// the mailbox scanner and file watcher triggers. An empty expected key
// disables the check (local development).
func AgentKey(expected string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if expected != "" && r.Header.Get("X-Agent-Key") != expected {
			slog.Warn("rejected request with invalid agent key", "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if err := json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{
					"code":    "UNAUTHORIZED",
					"message": "Invalid agent key",
				},
			}); err != nil {
				slog.Error("failed to encode error response", "error", err)
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
