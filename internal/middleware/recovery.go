package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/models"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("path", r.URL.Path).
					Str("request_id", requestIDOf(w, r)).
					Msg("panic recovered")
				models.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestIDOf prefers the context id and falls back to the response header,
// which RequestID sets even when it is mounted inside Recovery.
func requestIDOf(w http.ResponseWriter, r *http.Request) string {
	if id := GetRequestID(r.Context()); id != "" {
		return id
	}
	return w.Header().Get(RequestIDHeader)
}
