package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/careerontrack/internal/models"
)

// DefaultRequestTimeout is the default request timeout
const DefaultRequestTimeout = 30 * time.Second

// Timeout cancels the request context after timeout and answers 503 with a
// JSON error body if the handler has not responded by then
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	body, _ := json.Marshal(models.ErrorResponse{Error: "Request timed out", Code: models.ErrCodeTimeout})

	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// TimeoutHandler writes its message without a content type
			w.Header().Set("Content-Type", "application/json")
			th.ServeHTTP(w, r)
		})
	}
}
