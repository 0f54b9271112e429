package middleware

import (
	"mime"
	"net/http"

	"github.com/benvon/careerontrack/internal/models"
)

// ContentType requires a JSON Content-Type on requests that carry a body
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
			next.ServeHTTP(w, r)
			return
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			if r.ContentLength == 0 {
				// Bodiless POSTs are fine
				next.ServeHTTP(w, r)
				return
			}
			respondErrorJSON(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Content-Type header is required")
			return
		}

		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			respondErrorJSON(w, http.StatusUnsupportedMediaType, models.ErrCodeUnsupportedMedia, "Content-Type must be application/json")
			return
		}

		next.ServeHTTP(w, r)
	})
}
