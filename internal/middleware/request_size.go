package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/starterkit/backend/internal/apperrors"
)

// RequestSizeLimitMiddleware caps request bodies at maxRequestSize bytes.
// A declared Content-Length over the cap is refused before the handler runs;
// bodies of unknown length are cut off while the handler reads them.
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > maxRequestSize {
				// The unread body would otherwise be drained by the server
				r.Close = true
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(apperrors.ErrRequestTooLarge.Code)
				json.NewEncoder(w).Encode(map[string]string{"message": apperrors.ErrRequestTooLarge.Message})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			next.ServeHTTP(w, r)
		})
	}
}
