// pkg/middleware/recover.go
package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// Recover catches panics escaping a handler (backend defects, not declared
// failures), logs them with the request correlation id, and answers with the
// generic internal_defect body. No internal detail reaches the caller.
func Recover(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					reqID, _ := r.Context().Value(CtxKeyRequestID).(string)
					log.Errorw("panic", "err", rec, "request_id", reqID, "stack", string(debug.Stack()))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":        "internal_defect",
						"description": "internal error, correlation id " + reqID,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
