// internal/router/respond.go
package router

import (
	"encoding/json"
	"net/http"

	"stapi/pkg/middleware"
	"stapi/pkg/result"
)

// errorBody is the wire shape of every failure response.
type errorBody struct {
	Code        result.Kind `json:"code"`
	Description string      `json:"description"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind result.Kind) int {
	switch kind {
	case result.KindNotFound:
		return http.StatusNotFound
	case result.KindInvalidPayload:
		return http.StatusBadRequest
	case result.KindUnsupported:
		return http.StatusUnprocessableEntity
	case result.KindConflict:
		return http.StatusConflict
	case result.KindBackendUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// failure translates an error from the backend boundary into a response.
// Declared failures map deterministically; anything else is a defect, logged
// with the request correlation id and surfaced without internal detail.
func (rt *Router) failure(w http.ResponseWriter, r *http.Request, err error) {
	f, ok := err.(result.Failure)
	if !ok || f.Kind == result.KindInternalDefect {
		reqID, _ := r.Context().Value(middleware.CtxKeyRequestID).(string)
		rt.log.Errorw("backend defect", "err", err, "path", r.URL.Path, "request_id", reqID)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:        result.KindInternalDefect,
			Description: "internal error, correlation id " + reqID,
		})
		return
	}
	writeJSON(w, statusFor(f.Kind), errorBody{Code: f.Kind, Description: f.Detail})
}

// decodeBody reads a JSON request body; malformed input is a client error.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return result.InvalidPayload("malformed request body: %s", err.Error())
	}
	return nil
}
