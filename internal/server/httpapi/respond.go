package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	headerContentType     = "Content-Type"
	headerWWWAuthenticate = "WWW-Authenticate"
	contentTypeJSON       = "application/json; charset=utf-8"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, e *HTTPError) {
	if e.Code == http.StatusUnauthorized {
		w.Header().Set(headerWWWAuthenticate, common.BearerScheme)
	}
	respondJSON(w, e.Code, errorBody{Detail: e.Message, Errors: e.Fields})
}

// appHandler is a handler that reports failure by returning an error.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// makeHandler adapts an appHandler to http.HandlerFunc, mapping the returned
// error onto a JSON error response. Client errors are logged at warn, server
// errors at error with their cause.
func makeHandler(logger logging.Logger, h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		writeError(logger, w, r, err)
	}
}

func writeError(logger logging.Logger, w http.ResponseWriter, r *http.Request, err error) {
	e := toHTTPError(err)

	args := []any{
		"code", e.Code,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if e.Err != nil {
		args = append(args, "error", e.Err)
	}
	if e.Code >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", args...)
	} else {
		logger.Warn(r.Context(), "request rejected", args...)
	}

	respondError(w, e)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return newHTTPError(http.StatusUnprocessableEntity, "Invalid request body", errors.Join(common.ErrorValidation, err))
	}
	return nil
}
