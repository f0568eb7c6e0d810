package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"rollcall/internal/application/apperr"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"` // development only
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Warn("response_encode_failed")
	}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError maps err onto a status and body. Store failures are logged and
// only carry their cause in development.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, details ...string) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	body := errorBody{
		Message: apperr.MessageOf(err),
		Field:   apperr.FieldOf(err),
		Errors:  details,
	}

	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("internal_error")
	}
	if s.cfg.Development {
		if cause := errors.Unwrap(err); cause != nil {
			body.Error = cause.Error()
		} else if kind == apperr.KindStore {
			body.Error = err.Error()
		}
	}
	s.writeJSON(w, status, body)
}

// badRequest reports a malformed request that never reached the application layer.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, message string, cause error) {
	s.writeError(w, r, &apperr.Error{Kind: apperr.KindValidation, Message: message, Err: cause})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields
// and trailing data.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
