package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/shareforge/shareforge/internal/auth"
	"github.com/shareforge/shareforge/internal/file"
	"github.com/shareforge/shareforge/internal/reverseshare"
	"github.com/shareforge/shareforge/internal/share"
)

// APIResponse is the envelope of every JSON reply
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	s.writeJSONStatus(w, http.StatusOK, data)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func (s *Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
	logrus.WithField("error", message).WithField("status", statusCode).Debug("API error")
}

// writeDomainError maps the error taxonomy of the managers onto HTTP codes
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var removed *share.RemovedError
	if errors.As(err, &removed) {
		s.writeError(w, removed.Error(), http.StatusGone)
		return
	}

	switch {
	case errors.Is(err, share.ErrNotFound),
		errors.Is(err, file.ErrNotFound),
		errors.Is(err, reverseshare.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		s.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, share.ErrIDTaken),
		errors.Is(err, share.ErrAlreadyCompleted):
		s.writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, share.ErrPasswordRequired),
		errors.Is(err, share.ErrInvalidPassword),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidSession):
		s.writeError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, share.ErrForbidden),
		errors.Is(err, share.ErrViewQuotaExceeded),
		errors.Is(err, reverseshare.ErrExhausted):
		s.writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, share.ErrInvalidID),
		errors.Is(err, share.ErrMissingVariantField),
		errors.Is(err, share.ErrExpirationTooLong),
		errors.Is(err, share.ErrEmptyShare):
		s.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		logrus.WithError(err).Error("Internal error")
		s.writeError(w, "internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, into interface{}) error {
	return json.NewDecoder(r.Body).Decode(into)
}
