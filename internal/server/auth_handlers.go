package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shareforge/shareforge/internal/auth"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.authManager.CreateUser(r.Context(), req.Username, req.Email, req.Password, false)
	if err != nil {
		if err == auth.ErrUsernameTaken {
			s.writeError(w, err.Error(), http.StatusConflict)
			return
		}
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSONStatus(w, http.StatusCreated, user)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := s.authManager.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, auth.UserFrom(r.Context()))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user := auth.UserFrom(r.Context())
	if err := s.authManager.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		if err == auth.ErrInvalidCredentials {
			s.writeError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]string{"status": "changed"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.authManager.ListUsers(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.authManager.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"status": "deleted"})
}
