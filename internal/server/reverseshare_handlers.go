package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shareforge/shareforge/internal/auth"
	"github.com/shareforge/shareforge/internal/reverseshare"
)

func (s *Server) handleCreateReverseShare(w http.ResponseWriter, r *http.Request) {
	var req reverseshare.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user := auth.UserFrom(r.Context())
	created, err := s.reverseShares.Create(r.Context(), &req, user.ID, user.Email)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSONStatus(w, http.StatusCreated, created)
}

func (s *Server) handleListReverseShares(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	invitations, err := s.reverseShares.ListByCreator(r.Context(), user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, invitations)
}

// handleGetReverseShare serves the public upload page: it tells the invited
// party the policy of the invitation but not who else used it
func (s *Server) handleGetReverseShare(w http.ResponseWriter, r *http.Request) {
	invitation, err := s.reverseShares.GetUsable(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, map[string]interface{}{
		"shareExpiration": invitation.ShareExpiration,
		"maxShareSize":    invitation.MaxShareSize,
		"remainingUses":   invitation.RemainingUses,
	})
}

func (s *Server) handleDeleteReverseShare(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	invitation, err := s.reverseShares.Get(r.Context(), token)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	user := auth.UserFrom(r.Context())
	if invitation.CreatorID != user.ID && !user.IsAdmin {
		s.writeError(w, "not your reverse share", http.StatusForbidden)
		return
	}

	if err := s.reverseShares.Delete(r.Context(), token); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"status": "deleted"})
}
