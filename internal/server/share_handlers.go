package server

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/shareforge/shareforge/internal/auth"
	"github.com/shareforge/shareforge/internal/share"
)

// ShareResponse is the public view of a share. The password hash never
// leaves the server; clients only learn whether a password is required.
type ShareResponse struct {
	*share.Share
	HasPassword bool  `json:"hasPassword"`
	Size        int64 `json:"size,omitempty"`
}

func (s *Server) shareResponse(r *http.Request, sh *share.Share) *ShareResponse {
	resp := &ShareResponse{Share: sh, HasPassword: sh.HasPassword()}
	if sh.Type == share.TypeFile {
		if size, err := s.fileManager.TotalSize(r.Context(), sh.ID); err == nil {
			resp.Size = size
		}
	}
	return resp
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req share.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var creatorID string
	if user := auth.UserFrom(r.Context()); user != nil {
		creatorID = user.ID
	}

	created, err := s.shareManager.Create(r.Context(), &req, creatorID, reverseToken(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.metrics.SharesCreated.WithLabelValues(string(created.Type)).Inc()
	s.writeJSONStatus(w, http.StatusCreated, s.shareResponse(r, created))
}

func (s *Server) handleGetShare(w http.ResponseWriter, r *http.Request) {
	sh, err := s.shareManager.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !s.mayAccess(r, sh) {
		s.writeError(w, "share access token required", http.StatusUnauthorized)
		return
	}

	s.writeJSON(w, s.shareResponse(r, sh))
}

func (s *Server) handleShareIDAvailable(w http.ResponseWriter, r *http.Request) {
	available, err := s.shareManager.IsIDAvailable(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, map[string]bool{"available": available})
}

func (s *Server) handleShareToken(w http.ResponseWriter, r *http.Request) {
	shareID := mux.Vars(r)["id"]

	var req struct {
		Password string `json:"password"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	token, err := s.shareManager.AuthorizeAccess(r.Context(), shareID, req.Password)
	if err != nil {
		switch err {
		case share.ErrPasswordRequired, share.ErrInvalidPassword:
			s.metrics.ViewsRejected.WithLabelValues("password").Inc()
		case share.ErrViewQuotaExceeded:
			s.metrics.ViewsRejected.WithLabelValues("quota").Inc()
		}
		s.writeDomainError(w, err)
		return
	}

	s.metrics.ShareViews.Inc()
	s.writeJSON(w, map[string]string{"token": token})
}

func (s *Server) handleCompleteShare(w http.ResponseWriter, r *http.Request) {
	shareID := mux.Vars(r)["id"]

	completed, err := s.shareManager.Complete(r.Context(), shareID, reverseToken(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if s.packager != nil {
		if count, err := s.fileManager.Count(r.Context(), shareID); err == nil && count > 1 {
			s.metrics.ArchivesBuilt.Inc()
		}
	}

	s.writeJSON(w, s.shareResponse(r, completed))
}

func (s *Server) handleRevertComplete(w http.ResponseWriter, r *http.Request) {
	shareID := mux.Vars(r)["id"]

	if !s.mayManage(r, shareID, w) {
		return
	}

	if err := s.shareManager.RevertComplete(r.Context(), shareID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"status": "reverted"})
}

func (s *Server) handleDeleteShare(w http.ResponseWriter, r *http.Request) {
	shareID := mux.Vars(r)["id"]

	if !s.mayManage(r, shareID, w) {
		return
	}

	user := auth.UserFrom(r.Context())
	if err := s.shareManager.Remove(r.Context(), shareID, user != nil && user.IsAdmin); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.metrics.SharesRemoved.Inc()
	s.writeJSON(w, map[string]string{"status": "deleted"})
}

func (s *Server) handleListMyShares(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	shares, err := s.shareManager.ListByCreator(r.Context(), user.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSON(w, s.shareResponses(r, shares))
}

func (s *Server) handleListAllShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.shareManager.ListAll(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Never-expiring shares sort first, then latest expiration first
	sort.SliceStable(shares, func(i, j int) bool {
		a, b := shares[i].ExpiresAt, shares[j].ExpiresAt
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.After(*b)
		}
	})

	s.writeJSON(w, s.shareResponses(r, shares))
}

func (s *Server) shareResponses(r *http.Request, shares []*share.Share) []*ShareResponse {
	responses := make([]*ShareResponse, 0, len(shares))
	for _, sh := range shares {
		responses = append(responses, s.shareResponse(r, sh))
	}
	return responses
}

// mayAccess reports whether the request may read a restricted share's
// content: its creator and admins always may, everyone else needs a valid
// access token from the security gate
func (s *Server) mayAccess(r *http.Request, sh *share.Share) bool {
	if !sh.Restricted() {
		return true
	}
	if user := auth.UserFrom(r.Context()); user != nil {
		if user.IsAdmin || (sh.CreatorID != "" && user.ID == sh.CreatorID) {
			return true
		}
	}
	return s.shareManager.VerifyAccessToken(r.Context(), sh.ID, accessToken(r))
}

// mayManage authorizes mutations of a share: the creator or an admin for
// owned shares, anyone holding the id for anonymous ones. Writes the error
// response itself when it returns false.
func (s *Server) mayManage(r *http.Request, shareID string, w http.ResponseWriter) bool {
	sh, err := s.shareStore.Get(r.Context(), shareID)
	if err != nil {
		s.writeDomainError(w, err)
		return false
	}
	if sh.CreatorID == "" {
		return true
	}

	user := auth.UserFrom(r.Context())
	if user == nil {
		s.writeError(w, "authentication required", http.StatusUnauthorized)
		return false
	}
	if user.ID != sh.CreatorID && !user.IsAdmin {
		s.writeError(w, "not your share", http.StatusForbidden)
		return false
	}
	return true
}

func reverseToken(r *http.Request) string {
	if token := r.Header.Get("X-Reverse-Share-Token"); token != "" {
		return token
	}
	return r.URL.Query().Get("reverseShareToken")
}

func accessToken(r *http.Request) string {
	if token := r.Header.Get("X-Share-Token"); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}
