package server

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/shareforge/shareforge/internal/auth"
)

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/signup", s.handleSignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", s.handleSignIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", auth.RequireUser(s.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/auth/password", auth.RequireUser(s.handleChangePassword)).Methods(http.MethodPost)
	api.HandleFunc("/auth/users", auth.RequireAdmin(s.handleListUsers)).Methods(http.MethodGet)
	api.HandleFunc("/auth/users/{id}", auth.RequireAdmin(s.handleDeleteUser)).Methods(http.MethodDelete)

	// Shares. The "all" route must register before the {id} route so mux
	// does not swallow it as an identifier.
	api.HandleFunc("/shares/all", auth.RequireAdmin(s.handleListAllShares)).Methods(http.MethodGet)
	api.HandleFunc("/shares", auth.RequireUser(s.handleListMyShares)).Methods(http.MethodGet)
	api.HandleFunc("/shares", s.handleCreateShare).Methods(http.MethodPost)
	api.HandleFunc("/shares/{id}", s.handleGetShare).Methods(http.MethodGet)
	api.HandleFunc("/shares/{id}", s.handleDeleteShare).Methods(http.MethodDelete)
	api.HandleFunc("/shares/{id}/available", s.handleShareIDAvailable).Methods(http.MethodGet)
	api.HandleFunc("/shares/{id}/complete", s.handleCompleteShare).Methods(http.MethodPost)
	api.HandleFunc("/shares/{id}/revert-complete", s.handleRevertComplete).Methods(http.MethodPost)
	api.HandleFunc("/shares/{id}/token", s.handleShareToken).Methods(http.MethodPost)

	// Files
	api.HandleFunc("/shares/{id}/files", s.handleUploadFile).Methods(http.MethodPost)
	api.HandleFunc("/shares/{id}/files", s.handleListFiles).Methods(http.MethodGet)
	api.HandleFunc("/shares/{id}/files/{fileId}", s.handleDownloadFile).Methods(http.MethodGet)
	api.HandleFunc("/shares/{id}/zip", s.handleDownloadZip).Methods(http.MethodGet)

	// Reverse shares
	api.HandleFunc("/reverse-shares", auth.RequireUser(s.handleCreateReverseShare)).Methods(http.MethodPost)
	api.HandleFunc("/reverse-shares", auth.RequireUser(s.handleListReverseShares)).Methods(http.MethodGet)
	api.HandleFunc("/reverse-shares/{token}", s.handleGetReverseShare).Methods(http.MethodGet)
	api.HandleFunc("/reverse-shares/{token}", auth.RequireUser(s.handleDeleteReverseShare)).Methods(http.MethodDelete)

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.config.Metrics.Enable {
		router.Path(s.config.Metrics.Path).Handler(s.metrics.Handler())
	}

	var handler http.Handler = router
	handler = s.authManager.Middleware(handler)
	handler = logging()(handler)
	handler = handlers.RecoveryHandler()(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"status": "healthy",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}
