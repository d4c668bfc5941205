// Package api is the town CRUD surface: create, list, update, and delete
// towns over JSON HTTP. Session traffic lives on the WebSocket transport.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/neu-cs4530/team-project-6l/internal/registry"
)

type Server struct {
	registry *registry.Registry
	log      *zap.SugaredLogger
}

func NewServer(reg *registry.Registry, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{registry: reg, log: logger}
}

// Router returns the REST router. The caller mounts it next to the
// WebSocket handler.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/towns", s.handleCreateTown).Methods(http.MethodPost)
	r.HandleFunc("/towns", s.handleListTowns).Methods(http.MethodGet)
	r.HandleFunc("/towns/{townID}", s.handleUpdateTown).Methods(http.MethodPatch)
	r.HandleFunc("/towns/{townID}", s.handleDeleteTown).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	return r
}

type createTownRequest struct {
	FriendlyName     string `json:"friendly_name"`
	IsPubliclyListed bool   `json:"is_publicly_listed"`
}

type createTownResponse struct {
	TownID             string `json:"town_id"`
	TownUpdatePassword string `json:"town_update_password"`
}

func (s *Server) handleCreateTown(rw http.ResponseWriter, r *http.Request) {
	var req createTownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}
	id, password, err := s.registry.CreateTown(req.FriendlyName, req.IsPubliclyListed)
	if err != nil {
		s.log.Errorw("create town", "error", err)
		writeError(rw, http.StatusInternalServerError, "could not create town")
		return
	}
	writeJSON(rw, http.StatusOK, createTownResponse{TownID: id, TownUpdatePassword: password})
}

type listTownsResponse struct {
	Towns []registry.TownListing `json:"towns"`
}

func (s *Server) handleListTowns(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, listTownsResponse{Towns: s.registry.ListPublic()})
}

type updateTownRequest struct {
	TownUpdatePassword string  `json:"town_update_password"`
	FriendlyName       *string `json:"friendly_name,omitempty"`
	IsPubliclyListed   *bool   `json:"is_publicly_listed,omitempty"`
}

func (s *Server) handleUpdateTown(rw http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["townID"]
	var req updateTownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}
	err := s.registry.UpdateTown(townID, req.TownUpdatePassword, req.FriendlyName, req.IsPubliclyListed)
	if err != nil {
		writeRegistryError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]bool{"ok": true})
}

type deleteTownRequest struct {
	TownUpdatePassword string `json:"town_update_password"`
}

func (s *Server) handleDeleteTown(rw http.ResponseWriter, r *http.Request) {
	townID := mux.Vars(r)["townID"]
	var req deleteTownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.registry.DeleteTown(townID, req.TownUpdatePassword); err != nil {
		writeRegistryError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleHealthz(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("ok"))
}

func (s *Server) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(rw, "towns_total %d\n", s.registry.Len())
	for _, t := range s.registry.ListPublic() {
		fmt.Fprintf(rw, "town_occupancy{town=%q} %d\n", t.TownID, t.CurrentOccupancy)
	}
}

func writeRegistryError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeError(rw, http.StatusNotFound, "town not found")
	case errors.Is(err, registry.ErrAuth):
		writeError(rw, http.StatusUnauthorized, "bad town update password")
	default:
		writeError(rw, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, message string) {
	writeJSON(rw, status, map[string]string{"error": message})
}
