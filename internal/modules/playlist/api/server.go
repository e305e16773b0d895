package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/pyrumble/RumbleBot/internal/modules/playlist/domain"
)

// MasterKeyHeader carries the shared secret on mutating requests.
const MasterKeyHeader = "master-key"

// Server exposes the playlist store over an internal HTTP surface. It is
// meant for a trusted network only; mutating routes additionally require the
// shared master key.
type Server struct {
	store     domain.Store
	masterKey string
	limiter   *rate.Limiter
	http      *http.Server
}

// NewServer creates a new Server.
func NewServer(store domain.Store, masterKey, listenAddr string) *Server {
	s := &Server{
		store:     store,
		masterKey: masterKey,
		limiter:   rate.NewLimiter(rate.Limit(50), 100),
	}

	router := mux.NewRouter()
	router.Use(s.rateLimitMiddleware)

	router.HandleFunc("/playlist/", s.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/playlist/{id:[0-9]+}", s.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/playlist/{id:[0-9]+}", s.handleEdit).Methods(http.MethodPatch)
	router.HandleFunc("/playlist/{id:[0-9]+}", s.handleDelete).Methods(http.MethodDelete)
	router.HandleFunc("/playlist/{id:[0-9]+}/tracks", s.handleListTracks).Methods(http.MethodGet)
	router.HandleFunc("/playlist/{id:[0-9]+}/track", s.handleAppendTrack).Methods(http.MethodPost)
	router.HandleFunc("/playlist/{id:[0-9]+}/tracks", s.handleAppendTracks).Methods(http.MethodPost)
	router.HandleFunc("/playlist/{id:[0-9]+}/tracks", s.handleClearTracks).Methods(http.MethodDelete)
	router.HandleFunc("/playlists/{user_id:[0-9]+}", s.handleList).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("playlist API listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("playlist API server failed", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireMasterKey rejects the request unless the shared secret matches.
// A mismatch is logged as a security event.
func (s *Server) requireMasterKey(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get(MasterKeyHeader) != s.masterKey {
		slog.Warn("playlist API request with missing or invalid master key",
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)
		writeError(w, http.StatusForbidden, "invalid master key")
		return false
	}
	return true
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

type createRequest struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !s.requireMasterKey(w, r) {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}

	id, err := s.store.CreatePlaylist(r.Context(), req.UserID, req.Name, req.Description)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"pl_id": id})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)

	playlist, err := s.store.GetPlaylist(r.Context(), pathID(r), ownerID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":            playlist.ID,
		"user_id":       playlist.OwnerID,
		"name":          playlist.Name,
		"description":   playlist.Description,
		"thumbnail_url": playlist.ThumbnailURL,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := strconv.ParseInt(mux.Vars(r)["user_id"], 10, 64)

	playlists, err := s.store.ListPlaylists(r.Context(), ownerID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	result := make([]map[string]any, len(playlists))
	for i, p := range playlists {
		result[i] = map[string]any{
			"id":            p.ID,
			"user_id":       p.OwnerID,
			"name":          p.Name,
			"description":   p.Description,
			"thumbnail_url": p.ThumbnailURL,
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// handleListTracks returns tracks as (id, payload) tuples in insertion order.
func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	playlistID := pathID(r)

	if _, err := s.store.GetPlaylist(r.Context(), playlistID, 0); err != nil {
		writeStoreError(w, err)
		return
	}

	tracks, err := s.store.ListTracks(r.Context(), playlistID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	result := make([][2]any, len(tracks))
	for i, t := range tracks {
		result[i] = [2]any{t.ID, map[string]any{
			"plId":   t.PlaylistID,
			"userId": t.OwnerID,
			"track":  t.Encoded,
		}}
	}
	writeJSON(w, http.StatusOK, result)
}

type appendTrackRequest struct {
	UserID int64  `json:"user_id"`
	Track  string `json:"track"`
}

func (s *Server) handleAppendTrack(w http.ResponseWriter, r *http.Request) {
	if !s.requireMasterKey(w, r) {
		return
	}

	var req appendTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Track == "" {
		writeError(w, http.StatusBadRequest, "track is required")
		return
	}

	if err := s.store.AppendTrack(r.Context(), pathID(r), req.UserID, req.Track); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": true})
}

type appendTracksRequest struct {
	UserID int64    `json:"user_id"`
	Tracks []string `json:"tracks"`
}

func (s *Server) handleAppendTracks(w http.ResponseWriter, r *http.Request) {
	if !s.requireMasterKey(w, r) {
		return
	}

	var req appendTracksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "tracks are required")
		return
	}

	if err := s.store.AppendTracks(r.Context(), pathID(r), req.UserID, req.Tracks); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": len(req.Tracks)})
}

type editRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if !s.requireMasterKey(w, r) {
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	edited, err := s.store.EditPlaylist(r.Context(), pathID(r), domain.EditFields{
		Name:         req.Name,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"edited": edited})
}

type ownerRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.requireMasterKey(w, r) {
		return
	}

	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.DeletePlaylist(r.Context(), pathID(r), req.UserID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleClearTracks(w http.ResponseWriter, r *http.Request) {
	if !s.requireMasterKey(w, r) {
		return
	}

	var req ownerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.store.ClearTracks(r.Context(), pathID(r), req.UserID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "playlist not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "playlist does not belong to this user")
	default:
		slog.Error("playlist store error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
