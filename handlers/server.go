package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/jalad-shrimali/bureaux-filter/bureau"
	"github.com/jalad-shrimali/bureaux-filter/store"
)

const defaultMaxUpload = 10 << 20

// SnapshotStore persists uploaded data sets. *store.Store satisfies it.
type SnapshotStore interface {
	Save(ctx context.Context, ds *bureau.Dataset) error
	Datasets(ctx context.Context) ([]store.Snapshot, error)
	Load(ctx context.Context, id string) (*bureau.Dataset, error)
}

type Options struct {
	MaxUploadBytes int64
	DefaultMode    bureau.MatchMode
	Snapshots      SnapshotStore // nil disables snapshots
}

// Server owns the single loaded data set and the single filter state, and
// serves them over HTTP.
type Server struct {
	mux         *http.ServeMux
	maxUpload   int64
	defaultMode bureau.MatchMode
	snaps       SnapshotStore

	mu    sync.RWMutex
	data  *bureau.Dataset
	state bureau.FilterState
}

func NewServer(opts Options) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		maxUpload:   opts.MaxUploadBytes,
		defaultMode: opts.DefaultMode,
		snaps:       opts.Snapshots,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUpload
	}
	if s.defaultMode != bureau.Exact {
		s.defaultMode = bureau.Subset
	}
	s.state = s.freshState()
	s.routes()
	return s
}

func (s *Server) freshState() bureau.FilterState {
	st := bureau.NewFilterState()
	st.Mode = s.defaultMode
	return st
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("GET /records", s.handleRecords)
	s.mux.HandleFunc("GET /export.xlsx", s.handleExport)

	s.mux.HandleFunc("POST /filters/cities/toggle", s.handleToggle(citySel))
	s.mux.HandleFunc("POST /filters/categories/toggle", s.handleToggle(categorySel))
	s.mux.HandleFunc("DELETE /filters/cities/{value}", s.handleRemove(citySel))
	s.mux.HandleFunc("DELETE /filters/categories/{value}", s.handleRemove(categorySel))
	s.mux.HandleFunc("PUT /filters/mode", s.handleMode)
	s.mux.HandleFunc("DELETE /filters", s.handleReset)

	s.mux.HandleFunc("GET /snapshots", s.handleSnapshots)
	s.mux.HandleFunc("POST /snapshots/{id}/load", s.handleLoadSnapshot)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	s.mux.ServeHTTP(w, r)
}

// replace installs ds as the current data set. Selections survive.
func (s *Server) replace(ds *bureau.Dataset) viewResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = ds
	return s.viewLocked(s.state)
}

func (s *Server) viewLocked(st bureau.FilterState) viewResponse {
	return newViewResponse(s.data, s.data.View(st))
}

/* ──────────── helpers ──────────── */

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
