package main

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cosmosdeploy/internal/journal"
)

// Server serves a read-only view of the deployment state dir: run history
// from the journal plus on-demand chain verification.
type Server struct {
	stateDir string
}

// RunSummary is one deployment run as reported by /runs.
type RunSummary struct {
	RunID   string `json:"runId"`
	Started string `json:"started"`
	Stages  int    `json:"stages"`
	Status  string `json:"status"`
}

func newServer(stateDir string) *Server {
	return &Server{stateDir: stateDir}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)
	r.Get("/journal/verify", s.handleVerifyJournal)
	return r
}

// openJournal reopens the journal per request so the server always reflects
// the file on disk, including runs recorded while it is up.
func (s *Server) openJournal() (*journal.Journal, error) {
	return journal.Open(filepath.Join(s.stateDir, "journal.jsonl"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// GET /runs -> summaries of every recorded run, oldest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	jnl, err := s.openJournal()
	if err != nil {
		http.Error(w, "cannot open journal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]*RunSummary, 0)
	byRun := make(map[string]*RunSummary)
	for _, rec := range jnl.Records() {
		sum, ok := byRun[rec.RunID]
		if !ok {
			sum = &RunSummary{RunID: rec.RunID, Started: rec.Timestamp, Status: journal.StatusSuccess}
			byRun[rec.RunID] = sum
			summaries = append(summaries, sum)
		}
		sum.Stages++
		if rec.Status == journal.StatusFailed {
			sum.Status = journal.StatusFailed
		}
	}
	writeJSON(w, summaries)
}

// GET /runs/{id} -> the full stage records of one run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	jnl, err := s.openJournal()
	if err != nil {
		http.Error(w, "cannot open journal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	records := make([]*journal.Record, 0)
	for _, rec := range jnl.Records() {
		if rec.RunID == id {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, records)
}

// GET /journal/verify -> recheck the whole hash chain
func (s *Server) handleVerifyJournal(w http.ResponseWriter, r *http.Request) {
	jnl, err := s.openJournal()
	if err != nil {
		http.Error(w, "cannot open journal: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := jnl.Verify(); err != nil {
		http.Error(w, "journal verification failed: "+err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
