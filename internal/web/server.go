// Package web provides a simple review UI for comparison runs.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/db"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

// Server provides the web UI handlers and state.
type Server struct {
	orch  *pipeline.Orchestrator
	store *db.Store
}

// NewServer creates a new web server.
func NewServer(orch *pipeline.Orchestrator, store *db.Store) (*Server, error) {
	return &Server{orch: orch, store: store}, nil
}

//go:embed templates/*.html
var templatesFS embed.FS

// Routes returns the router for the web UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	mux.HandleFunc("POST /compare", s.handleCompare)
	return mux
}

type indexData struct {
	Runs     []db.RunSummary
	Averages map[string]float64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	averages, err := s.store.AverageScores(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tmpl.Execute(w, indexData{Runs: runs, Averages: averages}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type runData struct {
	ID     int64
	Result pipeline.RunResult
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	res, err := s.store.GetRunResult(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/run.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, runData{ID: id, Result: res}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := pipeline.Input{
		OriginalText:  r.FormValue("original"),
		AmendmentText: r.FormValue("amendment"),
	}
	name := r.FormValue("name")
	if name == "" {
		name = "web"
	}

	res, err := s.orch.Run(r.Context(), in)
	if err != nil {
		log.Error().Err(err).Msg("web comparison failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	id, err := s.store.SaveRun(r.Context(), name, res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/runs/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}
