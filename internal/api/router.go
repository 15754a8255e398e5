// Package api assembles the HTTP surface of the parser service.
package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-parser/internal/api/handlers"
	"github.com/dvloznov/finance-parser/internal/api/middleware"
	"github.com/dvloznov/finance-parser/internal/jobs"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Parser    jobs.DocumentParser
	Loader    jobs.DocumentLoader
	Publisher jobs.Publisher
	Store     jobs.JobStore
	Log       zerolog.Logger
}

// NewRouter registers all routes behind the standard middleware stack.
func NewRouter(d Deps) http.Handler {
	parseHandler := handlers.NewParseHandler(d.Parser, d.Loader)
	jobsHandler := handlers.NewJobsHandler(d.Publisher, d.Store)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /api/parse", parseHandler.Parse)
	mux.HandleFunc("POST /api/jobs", jobsHandler.CreateJob)
	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(d.Log),
		middleware.Recovery(d.Log),
		middleware.CORS,
	)
}
