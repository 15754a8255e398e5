package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dvloznov/finance-parser/internal/api/middleware"
	"github.com/dvloznov/finance-parser/internal/domain"
	"github.com/dvloznov/finance-parser/internal/jobs"
	"github.com/dvloznov/finance-parser/internal/logger"
	"github.com/dvloznov/finance-parser/internal/source"
)

// MaxRequestBytes caps request bodies. Document text is sent inline.
const MaxRequestBytes = 10 << 20

// ParseRequest is the body of POST /api/parse and POST /api/jobs.
type ParseRequest struct {
	Text      string `json:"text,omitempty"`
	SourceURI string `json:"source_uri,omitempty"`
	DocType   string `json:"doc_type"`
}

func (req ParseRequest) job() *jobs.ParseDocumentJob {
	return &jobs.ParseDocumentJob{
		Text:      req.Text,
		SourceURI: req.SourceURI,
		DocType:   domain.DocType(req.DocType),
	}
}

func decodeParseRequest(w http.ResponseWriter, r *http.Request) (*jobs.ParseDocumentJob, bool) {
	var req ParseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	job := req.job()
	if err := job.Validate(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	// Only bucket objects may be named over HTTP.
	if job.SourceURI != "" {
		if err := source.CheckRemoteRef(job.SourceURI); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "source_uri must be a gs:// URI or a bucket object name")
			return nil, false
		}
	}
	return job, true
}

// ParseHandler runs documents through the parser synchronously.
type ParseHandler struct {
	run jobs.JobHandler
}

// NewParseHandler creates a new parse handler. loader may be nil, in which
// case requests with source_uri fail.
func NewParseHandler(parser jobs.DocumentParser, loader jobs.DocumentLoader) *ParseHandler {
	return &ParseHandler{run: jobs.NewParseHandler(parser, loader)}
}

// Parse handles POST /api/parse
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	job, ok := decodeParseRequest(w, r)
	if !ok {
		return
	}

	log := logger.FromContext(r.Context()).With().Str("doc_type", string(job.DocType)).Logger()
	if err := h.run(r.Context(), job); err != nil {
		log.Error().Err(err).Str("source_uri", job.SourceURI).Msg("Failed to parse document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse document")
		return
	}

	if res := job.Result; res != nil {
		log.Info().
			Int("transaction_count", len(res.Transactions)).
			Float64("confidence", res.Confidence).
			Msg("Document parsed")
	}
	middleware.WriteJSON(w, http.StatusOK, job.Result)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
	}
}

// CreateJob handles POST /api/jobs
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	job, ok := decodeParseRequest(w, r)
	if !ok {
		return
	}

	log := logger.FromContext(r.Context())
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue parsing job")
		if errors.Is(err, jobs.ErrQueueClosed) {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Job queue is shutting down")
			return
		}
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parsing job")
		return
	}

	log.Info().Str("job_id", job.JobID).Str("doc_type", string(job.DocType)).Msg("Parsing job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status:  jobs.JobStatus(query.Get("status")),
		DocType: domain.DocType(query.Get("doc_type")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
