// Package httpapi implements the HTTP front-end: the REST surface that
// accepts URL submissions, consults the cache and rate limiter, schedules
// the scrape pipeline in the background, and serves status and result
// lookups.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/agustinabelencapo0/scrapecoord/internal/cache"
	"github.com/agustinabelencapo0/scrapecoord/internal/config"
	"github.com/agustinabelencapo0/scrapecoord/internal/ratelimit"
	"github.com/agustinabelencapo0/scrapecoord/internal/scrapepipeline"
	"github.com/agustinabelencapo0/scrapecoord/internal/taskmanager"
)

// Server is the scrape coordination plane's HTTP front-end.
type Server struct {
	mux *http.ServeMux

	tasks    *taskmanager.Manager
	cache    *cache.ResultCache
	limiter  *ratelimit.DomainLimiter
	pipeline *scrapepipeline.Pipeline
	logger   *slog.Logger

	// inFlight bounds the number of concurrently running background
	// pipelines.
	inFlight chan struct{}

	// bgCtx is cancelled on Shutdown so in-flight background pipelines
	// observe cancellation and terminate their task as "Cancelled".
	bgCtx    context.Context
	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New builds a Server wiring together the task manager, cache, rate
// limiter, and scrape pipeline.
func New(tasks *taskmanager.Manager, c *cache.ResultCache, limiter *ratelimit.DomainLimiter, pipeline *scrapepipeline.Pipeline, maxInFlight int, logger *slog.Logger) *Server {
	bgCtx, bgCancel := context.WithCancel(context.Background())
	s := &Server{
		tasks:    tasks,
		cache:    c,
		limiter:  limiter,
		pipeline: pipeline,
		logger:   logger.With("component", "http_frontend"),
		inFlight: make(chan struct{}, maxInFlight),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /scrape", s.handleScrape)
	s.mux.HandleFunc("GET /scrape", s.handleScrape)
	s.mux.HandleFunc("GET /status/{task_id}", s.handleStatus)
	s.mux.HandleFunc("GET /result/{task_id}", s.handleResult)
	return s
}

// Shutdown cancels every in-flight background pipeline and waits (up to
// ctx's deadline) for them to observe cancellation and terminate their
// task record.
func (s *Server) Shutdown(ctx context.Context) error {
	s.bgCancel()

	done := make(chan struct{})
	go func() {
		s.bgWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := extractURL(w, r)
	if !ok {
		return
	}

	if err := config.ValidateURL(rawURL); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "URL inválida"})
		return
	}

	domain := scrapepipeline.Domain(rawURL)
	if !s.limiter.Allow(domain) {
		jsonResponse(w, http.StatusTooManyRequests, map[string]string{
			"status": "error",
			"error":  "Rate limit excedido para el dominio",
		})
		return
	}

	record := s.tasks.Create(rawURL)

	if cached, hit := s.cache.Get(rawURL); hit {
		_ = s.tasks.SetResult(record.TaskID, cached)
		jsonResponse(w, http.StatusOK, map[string]any{
			"task_id": record.TaskID,
			"status":  "completed",
			"cached":  true,
		})
		return
	}

	s.schedule(record.TaskID, rawURL)
	jsonResponse(w, http.StatusAccepted, map[string]any{
		"task_id": record.TaskID,
		"status":  string(record.Status),
	})
}

// schedule runs the pipeline in the background, bounded by inFlight and
// tracked in bgWG until completion so Shutdown can wait for it.
func (s *Server) schedule(taskID, rawURL string) {
	select {
	case s.inFlight <- struct{}{}:
	default:
		// Pool is saturated; wait for a free slot rather than drop the
		// task, and log so operators can see backpressure building.
		s.logger.Warn("in-flight pipeline semaphore saturated", "task_id", taskID)
		s.inFlight <- struct{}{}
	}

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		defer func() { <-s.inFlight }()
		s.pipeline.Run(s.bgCtx, taskID, rawURL)
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	record, err := s.tasks.Get(taskID)
	if err != nil {
		jsonResponse(w, http.StatusNotFound, map[string]string{"status": "error", "error": "task_id inexistente"})
		return
	}
	jsonResponse(w, http.StatusOK, record.AsStatusPayload())
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task_id")
	record, err := s.tasks.Get(taskID)
	if err != nil {
		jsonResponse(w, http.StatusNotFound, map[string]string{"status": "error", "error": "task_id inexistente"})
		return
	}

	switch record.Status {
	case taskmanager.StatusFailed:
		jsonResponse(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  record.Error,
		})
	case taskmanager.StatusCompleted:
		payload := make(map[string]any, len(record.Result)+1)
		for k, v := range record.Result {
			payload[k] = v
		}
		payload["task_id"] = taskID
		jsonResponse(w, http.StatusOK, payload)
	default:
		jsonResponse(w, http.StatusAccepted, map[string]string{"status": "pending"})
	}
}

// extractURL reads the url parameter from a GET query string or a POST
// JSON body, writing the appropriate 400 response and returning ok=false
// on any validation failure.
func extractURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var rawURL string

	if r.Method == http.MethodGet {
		rawURL = r.URL.Query().Get("url")
	} else {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			jsonResponse(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "Body inválido"})
			return "", false
		}
		rawURL = body.URL
	}

	if rawURL == "" {
		jsonResponse(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "Missing url param"})
		return "", false
	}
	return rawURL, true
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
