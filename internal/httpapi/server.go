package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"answerd/internal/engine"
	"answerd/internal/prompt"
	"answerd/pkg/types"
)

// Service defines the methods required by the HTTP API layer. The engine
// satisfies it; tests substitute a fake.
type Service interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Ready() bool
	Status() types.StatusResponse
}

// NewMux builds the router: POST /api plus health, status and metrics.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Post("/api", answerHandler(svc))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// answerHandler implements the single inference route.
//
// @Summary      Answer a question from supplied facts
// @Description  Formats the question and context into an instruction prompt, runs the loaded model once, and returns the first generated candidate.
// @Accept       json
// @Produce      json
// @Param        request body types.AnswerRequest true "question and supporting context"
// @Success      200 {object} types.AnswerResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      415 {object} types.ErrorResponse
// @Failure      429 {object} types.ErrorResponse
// @Failure      500 {object} types.ErrorResponse
// @Failure      503 {object} types.ErrorResponse
// @Router       /api [post]
func answerHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.AnswerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		// Presence checks only; empty strings are valid input.
		if req.InputPrompt == nil {
			writeJSONError(w, http.StatusBadRequest, "input_prompt is required")
			return
		}
		if req.Context == nil {
			writeJSONError(w, http.StatusBadRequest, "context is required")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelInfo {
			logAnswerStart(r)
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if sec := answerTimeout; sec > 0 {
			var cancelT context.CancelFunc
			ctx, cancelT = context.WithTimeout(ctx, time.Duration(sec)*time.Second)
			defer cancelT()
		}

		full := prompt.Build(*req.InputPrompt, *req.Context)
		text, err := svc.Generate(ctx, full)
		if err != nil {
			// If context was canceled (client disconnect or shutdown), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("queue_full")
			}
			writeJSONError(w, status, err.Error())
			if lvl >= LevelInfo {
				logAnswerEnd(r, status, start, err)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.AnswerResponse{Response: text}); err != nil && lvl >= LevelError {
			logAnswerEnd(r, http.StatusOK, start, err)
			return
		}
		if lvl >= LevelInfo {
			logAnswerEnd(r, http.StatusOK, start, nil)
		}
	}
}

// statusForError maps engine errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case engine.IsTooBusy(err):
		return http.StatusTooManyRequests
	case engine.IsUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
