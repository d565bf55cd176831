package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"answerd/pkg/types"
)

// State represents the lifecycle state of the engine.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxTokens     = 512
	defaultTemperature   = 0.7
	defaultTopP          = 0.9
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
)

// Config encapsulates all tunables for Engine construction.
type Config struct {
	// Checkpoint identifies the model: a path for the local backend, a model
	// name for the server backend. Recorded in /status as given.
	Checkpoint string
	// Generation parameters applied to every request.
	MaxTokens   int
	Temperature float32
	TopP        float32
	// Admission queue sizing.
	MaxQueueDepth int
	MaxWait       time.Duration
	// Optional structured logger; a disabled logger is used when nil.
	Logger *zerolog.Logger
}

// Engine wraps a Backend with lifecycle state, admission control and
// counters. All exported methods are safe for concurrent use; generations
// themselves are serialized because the backend is not assumed reentrant.
type Engine struct {
	mu       sync.RWMutex
	state    State
	lastErr  string
	requests uint64

	backend   Backend
	cfg       Config
	startTime time.Time
	log       zerolog.Logger

	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots (includes the in-flight one)
}

// New constructs an Engine around backend, applying defaults for unset
// Config fields. The checkpoint is not touched until Warmup.
func New(backend Backend, cfg Config) *Engine {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.TopP <= 0 {
		cfg.TopP = defaultTopP
	}
	if cfg.MaxQueueDepth <= 0 {
		cfg.MaxQueueDepth = defaultMaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Engine{
		state:     StateLoading,
		backend:   backend,
		cfg:       cfg,
		startTime: time.Now(),
		log:       log,
		genCh:     make(chan struct{}, 1),
		queueCh:   make(chan struct{}, cfg.MaxQueueDepth),
	}
}

// Warmup loads the checkpoint. Called once at startup, before serving.
func (e *Engine) Warmup(ctx context.Context) error {
	start := time.Now()
	e.log.Info().Str("checkpoint", e.cfg.Checkpoint).Str("backend", e.backend.Kind()).Msg("loading checkpoint")
	if err := e.backend.Load(ctx); err != nil {
		e.mu.Lock()
		e.state = StateError
		e.lastErr = err.Error()
		e.mu.Unlock()
		return err
	}
	e.mu.Lock()
	e.state = StateReady
	e.mu.Unlock()
	e.log.Info().Dur("dur", time.Since(start)).Msg("checkpoint ready")
	return nil
}

// Ready reports whether the engine finished warmup successfully.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == StateReady
}

// Generate runs one prompt through the backend and returns the first
// candidate's text. Requests are admitted into a bounded FIFO queue and
// executed one at a time.
func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	e.mu.RLock()
	state := e.state
	lastErr := e.lastErr
	e.mu.RUnlock()
	if state != StateReady {
		if state == StateError {
			return "", ErrUnavailable("engine failed to load: " + lastErr)
		}
		return "", ErrUnavailable("engine is still loading")
	}

	release, err := e.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	start := time.Now()
	cands, err := e.backend.Generate(ctx, prompt, Params{
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		TopP:        e.cfg.TopP,
		Candidates:  1,
	})
	if err == nil && len(cands) == 0 {
		err = errors.New("backend returned no candidates")
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	generationsTotal.WithLabelValues(status).Inc()
	generationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		e.mu.Lock()
		e.lastErr = err.Error()
		e.mu.Unlock()
		return "", err
	}
	e.mu.Lock()
	e.requests++
	e.mu.Unlock()
	return cands[0].Text, nil
}

// acquire reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred.
func (e *Engine) acquire(ctx context.Context) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(e.cfg.MaxWait)
	defer timer.Stop()
	select {
	case e.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		queueRejectionsTotal.Inc()
		return nil, tooBusyError{}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-e.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer2 := time.NewTimer(e.cfg.MaxWait)
	defer timer2.Stop()
	select {
	case e.genCh <- struct{}{}:
		acquired = true
		return func() { <-e.genCh; <-e.queueCh }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer2.C:
		queueRejectionsTotal.Inc()
		return nil, tooBusyError{}
	}
}

// Status returns a read-only projection for GET /status.
func (e *Engine) Status() types.StatusResponse {
	e.mu.RLock()
	defer e.mu.RUnlock()
	inflight := len(e.genCh)
	queued := len(e.queueCh) - inflight
	if queued < 0 {
		queued = 0
	}
	return types.StatusResponse{
		State:          string(e.state),
		Checkpoint:     e.cfg.Checkpoint,
		Backend:        e.backend.Kind(),
		UptimeSeconds:  int64(time.Since(e.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		RequestsTotal:  e.requests,
		Inflight:       inflight,
		QueueLen:       queued,
		MaxQueueDepth:  e.cfg.MaxQueueDepth,
		LastError:      e.lastErr,
	}
}

// Close releases the backend. The engine must not be used afterwards.
func (e *Engine) Close() error {
	return e.backend.Close()
}
