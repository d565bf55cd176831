//go:build llama

package engine

import (
	"context"
	"runtime"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"answerd/internal/common/fsutil"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// localBackend runs the checkpoint in-process via go-llama.cpp.
type localBackend struct {
	path    string
	ctxSize int
	threads int

	mu    sync.Mutex
	model *llama.LLama
}

// NewLocalBackend constructs the in-process backend for the checkpoint at
// path. ctxSize/threads of 0 pick defaults.
func NewLocalBackend(path string, ctxSize, threads int) Backend {
	if ctxSize <= 0 {
		ctxSize = 2048
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	return &localBackend{path: path, ctxSize: ctxSize, threads: threads}
}

func (b *localBackend) Kind() string { return "local" }

func (b *localBackend) Load(ctx context.Context) error {
	if !fsutil.PathExists(b.path) {
		return ErrUnavailable("checkpoint not found: " + b.path)
	}
	m, err := llama.New(b.path, llama.SetContext(b.ctxSize))
	if err != nil {
		return ErrUnavailable("load checkpoint: " + err.Error())
	}
	b.mu.Lock()
	b.model = m
	b.mu.Unlock()
	return nil
}

func (b *localBackend) Generate(ctx context.Context, prompt string, p Params) ([]Candidate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.model == nil {
		return nil, ErrUnavailable("checkpoint not loaded")
	}
	// Stop generation when the request context goes away.
	b.model.SetTokenCallback(func(string) bool {
		return ctx.Err() == nil
	})
	opts := []llama.PredictOption{
		llama.SetTokens(p.MaxTokens),
		llama.SetThreads(b.threads),
		llama.SetTemperature(p.Temperature),
		llama.SetTopP(p.TopP),
	}
	text, err := b.model.Predict(prompt, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	// go-llama.cpp produces a single completion per Predict call.
	return []Candidate{{Text: text, FinishReason: "stop"}}, nil
}

func (b *localBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.model != nil {
		b.model.Free()
		b.model = nil
	}
	return nil
}
