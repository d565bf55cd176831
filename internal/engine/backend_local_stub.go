//go:build !llama

package engine

import "context"

// This file provides a no-CGO stub for the local backend. It is compiled when
// the 'llama' build tag is not set, so plain `go build` works without the
// llama.cpp toolchain. The stub refuses to load; use the server backend or
// build with -tags llama.

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

type localBackend struct{ path string }

// NewLocalBackend returns a stub that fails at Warmup with a clear message.
func NewLocalBackend(path string, ctxSize, threads int) Backend {
	return &localBackend{path: path}
}

func (b *localBackend) Kind() string { return "local" }

func (b *localBackend) Load(ctx context.Context) error {
	return ErrUnavailable("built without llama support; rebuild with -tags llama or use --backend server")
}

func (b *localBackend) Generate(ctx context.Context, prompt string, p Params) ([]Candidate, error) {
	return nil, ErrUnavailable("built without llama support")
}

func (b *localBackend) Close() error { return nil }
