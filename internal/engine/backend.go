package engine

import "context"

// Backend abstracts the text-generation runtime behind the engine. Concrete
// implementations: in-process llama.cpp (build tag llama) and an
// OpenAI-compatible local inference server.
type Backend interface {
	// Kind identifies the backend for /status ("local" or "server").
	Kind() string
	// Load prepares the checkpoint. Called exactly once, at startup.
	Load(ctx context.Context) error
	// Generate produces one or more candidate completions for prompt.
	// Implementations must return promptly when ctx is canceled.
	Generate(ctx context.Context, prompt string, p Params) ([]Candidate, error)
	// Close releases the checkpoint and any backend resources.
	Close() error
}

// Params captures generation parameters passed to the backend.
type Params struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	// Candidates asks the backend for this many completions; the engine
	// always reads the first one.
	Candidates int
}

// Candidate is a single completion returned by a backend.
type Candidate struct {
	Text         string
	FinishReason string
}

// LocalBuilt reports whether this binary was compiled with the in-process
// llama backend (-tags llama).
func LocalBuilt() bool { return llamaBuilt }
