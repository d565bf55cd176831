package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// serverBackend talks to an OpenAI-compatible completions endpoint of a
// locally running inference server (llama.cpp server, vLLM, ...). The server
// owns the weights; Load only probes reachability.
type serverBackend struct {
	client openai.Client
	model  string
}

// NewServerBackend constructs a Backend for baseURL. model is the model name
// passed through to the server; apiKey may be empty for servers that ignore
// auth.
func NewServerBackend(baseURL, apiKey, model string) Backend {
	if apiKey == "" {
		// local servers ignore the key but the client wants one to send
		apiKey = "none"
	}
	// endpoint paths resolve relative to the base URL, so it must end in /
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &serverBackend{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model: model,
	}
}

func (b *serverBackend) Kind() string { return "server" }

func (b *serverBackend) Load(ctx context.Context) error {
	if _, err := b.client.Models.List(ctx); err != nil {
		return ErrUnavailable("inference server unreachable: " + err.Error())
	}
	return nil
}

func (b *serverBackend) Generate(ctx context.Context, prompt string, p Params) ([]Candidate, error) {
	params := openai.CompletionNewParams{
		Model:       openai.CompletionNewParamsModel(b.model),
		Prompt:      openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		MaxTokens:   openai.Int(int64(p.MaxTokens)),
		Temperature: openai.Float(float64(p.Temperature)),
		TopP:        openai.Float(float64(p.TopP)),
	}
	if p.Candidates > 1 {
		params.N = openai.Int(int64(p.Candidates))
	}
	resp, err := b.client.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("completion returned no choices")
	}
	out := make([]Candidate, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		out = append(out, Candidate{Text: c.Text, FinishReason: string(c.FinishReason)})
	}
	return out, nil
}

func (b *serverBackend) Close() error { return nil }
