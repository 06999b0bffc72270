package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/medirag/ai"
)

// ErrMissingResponse is returned when the reply has no "response" field.
var ErrMissingResponse = errors.New("ollama reply has no response field")

// Generator implements ai.Generator against Ollama's native /api/generate endpoint.
// Requests are never streamed and never retried.
type Generator struct {
	endpoint string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

type options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	// NumPredict is Ollama's own name for the token limit.
	NumPredict int `json:"num_predict"`
}

type request struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type reply struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
}

// NewGenerator creates a generator for config.GenerationHost and config.GenerationModel.
// Calls are bounded by the caller's context; config.Timeout is applied by callers.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newGenerator(config.GenerationHost, config.GenerationModel, http.DefaultClient), nil
}

func newGenerator(host, model string, client *http.Client) *Generator {
	return &Generator{
		endpoint: strings.TrimSuffix(host, "/") + "/api/generate",
		model:    model,
		client:   client,
		logger:   slog.Default().With("component", "ollama-generator"),
	}
}

// Generate posts prompt with stream=false and returns the "response" field.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	body, err := json.Marshal(request{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
		Options: options{
			Temperature: opts.Temperature,
			TopP:        opts.TopP,
			MaxTokens:   opts.MaxTokens,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	g.logger.Debug("generating answer", "model", g.model, "prompt_length", len(prompt))

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("generation request failed", "err", err)
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var r reply
	decodeErr := json.Unmarshal(payload, &r)

	if resp.StatusCode >= 300 {
		if decodeErr == nil && r.Error != "" {
			return "", fmt.Errorf("ollama generate failed: %s: %s", resp.Status, r.Error)
		}
		return "", fmt.Errorf("ollama generate failed: %s", resp.Status)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decoding ollama reply: %w", decodeErr)
	}
	if r.Response == nil {
		return "", ErrMissingResponse
	}

	answer := strings.TrimSpace(*r.Response)
	if answer == "" {
		return "", ai.ErrEmptyResponse
	}
	return answer, nil
}
