// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	EmbeddingModel string

	// GenerationBackend selects the generation transport: BackendOllama or BackendOpenAI.
	// Default: BackendOllama
	GenerationBackend string

	// GenerationHost is the base URL for the generation service.
	// Example: "http://localhost:11434" for Ollama's native API
	GenerationHost string

	// GenerationModel is the model identifier used to answer questions.
	// Example: "mistral", "gpt-4o-mini"
	GenerationModel string

	// APIKey is sent as bearer token to OpenAI-compatible services.
	// Local services accept any value.
	APIKey string

	// Generate holds the sampling options of every generation request.
	Generate GenerateOptions

	// Timeout bounds a single generation call.
	// Default: 60s
	Timeout time.Duration
}

type ConfigOption func(*Config)

func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

func WithGenerationBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.GenerationBackend = backend
	}
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func WithGenerateOptions(opts GenerateOptions) ConfigOption {
	return func(c *Config) {
		c.Generate = opts
	}
}

func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:     "http://localhost:11434/v1",
		EmbeddingModel:    "nomic-embed-text",
		GenerationBackend: BackendOllama,
		GenerationHost:    "http://localhost:11434",
		GenerationModel:   "mistral",
		APIKey:            "none",
		Generate:          DefaultGenerateOptions(),
		Timeout:           60 * time.Second,
	}
}

func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize brings hosts into the form each transport expects.
// OpenAI-compatible hosts end with /v1; the native Ollama host does not.
func (c *Config) Normalize() {
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	c.GenerationBackend = strings.ToLower(strings.TrimSpace(c.GenerationBackend))
	if c.GenerationBackend == BackendOpenAI {
		c.GenerationHost = withV1(c.GenerationHost)
	} else {
		c.GenerationHost = strings.TrimSuffix(strings.TrimSuffix(c.GenerationHost, "/"), "/v1")
	}
	if c.APIKey == "" {
		c.APIKey = "none"
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	// Remove trailing slash if present before adding /v1
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GenerationBackend != BackendOllama && c.GenerationBackend != BackendOpenAI {
		return errors.New("ai config: GenerationBackend must be ollama or openai")
	}
	if c.GenerationHost == "" {
		return errors.New("ai config: GenerationHost is required")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.Generate.MaxTokens < 1 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.Generate.TopP < 0 || c.Generate.TopP > 1 {
		return errors.New("ai config: TopP must be between 0 and 1")
	}
	if c.Generate.Temperature < 0 {
		return errors.New("ai config: Temperature must not be negative")
	}
	if c.Timeout < 0 {
		return errors.New("ai config: Timeout must not be negative")
	}
	return nil
}
