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


package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/chunking"
	"github.com/poiesic/medirag/retrieval"
	"github.com/poiesic/medirag/search"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "medirag.yaml"

// ChunkingConfig configures document chunking.
type ChunkingConfig struct {
	MaxChunkChars       int      `yaml:"max_chunk_chars"`
	ChunkOverlap        int      `yaml:"chunk_overlap"`
	MeaningfulMinLength int      `yaml:"meaningful_min_length"`
	Denylist            []string `yaml:"denylist"`
	ContainerTag        string   `yaml:"container_tag"`
	TitleTags           []string `yaml:"title_tags"`
	ProseTags           []string `yaml:"prose_tags"`
	HeadingTags         []string `yaml:"heading_tags"`
	DefaultChapter      string   `yaml:"default_chapter"`
}

// RetrievalConfig configures hybrid ranking.
type RetrievalConfig struct {
	K                    int     `yaml:"k"`
	OversampleFactor     int     `yaml:"oversample_factor"`
	WeightVector         float64 `yaml:"weight_vector"`
	WeightLexical        float64 `yaml:"weight_lexical"`
	LexicalCaseSensitive bool    `yaml:"lexical_case_sensitive"`
}

// AIConfig configures the embedding and generation services.
type AIConfig struct {
	EmbeddingHost     string        `yaml:"embedding_host"`
	EmbeddingModel    string        `yaml:"embedding_model"`
	GenerationBackend string        `yaml:"generation_backend"`
	GenerationHost    string        `yaml:"generation_host"`
	GenerationModel   string        `yaml:"generation_model"`
	APIKey            string        `yaml:"api_key"`
	Temperature       float64       `yaml:"temperature"`
	TopP              float64       `yaml:"top_p"`
	MaxTokens         int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
}

// StoreConfig locates the chunk store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP query interface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// IngestionConfig configures offline ingestion.
type IngestionConfig struct {
	PoolSize  int `yaml:"pool_size"`
	BatchSize int `yaml:"batch_size"`
}

// Config is the root application configuration.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	AI        AIConfig        `yaml:"ai"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Ingestion IngestionConfig `yaml:"ingestion"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Chunking: ChunkingConfig{
			MaxChunkChars:       chunking.DefaultMaxChunkChars,
			ChunkOverlap:        0,
			MeaningfulMinLength: chunking.DefaultMinLength,
			Denylist:            clone(chunking.DefaultDenylist),
			ContainerTag:        chunking.DefaultContainerTag,
			TitleTags:           clone(chunking.DefaultTitleTags),
			ProseTags:           clone(chunking.DefaultProseTags),
			HeadingTags:         clone(chunking.DefaultHeadingTags),
			DefaultChapter:      chunking.DefaultChapter,
		},
		Retrieval: RetrievalConfig{
			K:                    retrieval.DefaultK,
			OversampleFactor:     search.DefaultOversample,
			WeightVector:         search.DefaultVectorWeight,
			WeightLexical:        search.DefaultLexicalWeight,
			LexicalCaseSensitive: true,
		},
		AI: AIConfig{
			EmbeddingHost:     aiDefaults.EmbeddingHost,
			EmbeddingModel:    aiDefaults.EmbeddingModel,
			GenerationBackend: aiDefaults.GenerationBackend,
			GenerationHost:    aiDefaults.GenerationHost,
			GenerationModel:   aiDefaults.GenerationModel,
			APIKey:            aiDefaults.APIKey,
			Temperature:       aiDefaults.Generate.Temperature,
			TopP:              aiDefaults.Generate.TopP,
			MaxTokens:         aiDefaults.Generate.MaxTokens,
			Timeout:           aiDefaults.Timeout,
		},
		Store:  StoreConfig{Path: "./vectorstore"},
		Server: ServerConfig{Addr: ":8080"},
		Ingestion: IngestionConfig{
			PoolSize:  max(runtime.NumCPU()/2, 1),
			BatchSize: 32,
		},
	}
}

// Load reads a config from path merged over the defaults.
// If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Chunking.MaxChunkChars <= 0 {
		errs = append(errs, errors.New("chunking.max_chunk_chars must be > 0"))
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.MaxChunkChars {
		errs = append(errs, errors.New("chunking.chunk_overlap must be in [0, max_chunk_chars)"))
	}
	if c.Chunking.MeaningfulMinLength < 0 {
		errs = append(errs, errors.New("chunking.meaningful_min_length must be >= 0"))
	}
	if c.Retrieval.K <= 0 {
		errs = append(errs, errors.New("retrieval.k must be > 0"))
	}
	if c.Retrieval.OversampleFactor < 1 {
		errs = append(errs, errors.New("retrieval.oversample_factor must be >= 1"))
	}
	if c.Retrieval.WeightVector < 0 || c.Retrieval.WeightLexical < 0 {
		errs = append(errs, errors.New("retrieval weights must be >= 0"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.Ingestion.PoolSize < 1 {
		errs = append(errs, errors.New("ingestion.pool_size must be >= 1"))
	}
	if c.Ingestion.BatchSize < 1 {
		errs = append(errs, errors.New("ingestion.batch_size must be >= 1"))
	}
	if err := c.AIConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// AIConfig converts the ai section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationBackend(c.AI.GenerationBackend),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithGenerateOptions(ai.GenerateOptions{
			Temperature: c.AI.Temperature,
			TopP:        c.AI.TopP,
			MaxTokens:   c.AI.MaxTokens,
		}),
		ai.WithTimeout(c.AI.Timeout),
	)
}

// ChunkingOptions converts the chunking section into pipeline options.
func (c *Config) ChunkingOptions() []chunking.Option {
	return []chunking.Option{
		chunking.WithMaxChunkChars(c.Chunking.MaxChunkChars),
		chunking.WithOverlap(c.Chunking.ChunkOverlap),
		chunking.WithMinLength(c.Chunking.MeaningfulMinLength),
		chunking.WithDenylist(c.Chunking.Denylist),
		chunking.WithContainerTag(c.Chunking.ContainerTag),
		chunking.WithTitleTags(c.Chunking.TitleTags),
		chunking.WithProseTags(c.Chunking.ProseTags),
		chunking.WithHeadingTags(c.Chunking.HeadingTags),
		chunking.WithDefaultChapter(c.Chunking.DefaultChapter),
		chunking.WithPoolSize(c.Ingestion.PoolSize),
	}
}

// SearchOptions converts the retrieval section into searcher options.
func (c *Config) SearchOptions() []search.Option {
	return []search.Option{
		search.WithWeights(c.Retrieval.WeightVector, c.Retrieval.WeightLexical),
		search.WithOversample(c.Retrieval.OversampleFactor),
		search.WithCaseSensitive(c.Retrieval.LexicalCaseSensitive),
	}
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
