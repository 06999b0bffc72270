package ai

// Generation backends.
const (
	// BackendOllama talks to the native Ollama /api/generate endpoint.
	BackendOllama = "ollama"

	// BackendOpenAI talks to an OpenAI-compatible completion endpoint.
	BackendOpenAI = "openai"
)

// MaxEmbeddingBatch is the largest number of texts sent in one embedding request.
const MaxEmbeddingBatch = 64

// GenerateOptions are the sampling options sent with a generation request.
type GenerateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultGenerateOptions returns deterministic sampling with a short answer budget.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Temperature: 0.0,
		TopP:        1.0,
		MaxTokens:   300,
	}
}
