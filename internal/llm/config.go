package llm

import "time"

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	// TaskParse turns a chat message into a structured command.
	TaskParse TaskType = "parse"
)

// Provider selects the backend that serves generation calls.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderGemini Provider = "gemini"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem. It is filled by
// the config package; this package never reads the environment itself.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with the LLM disabled and a local
// Ollama endpoint.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		Provider:   ProviderOllama,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		Timeout:    10 * time.Second,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskParse: {Temperature: 0.1, MaxTokens: 512},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
func (c LLMConfig) TaskTimeout(task TaskType) time.Duration {
	if tc, ok := c.Tasks[task]; ok && tc.Timeout > 0 {
		return tc.Timeout
	}
	return c.Timeout
}

// taskParams resolves temperature and token limits, letting the request
// override the task defaults.
func (c LLMConfig) taskParams(req GenerateRequest) (float64, int) {
	tc := c.Tasks[req.Task]
	temp, maxTok := tc.Temperature, tc.MaxTokens
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	return temp, maxTok
}
