package examplegen

import (
	"fmt"
	"time"
	"vocab-quiz/internal/config"

	"github.com/tmc/langchaingo/llms/openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// NewOpenAIExampleGenerator creates a generator backed by the OpenAI chat API.
func NewOpenAIExampleGenerator(apiKey, modelName string, timeout time.Duration) (*LLMExampleGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client: %w", err)
	}
	return NewLLMExampleGenerator(llm, timeout), nil
}

// New builds the generator for cfg.Provider.
func New(cfg config.LLMConfig) (*LLMExampleGenerator, error) {
	switch cfg.Provider {
	case config.LLMProviderOllama, "":
		return NewOllamaExampleGenerator(cfg.ServerURL, cfg.Model, cfg.Timeout)
	case config.LLMProviderOpenAI:
		return NewOpenAIExampleGenerator(cfg.APIKey, cfg.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
