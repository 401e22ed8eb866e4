package examplegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

const promptTemplate = `You are helping a language learner build a vocabulary list.
Write ONE short, natural English sentence that uses the word "%s" with the meaning "%s".
Reply with the sentence only, without quotes, numbering or explanations.`

// maxExampleLength matches the example column limit.
const maxExampleLength = 1000

// LLMExampleGenerator implements domain.ExampleGenerator on top of a langchaingo model.
type LLMExampleGenerator struct {
	model   llms.Model
	timeout time.Duration
}

// NewLLMExampleGenerator wraps an existing model. A zero timeout disables the per-call deadline.
func NewLLMExampleGenerator(model llms.Model, timeout time.Duration) *LLMExampleGenerator {
	return &LLMExampleGenerator{model: model, timeout: timeout}
}

// NewOllamaExampleGenerator creates a generator backed by an Ollama server.
func NewOllamaExampleGenerator(serverURL, modelName string, timeout time.Duration) (*LLMExampleGenerator, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	llm, err := ollama.New(
		ollama.WithModel(modelName),
		ollama.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama LLM client: %w", err)
	}
	return NewLLMExampleGenerator(llm, timeout), nil
}

// GenerateExample asks the model for one example sentence using word.
func (g *LLMExampleGenerator) GenerateExample(ctx context.Context, word, meaning string) (string, error) {
	if strings.TrimSpace(word) == "" {
		return "", domain.NewInvalidInputError("word cannot be empty for example generation")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := llms.GenerateFromSinglePrompt(ctx, g.model, fmt.Sprintf(promptTemplate, word, meaning),
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(80),
	)
	if err != nil {
		return "", domain.NewLLMServiceError(err)
	}

	example := firstSentence(resp)
	if example == "" {
		return "", domain.NewLLMServiceError(errors.New("empty example returned by model"))
	}

	logger.Get().Debug("Generated example sentence",
		zap.String("word", word),
		zap.Duration("duration", time.Since(start)),
	)
	return example, nil
}

// firstSentence trims model chatter down to the first non-empty line, capped to the column size.
func firstSentence(resp string) string {
	for _, line := range strings.Split(resp, "\n") {
		line = strings.TrimSpace(line)
		line = strings.Trim(line, "\"'`")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxExampleLength {
			line = line[:maxExampleLength]
		}
		return line
	}
	return ""
}
