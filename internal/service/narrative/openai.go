package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ChainPulse/internal/service/retry"
	"ChainPulse/pkg/config"
	"ChainPulse/pkg/logger"
)

// LLMClient is the narrow surface of the completion API the generator
// needs; tests substitute a canned implementation.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Generator produces market commentary from a structured prompt, with
// bounded retries and linear backoff between attempts.
type Generator struct {
	llm       LLMClient
	model     string
	maxTokens int64
	policy    retry.Policy
	log       *logger.Logger
}

// GeneratorOption configures the Generator.
type GeneratorOption func(*Generator)

// WithLLMClient substitutes the completion client.
func WithLLMClient(llm LLMClient) GeneratorOption {
	return func(g *Generator) { g.llm = llm }
}

// WithGeneratorSleep injects the backoff wait.
func WithGeneratorSleep(sleep func(ctx context.Context, d time.Duration) error) GeneratorOption {
	return func(g *Generator) { g.policy.Sleep = sleep }
}

func NewGenerator(cfg *config.Config, log *logger.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		model:     cfg.Narrative.Model,
		maxTokens: int64(cfg.Narrative.MaxTokens),
		policy: retry.Policy{
			MaxAttempts: cfg.Narrative.MaxRetries,
			Backoff:     retry.Linear(cfg.Narrative.RetryStep),
		},
		log: log,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.llm == nil {
		g.llm = &openaiClient{client: openai.NewClient(option.WithAPIKey(cfg.Narrative.APIKey))}
	}
	return g
}

// Generate returns the model's completion for the prompt. An error means
// no narrative this cycle.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := g.policy.Do(ctx, func(ctx context.Context) error {
		completion, err := g.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
			Model:     g.model,
			MaxTokens: openai.Int(g.maxTokens),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
		})
		if err != nil {
			g.log.Warn("narrative generation attempt failed", logger.Error(err))
			return err
		}
		if len(completion.Choices) == 0 {
			return fmt.Errorf("no choices in completion")
		}
		text = completion.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate narrative: %w", err)
	}
	return text, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func (c *openaiClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
