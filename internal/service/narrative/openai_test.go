package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openai/openai-go"

	"ChainPulse/internal/service/retry"
	"ChainPulse/pkg/config"
	"ChainPulse/pkg/logger"
)

type fakeLLM struct {
	response *openai.ChatCompletion
	err      error
	failures int
	calls    int
	prompts  []string
}

func (f *fakeLLM) CreateChatCompletion(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	f.calls++
	if len(params.Messages) > 0 {
		if content := params.Messages[0].OfUser; content != nil {
			f.prompts = append(f.prompts, content.Content.OfString.Value)
		}
	}
	if f.calls <= f.failures {
		return nil, errors.New("transient failure")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func generatorConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Narrative.Model = "gpt-4o-mini"
	cfg.Narrative.MaxTokens = 1000
	cfg.Narrative.MaxRetries = 3
	cfg.Narrative.RetryStep = 10 * time.Second
	return cfg
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestGenerateReturnsCompletion(t *testing.T) {
	llm := &fakeLLM{
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "SOL looks frisky today"}},
			},
		},
	}
	g := NewGenerator(generatorConfig(), logger.Discard(), WithLLMClient(llm), WithGeneratorSleep(noSleep))

	text, err := g.Generate(context.Background(), "analyze the market")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "SOL looks frisky today" {
		t.Errorf("text = %q", text)
	}
	if len(llm.prompts) != 1 || llm.prompts[0] != "analyze the market" {
		t.Errorf("prompts = %v", llm.prompts)
	}
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	llm := &fakeLLM{
		failures: 2,
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "eventually"}},
			},
		},
	}
	g := NewGenerator(generatorConfig(), logger.Discard(), WithLLMClient(llm), WithGeneratorSleep(noSleep))

	text, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "eventually" {
		t.Errorf("text = %q", text)
	}
	if llm.calls != 3 {
		t.Errorf("calls = %d, want 3", llm.calls)
	}
}

func TestGenerateExhaustsRetryBudget(t *testing.T) {
	llm := &fakeLLM{failures: 10}
	g := NewGenerator(generatorConfig(), logger.Discard(), WithLLMClient(llm), WithGeneratorSleep(noSleep))

	_, err := g.Generate(context.Background(), "prompt")
	if !errors.Is(err, retry.ErrMaxRetries) {
		t.Fatalf("err = %v, want ErrMaxRetries", err)
	}
	if llm.calls != 3 {
		t.Errorf("calls = %d, want 3", llm.calls)
	}
}

func TestGenerateRejectsEmptyCompletion(t *testing.T) {
	llm := &fakeLLM{response: &openai.ChatCompletion{}}
	g := NewGenerator(generatorConfig(), logger.Discard(), WithLLMClient(llm), WithGeneratorSleep(noSleep))

	if _, err := g.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for a completion with no choices")
	}
}
