package essay

import (
	"context"
	"strings"

	"apmcoach-backend/internal/llm"
	"apmcoach-backend/internal/rubric"
	"apmcoach-backend/internal/shared/metrics"
	"apmcoach-backend/internal/shared/telemetry"
)

const (
	generateTemperature   = 0.7
	regenerateTemperature = 0.8
)

// Options control one Generate call.
type Options struct {
	Regenerate bool
	PriorEssay string
}

// Result is the outcome of essay generation. FallbackUsed marks essays that
// came from the deterministic template rather than a provider.
type Result struct {
	Essay        string
	WordCount    int
	FallbackUsed bool
	Provider     string
}

// Service runs the provider chain and post-processes the returned essay.
type Service struct {
	providers   []llm.Generator
	targetWords int
}

// NewService builds a Service. Providers are tried in slice order.
func NewService(providers []llm.Generator, targetWords int) *Service {
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}
	return &Service{providers: providers, targetWords: targetWords}
}

// TargetWords reports the configured essay length.
func (s *Service) TargetWords() int { return s.targetWords }

// Generate produces an essay for the scorecard. Provider failures are logged
// and skipped; when every provider fails the deterministic fallback essay is
// returned, so Generate always yields usable text.
func (s *Service) Generate(ctx context.Context, card rubric.Scorecard, resumeText string, opts Options) Result {
	prompt := BuildPrompt(card, resumeText, PromptOptions{
		TargetWords: s.targetWords,
		Regenerate:  opts.Regenerate,
		PriorEssay:  opts.PriorEssay,
	})

	temperature := float32(generateTemperature)
	if opts.Regenerate {
		temperature = regenerateTemperature
	}

	started := metrics.NowMillis()
	defer func() {
		metrics.ObserveGenerationDurationMs(metrics.NowMillis() - started)
	}()

	req := llm.Request{
		Prompt:            prompt,
		SystemInstruction: SystemInstruction,
		Temperature:       temperature,
		MaxWords:          s.targetWords,
	}

	for _, provider := range s.providers {
		text, err := provider.GenerateEssay(ctx, req)
		if err != nil {
			metrics.IncProviderFailure(provider.Name())
			telemetry.Error("essay.provider_failed", map[string]any{
				"provider": provider.Name(),
				"err":      err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			metrics.IncProviderFailure(provider.Name())
			continue
		}

		normalized, wordCount := Normalize(text, s.targetWords)
		metrics.IncEssayGenerated()
		return Result{
			Essay:     normalized,
			WordCount: wordCount,
			Provider:  provider.Name(),
		}
	}

	normalized, wordCount := Normalize(FallbackEssay(card), s.targetWords)
	metrics.IncEssayGenerated()
	metrics.IncEssayFallback()
	telemetry.Info("essay.fallback_used", map[string]any{
		"providers_tried": len(s.providers),
	})
	return Result{
		Essay:        normalized,
		WordCount:    wordCount,
		FallbackUsed: true,
		Provider:     "fallback",
	}
}
