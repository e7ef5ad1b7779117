package essay

import (
	"context"
	"errors"
	"strings"
	"testing"

	"apmcoach-backend/internal/llm"
	"apmcoach-backend/internal/rubric"
)

func sampleCard() rubric.Scorecard {
	return rubric.Scorecard{
		Overall: 68,
		Categories: []rubric.CategoryScore{
			{Category: rubric.TechnicalFluency, Value: 82, Weight: 0.25},
			{Category: rubric.ProductThinking, Value: 74, Weight: 0.25},
			{Category: rubric.CuriosityCreativity, Value: 61, Weight: 0.20},
			{Category: rubric.CommunicationClarity, Value: 55, Weight: 0.15},
			{Category: rubric.LeadershipTeamwork, Value: 48, Weight: 0.15},
		},
		Strengths:    []rubric.Category{rubric.TechnicalFluency},
		Improvements: []rubric.Category{rubric.CommunicationClarity, rubric.LeadershipTeamwork},
	}
}

func wordsOfLength(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "word"
	}
	return strings.Join(words, " ")
}

func TestBuildPromptSectionsInOrder(t *testing.T) {
	prompt := BuildPrompt(sampleCard(), "Led roadmap planning and shipped an analytics dashboard.", PromptOptions{})

	markers := []string{
		SystemInstruction,
		"Requirements:",
		"hiring team evaluates",
		"rubric scores:",
		"strongest areas:",
		"Resume excerpt:",
	}
	last := -1
	for _, marker := range markers {
		idx := strings.Index(prompt, marker)
		if idx < 0 {
			t.Fatalf("prompt missing section %q", marker)
		}
		if idx < last {
			t.Fatalf("section %q out of order", marker)
		}
		last = idx
	}
}

func TestBuildPromptTopCategoriesSortedByScore(t *testing.T) {
	prompt := BuildPrompt(sampleCard(), "resume", PromptOptions{})
	want := "Technical Fluency, Product Thinking, Curiosity & Creativity"
	if !strings.Contains(prompt, want) {
		t.Fatalf("expected strongest categories %q in prompt:\n%s", want, prompt)
	}
}

func TestBuildPromptRegenerationEmbedsPriorEssayVerbatim(t *testing.T) {
	prior := "My journey into product management began with a spreadsheet."
	prompt := BuildPrompt(sampleCard(), "resume", PromptOptions{Regenerate: true, PriorEssay: prior})
	if !strings.Contains(prompt, prior) {
		t.Fatal("expected prior essay verbatim in regeneration prompt")
	}
	if !strings.Contains(prompt, "does not repeat") {
		t.Fatal("expected anti-repetition instruction")
	}
}

func TestBuildPromptTruncatesLongResume(t *testing.T) {
	long := strings.Repeat("product strategy experience ", 200)
	prompt := BuildPrompt(sampleCard(), long, PromptOptions{})
	if strings.Contains(prompt, long) {
		t.Fatal("expected resume excerpt to be truncated")
	}
}

func TestNormalizeTruncatesLongEssay(t *testing.T) {
	out, count := Normalize(wordsOfLength(500), 400)
	if count != 400 {
		t.Fatalf("expected 400 words after truncation, got %d", count)
	}
	if !strings.HasSuffix(out, ".") {
		t.Fatal("expected truncated essay to end with a period")
	}
}

func TestNormalizePadsShortEssay(t *testing.T) {
	out, count := Normalize(wordsOfLength(300), 400)
	if !strings.HasSuffix(out, closingSentence) {
		t.Fatal("expected closing sentence appended to short essay")
	}
	if count <= 300 {
		t.Fatalf("expected padding to add words, got %d", count)
	}
}

func TestNormalizeLeavesInBandEssayAlone(t *testing.T) {
	in := wordsOfLength(400)
	out, count := Normalize(in, 400)
	if out != in || count != 400 {
		t.Fatalf("expected in-band essay unchanged, got %d words", count)
	}
}

func TestFallbackEssayDeterministicAndInBand(t *testing.T) {
	card := sampleCard()
	first := FallbackEssay(card)
	second := FallbackEssay(card)
	if first != second {
		t.Fatal("expected fallback essay to be deterministic")
	}
	if !strings.Contains(first, "technical fluency") {
		t.Fatalf("expected strongest category named first, got:\n%s", first)
	}

	_, count := Normalize(first, DefaultTargetWords)
	if count < DefaultTargetWords-normalizeSlack || count > DefaultTargetWords+normalizeSlack+1 {
		t.Fatalf("normalized fallback essay out of band: %d words", count)
	}
}

type stubGenerator struct {
	name string
	text string
	err  error
	got  llm.Request
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) GenerateEssay(_ context.Context, req llm.Request) (string, error) {
	s.got = req
	return s.text, s.err
}

func TestGenerateUsesFirstHealthyProvider(t *testing.T) {
	failing := &stubGenerator{name: "gemini", err: errors.New("quota")}
	healthy := &stubGenerator{name: "openrouter", text: wordsOfLength(400)}
	svc := NewService([]llm.Generator{failing, healthy}, 400)

	res := svc.Generate(context.Background(), sampleCard(), "resume text", Options{})
	if res.FallbackUsed {
		t.Fatal("expected provider essay, not fallback")
	}
	if res.Provider != "openrouter" {
		t.Fatalf("expected openrouter to serve, got %q", res.Provider)
	}
	if res.WordCount != 400 {
		t.Fatalf("expected 400 words, got %d", res.WordCount)
	}
	if healthy.got.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", healthy.got.Temperature)
	}
}

func TestGenerateFallsBackWhenAllProvidersFail(t *testing.T) {
	svc := NewService([]llm.Generator{
		&stubGenerator{name: "gemini", err: llm.ErrUnavailable},
		&stubGenerator{name: "openrouter", err: errors.New("timeout")},
	}, 400)

	res := svc.Generate(context.Background(), sampleCard(), "resume text", Options{})
	if !res.FallbackUsed {
		t.Fatal("expected fallback essay")
	}
	if strings.TrimSpace(res.Essay) == "" {
		t.Fatal("expected non-empty fallback essay")
	}
	if res.WordCount < DefaultTargetWords-normalizeSlack {
		t.Fatalf("fallback essay too short: %d words", res.WordCount)
	}
}

func TestGenerateRegenerationRaisesTemperature(t *testing.T) {
	gen := &stubGenerator{name: "gemini", text: wordsOfLength(400)}
	svc := NewService([]llm.Generator{gen}, 400)

	prior := "The previous essay text that should appear in the new prompt."
	svc.Generate(context.Background(), sampleCard(), "resume", Options{Regenerate: true, PriorEssay: prior})
	if gen.got.Temperature != 0.8 {
		t.Fatalf("expected temperature 0.8 on regeneration, got %v", gen.got.Temperature)
	}
	if !strings.Contains(gen.got.Prompt, prior) {
		t.Fatal("expected prior essay embedded in regeneration prompt")
	}
}
