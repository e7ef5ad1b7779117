package essays

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"apmcoach-backend/internal/essay"
	"apmcoach-backend/internal/llm"
	"apmcoach-backend/internal/rubric"
	"apmcoach-backend/internal/sessions"
)

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

func essayOfLength(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = "word"
	}
	return strings.Join(words, " ")
}

func newTestRouter(repo sessions.Repo, providers ...llm.Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(repo, rubric.NewScorer(), essay.NewService(providers, 400))
	h.RegisterRoutes(r.Group("/api"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type essayResponse struct {
	Success      bool   `json:"success"`
	Essay        string `json:"essay"`
	WordCount    int    `json:"wordCount"`
	FallbackUsed bool   `json:"fallbackUsed"`
}

func TestGenerateEssayFromResumeText(t *testing.T) {
	gen := &stubGenerator{name: "gemini", text: essayOfLength(400)}
	r := newTestRouter(sessions.NewMemoryRepo(), gen)

	rec := postJSON(t, r, "/api/generate-essay", map[string]string{
		"resumeText": "Product manager with python and sql skills, 2 years of experience.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp essayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.FallbackUsed {
		t.Fatalf("expected provider essay, got %s", rec.Body.String())
	}
	if resp.WordCount != 400 {
		t.Fatalf("expected 400 words, got %d", resp.WordCount)
	}
	if gen.got.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", gen.got.Temperature)
	}
}

func TestGenerateEssayAllProvidersDownStillSucceeds(t *testing.T) {
	r := newTestRouter(sessions.NewMemoryRepo(),
		&stubGenerator{name: "gemini", err: llm.ErrUnavailable},
		&stubGenerator{name: "openrouter", err: errors.New("timeout")},
	)

	rec := postJSON(t, r, "/api/generate-essay", map[string]string{
		"resumeText": "Product manager with python and sql skills, 2 years of experience.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite provider failures, got %d", rec.Code)
	}

	var resp essayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.FallbackUsed {
		t.Fatal("expected fallbackUsed true")
	}
	if strings.TrimSpace(resp.Essay) == "" {
		t.Fatal("expected non-empty essay")
	}
}

func TestGenerateEssayFromSessionPersistsResult(t *testing.T) {
	repo := sessions.NewMemoryRepo()
	now := time.Now().UTC()
	scorer := rubric.NewScorer()
	text := "Built dashboards in tableau and sql, led user research, 3 years of experience."
	if err := repo.Create(context.Background(), sessions.Session{
		ID:         "sess-1",
		ResumeText: text,
		Scorecard:  scorer.Score(text),
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	gen := &stubGenerator{name: "gemini", text: essayOfLength(395)}
	r := newTestRouter(repo, gen)

	rec := postJSON(t, r, "/api/generate-essay", map[string]string{"sessionId": "sess-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := repo.GetByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Essay == "" || stored.EssayWordCount != 395 {
		t.Fatalf("expected essay persisted on session, got %d words", stored.EssayWordCount)
	}
}

func TestRegenerateEssayEmbedsPriorAndRaisesTemperature(t *testing.T) {
	gen := &stubGenerator{name: "gemini", text: essayOfLength(400)}
	r := newTestRouter(sessions.NewMemoryRepo(), gen)

	prior := "My first essay opened with a story about a spreadsheet."
	rec := postJSON(t, r, "/api/regenerate-essay", map[string]string{
		"resumeText":   "Product manager with python and sql skills.",
		"currentEssay": prior,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gen.got.Temperature != 0.8 {
		t.Fatalf("expected temperature 0.8, got %v", gen.got.Temperature)
	}
	if !strings.Contains(gen.got.Prompt, prior) {
		t.Fatal("expected prior essay verbatim in prompt")
	}
}

func TestRegenerateEssayWithoutPriorIs400(t *testing.T) {
	r := newTestRouter(sessions.NewMemoryRepo(), &stubGenerator{name: "gemini", text: essayOfLength(400)})

	rec := postJSON(t, r, "/api/regenerate-essay", map[string]string{
		"resumeText": "Product manager with python and sql skills.",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateEssayMissingInputIs400(t *testing.T) {
	r := newTestRouter(sessions.NewMemoryRepo(), &stubGenerator{name: "gemini", text: essayOfLength(400)})

	rec := postJSON(t, r, "/api/generate-essay", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
