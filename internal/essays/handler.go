package essays

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apmcoach-backend/internal/essay"
	"apmcoach-backend/internal/rubric"
	"apmcoach-backend/internal/sessions"
	"apmcoach-backend/internal/shared/server/respond"
	"apmcoach-backend/internal/shared/telemetry"
)

type Handler struct {
	repo    sessions.Repo
	scorer  *rubric.Scorer
	service *essay.Service
}

func NewHandler(repo sessions.Repo, scorer *rubric.Scorer, service *essay.Service) *Handler {
	return &Handler{repo: repo, scorer: scorer, service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-essay", h.generate)
	rg.POST("/regenerate-essay", h.regenerate)
}

type essayRequest struct {
	SessionID    string            `json:"sessionId"`
	ResumeText   string            `json:"resumeText"`
	Scorecard    *rubric.Scorecard `json:"scorecard"`
	CurrentEssay string            `json:"currentEssay"`
}

func (h *Handler) generate(c *gin.Context) {
	h.run(c, false)
}

func (h *Handler) regenerate(c *gin.Context) {
	h.run(c, true)
}

// run resolves the scorecard and resume text from the request or the stored
// session, then drives the generation chain. Provider unavailability never
// surfaces as an error; the response carries fallbackUsed instead.
func (h *Handler) run(c *gin.Context, regenerate bool) {
	var req essayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	resumeText := strings.TrimSpace(req.ResumeText)
	priorEssay := strings.TrimSpace(req.CurrentEssay)
	card := req.Scorecard

	var session sessions.Session
	haveSession := false
	if sessionID != "" {
		var err error
		session, err = h.repo.GetByID(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, sessions.ErrNotFound) {
				respond.Error(c, http.StatusBadRequest, "validation_error", "unknown sessionId", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
			return
		}
		haveSession = true
		if resumeText == "" {
			resumeText = session.ResumeText
		}
		if card == nil && len(session.Scorecard.Categories) > 0 {
			stored := session.Scorecard
			card = &stored
		}
		if priorEssay == "" {
			priorEssay = session.Essay
		}
	}

	if resumeText == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeText or sessionId with an uploaded resume is required", nil)
		return
	}
	if card == nil {
		scored := h.scorer.Score(resumeText)
		card = &scored
	}
	if regenerate && priorEssay == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "currentEssay is required to regenerate", nil)
		return
	}

	result := h.service.Generate(c.Request.Context(), *card, resumeText, essay.Options{
		Regenerate: regenerate,
		PriorEssay: priorEssay,
	})

	// Logging middleware picks this up for the request log line.
	c.Set("fallbackUsed", result.FallbackUsed)

	if haveSession {
		if err := h.repo.UpdateEssay(c.Request.Context(), sessionID, result.Essay, result.WordCount, result.FallbackUsed); err != nil {
			telemetry.Error("essays.session_update_failed", map[string]any{
				"err":        err.Error(),
				"session_id": sessionID,
				"request_id": c.GetString("requestId"),
			})
		}
	}

	respond.OK(c, gin.H{
		"success":      true,
		"essay":        result.Essay,
		"wordCount":    result.WordCount,
		"fallbackUsed": result.FallbackUsed,
	})
}
