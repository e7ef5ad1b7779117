package scorecards

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"apmcoach-backend/internal/rubric"
	"apmcoach-backend/internal/sessions"
	"apmcoach-backend/internal/shared/metrics"
	"apmcoach-backend/internal/shared/server/respond"
)

type Handler struct {
	repo   sessions.Repo
	scorer *rubric.Scorer
}

func NewHandler(repo sessions.Repo, scorer *rubric.Scorer) *Handler {
	return &Handler{repo: repo, scorer: scorer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-scorecard", h.generate)
}

type generateRequest struct {
	ResumeText string `json:"resumeText"`
	SessionID  string `json:"sessionId"`
}

// generate scores raw resume text, or re-scores the text stored on an
// existing session when only a sessionId is supplied.
func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	text := strings.TrimSpace(req.ResumeText)
	sessionID := strings.TrimSpace(req.SessionID)

	if text == "" && sessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeText or sessionId is required", nil)
		return
	}

	if text == "" {
		session, err := h.repo.GetByID(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, sessions.ErrNotFound) {
				respond.Error(c, http.StatusBadRequest, "validation_error", "unknown sessionId", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
			return
		}
		text = session.ResumeText
		if strings.TrimSpace(text) == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "session has no resume text", nil)
			return
		}
	}

	card := h.scorer.Score(text)
	metrics.IncScorecard()

	if sessionID != "" {
		// Refresh the stored card so later essay calls see the same scores.
		if err := h.repo.UpdateScorecard(c.Request.Context(), sessionID, card); err != nil && !errors.Is(err, sessions.ErrNotFound) {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update session", nil)
			return
		}
	}

	respond.OK(c, gin.H{
		"success":   true,
		"scorecard": card,
	})
}
