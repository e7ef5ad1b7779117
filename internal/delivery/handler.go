package delivery

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"apmcoach-backend/internal/shared/metrics"
	"apmcoach-backend/internal/shared/server/respond"
	"apmcoach-backend/internal/shared/telemetry"
)

const emailSubject = "Your APM application essay"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handler struct {
	mailer Mailer
}

func NewHandler(mailer Mailer) *Handler {
	return &Handler{mailer: mailer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/export", h.export)
	rg.POST("/send-email", h.sendEmail)
}

type exportRequest struct {
	ExportType string `json:"exportType"`
	Essay      string `json:"essay"`
}

// export returns the essay as a plain-text download, or echoes it back as
// JSON for clipboard-style export.
func (h *Handler) export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	essayText := strings.TrimSpace(req.Essay)
	if essayText == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "essay is required", nil)
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.ExportType)) {
	case "download":
		c.Header("Content-Disposition", `attachment; filename="application-essay.txt"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(essayText))
	case "text", "":
		respond.OK(c, gin.H{
			"success": true,
			"essay":   essayText,
		})
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "exportType must be 'text' or 'download'", nil)
	}
}

type sendEmailRequest struct {
	Email string `json:"email"`
	Essay string `json:"essay"`
}

// sendEmail forwards the essay to the mail provider. Provider failures are
// reported as delivered=false rather than an HTTP error; only a missing mail
// configuration is a server fault.
func (h *Handler) sendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	email := strings.TrimSpace(req.Email)
	essayText := strings.TrimSpace(req.Essay)
	if !emailPattern.MatchString(email) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "a valid email is required", nil)
		return
	}
	if essayText == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "essay is required", nil)
		return
	}

	messageID, err := h.mailer.Send(c.Request.Context(), email, emailSubject, essayText)
	if err != nil {
		if errors.Is(err, ErrMailerDisabled) {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "email delivery is not configured", nil)
			return
		}
		telemetry.Error("delivery.send_failed", map[string]any{
			"err":        err.Error(),
			"request_id": c.GetString("requestId"),
		})
		respond.OK(c, gin.H{
			"success":   true,
			"delivered": false,
		})
		return
	}

	metrics.IncEssayDelivered()
	respond.OK(c, gin.H{
		"success":   true,
		"delivered": true,
		"messageId": messageID,
	})
}
