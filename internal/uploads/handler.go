package uploads

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"apmcoach-backend/internal/extract"
	"apmcoach-backend/internal/rubric"
	"apmcoach-backend/internal/sessions"
	"apmcoach-backend/internal/shared/metrics"
	"apmcoach-backend/internal/shared/server/middleware"
	"apmcoach-backend/internal/shared/server/respond"
	"apmcoach-backend/internal/shared/storage/object"
	"apmcoach-backend/internal/shared/telemetry"
	"apmcoach-backend/internal/shared/util"
)

const maxUploadBytes = 5 << 20

// Declared content types accepted before sniffing. Browsers report DOCX as
// zip or octet-stream often enough that the extractor re-checks by content.
var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/zip":          {},
	"application/octet-stream": {},
}

type Handler struct {
	repo   sessions.Repo
	scorer *rubric.Scorer
	store  object.ObjectStore
}

// NewHandler builds the upload handler. store may be nil when upload
// retention is disabled.
func NewHandler(repo sessions.Repo, scorer *rubric.Scorer, store object.ObjectStore) *Handler {
	return &Handler{repo: repo, scorer: scorer, store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-resume", h.upload)
}

type analysisPayload struct {
	ExtractedChars int              `json:"extractedChars"`
	Scorecard      rubric.Scorecard `json:"scorecard"`
}

type uploadPayload struct {
	SessionID string          `json:"sessionId"`
	Analysis  analysisPayload `json:"analysis"`
}

func (h *Handler) upload(c *gin.Context) {
	if c.Request.ContentLength > maxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds the 5MB limit", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds the 5MB limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field 'resume' is required", nil)
		return
	}

	contentType := strings.TrimSpace(fileHeader.Header.Get("Content-Type"))
	if _, ok := allowedContentTypes[contentType]; !ok {
		respond.Error(c, http.StatusBadRequest, "unsupported_format", "Invalid file type", gin.H{
			"received": contentType,
		})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds the 5MB limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds the 5MB limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}

	text, err := extract.ExtractText(data, contentType, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			respond.Error(c, http.StatusBadRequest, "unsupported_format", "Invalid file type", nil)
			return
		}
		metrics.IncExtractionFailed()
		respond.Error(c, http.StatusBadRequest, "extraction_failed", "could not extract text from the file", nil)
		return
	}

	card := h.scorer.Score(text)
	sessionID := middleware.SessionIDFromContext(c)

	storageKey := h.persistFile(c, sessionID, fileHeader.Filename, data)

	now := time.Now().UTC()
	session := sessions.Session{
		ID:         sessionID,
		FileName:   safeFileName(fileHeader.Filename),
		MimeType:   contentType,
		SizeBytes:  fileHeader.Size,
		StorageKey: storageKey,
		ResumeText: text,
		Scorecard:  card,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.repo.Create(c.Request.Context(), session); err != nil {
		telemetry.Error("uploads.session_create_failed", map[string]any{
			"err":        err.Error(),
			"session_id": sessionID,
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store session", nil)
		return
	}

	metrics.IncUpload()
	metrics.IncScorecard()

	respond.OK(c, gin.H{
		"success": true,
		"data": uploadPayload{
			SessionID: sessionID,
			Analysis: analysisPayload{
				ExtractedChars: len(text),
				Scorecard:      card,
			},
		},
		"message": "Resume analyzed",
	})
}

// persistFile saves the raw upload when retention is enabled. Failures are
// logged and tolerated since the extracted text already lives in the session.
func (h *Handler) persistFile(c *gin.Context, sessionID, fileName string, data []byte) string {
	if h.store == nil {
		return ""
	}
	key, _, _, err := h.store.Save(c.Request.Context(), sessionID, fileName, bytes.NewReader(data))
	if err != nil {
		telemetry.Error("uploads.store_failed", map[string]any{
			"err":        err.Error(),
			"session_id": sessionID,
			"request_id": c.GetString("requestId"),
		})
		return ""
	}
	return key
}

func safeFileName(name string) string {
	sanitized, err := util.SanitizeFileName(name)
	if err != nil {
		return "resume"
	}
	return sanitized
}
