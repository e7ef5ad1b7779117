package sessions

import (
	"errors"
	"time"

	"apmcoach-backend/internal/rubric"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("session not found")

// Session is one upload-to-essay interaction. The id is an opaque token the
// client carries in the X-Session-Id header; there are no user accounts.
type Session struct {
	ID             string           `json:"id"`
	FileName       string           `json:"fileName,omitempty"`
	MimeType       string           `json:"mimeType,omitempty"`
	SizeBytes      int64            `json:"sizeBytes,omitempty"`
	StorageKey     string           `json:"-"`
	ResumeText     string           `json:"-"`
	Scorecard      rubric.Scorecard `json:"scorecard"`
	Essay          string           `json:"essay,omitempty"`
	EssayWordCount int              `json:"essayWordCount,omitempty"`
	FallbackUsed   bool             `json:"fallbackUsed"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}
