package sessions

import (
	"context"

	"apmcoach-backend/internal/rubric"
)

// Repo defines persistence operations for sessions.
type Repo interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, sessionID string) (Session, error)
	UpdateScorecard(ctx context.Context, sessionID string, card rubric.Scorecard) error
	UpdateEssay(ctx context.Context, sessionID, essay string, wordCount int, fallbackUsed bool) error
}
