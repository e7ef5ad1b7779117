package sessions

import (
	"context"
	"sync"
	"time"

	"apmcoach-backend/internal/rubric"
)

// MemoryRepo stores sessions in memory and is safe for concurrent use. It
// backs deployments without a DATABASE_URL.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Session
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Session)}
}

// Create stores the session.
func (r *MemoryRepo) Create(ctx context.Context, session Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[session.ID] = session
	return nil
}

// GetByID returns a session by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byID[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

// UpdateScorecard replaces the stored scorecard.
func (r *MemoryRepo) UpdateScorecard(ctx context.Context, sessionID string, card rubric.Scorecard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	session.Scorecard = card
	session.UpdatedAt = time.Now().UTC()
	r.byID[sessionID] = session
	return nil
}

// UpdateEssay stores the latest generated essay for the session.
func (r *MemoryRepo) UpdateEssay(ctx context.Context, sessionID, essay string, wordCount int, fallbackUsed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byID[sessionID]
	if !ok {
		return ErrNotFound
	}
	session.Essay = essay
	session.EssayWordCount = wordCount
	session.FallbackUsed = fallbackUsed
	session.UpdatedAt = time.Now().UTC()
	r.byID[sessionID] = session
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
