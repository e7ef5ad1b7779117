package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"apmcoach-backend/internal/rubric"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new session row.
func (r *PGRepo) Create(ctx context.Context, session Session) error {
	const query = `
INSERT INTO sessions (
	id, file_name, mime_type, size_bytes, storage_key, resume_text,
	scorecard, essay, essay_word_count, fallback_used, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	cardPayload, err := json.Marshal(session.Scorecard)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		session.ID,
		session.FileName,
		session.MimeType,
		session.SizeBytes,
		session.StorageKey,
		session.ResumeText,
		cardPayload,
		session.Essay,
		session.EssayWordCount,
		session.FallbackUsed,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return err
}

// GetByID returns a session by ID.
func (r *PGRepo) GetByID(ctx context.Context, sessionID string) (Session, error) {
	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_key, resume_text,
       scorecard, essay, essay_word_count, fallback_used, created_at, updated_at
FROM sessions
WHERE id = $1
LIMIT 1`

	var s Session
	var fileName sql.NullString
	var mimeType sql.NullString
	var storageKey sql.NullString
	var resumeText sql.NullString
	var card sql.NullString
	var essay sql.NullString

	err := r.DB.QueryRowContext(ctx, query, sessionID).Scan(
		&s.ID,
		&fileName,
		&mimeType,
		&s.SizeBytes,
		&storageKey,
		&resumeText,
		&card,
		&essay,
		&s.EssayWordCount,
		&s.FallbackUsed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}

	if fileName.Valid {
		s.FileName = fileName.String
	}
	if mimeType.Valid {
		s.MimeType = mimeType.String
	}
	if storageKey.Valid {
		s.StorageKey = storageKey.String
	}
	if resumeText.Valid {
		s.ResumeText = resumeText.String
	}
	if essay.Valid {
		s.Essay = essay.String
	}
	if card.Valid {
		if err := json.Unmarshal([]byte(card.String), &s.Scorecard); err != nil {
			s.Scorecard = rubric.Scorecard{}
		}
	}
	return s, nil
}

// UpdateScorecard replaces the stored scorecard.
func (r *PGRepo) UpdateScorecard(ctx context.Context, sessionID string, card rubric.Scorecard) error {
	const query = `
UPDATE sessions
SET scorecard = $1::jsonb,
    updated_at = now()
WHERE id = $2`

	payload, err := json.Marshal(card)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, payload, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateEssay stores the latest generated essay for the session.
func (r *PGRepo) UpdateEssay(ctx context.Context, sessionID, essay string, wordCount int, fallbackUsed bool) error {
	const query = `
UPDATE sessions
SET essay = $1,
    essay_word_count = $2,
    fallback_used = $3,
    updated_at = now()
WHERE id = $4`

	res, err := r.DB.ExecContext(ctx, query, essay, wordCount, fallbackUsed, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
