package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/asagaorino0/formlink-api/internal/models"
)

// SQLiteFormSubmissionRepository implements FormSubmissionRepository for SQLite/libsql.
type SQLiteFormSubmissionRepository struct {
	db *sql.DB
}

// NewSQLiteFormSubmissionRepository creates a new SQLite form submission repository.
func NewSQLiteFormSubmissionRepository(db *sql.DB) *SQLiteFormSubmissionRepository {
	return &SQLiteFormSubmissionRepository{db: db}
}

// Create records a form submission.
func (r *SQLiteFormSubmissionRepository) Create(ctx context.Context, submission *models.FormSubmission) error {
	if submission.ID == "" {
		submission.ID = ulid.Make().String()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}

	success := 0
	if submission.Success {
		success = 1
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO form_submissions (id, line_user_id, form_url, additional_message, success, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		submission.ID,
		submission.LineUserID,
		submission.FormURL,
		nullString(submission.AdditionalMessage),
		success,
		submission.SubmittedAt.Format(time.RFC3339),
	)

	return err
}

// ListByLineUserID returns submissions for a LINE user, newest first.
func (r *SQLiteFormSubmissionRepository) ListByLineUserID(ctx context.Context, lineUserID string) ([]*models.FormSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, line_user_id, form_url, additional_message, success, submitted_at
		FROM form_submissions
		WHERE line_user_id = ?
		ORDER BY submitted_at DESC
	`, lineUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*models.FormSubmission
	for rows.Next() {
		var s models.FormSubmission
		var additionalMessage sql.NullString
		var success int
		var submittedAt string

		if err := rows.Scan(
			&s.ID,
			&s.LineUserID,
			&s.FormURL,
			&additionalMessage,
			&success,
			&submittedAt,
		); err != nil {
			return nil, err
		}

		if additionalMessage.Valid {
			s.AdditionalMessage = additionalMessage.String
		}
		s.Success = success != 0
		s.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)

		submissions = append(submissions, &s)
	}

	return submissions, rows.Err()
}
