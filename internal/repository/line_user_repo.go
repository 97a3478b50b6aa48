package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/asagaorino0/formlink-api/internal/models"
)

// SQLiteLineUserRepository implements LineUserRepository for SQLite/libsql.
type SQLiteLineUserRepository struct {
	db *sql.DB
}

// NewSQLiteLineUserRepository creates a new SQLite LINE user repository.
func NewSQLiteLineUserRepository(db *sql.DB) *SQLiteLineUserRepository {
	return &SQLiteLineUserRepository{db: db}
}

// Upsert inserts or refreshes a LINE user keyed by line_user_id.
// Re-login with the same account updates the profile fields in place.
func (r *SQLiteLineUserRepository) Upsert(ctx context.Context, user *models.LineUser) (*models.LineUser, error) {
	now := time.Now()
	if user.ID == "" {
		user.ID = ulid.Make().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO line_users (id, line_user_id, display_name, picture_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(line_user_id) DO UPDATE SET
			display_name = excluded.display_name,
			picture_url = excluded.picture_url,
			updated_at = excluded.updated_at
	`,
		user.ID,
		user.LineUserID,
		user.DisplayName,
		nullString(user.PictureURL),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}

	// Re-read so callers get the canonical row (original id and created_at
	// survive an upsert on an existing account).
	return r.GetByLineUserID(ctx, user.LineUserID)
}

// GetByLineUserID retrieves a LINE user by platform user ID.
// Returns nil without error when the user is unknown.
func (r *SQLiteLineUserRepository) GetByLineUserID(ctx context.Context, lineUserID string) (*models.LineUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, line_user_id, display_name, picture_url, created_at, updated_at
		FROM line_users
		WHERE line_user_id = ?
	`, lineUserID)

	var user models.LineUser
	var pictureURL sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&user.ID,
		&user.LineUserID,
		&user.DisplayName,
		&pictureURL,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if pictureURL.Valid {
		user.PictureURL = pictureURL.String
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	user.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &user, nil
}

// nullString converts an empty string to a NULL column value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
