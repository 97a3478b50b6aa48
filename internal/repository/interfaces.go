// Package repository defines repository interfaces for data access.
// Note: authentication and profile lookup happen against the LINE platform;
// these repositories only persist what the linkage flow needs locally.
package repository

import (
	"context"
	"database/sql"

	"github.com/asagaorino0/formlink-api/internal/models"
)

// LineUserRepository defines methods for LINE user data access.
type LineUserRepository interface {
	// Upsert inserts the user or refreshes display_name/picture_url when the
	// LINE user ID is already known. Returns the stored row either way.
	Upsert(ctx context.Context, user *models.LineUser) (*models.LineUser, error)
	GetByLineUserID(ctx context.Context, lineUserID string) (*models.LineUser, error)
}

// FormSubmissionRepository defines methods for form submission data access.
type FormSubmissionRepository interface {
	Create(ctx context.Context, submission *models.FormSubmission) error
	ListByLineUserID(ctx context.Context, lineUserID string) ([]*models.FormSubmission, error)
}

// Repositories holds all repository implementations.
type Repositories struct {
	LineUsers   LineUserRepository
	Submissions FormSubmissionRepository
}

// NewRepositories creates all repositories with the given database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		LineUsers:   NewSQLiteLineUserRepository(db),
		Submissions: NewSQLiteFormSubmissionRepository(db),
	}
}
