package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
)

type User struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Email         string         `db:"email" json:"email"`
	Name          string         `db:"name" json:"name"`
	DateOfBirth   sql.NullTime   `db:"date_of_birth" json:"date_of_birth"`
	EmailVerified bool           `db:"email_verified" json:"email_verified"`
	Provider      sql.NullString `db:"provider" json:"provider"`
	ProviderID    sql.NullString `db:"provider_id" json:"provider_id"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
