package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row. Users are keyed by their immutable username;
// the email address is stored only as a digest. IsActive flips to true once
// the address has been verified.
type User struct {
	bun.BaseModel `bun:"table:users"`

	Username          string    `bun:"username,pk"`
	EmailDigest       string    `bun:"email_digest,notnull"`
	PasswordDigest    string    `bun:"password_digest,notnull"`
	VerificationToken string    `bun:"verification_token,notnull"`
	IsActive          bool      `bun:"is_active,notnull,default:false"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// APIToken is the api_tokens table row. Capability flags are fixed at
// issuance; only IsActive may change, and only from true to false.
type APIToken struct {
	bun.BaseModel `bun:"table:api_tokens"`

	ID                   uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Token                string    `bun:"token,notnull,unique"`
	OwnerUsername        string    `bun:"owner_username,notnull"`
	IsActive             bool      `bun:"is_active,notnull,default:true"`
	CanChangeCredentials bool      `bun:"can_change_credentials,notnull,default:false"`
	CanSetMood           bool      `bun:"can_set_mood,notnull,default:false"`
	CanDeleteUser        bool      `bun:"can_delete_user,notnull,default:false"`
	CanChangeEmail       bool      `bun:"can_change_email,notnull,default:false"`
	CreatedAt            time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Mood is the moods table row. At most one row per owner has IsActive=true.
type Mood struct {
	bun.BaseModel `bun:"table:moods"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	OwnerUsername string    `bun:"owner_username,notnull"`
	Mood          string    `bun:"mood,notnull"`
	IsActive      bool      `bun:"is_active,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
