package user

import "time"

// User is the registry's view of an account. The email address is kept
// only as a digest; credentials never serialize into responses.
type User struct {
	Username          string    `json:"username"`
	EmailDigest       string    `json:"-"`
	PasswordDigest    string    `json:"-"`
	VerificationToken string    `json:"-"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Grant is the capability view of an API token, resolved by the token
// authority. Capabilities are fixed at issuance; Active reflects soft
// revocation.
type Grant struct {
	Owner                string
	Active               bool
	CanChangeCredentials bool
	CanSetMood           bool
	CanDeleteUser        bool
	CanChangeEmail       bool
}
