package token

import (
	"fmt"
	"time"
)

// Capabilities are the boolean permissions fixed at issuance. They control
// which mutating operations a token may authorize and never change once
// the token exists.
type Capabilities struct {
	CanChangeCredentials bool `json:"can_change_credentials"`
	CanSetMood           bool `json:"can_set_mood"`
	CanDeleteUser        bool `json:"can_delete_user"`
	CanChangeEmail       bool `json:"can_change_email"`
}

// APIToken is an opaque bearer credential bound to its owner. Revocation is
// soft: IsActive flips to false, the row stays.
type APIToken struct {
	Token         string `json:"api_token"`
	OwnerUsername string `json:"username"`
	IsActive      bool   `json:"is_active"`
	Capabilities
	CreatedAt time.Time `json:"created_at"`
}

// StatusFilter selects tokens by liveness when listing. The polarity is
// always explicit at the call site; there is no implicit default.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterActive
	FilterInactive
)

// ParseStatusFilter maps the wire value to a filter. An empty value means
// all tokens; anything unrecognized is rejected.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch s {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "inactive":
		return FilterInactive, nil
	default:
		return FilterAll, fmt.Errorf("unknown status filter %q", s)
	}
}
