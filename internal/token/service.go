package token

import (
	"context"
	"time"

	"github.com/moodlog/moodlog/internal/credentials"
	"github.com/moodlog/moodlog/internal/fault"
	"github.com/moodlog/moodlog/internal/logging"
	"github.com/moodlog/moodlog/internal/user"
)

// Service is the token authority: issuance, validation, soft revocation
// and listing of API tokens.
type Service struct {
	repo      Repository
	users     user.Repository
	logger    *logging.Logger
	opTimeout time.Duration
}

func NewService(repo Repository, users user.Repository, logger *logging.Logger, opTimeout time.Duration) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// Issue creates a new active token bound to the user with exactly the
// requested capability flags. The password must verify against the user's
// digest; on mismatch no row is created.
func (s *Service) Issue(ctx context.Context, username, password string, caps Capabilities) (*APIToken, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if !credentials.Verify(password, u.PasswordDigest) {
		return nil, fault.Newf(fault.KindInvalidCredentials, "password mismatch for user %q", username)
	}

	opaque, err := credentials.DeriveToken(username)
	if err != nil {
		return nil, err
	}

	t := &APIToken{
		Token:         opaque,
		OwnerUsername: username,
		IsActive:      true,
		Capabilities:  caps,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("token issued", "username", username)
	return t, nil
}

// Revoke soft-revokes a token. The co-presented password is verified
// against the digest of the owner resolved FROM the token, never compared
// to stored values directly.
func (s *Service) Revoke(ctx context.Context, apiToken, password string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	t, err := s.repo.GetByToken(ctx, apiToken)
	if err != nil {
		return err
	}
	owner, err := s.users.Get(ctx, t.OwnerUsername)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return fault.Inconsistency("token exists but its owner does not")
		}
		return err
	}
	if !credentials.Verify(password, owner.PasswordDigest) {
		return fault.Newf(fault.KindInvalidCredentials, "password mismatch for user %q", owner.Username)
	}

	if err := s.repo.Deactivate(ctx, apiToken); err != nil {
		return err
	}

	s.logger.Info("token revoked", "username", owner.Username)
	return nil
}

// Validate reports whether the token exists, is active and resolves to
// exactly one owner, returning that owner.
func (s *Service) Validate(ctx context.Context, apiToken string) (*user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	t, err := s.repo.GetByToken(ctx, apiToken)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, fault.Forbidden("token has been revoked")
	}

	owner, err := s.users.Get(ctx, t.OwnerUsername)
	if err != nil {
		if fault.IsKind(err, fault.KindNotFound) {
			return nil, fault.Inconsistency("token exists but its owner does not")
		}
		return nil, err
	}
	return owner, nil
}

// ResolveGrant maps a token to its capability grant for the registry and
// the mood ledger. Resolution does not require the token to be active;
// callers decide what an inactive grant means.
func (s *Service) ResolveGrant(ctx context.Context, apiToken string) (user.Grant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	t, err := s.repo.GetByToken(ctx, apiToken)
	if err != nil {
		return user.Grant{}, err
	}
	return user.Grant{
		Owner:                t.OwnerUsername,
		Active:               t.IsActive,
		CanChangeCredentials: t.Capabilities.CanChangeCredentials,
		CanSetMood:           t.Capabilities.CanSetMood,
		CanDeleteUser:        t.Capabilities.CanDeleteUser,
		CanChangeEmail:       t.Capabilities.CanChangeEmail,
	}, nil
}

// ListForUser returns the user's tokens after verifying the password. The
// filter polarity is chosen by the caller; liveness is visible on every
// returned token rather than silently filtered.
func (s *Service) ListForUser(ctx context.Context, username, password string, filter StatusFilter) ([]APIToken, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if !credentials.Verify(password, u.PasswordDigest) {
		return nil, fault.Newf(fault.KindInvalidCredentials, "password mismatch for user %q", username)
	}

	return s.repo.ListByOwner(ctx, username, filter)
}
