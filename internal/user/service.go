package user

import (
	"context"
	"time"

	"github.com/moodlog/moodlog/internal/credentials"
	"github.com/moodlog/moodlog/internal/fault"
	"github.com/moodlog/moodlog/internal/logging"
)

// Mailer is the black-box mail collaborator. A returned error means the
// message was not delivered.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
}

// GrantResolver resolves an opaque API token to its capability grant. The
// token authority implements this; the registry only consumes it.
type GrantResolver interface {
	ResolveGrant(ctx context.Context, token string) (Grant, error)
}

// Service implements the user registry: registration, verification,
// credential changes and account deletion.
type Service struct {
	repo      Repository
	grants    GrantResolver
	mailer    Mailer
	logger    *logging.Logger
	opTimeout time.Duration
}

func NewService(repo Repository, grants GrantResolver, mailer Mailer, logger *logging.Logger, opTimeout time.Duration) *Service {
	return &Service{
		repo:      repo,
		grants:    grants,
		mailer:    mailer,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// Register creates an inactive user and sends the verification email. The
// insert and the delivery share one transaction: if the mail collaborator
// fails, no user row survives.
func (s *Service) Register(ctx context.Context, username, emailAddr, password string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	passwordDigest, err := credentials.Hash(password)
	if err != nil {
		return nil, err
	}
	verificationToken, err := credentials.DeriveToken(username)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:          username,
		EmailDigest:       credentials.DigestEmail(emailAddr),
		PasswordDigest:    passwordDigest,
		VerificationToken: verificationToken,
	}

	err = s.repo.Create(ctx, u, func(ctx context.Context) error {
		return s.mailer.SendVerificationEmail(ctx, emailAddr, verificationToken)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "username", username)
	return u, nil
}

// Lookup fetches a user by username.
func (s *Service) Lookup(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.repo.Get(ctx, username)
}

// VerifyEmail consumes a verification token: the user becomes active and
// the token is rotated so it cannot be replayed. Zero matches is NotFound;
// more than one match indicates registry corruption and surfaces as an
// Inconsistency.
func (s *Service) VerifyEmail(ctx context.Context, verificationToken string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	u, err := s.repo.GetByVerificationToken(ctx, verificationToken)
	if err != nil {
		return err
	}

	rotated, err := credentials.DeriveToken(u.Username)
	if err != nil {
		return err
	}
	if err := s.repo.MarkVerified(ctx, u.Username, rotated); err != nil {
		return err
	}

	s.logger.Info("email verified", "username", u.Username)
	return nil
}

// ChangePassword re-hashes and stores a new password for the token's owner.
// Requires an active token carrying can_change_credentials. The resolve
// here classifies failures precisely; the repository re-validates the
// grant inside the write transaction, so a revocation landing after this
// check still blocks the write.
func (s *Service) ChangePassword(ctx context.Context, apiToken, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	grant, err := s.grants.ResolveGrant(ctx, apiToken)
	if err != nil {
		return err
	}
	if !grant.Active || !grant.CanChangeCredentials {
		return fault.Forbidden("token is inactive or lacks can_change_credentials")
	}

	digest, err := credentials.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, grant.Owner, digest, apiToken); err != nil {
		return err
	}

	s.logger.Info("password changed", "username", grant.Owner)
	return nil
}

// ChangeEmail stores the new address digest, rotates the verification
// token, flags the user unverified and re-sends the verification mail, all
// inside one transaction. A delivery failure leaves the old address in place.
func (s *Service) ChangeEmail(ctx context.Context, apiToken, newEmail string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	grant, err := s.grants.ResolveGrant(ctx, apiToken)
	if err != nil {
		return err
	}
	if !grant.Active || !grant.CanChangeEmail {
		return fault.Forbidden("token is inactive or lacks can_change_email")
	}

	verificationToken, err := credentials.DeriveToken(grant.Owner)
	if err != nil {
		return err
	}

	err = s.repo.UpdateEmail(ctx, grant.Owner, credentials.DigestEmail(newEmail), verificationToken, apiToken, func(ctx context.Context) error {
		return s.mailer.SendVerificationEmail(ctx, newEmail, verificationToken)
	})
	if err != nil {
		return err
	}

	s.logger.Info("email changed, re-verification pending", "username", grant.Owner)
	return nil
}

// Delete removes the token's owner along with all their moods and API
// tokens. Requires an active token carrying can_delete_user.
func (s *Service) Delete(ctx context.Context, apiToken string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	grant, err := s.grants.ResolveGrant(ctx, apiToken)
	if err != nil {
		return err
	}
	if !grant.Active || !grant.CanDeleteUser {
		return fault.Forbidden("token is inactive or lacks can_delete_user")
	}

	if err := s.repo.Delete(ctx, grant.Owner, apiToken); err != nil {
		return err
	}

	s.logger.Info("user deleted", "username", grant.Owner)
	return nil
}
