package mood

import (
	"context"
	"time"

	"github.com/moodlog/moodlog/internal/fault"
	"github.com/moodlog/moodlog/internal/logging"
	"github.com/moodlog/moodlog/internal/user"
)

// Service is the mood ledger. It guards the one-active-mood-per-user
// invariant and gates every mutation on the presented token's grant.
type Service struct {
	repo      Repository
	grants    user.GrantResolver
	logger    *logging.Logger
	opTimeout time.Duration
}

func NewService(repo Repository, grants user.GrantResolver, logger *logging.Logger, opTimeout time.Duration) *Service {
	return &Service{
		repo:      repo,
		grants:    grants,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// Set records a new mood for the token's owner. The previous active mood is
// deactivated and the new one activated in a single atomic switch; two
// concurrent Set calls can interleave without ever leaving two active rows.
func (s *Service) Set(ctx context.Context, apiToken, label string) (*Mood, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	grant, err := s.grants.ResolveGrant(ctx, apiToken)
	if err != nil {
		return nil, err
	}
	if !grant.Active || !grant.CanSetMood {
		return nil, fault.Forbidden("token is inactive or lacks can_set_mood")
	}

	m, err := s.repo.SwitchActive(ctx, grant.Owner, label, apiToken)
	if err != nil {
		return nil, err
	}

	s.logger.Info("mood set", "username", grant.Owner, "mood", label)
	return m, nil
}

// Delete removes ALL moods of the token's owner, not just the active one.
// The breadth is intentional: the operation clears the owner's history.
func (s *Service) Delete(ctx context.Context, apiToken string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	grant, err := s.grants.ResolveGrant(ctx, apiToken)
	if err != nil {
		return err
	}
	if !grant.Active {
		return fault.Forbidden("token has been revoked")
	}

	if err := s.repo.DeleteAllForOwner(ctx, grant.Owner, apiToken); err != nil {
		return err
	}

	s.logger.Info("moods deleted", "username", grant.Owner)
	return nil
}

// Active returns the user's single active mood. Zero active moods is a
// NotFound; more than one means a failed atomic switch corrupted the
// ledger and is surfaced as an Inconsistency, never silently resolved.
func (s *Service) Active(ctx context.Context, username string) (*Mood, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	return s.active(ctx, username)
}

func (s *Service) active(ctx context.Context, username string) (*Mood, error) {
	actives, err := s.repo.ListActive(ctx, username)
	if err != nil {
		return nil, err
	}

	switch len(actives) {
	case 0:
		return nil, fault.Newf(fault.KindNotFound, "user %q has no active mood", username)
	case 1:
		return &actives[0], nil
	default:
		return nil, fault.Newf(fault.KindInconsistency, "user %q has %d active moods", username, len(actives))
	}
}

// History returns the active mood plus all historical ones. The aggregate
// depends on a well-defined active mood: if Active fails, History fails
// with the same error.
func (s *Service) History(ctx context.Context, username string) (*History, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	active, err := s.active(ctx, username)
	if err != nil {
		return nil, err
	}

	all, err := s.repo.ListByOwner(ctx, username)
	if err != nil {
		return nil, err
	}

	inactive := make([]Mood, 0, len(all))
	for _, m := range all {
		if !m.IsActive {
			inactive = append(inactive, m)
		}
	}

	return &History{ActiveMood: *active, InactiveMoods: inactive}, nil
}
