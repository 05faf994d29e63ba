package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/moodlog/internal/credentials"
	"github.com/moodlog/moodlog/internal/fault"
	"github.com/moodlog/moodlog/internal/logging"
)

// ---- fakes ----

// memRepository is an in-memory Repository that honors the transactional
// contracts of the real one: a failed delivery rolls the accompanying
// write back, and token-gated writes re-check the grant at write time the
// way the store re-checks it under a row lock.
type memRepository struct {
	mu     sync.Mutex
	users  map[string]*User
	grants GrantResolver
}

func newMemRepository(grants GrantResolver) *memRepository {
	return &memRepository{users: make(map[string]*User), grants: grants}
}

func (r *memRepository) authorize(ctx context.Context, token, owner string, capable func(Grant) bool) error {
	if r.grants == nil {
		return nil
	}
	g, err := r.grants.ResolveGrant(ctx, token)
	if err != nil {
		return err
	}
	if !g.Active || g.Owner != owner || (capable != nil && !capable(g)) {
		return fault.Forbidden("token no longer authorizes this operation")
	}
	return nil
}

func (r *memRepository) Create(ctx context.Context, u *User, deliver func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.Username]; ok {
		return fault.Newf(fault.KindDuplicate, "username %q already exists", u.Username)
	}
	if deliver != nil {
		if err := deliver(ctx); err != nil {
			return fault.Upstream("verification email delivery failed", err)
		}
	}

	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.Username] = &cp
	return nil
}

func (r *memRepository) Get(ctx context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return nil, fault.Newf(fault.KindNotFound, "user %q not found", username)
	}
	cp := *u
	return &cp, nil
}

func (r *memRepository) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*User
	for _, u := range r.users {
		if u.VerificationToken == token {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fault.NotFound("verification token not recognized")
	case 1:
		cp := *matches[0]
		return &cp, nil
	default:
		return nil, fault.Inconsistency("verification token matches more than one user")
	}
}

func (r *memRepository) MarkVerified(ctx context.Context, username, rotatedToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[username]
	if !ok {
		return fault.Newf(fault.KindNotFound, "user %q not found", username)
	}
	u.IsActive = true
	u.VerificationToken = rotatedToken
	return nil
}

func (r *memRepository) UpdatePassword(ctx context.Context, username, passwordDigest, apiToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(ctx, apiToken, username, func(g Grant) bool { return g.CanChangeCredentials }); err != nil {
		return err
	}
	u, ok := r.users[username]
	if !ok {
		return fault.Newf(fault.KindNotFound, "user %q not found", username)
	}
	u.PasswordDigest = passwordDigest
	return nil
}

func (r *memRepository) UpdateEmail(ctx context.Context, username, emailDigest, verificationToken, apiToken string, deliver func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(ctx, apiToken, username, func(g Grant) bool { return g.CanChangeEmail }); err != nil {
		return err
	}
	u, ok := r.users[username]
	if !ok {
		return fault.Newf(fault.KindNotFound, "user %q not found", username)
	}
	if deliver != nil {
		if err := deliver(ctx); err != nil {
			return fault.Upstream("verification email delivery failed", err)
		}
	}
	u.EmailDigest = emailDigest
	u.VerificationToken = verificationToken
	u.IsActive = false
	return nil
}

func (r *memRepository) Delete(ctx context.Context, username, apiToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.authorize(ctx, apiToken, username, func(g Grant) bool { return g.CanDeleteUser }); err != nil {
		return err
	}
	if _, ok := r.users[username]; !ok {
		return fault.Newf(fault.KindNotFound, "user %q not found", username)
	}
	delete(r.users, username)
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sends []string // recipient addresses
	err   error
}

func (m *fakeMailer) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sends = append(m.sends, toEmail)
	return nil
}

type fakeGrants struct {
	grant Grant
	err   error
}

func (g *fakeGrants) ResolveGrant(ctx context.Context, token string) (Grant, error) {
	return g.grant, g.err
}

// revocableGrants hands out an active grant once, then inactive ones. This
// is what the repository sees when a revocation commits between the
// service's capability check and the write.
type revocableGrants struct {
	mu       sync.Mutex
	grant    Grant
	resolved int
}

func (g *revocableGrants) ResolveGrant(ctx context.Context, token string) (Grant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved++
	grant := g.grant
	if g.resolved > 1 {
		grant.Active = false
	}
	return grant, nil
}

func newTestService(repo Repository, grants GrantResolver, mailer Mailer) *Service {
	return NewService(repo, grants, mailer, logging.NewLogger(true), 5*time.Second)
}

// ---- tests ----

func TestRegister(t *testing.T) {
	repo := newMemRepository(nil)
	mailer := &fakeMailer{}
	svc := newTestService(repo, &fakeGrants{}, mailer)

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.IsActive, "new users start unverified")
	assert.NotEmpty(t, u.VerificationToken)
	assert.NotEqual(t, "correct horse battery", u.PasswordDigest)
	assert.Equal(t, credentials.DigestEmail("alice@example.com"), u.EmailDigest)
	assert.Equal(t, []string{"alice@example.com"}, mailer.sends)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newMemRepository(nil)
	svc := newTestService(repo, &fakeGrants{}, &fakeMailer{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password-one")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "other@example.com", "password-two")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindDuplicate))
}

func TestRegisterMailFailureRollsBack(t *testing.T) {
	repo := newMemRepository(nil)
	mailer := &fakeMailer{err: assert.AnError}
	svc := newTestService(repo, &fakeGrants{}, mailer)

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUpstream))

	_, err = repo.Get(context.Background(), "alice")
	assert.True(t, fault.IsKind(err, fault.KindNotFound), "no user row may survive a failed delivery")
}

func TestVerifyEmail(t *testing.T) {
	repo := newMemRepository(nil)
	svc := newTestService(repo, &fakeGrants{}, &fakeMailer{})

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.NoError(t, err)
	issued := u.VerificationToken

	require.NoError(t, svc.VerifyEmail(context.Background(), issued))

	verified, err := svc.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, verified.IsActive)
	assert.NotEqual(t, issued, verified.VerificationToken, "consumed token must be rotated")

	// Replaying the consumed token must fail.
	err = svc.VerifyEmail(context.Background(), issued)
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc := newTestService(newMemRepository(nil), &fakeGrants{}, &fakeMailer{})

	err := svc.VerifyEmail(context.Background(), "deadbeef")
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestChangePassword(t *testing.T) {
	grants := &fakeGrants{grant: Grant{Owner: "alice", Active: true, CanChangeCredentials: true}}
	repo := newMemRepository(grants)
	svc := newTestService(repo, grants, &fakeMailer{})

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "old password")
	require.NoError(t, err)
	oldDigest := u.PasswordDigest

	require.NoError(t, svc.ChangePassword(context.Background(), "some-token", "new password"))

	updated, err := svc.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, oldDigest, updated.PasswordDigest)
	assert.True(t, credentials.Verify("new password", updated.PasswordDigest))
}

func TestChangePasswordForbidden(t *testing.T) {
	tests := []struct {
		name  string
		grant Grant
	}{
		{"inactive token", Grant{Owner: "alice", Active: false, CanChangeCredentials: true}},
		{"missing capability", Grant{Owner: "alice", Active: true, CanChangeCredentials: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grants := &fakeGrants{grant: tt.grant}
			repo := newMemRepository(grants)
			svc := newTestService(repo, grants, &fakeMailer{})

			_, err := svc.Register(context.Background(), "alice", "alice@example.com", "old password")
			require.NoError(t, err)

			err = svc.ChangePassword(context.Background(), "some-token", "new password")
			assert.True(t, fault.IsKind(err, fault.KindForbidden))
		})
	}
}

func TestChangeEmail(t *testing.T) {
	grants := &fakeGrants{grant: Grant{Owner: "alice", Active: true, CanChangeEmail: true}}
	repo := newMemRepository(grants)
	mailer := &fakeMailer{}
	svc := newTestService(repo, grants, mailer)

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.VerificationToken))

	require.NoError(t, svc.ChangeEmail(context.Background(), "some-token", "new@example.com"))

	updated, err := svc.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, credentials.DigestEmail("new@example.com"), updated.EmailDigest)
	assert.False(t, updated.IsActive, "changed address must be re-verified")
	assert.Equal(t, []string{"alice@example.com", "new@example.com"}, mailer.sends)
}

func TestChangeEmailMailFailureKeepsOldAddress(t *testing.T) {
	grants := &fakeGrants{grant: Grant{Owner: "alice", Active: true, CanChangeEmail: true}}
	repo := newMemRepository(grants)
	mailer := &fakeMailer{}
	svc := newTestService(repo, grants, mailer)

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(context.Background(), u.VerificationToken))

	mailer.err = assert.AnError
	err = svc.ChangeEmail(context.Background(), "some-token", "new@example.com")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUpstream))

	unchanged, err := svc.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, credentials.DigestEmail("alice@example.com"), unchanged.EmailDigest)
	assert.True(t, unchanged.IsActive)
}

func TestDelete(t *testing.T) {
	grants := &fakeGrants{grant: Grant{Owner: "alice", Active: true, CanDeleteUser: true}}
	repo := newMemRepository(grants)
	svc := newTestService(repo, grants, &fakeMailer{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "some-token"))

	_, err = svc.Lookup(context.Background(), "alice")
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestDeleteForbidden(t *testing.T) {
	grants := &fakeGrants{grant: Grant{Owner: "alice", Active: true, CanDeleteUser: false}}
	repo := newMemRepository(grants)
	svc := newTestService(repo, grants, &fakeMailer{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "some-token")
	assert.True(t, fault.IsKind(err, fault.KindForbidden))

	_, err = svc.Lookup(context.Background(), "alice")
	assert.NoError(t, err, "forbidden delete must not remove the user")
}

func TestChangePasswordRevokedBeforeWrite(t *testing.T) {
	grants := &revocableGrants{grant: Grant{Owner: "alice", Active: true, CanChangeCredentials: true}}
	repo := newMemRepository(grants)
	svc := newTestService(repo, grants, &fakeMailer{})

	u, err := svc.Register(context.Background(), "alice", "alice@example.com", "old password")
	require.NoError(t, err)
	oldDigest := u.PasswordDigest

	err = svc.ChangePassword(context.Background(), "some-token", "new password")
	assert.True(t, fault.IsKind(err, fault.KindForbidden))

	unchanged, err := svc.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, oldDigest, unchanged.PasswordDigest, "a revoked token must not change the digest")
}

func TestChangeEmailRevokedBeforeWrite(t *testing.T) {
	grants := &revocableGrants{grant: Grant{Owner: "alice", Active: true, CanChangeEmail: true}}
	repo := newMemRepository(grants)
	svc := newTestService(repo, grants, &fakeMailer{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.NoError(t, err)

	err = svc.ChangeEmail(context.Background(), "some-token", "new@example.com")
	assert.True(t, fault.IsKind(err, fault.KindForbidden))

	unchanged, err := svc.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, credentials.DigestEmail("alice@example.com"), unchanged.EmailDigest)
}

func TestDeleteRevokedBeforeWrite(t *testing.T) {
	grants := &revocableGrants{grant: Grant{Owner: "alice", Active: true, CanDeleteUser: true}}
	repo := newMemRepository(grants)
	svc := newTestService(repo, grants, &fakeMailer{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "some-token")
	assert.True(t, fault.IsKind(err, fault.KindForbidden))

	_, err = svc.Lookup(context.Background(), "alice")
	assert.NoError(t, err, "a revoked token must not delete the user")
}
