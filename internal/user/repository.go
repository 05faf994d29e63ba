package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"github.com/moodlog/moodlog/internal/database"
	"github.com/moodlog/moodlog/internal/fault"
)

// Repository handles user persistence. The deliver callbacks run inside the
// same store transaction as the write they accompany: a failed delivery
// rolls the write back, so the registry never persists state it could not
// communicate.
type Repository interface {
	// Create inserts an inactive user and runs deliver in the same
	// transaction.
	Create(ctx context.Context, u *User, deliver func(ctx context.Context) error) error
	Get(ctx context.Context, username string) (*User, error)
	// GetByVerificationToken requires exactly one match: zero matches is a
	// NotFound, more than one is an Inconsistency surfaced to the caller.
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	// MarkVerified activates the user and rotates the verification token so
	// the consumed one cannot be replayed.
	MarkVerified(ctx context.Context, username, rotatedToken string) error
	// UpdatePassword stores a new password digest. The authorizing token is
	// re-validated under a row lock inside the write transaction, so the
	// digest cannot change on the strength of a token that was revoked
	// before the write committed.
	UpdatePassword(ctx context.Context, username, passwordDigest, apiToken string) error
	// UpdateEmail stores the new digest, rotates the verification token,
	// flags the user unverified, and runs deliver in the same transaction.
	// The authorizing token is re-validated inside that transaction.
	UpdateEmail(ctx context.Context, username, emailDigest, verificationToken, apiToken string, deliver func(ctx context.Context) error) error
	// Delete removes the user and cascades to their moods and API tokens
	// within one transaction, after re-validating the authorizing token.
	Delete(ctx context.Context, username, apiToken string) error
}

type bunRepository struct {
	db *bun.DB
}

// NewRepository creates a Postgres-backed user repository.
func NewRepository(db *bun.DB) Repository {
	return &bunRepository{db: db}
}

func (r *bunRepository) Create(ctx context.Context, u *User, deliver func(ctx context.Context) error) error {
	row := &database.User{
		Username:          u.Username,
		EmailDigest:       u.EmailDigest,
		PasswordDigest:    u.PasswordDigest,
		VerificationToken: u.VerificationToken,
		IsActive:          false,
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
				return fault.Newf(fault.KindDuplicate, "username %q already exists", u.Username)
			}
			return storeFault("insert user", err)
		}
		if deliver != nil {
			if err := deliver(ctx); err != nil {
				return fault.Upstream("verification email delivery failed", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.IsActive = row.IsActive
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *bunRepository) Get(ctx context.Context, username string) (*User, error) {
	row := new(database.User)
	err := r.db.NewSelect().
		Model(row).
		Where("username = ?", username).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.Newf(fault.KindNotFound, "user %q not found", username)
		}
		return nil, storeFault("get user", err)
	}

	return mapRow(row), nil
}

func (r *bunRepository) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	var rows []database.User
	err := r.db.NewSelect().
		Model(&rows).
		Where("verification_token = ?", token).
		Limit(2).
		Scan(ctx)
	if err != nil {
		return nil, storeFault("get user by verification token", err)
	}

	switch len(rows) {
	case 0:
		return nil, fault.NotFound("verification token not recognized")
	case 1:
		return mapRow(&rows[0]), nil
	default:
		return nil, fault.Inconsistency("verification token matches more than one user")
	}
}

func (r *bunRepository) MarkVerified(ctx context.Context, username, rotatedToken string) error {
	res, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("is_active = ?", true).
		Set("verification_token = ?", rotatedToken).
		Set("updated_at = now()").
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return storeFault("mark user verified", err)
	}
	return requireRows(res, username)
}

func (r *bunRepository) UpdatePassword(ctx context.Context, username, passwordDigest, apiToken string) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.GuardGrant(ctx, tx, apiToken, username, func(t *database.APIToken) bool { return t.CanChangeCredentials }); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model((*database.User)(nil)).
			Set("password_digest = ?", passwordDigest).
			Set("updated_at = now()").
			Where("username = ?", username).
			Exec(ctx)
		if err != nil {
			return storeFault("update password", err)
		}
		return requireRows(res, username)
	})
}

func (r *bunRepository) UpdateEmail(ctx context.Context, username, emailDigest, verificationToken, apiToken string, deliver func(ctx context.Context) error) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.GuardGrant(ctx, tx, apiToken, username, func(t *database.APIToken) bool { return t.CanChangeEmail }); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model((*database.User)(nil)).
			Set("email_digest = ?", emailDigest).
			Set("verification_token = ?", verificationToken).
			Set("is_active = ?", false).
			Set("updated_at = now()").
			Where("username = ?", username).
			Exec(ctx)
		if err != nil {
			return storeFault("update email", err)
		}
		if err := requireRows(res, username); err != nil {
			return err
		}
		if deliver != nil {
			if err := deliver(ctx); err != nil {
				return fault.Upstream("verification email delivery failed", err)
			}
		}
		return nil
	})
}

func (r *bunRepository) Delete(ctx context.Context, username, apiToken string) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.GuardGrant(ctx, tx, apiToken, username, func(t *database.APIToken) bool { return t.CanDeleteUser }); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*database.Mood)(nil)).
			Where("owner_username = ?", username).
			Exec(ctx); err != nil {
			return storeFault("delete user moods", err)
		}
		if _, err := tx.NewDelete().
			Model((*database.APIToken)(nil)).
			Where("owner_username = ?", username).
			Exec(ctx); err != nil {
			return storeFault("delete user tokens", err)
		}
		res, err := tx.NewDelete().
			Model((*database.User)(nil)).
			Where("username = ?", username).
			Exec(ctx)
		if err != nil {
			return storeFault("delete user", err)
		}
		return requireRows(res, username)
	})
}

func mapRow(row *database.User) *User {
	return &User{
		Username:          row.Username,
		EmailDigest:       row.EmailDigest,
		PasswordDigest:    row.PasswordDigest,
		VerificationToken: row.VerificationToken,
		IsActive:          row.IsActive,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func requireRows(res sql.Result, username string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return storeFault("read rows affected", err)
	}
	if affected == 0 {
		return fault.Newf(fault.KindNotFound, "user %q not found", username)
	}
	return nil
}

// storeFault classifies store errors. Deadline and cancellation surface as
// retryable upstream failures rather than fatal ones.
func storeFault(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fault.Upstream(op+" timed out", err)
	}
	return fault.Upstream(op+" failed", err)
}
