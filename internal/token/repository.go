package token

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"github.com/moodlog/moodlog/internal/database"
	"github.com/moodlog/moodlog/internal/fault"
)

// Repository handles API token persistence. The token column is unique, so
// lookup by token resolves at most one row.
type Repository interface {
	Insert(ctx context.Context, t *APIToken) error
	GetByToken(ctx context.Context, token string) (*APIToken, error)
	// Deactivate soft-revokes the token. Capability flags are never touched.
	Deactivate(ctx context.Context, token string) error
	ListByOwner(ctx context.Context, owner string, filter StatusFilter) ([]APIToken, error)
}

type bunRepository struct {
	db *bun.DB
}

// NewRepository creates a Postgres-backed token repository.
func NewRepository(db *bun.DB) Repository {
	return &bunRepository{db: db}
}

func (r *bunRepository) Insert(ctx context.Context, t *APIToken) error {
	row := &database.APIToken{
		Token:                t.Token,
		OwnerUsername:        t.OwnerUsername,
		IsActive:             t.IsActive,
		CanChangeCredentials: t.Capabilities.CanChangeCredentials,
		CanSetMood:           t.Capabilities.CanSetMood,
		CanDeleteUser:        t.Capabilities.CanDeleteUser,
		CanChangeEmail:       t.Capabilities.CanChangeEmail,
	}

	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			// Derived tokens mix in fresh entropy, so this signals a
			// generation defect rather than contention.
			return fault.Inconsistency("derived token already exists")
		}
		return storeFault("insert token", err)
	}

	t.CreatedAt = row.CreatedAt
	return nil
}

func (r *bunRepository) GetByToken(ctx context.Context, token string) (*APIToken, error) {
	row := new(database.APIToken)
	err := r.db.NewSelect().
		Model(row).
		Where("token = ?", token).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.NotFound("token not found")
		}
		return nil, storeFault("get token", err)
	}

	return mapRow(row), nil
}

func (r *bunRepository) Deactivate(ctx context.Context, token string) error {
	res, err := r.db.NewUpdate().
		Model((*database.APIToken)(nil)).
		Set("is_active = ?", false).
		Where("token = ?", token).
		Exec(ctx)
	if err != nil {
		return storeFault("deactivate token", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storeFault("read rows affected", err)
	}
	if affected == 0 {
		return fault.NotFound("token not found")
	}
	return nil
}

func (r *bunRepository) ListByOwner(ctx context.Context, owner string, filter StatusFilter) ([]APIToken, error) {
	var rows []database.APIToken
	q := r.db.NewSelect().
		Model(&rows).
		Where("owner_username = ?", owner).
		Order("created_at ASC")

	switch filter {
	case FilterActive:
		q = q.Where("is_active = ?", true)
	case FilterInactive:
		q = q.Where("is_active = ?", false)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, storeFault("list tokens", err)
	}

	tokens := make([]APIToken, 0, len(rows))
	for i := range rows {
		tokens = append(tokens, *mapRow(&rows[i]))
	}
	return tokens, nil
}

func mapRow(row *database.APIToken) *APIToken {
	return &APIToken{
		Token:         row.Token,
		OwnerUsername: row.OwnerUsername,
		IsActive:      row.IsActive,
		Capabilities: Capabilities{
			CanChangeCredentials: row.CanChangeCredentials,
			CanSetMood:           row.CanSetMood,
			CanDeleteUser:        row.CanDeleteUser,
			CanChangeEmail:       row.CanChangeEmail,
		},
		CreatedAt: row.CreatedAt,
	}
}

func storeFault(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fault.Upstream(op+" timed out", err)
	}
	return fault.Upstream(op+" failed", err)
}
