package mood

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"github.com/moodlog/moodlog/internal/database"
	"github.com/moodlog/moodlog/internal/fault"
)

// Repository handles mood persistence. SwitchActive is the only write path
// that activates a mood, and it is transactional: observers never see two
// active moods for one owner. Both write paths re-validate the authorizing
// token inside their transaction, so a revocation that commits first also
// blocks the write.
type Repository interface {
	// SwitchActive deactivates the owner's currently active mood and
	// inserts the new entry as the active one, atomically.
	SwitchActive(ctx context.Context, owner, label, apiToken string) (*Mood, error)
	// DeleteAllForOwner removes every mood of the owner, active or not.
	DeleteAllForOwner(ctx context.Context, owner, apiToken string) error
	ListActive(ctx context.Context, owner string) ([]Mood, error)
	ListByOwner(ctx context.Context, owner string) ([]Mood, error)
}

type bunRepository struct {
	db *bun.DB
}

// NewRepository creates a Postgres-backed mood repository.
func NewRepository(db *bun.DB) Repository {
	return &bunRepository{db: db}
}

func (r *bunRepository) SwitchActive(ctx context.Context, owner, label, apiToken string) (*Mood, error) {
	// Two concurrent switches for one owner can both pass the deactivate
	// and then collide on the one-active-per-owner index. The loser retries
	// once; its second pass deactivates the winner's row.
	for attempt := 0; ; attempt++ {
		row := &database.Mood{
			OwnerUsername: owner,
			Mood:          label,
			IsActive:      true,
		}

		// The deactivate is scoped to the owner, not a table scan: one
		// user's mood switch never touches another user's rows.
		err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			if err := database.GuardGrant(ctx, tx, apiToken, owner, func(t *database.APIToken) bool { return t.CanSetMood }); err != nil {
				return err
			}

			if _, err := tx.NewUpdate().
				Model((*database.Mood)(nil)).
				Set("is_active = ?", false).
				Where("owner_username = ?", owner).
				Where("is_active = ?", true).
				Exec(ctx); err != nil {
				return storeFault("deactivate previous mood", err)
			}

			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return storeFault("insert mood", err)
			}
			return nil
		})
		if err == nil {
			return mapRow(row), nil
		}
		if isActiveIndexViolation(err) {
			if attempt == 0 {
				continue
			}
			return nil, fault.Upstream("mood switch lost a concurrent update, retry", err)
		}
		return nil, err
	}
}

func (r *bunRepository) DeleteAllForOwner(ctx context.Context, owner, apiToken string) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := database.GuardGrant(ctx, tx, apiToken, owner, nil); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*database.Mood)(nil)).
			Where("owner_username = ?", owner).
			Exec(ctx); err != nil {
			return storeFault("delete moods", err)
		}
		return nil
	})
}

func (r *bunRepository) ListActive(ctx context.Context, owner string) ([]Mood, error) {
	var rows []database.Mood
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_username = ?", owner).
		Where("is_active = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, storeFault("list active moods", err)
	}
	return mapRows(rows), nil
}

func (r *bunRepository) ListByOwner(ctx context.Context, owner string) ([]Mood, error) {
	var rows []database.Mood
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_username = ?", owner).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, storeFault("list moods", err)
	}
	return mapRows(rows), nil
}

func mapRow(row *database.Mood) *Mood {
	return &Mood{
		OwnerUsername: row.OwnerUsername,
		Mood:          row.Mood,
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt,
	}
}

func mapRows(rows []database.Mood) []Mood {
	moods := make([]Mood, 0, len(rows))
	for i := range rows {
		moods = append(moods, *mapRow(&rows[i]))
	}
	return moods
}

func isActiveIndexViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func storeFault(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fault.Upstream(op+" timed out", err)
	}
	return fault.Upstream(op+" failed", err)
}
