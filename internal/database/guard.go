package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/moodlog/moodlog/internal/fault"
)

// GuardGrant re-validates the authorizing token inside the mutation's own
// transaction. The token row is locked, so a concurrent revocation either
// commits first and fails the guard, or waits until the guarded write
// commits. capable may be nil when liveness alone authorizes the
// operation.
func GuardGrant(ctx context.Context, tx bun.Tx, token, owner string, capable func(*APIToken) bool) error {
	row := new(APIToken)
	err := tx.NewSelect().
		Model(row).
		Where("token = ?", token).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fault.NotFound("token not found")
		}
		return fault.Upstream("lock token failed", err)
	}

	if !row.IsActive || row.OwnerUsername != owner || (capable != nil && !capable(row)) {
		return fault.Forbidden("token no longer authorizes this operation")
	}
	return nil
}
