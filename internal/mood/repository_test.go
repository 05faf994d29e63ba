package mood

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlog/moodlog/internal/database"
	"github.com/moodlog/moodlog/internal/fault"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewRepository(database.NewBunDB(sqlDB)), mock
}

func grantColumns() []string {
	return []string{
		"id", "token", "owner_username", "is_active",
		"can_change_credentials", "can_set_mood", "can_delete_user", "can_change_email",
		"created_at",
	}
}

func grantRows(owner string, active, canSetMood bool) *sqlmock.Rows {
	return sqlmock.NewRows(grantColumns()).
		AddRow(uuid.NewString(), "tok", owner, active, false, canSetMood, false, false, time.Now())
}

func TestSwitchActiveRunsInOneTransaction(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "api_tokens"`).
		WillReturnRows(grantRows("alice", true, true))
	mock.ExpectExec(`UPDATE "moods"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "moods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uuid.NewString(), time.Now()))
	mock.ExpectCommit()

	m, err := repo.SwitchActive(context.Background(), "alice", "happy", "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", m.OwnerUsername)
	assert.Equal(t, "happy", m.Mood)
	assert.True(t, m.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwitchActiveRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "api_tokens"`).
		WillReturnRows(grantRows("alice", true, true))
	mock.ExpectExec(`UPDATE "moods"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "moods"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.SwitchActive(context.Background(), "alice", "happy", "tok")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindUpstream))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwitchActiveRevokedToken(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "api_tokens"`).
		WillReturnRows(grantRows("alice", false, true))
	mock.ExpectRollback()

	_, err := repo.SwitchActive(context.Background(), "alice", "happy", "tok")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindForbidden), "a token revoked before the switch must not activate a mood")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwitchActiveRetriesLostRace(t *testing.T) {
	repo, mock := newMockRepository(t)

	// The loser of two simultaneous switches trips the one-active-per-owner
	// index; its retry deactivates the winner's row and succeeds.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "api_tokens"`).
		WillReturnRows(grantRows("alice", true, true))
	mock.ExpectExec(`UPDATE "moods"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "moods"`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "idx_moods_one_active_per_owner"`))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "api_tokens"`).
		WillReturnRows(grantRows("alice", true, true))
	mock.ExpectExec(`UPDATE "moods"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "moods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uuid.NewString(), time.Now()))
	mock.ExpectCommit()

	m, err := repo.SwitchActive(context.Background(), "alice", "happy", "tok")
	require.NoError(t, err)
	assert.True(t, m.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwitchActiveGivesUpAfterRetry(t *testing.T) {
	repo, mock := newMockRepository(t)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM "api_tokens"`).
			WillReturnRows(grantRows("alice", true, true))
		mock.ExpectExec(`UPDATE "moods"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO "moods"`).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "idx_moods_one_active_per_owner"`))
		mock.ExpectRollback()
	}

	_, err := repo.SwitchActive(context.Background(), "alice", "happy", "tok")
	require.Error(t, err)

	var f *fault.Fault
	require.ErrorAs(t, err, &f)
	assert.True(t, f.Retryable(), "losing twice surfaces as retryable, the client can try again")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllForOwner(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "api_tokens"`).
		WillReturnRows(grantRows("alice", true, false))
	mock.ExpectExec(`DELETE FROM "moods"`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteAllForOwner(context.Background(), "alice", "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActive(t *testing.T) {
	repo, mock := newMockRepository(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "moods"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_username", "mood", "is_active", "created_at"}).
			AddRow(uuid.NewString(), "alice", "happy", true, now))

	moods, err := repo.ListActive(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, moods, 1)
	assert.Equal(t, "happy", moods[0].Mood)
	assert.True(t, moods[0].IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}
