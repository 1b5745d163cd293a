package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-yetichat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupSessionRepo(t *testing.T, opts ...SessionOption) (*SessionRepository, *bun.DB) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() {
		_ = bunDB.Close()
	})

	manager := NewManager(bunDB, opts...)
	require.NoError(t, manager.Migrate(context.Background()))

	_, err = bunDB.NewDelete().Model((*LocalSessionModel)(nil)).Where("1 = 1").Exec(context.Background())
	require.NoError(t, err)

	return manager.Sessions(), bunDB
}

func TestSessionRepositoryLoadEmpty(t *testing.T) {
	repo, _ := setupSessionRepo(t)

	session, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionRepositorySaveAndLoad(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := setupSessionRepo(t, WithClock(func() time.Time { return created }))
	ctx := context.Background()

	err := repo.Save(ctx, &yetichat.LocalSession{
		UID:       "alice_1",
		AuthToken: "token-1",
		User:      &yetichat.User{UID: "alice_1", Name: "Alice", Tags: []string{"beta"}},
	})
	require.NoError(t, err)

	session, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, "alice_1", session.UID)
	assert.Equal(t, "token-1", session.AuthToken)
	require.NotNil(t, session.User)
	assert.Equal(t, "Alice", session.User.Name)
	assert.Equal(t, []string{"beta"}, session.User.Tags)
	assert.True(t, session.CreatedAt.Equal(created))
}

func TestSessionRepositorySaveReplacesSlot(t *testing.T) {
	repo, db := setupSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &yetichat.LocalSession{UID: "alice_1", AuthToken: "token-1"}))
	require.NoError(t, repo.Save(ctx, &yetichat.LocalSession{UID: "bob_2", AuthToken: "token-2"}))

	count, err := db.NewSelect().Model((*LocalSessionModel)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	session, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "bob_2", session.UID)
	assert.Equal(t, "token-2", session.AuthToken)
}

func TestSessionRepositoryClear(t *testing.T) {
	repo, _ := setupSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &yetichat.LocalSession{UID: "alice_1"}))
	require.NoError(t, repo.Clear(ctx))

	session, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, repo.Clear(ctx))
}

func TestSessionRepositorySlotsAreIsolated(t *testing.T) {
	primary, db := setupSessionRepo(t)
	secondary := NewSessionRepository(db, WithSlot("secondary"))
	ctx := context.Background()

	require.NoError(t, primary.Save(ctx, &yetichat.LocalSession{UID: "alice_1"}))

	session, err := secondary.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	require.NoError(t, secondary.Save(ctx, &yetichat.LocalSession{UID: "bob_2"}))
	require.NoError(t, primary.Clear(ctx))

	session, err = secondary.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "bob_2", session.UID)
}

func TestSessionRepositorySaveNilClears(t *testing.T) {
	repo, _ := setupSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &yetichat.LocalSession{UID: "alice_1"}))
	require.NoError(t, repo.Save(ctx, nil))

	session, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestManagerValidate(t *testing.T) {
	assert.Error(t, NewManager(nil).Validate())
}
