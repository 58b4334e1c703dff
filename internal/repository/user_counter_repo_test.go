package repository

import (
	"Keystone/internal/testinfra"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserCounterRepo_ApplyFollowDelta(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserCounterRepo(db)

	alice := testinfra.CreateUser(t, db, "alice", false)
	bob := testinfra.CreateUser(t, db, "bob", false)

	// alice 关注 bob
	require.NoError(t, repo.ApplyFollowDelta(ctx, bob.ID, alice.ID, 1))

	c, err := repo.GetCounters(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.FollowersCount)
	assert.Equal(t, int64(0), c.FollowingCount)

	c, err = repo.GetCounters(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.FollowersCount)
	assert.Equal(t, int64(1), c.FollowingCount)

	require.NoError(t, repo.ApplyFollowDelta(ctx, bob.ID, alice.ID, -1))
	followers, following := testinfra.Counters(t, db, bob.ID)
	assert.Zero(t, followers)
	assert.Zero(t, following)

	assert.Error(t, repo.ApplyFollowDelta(ctx, bob.ID, alice.ID, 2))
}

func TestUserCounterRepo_UnderflowIsRejected(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserCounterRepo(db)

	alice := testinfra.CreateUser(t, db, "alice", false)
	bob := testinfra.CreateUser(t, db, "bob", false)

	err := NewTransactor(db).Transaction(ctx, func(tx *gorm.DB) error {
		return repo.WithTx(tx).ApplyFollowDelta(ctx, bob.ID, alice.ID, -1)
	})
	assert.ErrorIs(t, err, ErrCounterUnderflow)

	followers, following := testinfra.Counters(t, db, bob.ID)
	assert.Zero(t, followers)
	assert.Zero(t, following)
}

func TestUserCounterRepo_MissingUser(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserCounterRepo(db)

	alice := testinfra.CreateUser(t, db, "alice", false)

	_, err := repo.GetCounters(ctx, alice.ID+1000)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.ApplyFollowDelta(ctx, alice.ID+1000, alice.ID, 1)
	assert.ErrorIs(t, err, ErrCounterUnderflow)
}

func TestUserCounterRepo_ApplyPurgeDeltas(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserCounterRepo(db)

	a := testinfra.CreateUser(t, db, "a", false)
	b := testinfra.CreateUser(t, db, "b", false)
	c := testinfra.CreateUser(t, db, "c", false)
	require.NoError(t, db.Model(a).Updates(map[string]any{"followers_count": 2, "following_count": 3}).Error)
	require.NoError(t, db.Model(b).Updates(map[string]any{"followers_count": 1, "following_count": 1}).Error)

	require.NoError(t, repo.ApplyPurgeDeltas(ctx, []uint64{a.ID, b.ID}, []uint64{a.ID}))

	followers, following := testinfra.Counters(t, db, a.ID)
	assert.Equal(t, int64(1), followers)
	assert.Equal(t, int64(2), following)

	followers, following = testinfra.Counters(t, db, b.ID)
	assert.Equal(t, int64(1), followers)
	assert.Equal(t, int64(0), following)

	assert.ErrorIs(t, repo.ApplyPurgeDeltas(ctx, []uint64{c.ID}, nil), ErrCounterUnderflow)
}
