package repository

import (
	"Keystone/internal/model"
	"Keystone/internal/testinfra"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFollowRepo_CreateAndDelete(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserFollowRepo(db)

	alice := testinfra.CreateUser(t, db, "alice", false)
	bob := testinfra.CreateUser(t, db, "bob", false)

	edge, err := repo.Create(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, edge.FollowerID)
	assert.Equal(t, bob.ID, edge.FollowingID)
	assert.False(t, edge.CreatedAt.IsZero())

	exists, err := repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists, "edges are directed")

	got, err := repo.Get(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.WithinDuration(t, edge.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = repo.Create(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrFollowConflict)

	require.NoError(t, repo.Delete(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID, bob.ID), ErrFollowNotFound)

	got, err = repo.Get(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserFollowRepo_CreateRejectsInvalidEdges(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserFollowRepo(db)

	alice := testinfra.CreateUser(t, db, "alice", false)

	_, err := repo.Create(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrFollowConflict)

	_, err = repo.Create(ctx, alice.ID, alice.ID+1000)
	assert.ErrorIs(t, err, ErrFollowTargetMissing)

	// 绕过仓储直接写入也会被表约束拒绝
	err = db.Create(&model.UserFollow{FollowerID: alice.ID, FollowingID: alice.ID, CreatedAt: time.Now()}).Error
	assert.Error(t, err)
}

func TestUserFollowRepo_ListsNewestFirst(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserFollowRepo(db)

	star := testinfra.CreateUser(t, db, "star", false)
	base := time.Now().Add(-time.Hour)
	var fans []uint64
	for i := 0; i < 5; i++ {
		fan := testinfra.CreateUser(t, db, "fan", false)
		fans = append(fans, fan.ID)
		require.NoError(t, db.Create(&model.UserFollow{
			FollowerID:  fan.ID,
			FollowingID: star.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	page, err := repo.ListFollowers(ctx, star.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, fans[4], page[0].FollowerID)
	assert.Equal(t, fans[3], page[1].FollowerID)

	page, err = repo.ListFollowers(ctx, star.ID, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, fans[0], page[0].FollowerID)

	following, err := repo.ListFollowing(ctx, fans[2], 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, star.ID, following[0].FollowingID)

	ids, err := repo.ListFollowerIDs(ctx, star.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, fans, ids)

	ids, err = repo.ListFollowingIDs(ctx, star.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUserFollowRepo_FilterFollowing(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserFollowRepo(db)

	alice := testinfra.CreateUser(t, db, "alice", false)
	bob := testinfra.CreateUser(t, db, "bob", false)
	carol := testinfra.CreateUser(t, db, "carol", false)

	_, err := repo.Create(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	res, err := repo.FilterFollowing(ctx, alice.ID, []uint64{bob.ID, carol.ID})
	require.NoError(t, err)
	assert.True(t, res[bob.ID])
	assert.False(t, res[carol.ID])

	res, err = repo.FilterFollowing(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}
