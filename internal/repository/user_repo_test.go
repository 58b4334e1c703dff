package repository

import (
	"Keystone/internal/testinfra"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepo_Lookups(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)

	alice := testinfra.CreateUser(t, db, "alice", false)
	bob := testinfra.CreateUser(t, db, "bob", true)

	got, err := repo.GetUserById(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Nickname)

	got, err = repo.GetUserById(ctx, bob.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, got)

	users, err := repo.GetUserByIds(ctx, []uint64{alice.ID, bob.ID, bob.ID + 1000})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.GetUserByIds(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)

	err = NewTransactor(db).Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).LockUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, locked.ID)

		missing, err := repo.WithTx(tx).LockUser(ctx, bob.ID+1000)
		require.NoError(t, err)
		assert.Nil(t, missing)
		return nil
	})
	require.NoError(t, err)
}

func TestUserRepo_GetRandomVerified(t *testing.T) {
	db := testinfra.NewTestDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)

	testinfra.CreateUser(t, db, "plain", false)
	v1 := testinfra.CreateUser(t, db, "v1", true)
	v2 := testinfra.CreateUser(t, db, "v2", true)
	v3 := testinfra.CreateUser(t, db, "v3", true)

	users, err := repo.GetRandomVerified(ctx, nil, 10)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.True(t, u.IsVerified)
	}

	users, err = repo.GetRandomVerified(ctx, []uint64{v1.ID, v3.ID}, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, v2.ID, users[0].ID)

	users, err = repo.GetRandomVerified(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.GetRandomVerified(ctx, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}
