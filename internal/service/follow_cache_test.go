package service

import (
	"Keystone/internal/model"
	"Keystone/internal/pkg/consts"
	"Keystone/internal/repository"
	"Keystone/internal/testinfra"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 同一毫秒内关注的用户，缓存与数据库的分页顺序一致
func TestFollowListCache_TiesMatchDatabaseOrder(t *testing.T) {
	db := testinfra.NewTestDB(t)
	testinfra.NewTestRedis(t)
	ctx := context.Background()
	cache := NewFollowListCache(time.Minute)

	users := make([]*model.User, 0, 12)
	for i := 0; i < 12; i++ {
		users = append(users, testinfra.CreateUser(t, db, "u", false))
	}
	owner := users[0]

	at := time.UnixMilli(time.Now().UnixMilli())
	for _, u := range users[1:] {
		require.NoError(t, db.Create(&model.UserFollow{FollowerID: u.ID, FollowingID: owner.ID, CreatedAt: at}).Error)
	}

	fromDB, err := repository.NewUserFollowRepo(db).ListFollowers(ctx, owner.ID, consts.FollowListCacheSize, 0)
	require.NoError(t, err)
	require.Len(t, fromDB, 11)
	cache.Fill(ctx, consts.UserFollowerKey, owner.ID, fromDB)

	for offset := 0; offset < 11; offset += 4 {
		cached, ok := cache.Get(ctx, consts.UserFollowerKey, owner.ID, offset, 4)
		require.True(t, ok)
		page, err := repository.NewUserFollowRepo(db).ListFollowers(ctx, owner.ID, 4, offset)
		require.NoError(t, err)
		require.Len(t, cached, len(page))
		for i := range page {
			assert.Equal(t, page[i].FollowerID, cached[i].FollowerID, "offset %d index %d", offset, i)
			assert.Equal(t, owner.ID, cached[i].FollowingID)
		}
	}
}
