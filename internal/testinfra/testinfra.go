// Package testinfra 为仓储与服务测试提供内存 SQLite 与 miniredis
package testinfra

import (
	"Keystone/internal/model"
	"Keystone/internal/pkg/database"
	"Keystone/internal/pkg/logger"
	"Keystone/internal/pkg/redis"
	"Keystone/internal/pkg/security"
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB 每个测试独立的共享内存库，单连接保证事务串行
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.NewGormLogger(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// NewTestRedis 启动 miniredis 并替换全局客户端，测试结束后恢复
func NewTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	prev := redis.Rdb
	redis.Rdb = redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = prev
	})
	return mr
}

// Password 测试用户的明文密码
const Password = "secret123"

// CreateUser 写入一个用户，verified 控制是否为认证用户
func CreateUser(t *testing.T, db *gorm.DB, nickname string, verified bool) *model.User {
	t.Helper()

	hash, err := security.HashPassword(Password)
	require.NoError(t, err)
	username := nickname + "-" + uuid.NewString()[:8]
	user := &model.User{
		Username:   &username,
		Password:   &hash,
		Nickname:   nickname,
		IsVerified: verified,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// Counters 直接读取库中的计数列
func Counters(t *testing.T, db *gorm.DB, userID uint64) (followers, following int64) {
	t.Helper()

	var u model.User
	require.NoError(t, db.Select("followers_count", "following_count").First(&u, userID).Error)
	return u.FollowersCount, u.FollowingCount
}

// EdgeCounts 按关注边重新统计，用于与计数列比对
func EdgeCounts(t *testing.T, db *gorm.DB, userID uint64) (followers, following int64) {
	t.Helper()

	require.NoError(t, db.Model(&model.UserFollow{}).Where("following_id = ?", userID).Count(&followers).Error)
	require.NoError(t, db.Model(&model.UserFollow{}).Where("follower_id = ?", userID).Count(&following).Error)
	return followers, following
}

// CreatePost 帖子与媒体一起写入
func CreatePost(t *testing.T, db *gorm.DB, post *model.Post) {
	t.Helper()
	require.NoError(t, db.Create(post).Error)
}

func CreateLike(t *testing.T, db *gorm.DB, like *model.Like) {
	t.Helper()
	require.NoError(t, db.Create(like).Error)
}

func CreateComment(t *testing.T, db *gorm.DB, comment *model.PostComment) {
	t.Helper()
	require.NoError(t, db.Create(comment).Error)
}

func CreateCommentLike(t *testing.T, db *gorm.DB, cl *model.CommentLike) {
	t.Helper()
	require.NoError(t, db.Create(cl).Error)
}
