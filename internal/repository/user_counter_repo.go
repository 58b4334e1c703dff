package repository

import (
	"Keystone/internal/model"
	"context"
	"fmt"
	log "log/slog"
	"slices"

	"gorm.io/gorm"
)

const (
	colFollowersCount = "followers_count"
	colFollowingCount = "following_count"

	counterBatchSize = 500
)

// Counters 用户的关注计数
type Counters struct {
	FollowersCount int64
	FollowingCount int64
}

// UserCounterRepo 关注计数的唯一写入方，写操作必须与关注边的变更处于同一事务
type UserCounterRepo interface {
	WithTx(tx *gorm.DB) UserCounterRepo
	ApplyFollowDelta(ctx context.Context, followingID, followerID uint64, delta int) error
	ApplyPurgeDeltas(ctx context.Context, lostFollowing, lostFollowers []uint64) error
	GetCounters(ctx context.Context, userID uint64) (*Counters, error)
}

type UserCounterRepoImpl struct {
	db *gorm.DB
}

func NewUserCounterRepo(db *gorm.DB) UserCounterRepo {
	return &UserCounterRepoImpl{db: db}
}

func (s *UserCounterRepoImpl) WithTx(tx *gorm.DB) UserCounterRepo {
	return &UserCounterRepoImpl{db: tx}
}

// ApplyFollowDelta followingID 的粉丝数与 followerID 的关注数同时加减 delta
func (s *UserCounterRepoImpl) ApplyFollowDelta(ctx context.Context, followingID, followerID uint64, delta int) error {
	if delta != 1 && delta != -1 {
		return fmt.Errorf("invalid follow delta %d", delta)
	}
	if err := s.adjust(ctx, colFollowersCount, []uint64{followingID}, delta); err != nil {
		return err
	}
	return s.adjust(ctx, colFollowingCount, []uint64{followerID}, delta)
}

// ApplyPurgeDeltas 注销用户时回收其关注边对应的计数。
// lostFollowing 为关注了被注销用户的人（关注数减一），lostFollowers 为被注销用户关注的人（粉丝数减一）
func (s *UserCounterRepoImpl) ApplyPurgeDeltas(ctx context.Context, lostFollowing, lostFollowers []uint64) error {
	for chunk := range slices.Chunk(lostFollowing, counterBatchSize) {
		if err := s.adjust(ctx, colFollowingCount, chunk, -1); err != nil {
			return err
		}
	}
	for chunk := range slices.Chunk(lostFollowers, counterBatchSize) {
		if err := s.adjust(ctx, colFollowersCount, chunk, -1); err != nil {
			return err
		}
	}
	return nil
}

func (s *UserCounterRepoImpl) GetCounters(ctx context.Context, userID uint64) (*Counters, error) {
	var c Counters
	result := s.db.WithContext(ctx).Model(&model.User{}).
		Select(colFollowersCount, colFollowingCount).
		Where("id = ?", userID).
		Take(&c)
	if result.Error != nil {
		return nil, result.Error
	}
	return &c, nil
}

// adjust 计数减少时要求原值足够，命中行数少于 ids 数量说明计数会变为负数或用户不存在
func (s *UserCounterRepoImpl) adjust(ctx context.Context, column string, ids []uint64, delta int) error {
	if len(ids) == 0 {
		return nil
	}

	query := s.db.WithContext(ctx).Model(&model.User{}).Where("id IN ?", ids)
	if delta < 0 {
		query = query.Where(column+" >= ?", -delta)
	}
	result := query.UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		log.ErrorContext(ctx, "follow counter consistency violation",
			"column", column,
			"delta", delta,
			"expected_rows", len(ids),
			"affected_rows", result.RowsAffected,
			"user_ids", ids,
		)
		return fmt.Errorf("%w: %s delta %d matched %d of %d users", ErrCounterUnderflow, column, delta, result.RowsAffected, len(ids))
	}
	return nil
}
