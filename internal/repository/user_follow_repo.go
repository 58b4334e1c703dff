package repository

import (
	"Keystone/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserFollowRepo 关注边的唯一写入方
type UserFollowRepo interface {
	WithTx(tx *gorm.DB) UserFollowRepo
	Exists(ctx context.Context, followerID, followingID uint64) (bool, error)
	Get(ctx context.Context, followerID, followingID uint64) (*model.UserFollow, error)
	Create(ctx context.Context, followerID, followingID uint64) (*model.UserFollow, error)
	Delete(ctx context.Context, followerID, followingID uint64) error
	ListFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.UserFollow, error)
	ListFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.UserFollow, error)
	ListFollowerIDs(ctx context.Context, userID uint64) ([]uint64, error)
	ListFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
	FilterFollowing(ctx context.Context, followerID uint64, candidateIDs []uint64) (map[uint64]bool, error)
}

type UserFollowRepoImpl struct {
	db *gorm.DB
}

func NewUserFollowRepo(db *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: db}
}

func (s *UserFollowRepoImpl) WithTx(tx *gorm.DB) UserFollowRepo {
	return &UserFollowRepoImpl{db: tx}
}

func (s *UserFollowRepoImpl) Exists(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// Get 关注边不存在时返回 nil, nil
func (s *UserFollowRepoImpl) Get(ctx context.Context, followerID, followingID uint64) (*model.UserFollow, error) {
	var edge model.UserFollow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&edge)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &edge, nil
}

// Create 写入关注边。已存在或关注自己返回 ErrFollowConflict，被关注用户不存在返回 ErrFollowTargetMissing
func (s *UserFollowRepoImpl) Create(ctx context.Context, followerID, followingID uint64) (*model.UserFollow, error) {
	if followerID == followingID {
		return nil, ErrFollowConflict
	}

	var targets int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", followingID).
		Count(&targets).Error; err != nil {
		return nil, err
	}
	if targets == 0 {
		return nil, ErrFollowTargetMissing
	}

	edge := &model.UserFollow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(edge)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrFollowConflict
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrFollowConflict
	}
	return edge, nil
}

func (s *UserFollowRepoImpl) Delete(ctx context.Context, followerID, followingID uint64) error {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.UserFollow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// ListFollowers 粉丝列表，按关注时间倒序
func (s *UserFollowRepoImpl) ListFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.UserFollow, error) {
	var edges []*model.UserFollow
	result := s.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Order("follower_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&edges)
	if result.Error != nil {
		return nil, result.Error
	}
	return edges, nil
}

// ListFollowing 关注列表，按关注时间倒序
func (s *UserFollowRepoImpl) ListFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.UserFollow, error) {
	var edges []*model.UserFollow
	result := s.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Order("following_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&edges)
	if result.Error != nil {
		return nil, result.Error
	}
	return edges, nil
}

func (s *UserFollowRepoImpl) ListFollowerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (s *UserFollowRepoImpl) ListFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// FilterFollowing 一次查询返回 candidateIDs 中 followerID 已关注的用户
func (s *UserFollowRepoImpl) FilterFollowing(ctx context.Context, followerID uint64, candidateIDs []uint64) (map[uint64]bool, error) {
	following := make(map[uint64]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return following, nil
	}

	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.UserFollow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, candidateIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		following[id] = true
	}
	return following, nil
}
