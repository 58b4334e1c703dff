package repository

import (
	"Keystone/internal/model"
	"context"

	"gorm.io/gorm"
)

// InteractionCount 某个用户与目标用户帖子的互动次数
type InteractionCount struct {
	UserID uint64
	Count  int64
}

// PostActionRepo 推荐打分所需的帖子互动统计
type PostActionRepo interface {
	GetPostIDsByUser(ctx context.Context, userID uint64) ([]uint64, error)
	GroupLikersByPosts(ctx context.Context, postIDs []uint64) ([]InteractionCount, error)
	GroupCommentersByPosts(ctx context.Context, postIDs []uint64) ([]InteractionCount, error)
}

type PostActionRepoImpl struct {
	db *gorm.DB
}

func NewPostActionRepo(db *gorm.DB) PostActionRepo {
	return &PostActionRepoImpl{db}
}

func (s *PostActionRepoImpl) GetPostIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	postIDs := make([]uint64, 0)
	err := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("user_id = ?", userID).
		Pluck("id", &postIDs).Error
	return postIDs, err
}

// GroupLikersByPosts 统计每个用户在这些帖子上的点赞数
func (s *PostActionRepoImpl) GroupLikersByPosts(ctx context.Context, postIDs []uint64) ([]InteractionCount, error) {
	counts := make([]InteractionCount, 0)
	if len(postIDs) == 0 {
		return counts, nil
	}
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Select("user_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("user_id").
		Scan(&counts).Error
	return counts, err
}

// GroupCommentersByPosts 统计每个用户在这些帖子下未删除的评论数
func (s *PostActionRepoImpl) GroupCommentersByPosts(ctx context.Context, postIDs []uint64) ([]InteractionCount, error) {
	counts := make([]InteractionCount, 0)
	if len(postIDs) == 0 {
		return counts, nil
	}
	err := s.db.WithContext(ctx).Model(&model.PostComment{}).
		Select("user_id, COUNT(*) AS count").
		Where("post_id IN ? AND is_deleted = ?", postIDs, false).
		Group("user_id").
		Scan(&counts).Error
	return counts, err
}
