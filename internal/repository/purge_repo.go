package repository

import (
	"Keystone/internal/model"
	"context"
	log "log/slog"
	"slices"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultPurgeBatchSize = 500

// PurgeResult 注销事务提交后需要的外部清理信息
type PurgeResult struct {
	UserID       uint64
	PostIDs      []uint64
	MediaKeys    []string
	CommentIDs   []uint64
	FollowerIDs  []uint64
	FollowingIDs []uint64
}

// PurgeRepo 按固定顺序删除一个用户及其全部关联数据，必须在事务内调用
type PurgeRepo interface {
	WithTx(tx *gorm.DB) PurgeRepo
	Purge(ctx context.Context, userID uint64) (*PurgeResult, error)
}

type PurgeRepoImpl struct {
	db        *gorm.DB
	counters  UserCounterRepo
	batchSize int
}

func NewPurgeRepo(db *gorm.DB, counters UserCounterRepo, batchSize int) PurgeRepo {
	if batchSize <= 0 {
		batchSize = defaultPurgeBatchSize
	}
	return &PurgeRepoImpl{db: db, counters: counters, batchSize: batchSize}
}

func (s *PurgeRepoImpl) WithTx(tx *gorm.DB) PurgeRepo {
	return &PurgeRepoImpl{db: tx, counters: s.counters.WithTx(tx), batchSize: s.batchSize}
}

type purgeStep struct {
	name string
	run  func(ctx context.Context) error
}

// purgePlan 一次注销的执行状态
type purgePlan struct {
	tx        *gorm.DB
	counters  UserCounterRepo
	batchSize int
	res       *PurgeResult
}

// Purge 子记录先于父记录删除，关注边在回收计数之前读取。任何一步失败都会返回错误，由调用方回滚事务
func (s *PurgeRepoImpl) Purge(ctx context.Context, userID uint64) (*PurgeResult, error) {
	p := &purgePlan{
		tx:        s.db.WithContext(ctx),
		counters:  s.counters,
		batchSize: s.batchSize,
		res:       &PurgeResult{UserID: userID},
	}

	steps := []purgeStep{
		{"collect posts", p.collectPosts},
		{"collect comments", p.collectComments},
		{"delete comment likes on purged comments", p.deleteCommentLikesOnComments},
		{"delete comments", p.deleteComments},
		{"delete likes on own posts", p.deleteLikesOnPosts},
		{"delete likes given", p.deleteLikesGiven},
		{"delete follow edges", p.deleteFollowEdges},
		{"apply counter deltas", p.applyCounterDeltas},
		{"delete posts", p.deletePosts},
		{"delete user", p.deleteUser},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			log.WarnContext(ctx, "purge step failed", "user_id", userID, "step", step.name, "err", err)
			return nil, errors.Wrapf(err, "purge user %d: %s", userID, step.name)
		}
	}
	return p.res, nil
}

func (p *purgePlan) collectPosts(ctx context.Context) error {
	if err := p.tx.Model(&model.Post{}).
		Where("user_id = ?", p.res.UserID).
		Order("id").
		Pluck("id", &p.res.PostIDs).Error; err != nil {
		return err
	}

	for chunk := range slices.Chunk(p.res.PostIDs, p.batchSize) {
		var keys []string
		if err := p.tx.Model(&model.PostMedia{}).
			Where("post_id IN ?", chunk).
			Pluck("media_url", &keys).Error; err != nil {
			return err
		}
		p.res.MediaKeys = append(p.res.MediaKeys, keys...)
	}
	return nil
}

// collectComments 评论集合：自己帖子下的评论、自己在任意位置的评论、以及挂在自己评论下的全部回复。
// 三部分可能重叠，统一去重后再删除
func (p *purgePlan) collectComments(ctx context.Context) error {
	seen := make(map[uint64]struct{})
	add := func(ids []uint64) []uint64 {
		fresh := make([]uint64, 0, len(ids))
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				fresh = append(fresh, id)
			}
		}
		return fresh
	}

	for chunk := range slices.Chunk(p.res.PostIDs, p.batchSize) {
		var ids []uint64
		if err := p.tx.Model(&model.PostComment{}).
			Where("post_id IN ?", chunk).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		add(ids)
	}

	var own []uint64
	if err := p.tx.Model(&model.PostComment{}).
		Where("user_id = ?", p.res.UserID).
		Pluck("id", &own).Error; err != nil {
		return err
	}

	// 逐层展开回复，直到没有新的评论
	frontier := add(own)
	for len(frontier) > 0 {
		var next []uint64
		for chunk := range slices.Chunk(frontier, p.batchSize) {
			var ids []uint64
			if err := p.tx.Model(&model.PostComment{}).
				Where("root_id IN ? OR parent_id IN ?", chunk, chunk).
				Pluck("id", &ids).Error; err != nil {
				return err
			}
			next = append(next, add(ids)...)
		}
		frontier = next
	}

	p.res.CommentIDs = make([]uint64, 0, len(seen))
	for id := range seen {
		p.res.CommentIDs = append(p.res.CommentIDs, id)
	}
	slices.Sort(p.res.CommentIDs)
	return nil
}

func (p *purgePlan) deleteCommentLikesOnComments(ctx context.Context) error {
	for chunk := range slices.Chunk(p.res.CommentIDs, p.batchSize) {
		if err := p.tx.Where("comment_id IN ?", chunk).Delete(&model.CommentLike{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (p *purgePlan) deleteComments(ctx context.Context) error {
	for chunk := range slices.Chunk(p.res.CommentIDs, p.batchSize) {
		if err := p.tx.Where("id IN ?", chunk).Delete(&model.PostComment{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (p *purgePlan) deleteLikesOnPosts(ctx context.Context) error {
	for chunk := range slices.Chunk(p.res.PostIDs, p.batchSize) {
		if err := p.tx.Where("post_id IN ?", chunk).Delete(&model.Like{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (p *purgePlan) deleteLikesGiven(ctx context.Context) error {
	if err := p.tx.Where("user_id = ?", p.res.UserID).Delete(&model.Like{}).Error; err != nil {
		return err
	}
	return p.tx.Where("user_id = ?", p.res.UserID).Delete(&model.CommentLike{}).Error
}

// deleteFollowEdges 删除前先记下两个方向的对端，计数回收依赖这份快照
func (p *purgePlan) deleteFollowEdges(ctx context.Context) error {
	if err := p.tx.Model(&model.UserFollow{}).
		Where("following_id = ?", p.res.UserID).
		Pluck("follower_id", &p.res.FollowerIDs).Error; err != nil {
		return err
	}
	if err := p.tx.Model(&model.UserFollow{}).
		Where("follower_id = ?", p.res.UserID).
		Pluck("following_id", &p.res.FollowingIDs).Error; err != nil {
		return err
	}

	result := p.tx.Where("follower_id = ? OR following_id = ?", p.res.UserID, p.res.UserID).
		Delete(&model.UserFollow{})
	if result.Error != nil {
		return result.Error
	}
	if want := int64(len(p.res.FollowerIDs) + len(p.res.FollowingIDs)); result.RowsAffected != want {
		return errors.Errorf("deleted %d follow edges, expected %d", result.RowsAffected, want)
	}
	return nil
}

func (p *purgePlan) applyCounterDeltas(ctx context.Context) error {
	return p.counters.ApplyPurgeDeltas(ctx, p.res.FollowerIDs, p.res.FollowingIDs)
}

func (p *purgePlan) deletePosts(ctx context.Context) error {
	for chunk := range slices.Chunk(p.res.PostIDs, p.batchSize) {
		if err := p.tx.Where("post_id IN ?", chunk).Delete(&model.PostMedia{}).Error; err != nil {
			return err
		}
		if err := p.tx.Where("id IN ?", chunk).Delete(&model.Post{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (p *purgePlan) deleteUser(ctx context.Context) error {
	result := p.tx.Delete(&model.User{}, p.res.UserID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return errors.Errorf("user %d vanished during purge", p.res.UserID)
	}
	return nil
}
