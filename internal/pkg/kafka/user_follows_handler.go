package kafka

import (
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

const userFollowsTable = "user_follows"

// FollowCacheInvalidator 关注列表缓存失效
type FollowCacheInvalidator interface {
	InvalidateFollowCache(ctx context.Context, userIDs ...uint64) error
}

// UserFollowsHandler 消费 user_follows 的 binlog，兜底清理关注列表缓存。
// 事务提交后的同步清理失败，或有绕过服务直接改库的情况时，由这里保证缓存最终一致
type UserFollowsHandler struct {
	cache FollowCacheInvalidator
}

func NewUserFollowsHandler(cache FollowCacheInvalidator) *UserFollowsHandler {
	return &UserFollowsHandler{cache: cache}
}

func (s *UserFollowsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("user follows consumer setup")
	return nil
}

func (s *UserFollowsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("user follows consumer cleanup")
	return nil
}

func (s *UserFollowsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	return pullMessageBatch(session, claim, s.logic)
}

func (s *UserFollowsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, userFollowsTable)
	if err != nil {
		return err
	}
	if canalMsg.Type != INSERT && canalMsg.Type != DELETE {
		return nil
	}

	affected := make([]uint64, 0, len(canalMsg.Data)*2)
	for _, row := range canalMsg.Data {
		followerID, err := ToUint64(row["follower_id"])
		if err != nil {
			log.WarnContext(ctx, "bad follower_id in canal row", "err", err)
			continue
		}
		followingID, err := ToUint64(row["following_id"])
		if err != nil {
			log.WarnContext(ctx, "bad following_id in canal row", "err", err)
			continue
		}
		affected = append(affected, followerID, followingID)
	}
	if len(affected) == 0 {
		return nil
	}

	return s.cache.InvalidateFollowCache(ctx, affected...)
}
