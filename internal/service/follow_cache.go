package service

import (
	"Keystone/internal/model"
	"Keystone/internal/pkg/consts"
	"Keystone/internal/pkg/redis"
	"context"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// FollowListCache 关注/粉丝列表前 FollowListCacheSize 条的 ZSET 缓存，score 为关注时间（毫秒）
type FollowListCache struct {
	ttl time.Duration
}

func NewFollowListCache(ttl time.Duration) *FollowListCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowListCache{ttl: ttl}
}

func followCacheKey(prefix string, userID uint64) string {
	return prefix + strconv.FormatUint(userID, 10)
}

// followCacheMember 补零到定长，同一毫秒内的成员按字典序与 id 数值序一致
func followCacheMember(peerID uint64) string {
	return fmt.Sprintf("%020d", peerID)
}

// Get 命中时返回 [offset, offset+limit) 区间内的关注边
func (c *FollowListCache) Get(ctx context.Context, prefix string, ownerID uint64, offset, limit int) ([]*model.UserFollow, bool) {
	if redis.Rdb == nil {
		return nil, false
	}
	key := followCacheKey(prefix, ownerID)

	pipe := redis.Rdb.Pipeline()
	card := pipe.ZCard(ctx, key)
	rng := pipe.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1))
	if _, err := pipe.Exec(ctx); err != nil || card.Val() == 0 {
		return nil, false
	}

	edges := make([]*model.UserFollow, 0, len(rng.Val()))
	for _, z := range rng.Val() {
		member, ok := z.Member.(string)
		if !ok {
			return nil, false
		}
		peerID, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			return nil, false
		}
		edge := &model.UserFollow{CreatedAt: time.UnixMilli(int64(z.Score))}
		if prefix == consts.UserFollowerKey {
			edge.FollowerID, edge.FollowingID = peerID, ownerID
		} else {
			edge.FollowerID, edge.FollowingID = ownerID, peerID
		}
		edges = append(edges, edge)
	}
	return edges, true
}

// Fill 用数据库中的前 N 条重建缓存，失败只影响后续命中率
func (c *FollowListCache) Fill(ctx context.Context, prefix string, ownerID uint64, edges []*model.UserFollow) {
	if redis.Rdb == nil || len(edges) == 0 {
		return
	}
	members := make([]redisv9.Z, 0, len(edges))
	for _, e := range edges {
		peerID := e.FollowingID
		if prefix == consts.UserFollowerKey {
			peerID = e.FollowerID
		}
		members = append(members, redisv9.Z{
			Score:  float64(e.CreatedAt.UnixMilli()),
			Member: followCacheMember(peerID),
		})
	}
	_ = redis.ZAddWithExpiration(ctx, followCacheKey(prefix, ownerID), members, c.ttl)
}

// InvalidateFollowCache 删除这些用户的关注与粉丝列表缓存
func (c *FollowListCache) InvalidateFollowCache(ctx context.Context, userIDs ...uint64) error {
	if redis.Rdb == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs)*2)
	for _, id := range userIDs {
		keys = append(keys, followCacheKey(consts.UserFollowerKey, id), followCacheKey(consts.UserFollowingKey, id))
	}
	return redis.DeleteKey(ctx, keys...)
}
