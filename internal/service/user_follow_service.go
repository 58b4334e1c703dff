package service

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/model"
	"Keystone/internal/pkg/consts"
	"Keystone/internal/pkg/redis"
	"Keystone/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	pairLockTTL        = 5 * time.Second
	pairLockRetryTimes = 25
	toggleTimeout      = 10 * time.Second

	defaultPageSize = 10
	maxPageSize     = 50
)

type UserFollowService interface {
	ToggleFollow(ctx context.Context, followerID, targetID uint64) (*dto.ToggleFollowDTO, error)
	GetFollowStatus(ctx context.Context, viewerID, targetID uint64) (*dto.FollowStatusDTO, error)
	ListFollowers(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error)
	ListFollowing(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error)
}

type UserFollowServiceImpl struct {
	transactor  repository.Transactor
	userRepo    repository.UserRepo
	followRepo  repository.UserFollowRepo
	counterRepo repository.UserCounterRepo
	inbox       NotificationInbox
	cache       *FollowListCache
	debounce    time.Duration
	flight      singleflight.Group
}

func NewUserFollowService(
	transactor repository.Transactor,
	userRepo repository.UserRepo,
	followRepo repository.UserFollowRepo,
	counterRepo repository.UserCounterRepo,
	inbox NotificationInbox,
	cache *FollowListCache,
	debounce time.Duration,
) *UserFollowServiceImpl {
	return &UserFollowServiceImpl{
		transactor:  transactor,
		userRepo:    userRepo,
		followRepo:  followRepo,
		counterRepo: counterRepo,
		inbox:       inbox,
		cache:       cache,
		debounce:    debounce,
	}
}

// ToggleFollow 已关注则取关，否则关注。
// 同一关注对的并发请求只会生效一次：进程内用 singleflight 合并，跨进程用 Redis 对锁，
// 抢锁失败的请求等锁释放后返回当前状态而不再翻转
func (s *UserFollowServiceImpl) ToggleFollow(ctx context.Context, followerID, targetID uint64) (*dto.ToggleFollowDTO, error) {
	if followerID == targetID {
		return nil, ErrInvalidOperation
	}

	start := time.Now()
	pair := strconv.FormatUint(followerID, 10) + ":" + strconv.FormatUint(targetID, 10)
	// 合并后的请求共享执行结果，不受发起者取消的影响
	ch := s.flight.DoChan(pair, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), toggleTimeout)
		defer cancel()
		return s.toggleSerialized(flightCtx, pair, start, followerID, targetID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*dto.ToggleFollowDTO)
		return &res, nil
	}
}

// toggleRecord 最近一次切换的结果与完成时间
type toggleRecord struct {
	Result      dto.ToggleFollowDTO `json:"result"`
	CompletedAt int64               `json:"completed_at"`
}

func (s *UserFollowServiceImpl) toggleSerialized(ctx context.Context, pair string, start time.Time, followerID, targetID uint64) (*dto.ToggleFollowDTO, error) {
	if redis.Rdb == nil {
		return s.toggle(ctx, followerID, targetID)
	}

	lockKey := consts.FollowPairLock + pair
	token := uuid.NewString()

	locked, err := redis.TryLock(ctx, lockKey, token, pairLockTTL, 1)
	if err != nil {
		log.WarnContext(ctx, "follow pair lock unavailable, relying on row locks", "pair", pair, "err", err)
		return s.toggle(ctx, followerID, targetID)
	}

	if !locked {
		// 另一个请求正在切换同一关注对
		locked, err = redis.TryLock(ctx, lockKey, token, pairLockTTL, pairLockRetryTimes)
		if err != nil {
			log.WarnContext(ctx, "follow pair lock unavailable while waiting", "pair", pair, "err", err)
			return s.currentState(ctx, followerID, targetID)
		}
		if !locked {
			return nil, fmt.Errorf("%w: follow pair %s is busy", ErrTransactionAborted, pair)
		}
		defer s.unlock(ctx, lockKey, token)
		return s.currentState(ctx, followerID, targetID)
	}
	defer s.unlock(ctx, lockKey, token)

	// 只有与上一次切换时间上重叠的请求才复用其结果，之后发起的请求正常切换
	debounceKey := consts.FollowToggleKey + pair
	if s.debounce > 0 {
		if cached, err := redis.GetValue(ctx, debounceKey); err == nil && cached != "" {
			var rec toggleRecord
			if json.Unmarshal([]byte(cached), &rec) == nil && rec.CompletedAt >= start.UnixNano() {
				return &rec.Result, nil
			}
		}
	}

	res, err := s.toggle(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}

	if s.debounce > 0 {
		rec := toggleRecord{Result: *res, CompletedAt: time.Now().UnixNano()}
		if raw, mErr := json.Marshal(rec); mErr == nil {
			if err := redis.SetWithExpiration(ctx, debounceKey, raw, s.debounce); err != nil {
				log.WarnContext(ctx, "failed to record follow toggle", "pair", pair, "err", err)
			}
		}
	}
	return res, nil
}

func (s *UserFollowServiceImpl) unlock(ctx context.Context, key, token string) {
	if err := redis.UnLock(context.WithoutCancel(ctx), key, token); err != nil {
		log.WarnContext(ctx, "failed to release follow pair lock", "key", key, "err", err)
	}
}

// toggle 关注边与两端计数在同一事务内变更
func (s *UserFollowServiceImpl) toggle(ctx context.Context, followerID, targetID uint64) (*dto.ToggleFollowDTO, error) {
	var (
		res     *dto.ToggleFollowDTO
		created bool
	)

	err := s.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		follows := s.followRepo.WithTx(tx)
		counters := s.counterRepo.WithTx(tx)

		// 按 id 顺序加锁，避免互相关注时死锁
		first, second := followerID, targetID
		if first > second {
			first, second = second, first
		}
		for _, id := range []uint64{first, second} {
			user, err := users.LockUser(ctx, id)
			if err != nil {
				return err
			}
			if user == nil {
				if id == targetID {
					return ErrNotFound
				}
				return UnauthorizedError
			}
		}

		exists, err := follows.Exists(ctx, followerID, targetID)
		if err != nil {
			return err
		}

		if exists {
			if err = follows.Delete(ctx, followerID, targetID); err != nil {
				return err
			}
			if err = counters.ApplyFollowDelta(ctx, targetID, followerID, -1); err != nil {
				return err
			}
			now := time.Now()
			res = &dto.ToggleFollowDTO{Following: false, UnfollowedAt: &now}
			return nil
		}

		edge, err := follows.Create(ctx, followerID, targetID)
		switch {
		case errors.Is(err, repository.ErrFollowConflict):
			// 并发创建，按已关注处理，计数由先写入的一方维护
			edge, err = follows.Get(ctx, followerID, targetID)
			if err != nil {
				return err
			}
			if edge == nil {
				return ErrConflict
			}
			res = &dto.ToggleFollowDTO{Following: true, FollowedAt: &edge.CreatedAt}
			return nil
		case errors.Is(err, repository.ErrFollowTargetMissing):
			return ErrNotFound
		case err != nil:
			return err
		}

		if err = counters.ApplyFollowDelta(ctx, targetID, followerID, 1); err != nil {
			return err
		}
		created = true
		res = &dto.ToggleFollowDTO{Following: true, FollowedAt: &edge.CreatedAt}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err)
	}

	if err = s.cache.InvalidateFollowCache(ctx, followerID, targetID); err != nil {
		log.WarnContext(ctx, "failed to invalidate follow cache", "follower_id", followerID, "following_id", targetID, "err", err)
	}
	if created && s.inbox != nil {
		go s.notifyFollowed(context.WithoutCancel(ctx), targetID, followerID)
	}
	return res, nil
}

func (s *UserFollowServiceImpl) notifyFollowed(ctx context.Context, receiverID, senderID uint64) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.inbox.NotifyFollowed(ctx, receiverID, senderID); err != nil {
		log.WarnContext(ctx, "failed to send follow notification", "receiver_id", receiverID, "sender_id", senderID, "err", err)
	}
}

// currentState 不做任何修改，返回关注对当前的状态
func (s *UserFollowServiceImpl) currentState(ctx context.Context, followerID, targetID uint64) (*dto.ToggleFollowDTO, error) {
	edge, err := s.followRepo.Get(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}
	if edge == nil {
		now := time.Now()
		return &dto.ToggleFollowDTO{Following: false, UnfollowedAt: &now}, nil
	}
	return &dto.ToggleFollowDTO{Following: true, FollowedAt: &edge.CreatedAt}, nil
}

// translateTxError 业务错误原样返回，其余错误归为一致性异常或事务中止
func translateTxError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidOperation),
		errors.Is(err, ErrConflict),
		errors.Is(err, UnauthorizedError):
		return err
	case errors.Is(err, repository.ErrCounterUnderflow):
		return fmt.Errorf("%w: %w", ErrConsistencyViolation, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransactionAborted, err)
	}
}

func (s *UserFollowServiceImpl) GetFollowStatus(ctx context.Context, viewerID, targetID uint64) (*dto.FollowStatusDTO, error) {
	counters, err := s.counterRepo.GetCounters(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	status := &dto.FollowStatusDTO{
		FollowersCount: counters.FollowersCount,
		FollowingCount: counters.FollowingCount,
	}
	if viewerID == 0 || viewerID == targetID {
		return status, nil
	}

	edge, err := s.followRepo.Get(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if edge != nil {
		status.Following = true
		status.FollowedAt = &edge.CreatedAt
	}
	return status, nil
}

func (s *UserFollowServiceImpl) ListFollowers(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error) {
	return s.listCommon(ctx, userID, page, pageSize, true)
}

func (s *UserFollowServiceImpl) ListFollowing(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error) {
	return s.listCommon(ctx, userID, page, pageSize, false)
}

type fetchListFunc func(ctx context.Context, userID uint64, limit, offset int) ([]*model.UserFollow, error)

func (s *UserFollowServiceImpl) listCommon(ctx context.Context, userID uint64, page, pageSize int, isFollowerList bool) (*dto.FollowListDTO, error) {
	page, pageSize = normalizePage(page, pageSize)

	counters, err := s.counterRepo.GetCounters(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	prefix, fetch, total := consts.UserFollowingKey, fetchListFunc(s.followRepo.ListFollowing), counters.FollowingCount
	if isFollowerList {
		prefix, fetch, total = consts.UserFollowerKey, s.followRepo.ListFollowers, counters.FollowersCount
	}

	offset := (page - 1) * pageSize
	edges, err := s.fetchEdges(ctx, prefix, userID, offset, pageSize, fetch)
	if err != nil {
		return nil, err
	}

	peerIDs := make([]uint64, 0, len(edges))
	for _, e := range edges {
		peerIDs = append(peerIDs, peerOf(e, isFollowerList))
	}
	users, err := s.userRepo.GetUserByIds(ctx, peerIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	items := make([]*dto.FollowItemDTO, 0, len(edges))
	for _, e := range edges {
		u, ok := byID[peerOf(e, isFollowerList)]
		if !ok {
			continue
		}
		items = append(items, &dto.FollowItemDTO{User: toUserBrief(u), FollowedAt: e.CreatedAt})
	}

	return &dto.FollowListDTO{
		Items: items,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			HasNext:  int64(offset+pageSize) < total,
			HasPrev:  page > 1,
		},
	}, nil
}

// fetchEdges 前 FollowListCacheSize 条走缓存，更深的分页直接查库
func (s *UserFollowServiceImpl) fetchEdges(ctx context.Context, prefix string, userID uint64, offset, limit int, fetch fetchListFunc) ([]*model.UserFollow, error) {
	if offset+limit > consts.FollowListCacheSize {
		return fetch(ctx, userID, limit, offset)
	}

	if edges, ok := s.cache.Get(ctx, prefix, userID, offset, limit); ok {
		return edges, nil
	}

	all, err := fetch(ctx, userID, consts.FollowListCacheSize, 0)
	if err != nil {
		return nil, err
	}
	s.cache.Fill(ctx, prefix, userID, all)

	if offset >= len(all) {
		return []*model.UserFollow{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func peerOf(e *model.UserFollow, isFollowerList bool) uint64 {
	if isFollowerList {
		return e.FollowerID
	}
	return e.FollowingID
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
