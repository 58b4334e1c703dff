package service

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/model"
	"Keystone/internal/repository"
	"context"
	log "log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

const (
	likeWeight           = 1.0
	commentWeight        = 1.5
	reverseFollowerBonus = 10.0

	// 高分用户占推荐名额的 4/5，向上取整
	scoredNum = 4
	scoredDen = 5
)

type SuggestionService interface {
	Suggest(ctx context.Context, userID uint64, limit int) ([]*dto.SuggestionDTO, error)
}

type SuggestionServiceImpl struct {
	userRepo     repository.UserRepo
	followRepo   repository.UserFollowRepo
	postRepo     repository.PostActionRepo
	defaultLimit int
	maxLimit     int
}

func NewSuggestionService(
	userRepo repository.UserRepo,
	followRepo repository.UserFollowRepo,
	postRepo repository.PostActionRepo,
	defaultLimit, maxLimit int,
) *SuggestionServiceImpl {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &SuggestionServiceImpl{
		userRepo:     userRepo,
		followRepo:   followRepo,
		postRepo:     postRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

type scoredUser struct {
	user  *model.User
	score float64
}

// Suggest 根据与当前用户帖子的互动和回关关系打分，前 80% 取高分用户，其余用随机认证用户补齐
func (s *SuggestionServiceImpl) Suggest(ctx context.Context, userID uint64, limit int) ([]*dto.SuggestionDTO, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, s.maxLimit)

	followingIDs, err := s.followRepo.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	exclude := make(map[uint64]struct{}, len(followingIDs)+1)
	exclude[userID] = struct{}{}
	for _, id := range followingIDs {
		exclude[id] = struct{}{}
	}

	scores := s.collectScores(ctx, userID, exclude)

	selected, err := s.pickTop(ctx, scores, (limit*scoredNum+scoredDen-1)/scoredDen)
	if err != nil {
		return nil, err
	}

	if len(selected) < limit {
		excludeIDs := make([]uint64, 0, len(exclude)+len(selected))
		for id := range exclude {
			excludeIDs = append(excludeIDs, id)
		}
		for _, su := range selected {
			excludeIDs = append(excludeIDs, su.user.ID)
		}
		randoms, err := s.userRepo.GetRandomVerified(ctx, excludeIDs, limit-len(selected))
		if err != nil {
			return nil, err
		}
		for _, u := range randoms {
			selected = append(selected, scoredUser{user: u})
		}
	}

	ids := make([]uint64, 0, len(selected))
	for _, su := range selected {
		ids = append(ids, su.user.ID)
	}
	following, err := s.followRepo.FilterFollowing(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SuggestionDTO, 0, len(selected))
	for _, su := range selected {
		res = append(res, &dto.SuggestionDTO{
			User:             toUserBrief(su.user),
			InteractionScore: su.score,
			IsFollowing:      following[su.user.ID],
		})
	}
	return res, nil
}

// collectScores 三路信号并行查询，单路失败只记日志并按空处理
func (s *SuggestionServiceImpl) collectScores(ctx context.Context, userID uint64, exclude map[uint64]struct{}) map[uint64]float64 {
	var (
		likers      []repository.InteractionCount
		commenters  []repository.InteractionCount
		followerIDs []uint64
	)

	postIDs, err := s.postRepo.GetPostIDsByUser(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "suggestion: failed to load posts", "user_id", userID, "err", err)
	}

	var g errgroup.Group
	if len(postIDs) > 0 {
		g.Go(func() error {
			res, err := s.postRepo.GroupLikersByPosts(ctx, postIDs)
			if err != nil {
				log.WarnContext(ctx, "suggestion: liker signal unavailable", "user_id", userID, "err", err)
				return nil
			}
			likers = res
			return nil
		})
		g.Go(func() error {
			res, err := s.postRepo.GroupCommentersByPosts(ctx, postIDs)
			if err != nil {
				log.WarnContext(ctx, "suggestion: commenter signal unavailable", "user_id", userID, "err", err)
				return nil
			}
			commenters = res
			return nil
		})
	}
	g.Go(func() error {
		res, err := s.followRepo.ListFollowerIDs(ctx, userID)
		if err != nil {
			log.WarnContext(ctx, "suggestion: follower signal unavailable", "user_id", userID, "err", err)
			return nil
		}
		followerIDs = res
		return nil
	})
	_ = g.Wait()

	scores := make(map[uint64]float64)
	add := func(id uint64, v float64) {
		if _, skip := exclude[id]; skip {
			return
		}
		scores[id] += v
	}
	for _, c := range likers {
		add(c.UserID, float64(c.Count)*likeWeight)
	}
	for _, c := range commenters {
		add(c.UserID, float64(c.Count)*commentWeight)
	}
	for _, id := range followerIDs {
		add(id, reverseFollowerBonus)
	}
	return scores
}

// pickTop 取前 n 名，同分按粉丝数降序，再按 id 升序
func (s *SuggestionServiceImpl) pickTop(ctx context.Context, scores map[uint64]float64, n int) ([]scoredUser, error) {
	if len(scores) == 0 || n <= 0 {
		return nil, nil
	}

	values := make([]float64, 0, len(scores))
	for _, v := range scores {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	cutoff := values[min(n, len(values))-1]

	// 分数不低于第 n 名的候选都要取出，粉丝数才能参与同分排序
	ids := make([]uint64, 0, n)
	for id, v := range scores {
		if v >= cutoff {
			ids = append(ids, id)
		}
	}
	users, err := s.userRepo.GetUserByIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	ranked := make([]scoredUser, 0, len(users))
	for _, u := range users {
		ranked = append(ranked, scoredUser{user: u, score: scores[u.ID]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.user.FollowersCount != b.user.FollowersCount {
			return a.user.FollowersCount > b.user.FollowersCount
		}
		return a.user.ID < b.user.ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}
