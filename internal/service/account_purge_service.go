package service

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/pkg/consts"
	"Keystone/internal/pkg/redis"
	"Keystone/internal/pkg/security"
	"Keystone/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"
)

const purgeCleanupTimeout = 2 * time.Minute

type AccountPurgeService interface {
	PurgeAccount(ctx context.Context, userID uint64, confirmedByPassword bool) error
	DeleteAccount(ctx context.Context, userID uint64, password, token string) error
	Wait()
}

type AccountPurgeServiceImpl struct {
	transactor repository.Transactor
	userRepo   repository.UserRepo
	purgeRepo  repository.PurgeRepo
	media      MediaStore
	search     SearchIndexCleaner
	inbox      NotificationInbox
	cache      *FollowListCache
	wg         sync.WaitGroup
}

func NewAccountPurgeService(
	transactor repository.Transactor,
	userRepo repository.UserRepo,
	purgeRepo repository.PurgeRepo,
	media MediaStore,
	search SearchIndexCleaner,
	inbox NotificationInbox,
	cache *FollowListCache,
) *AccountPurgeServiceImpl {
	return &AccountPurgeServiceImpl{
		transactor: transactor,
		userRepo:   userRepo,
		purgeRepo:  purgeRepo,
		media:      media,
		search:     search,
		inbox:      inbox,
		cache:      cache,
	}
}

// DeleteAccount 校验密码后注销账号，成功后当前 token 失效
func (s *AccountPurgeServiceImpl) DeleteAccount(ctx context.Context, userID uint64, password, token string) error {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.Password == nil {
		return ErrPasswordIncorrect
	}
	if err = security.CheckPasswordHash(password, *user.Password); err != nil {
		if errors.Is(err, security.ErrInvalidCredentials) {
			return ErrPasswordIncorrect
		}
		return err
	}

	if err = s.PurgeAccount(ctx, userID, true); err != nil {
		return err
	}

	if token == "" || redis.Rdb == nil {
		return nil
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		log.WarnContext(ctx, "failed to extract token signature", "user_id", userID, "err", err)
		return nil
	}
	if err = redis.SetWithExpiration(ctx, consts.TokenBlacklist+signature, "1", security.TokenTTL()); err != nil {
		log.WarnContext(ctx, "failed to blacklist token after account deletion", "user_id", userID, "err", err)
	}
	return nil
}

// PurgeAccount 在一个事务内删除用户及其全部关联数据，提交后再异步清理外部存储
func (s *AccountPurgeServiceImpl) PurgeAccount(ctx context.Context, userID uint64, confirmedByPassword bool) error {
	if !confirmedByPassword {
		return ErrInvalidOperation
	}

	var res *repository.PurgeResult
	err := s.transactor.Transaction(ctx, func(tx *gorm.DB) error {
		user, err := s.userRepo.WithTx(tx).LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
		res, err = s.purgeRepo.WithTx(tx).Purge(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		log.ErrorContext(ctx, "account purge rolled back", "user_id", userID, "err", err)
		return fmt.Errorf("%w: %w", ErrTransactionAborted, err)
	}

	log.InfoContext(ctx, "account purged",
		"user_id", userID,
		"posts", len(res.PostIDs),
		"comments", len(res.CommentIDs),
		"followers", len(res.FollowerIDs),
		"following", len(res.FollowingIDs))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), purgeCleanupTimeout)
		defer cancel()
		s.cleanupExternal(cctx, res)
	}()
	return nil
}

// Wait 等待已提交注销的外部清理结束，退出前调用
func (s *AccountPurgeServiceImpl) Wait() {
	s.wg.Wait()
}

// cleanupExternal 外部存储清理尽力而为，失败不回滚，媒体删除失败交给定时任务重试
func (s *AccountPurgeServiceImpl) cleanupExternal(ctx context.Context, res *repository.PurgeResult) {
	var merr *multierror.Error

	if s.media != nil {
		for _, key := range res.MediaKeys {
			if err := s.media.DeleteMedia(ctx, key); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("media %s: %w", key, err))
				s.recordOrphan(ctx, res.UserID, key, err)
			}
		}
	}

	if s.search != nil {
		if err := s.search.DeleteUser(ctx, res.UserID); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("search user doc: %w", err))
		}
		if err := s.search.DeletePostsByUser(ctx, res.UserID); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("search post docs: %w", err))
		}
	}

	if s.inbox != nil {
		if _, err := s.inbox.DeleteByUser(ctx, res.UserID); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("inbox: %w", err))
		}
	}

	affected := make([]uint64, 0, 1+len(res.FollowerIDs)+len(res.FollowingIDs))
	affected = append(affected, res.UserID)
	affected = append(affected, res.FollowerIDs...)
	affected = append(affected, res.FollowingIDs...)
	if err := s.cache.InvalidateFollowCache(ctx, affected...); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("follow cache: %w", err))
	}

	if err := merr.ErrorOrNil(); err != nil {
		log.WarnContext(ctx, "account purge cleanup incomplete", "user_id", res.UserID, "err", err)
	}
}

func (s *AccountPurgeServiceImpl) recordOrphan(ctx context.Context, userID uint64, key string, cause error) {
	if redis.Rdb == nil {
		return
	}
	now := time.Now().Unix()
	raw, err := json.Marshal(dto.MediaOrphanMeta{
		UserID:    userID,
		Attempts:  1,
		LastError: cause.Error(),
		CreatedAt: now,
		LastTryAt: now,
	})
	if err != nil {
		return
	}
	if err = redis.HSet(ctx, consts.MediaOrphanKey, key, raw); err != nil {
		log.ErrorContext(ctx, "failed to record orphan media", "media", key, "err", err)
	}
}
