package job

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/pkg/consts"
	"Keystone/internal/pkg/logger"
	"Keystone/internal/pkg/redis"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MediaDeleter 删除对象存储中的媒体
type MediaDeleter interface {
	DeleteMedia(ctx context.Context, mediaURL string) error
}

// MediaCleanupJob 重试删除注销后遗留在对象存储中的媒体
type MediaCleanupJob struct {
	store      MediaDeleter
	maxAttempt int
	timeout    time.Duration
}

func NewMediaCleanupJob(store MediaDeleter, maxAttempt int) *MediaCleanupJob {
	if maxAttempt <= 0 {
		maxAttempt = 5
	}
	return &MediaCleanupJob{store: store, maxAttempt: maxAttempt, timeout: 10 * time.Minute}
}

func (s *MediaCleanupJob) Name() string {
	return "media_cleanup"
}

func (s *MediaCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(logger.WithTraceID(context.Background()), s.timeout)
	defer cancel()

	token := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.MediaCleanupLock, token, s.timeout, 1)
	if err != nil {
		log.ErrorContext(ctx, "media cleanup lock failed", "err", err)
		return
	}
	if !ok {
		log.InfoContext(ctx, "media cleanup already running elsewhere")
		return
	}
	defer func() {
		_ = redis.UnLock(context.WithoutCancel(ctx), consts.MediaCleanupLock, token)
	}()

	cleaned, dropped := s.RunOnce(ctx)
	if cleaned > 0 || dropped > 0 {
		log.InfoContext(ctx, "media cleanup job finished", "cleaned_count", cleaned, "dropped_count", dropped)
	}
}

// RunOnce 遍历一次待清理列表，返回删除成功与放弃的数量
func (s *MediaCleanupJob) RunOnce(ctx context.Context) (cleaned, dropped int) {
	allMedia, err := redis.HGetAll(ctx, consts.MediaOrphanKey)
	if err != nil {
		log.ErrorContext(ctx, "failed to get media orphan hash", "err", err)
		return 0, 0
	}

	for mediaURL, val := range allMedia {
		if ctx.Err() != nil {
			return
		}

		var meta dto.MediaOrphanMeta
		if err = json.Unmarshal([]byte(val), &meta); err != nil {
			log.WarnContext(ctx, "invalid media orphan meta, dropping", "media", mediaURL)
			_ = redis.HDel(ctx, consts.MediaOrphanKey, mediaURL)
			dropped++
			continue
		}

		if err = s.store.DeleteMedia(ctx, mediaURL); err == nil {
			if err = redis.HDel(ctx, consts.MediaOrphanKey, mediaURL); err != nil {
				log.ErrorContext(ctx, "failed to remove media orphan entry", "media", mediaURL, "err", err)
			}
			cleaned++
			continue
		}

		meta.Attempts++
		meta.LastError = err.Error()
		meta.LastTryAt = time.Now().Unix()
		if meta.Attempts >= s.maxAttempt {
			log.ErrorContext(ctx, "giving up media cleanup", "media", mediaURL, "user_id", meta.UserID, "attempts", meta.Attempts, "err", err)
			_ = redis.HDel(ctx, consts.MediaOrphanKey, mediaURL)
			dropped++
			continue
		}

		log.WarnContext(ctx, "media cleanup retry failed", "media", mediaURL, "attempts", meta.Attempts, "err", err)
		if raw, mErr := json.Marshal(meta); mErr == nil {
			_ = redis.HSet(ctx, consts.MediaOrphanKey, mediaURL, raw)
		}
	}
	return cleaned, dropped
}
