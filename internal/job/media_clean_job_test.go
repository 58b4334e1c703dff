package job

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/pkg/consts"
	"Keystone/internal/testinfra"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	mu      sync.Mutex
	broken  map[string]bool
	deleted []string
}

func (f *flakyStore) DeleteMedia(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken[key] {
		return errors.New("bucket unreachable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func orphan(t *testing.T, attempts int) string {
	t.Helper()
	raw, err := json.Marshal(dto.MediaOrphanMeta{UserID: 7, Attempts: attempts, CreatedAt: 1})
	require.NoError(t, err)
	return string(raw)
}

func TestMediaCleanupJob_RunOnce(t *testing.T) {
	mr := testinfra.NewTestRedis(t)
	store := &flakyStore{broken: map[string]bool{"retry.jpg": true, "hopeless.jpg": true}}

	mr.HSet(consts.MediaOrphanKey, "ok.jpg", orphan(t, 1))
	mr.HSet(consts.MediaOrphanKey, "retry.jpg", orphan(t, 1))
	mr.HSet(consts.MediaOrphanKey, "hopeless.jpg", orphan(t, 4))
	mr.HSet(consts.MediaOrphanKey, "garbage.jpg", "not json")

	cleaned, dropped := NewMediaCleanupJob(store, 5).RunOnce(context.Background())
	assert.Equal(t, 1, cleaned)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"ok.jpg"}, store.deleted)

	keys, err := mr.HKeys(consts.MediaOrphanKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"retry.jpg"}, keys)

	var meta dto.MediaOrphanMeta
	require.NoError(t, json.Unmarshal([]byte(mr.HGet(consts.MediaOrphanKey, "retry.jpg")), &meta))
	assert.Equal(t, 2, meta.Attempts)
	assert.Equal(t, "bucket unreachable", meta.LastError)
	assert.NotZero(t, meta.LastTryAt)
}

func TestMediaCleanupJob_RunSkipsWhenLocked(t *testing.T) {
	mr := testinfra.NewTestRedis(t)
	store := &flakyStore{}
	mr.HSet(consts.MediaOrphanKey, "ok.jpg", orphan(t, 1))

	require.NoError(t, mr.Set(consts.MediaCleanupLock, "other-instance"))
	job := NewMediaCleanupJob(store, 5)
	job.Run()
	assert.Empty(t, store.deleted)

	mr.Del(consts.MediaCleanupLock)
	job.Run()
	assert.Equal(t, []string{"ok.jpg"}, store.deleted)
	assert.False(t, mr.Exists(consts.MediaCleanupLock))
}
