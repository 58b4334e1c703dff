package service

import (
	"context"
	"errors"
	"sync"
)

type fakeInbox struct {
	mu       sync.Mutex
	notified [][2]uint64
	deleted  []uint64
}

func (f *fakeInbox) NotifyFollowed(_ context.Context, receiverID, senderID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, [2]uint64{receiverID, senderID})
	return nil
}

func (f *fakeInbox) DeleteByUser(_ context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return 1, nil
}

func (f *fakeInbox) notifications() [][2]uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][2]uint64(nil), f.notified...)
}

func (f *fakeInbox) deletions() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.deleted...)
}

type fakeMediaStore struct {
	mu      sync.Mutex
	failing map[string]bool
	deleted []string
}

func (f *fakeMediaStore) DeleteMedia(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[key] {
		return errors.New("object store unavailable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeMediaStore) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeSearch struct {
	mu          sync.Mutex
	users       []uint64
	postsOwners []uint64
	err         error
}

func (f *fakeSearch) DeleteUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return f.err
}

func (f *fakeSearch) DeletePostsByUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postsOwners = append(f.postsOwners, userID)
	return f.err
}

func (f *fakeSearch) calls() (users, owners []uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.users...), append([]uint64(nil), f.postsOwners...)
}
