package repository

import "errors"

var (
	// ErrFollowConflict 关注边已存在，或关注自己
	ErrFollowConflict = errors.New("follow edge already exists")
	// ErrFollowNotFound 要删除的关注边不存在
	ErrFollowNotFound = errors.New("follow edge not found")
	// ErrFollowTargetMissing 被关注用户不存在
	ErrFollowTargetMissing = errors.New("follow target does not exist")
	// ErrCounterUnderflow 计数器更新命中的行数与预期不符，说明计数与关注边已经不一致
	ErrCounterUnderflow = errors.New("follow counter out of sync with edges")
)
