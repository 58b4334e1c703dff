package model

import "time"

// UserFollow 关注边 follower -> following
type UserFollow struct {
	FollowerID  uint64    `gorm:"primaryKey;check:chk_no_self_follow,follower_id <> following_id" json:"followerId"`
	FollowingID uint64    `gorm:"primaryKey;index:idx_follows_following_id" json:"followingId"`
	CreatedAt   time.Time `gorm:"index:idx_follows_created_at" json:"createdAt"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}
