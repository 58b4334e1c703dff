package model

import (
	"time"
)

type User struct {
	ID             uint64  `gorm:"primaryKey" json:"id"`
	Username       *string `gorm:"type:varchar(50);uniqueIndex:idx_username" json:"username"`
	Password       *string `gorm:"type:varchar(255)" json:"-"`
	Nickname       string  `gorm:"type:varchar(50);not null;default:''" json:"nickname"`
	AvatarURL      string  `gorm:"type:varchar(512);not null;default:''" json:"avatar_url"`
	IsVerified     bool    `gorm:"type:tinyint(1);not null;default:0;index:idx_users_verified" json:"is_verified"`
	FollowersCount int64   `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int64   `gorm:"not null;default:0" json:"following_count"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string {
	return "users"
}
