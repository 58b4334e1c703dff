package dto

import "time"

// ToggleFollowDTO 关注切换结果，FollowedAt 与 UnfollowedAt 只会有一个
type ToggleFollowDTO struct {
	Following    bool       `json:"following"`
	FollowedAt   *time.Time `json:"followed_at,omitempty"`
	UnfollowedAt *time.Time `json:"unfollowed_at,omitempty"`
}

// FollowStatusDTO 关注状态
type FollowStatusDTO struct {
	Following      bool       `json:"following"`
	FollowersCount int64      `json:"followers_count"`
	FollowingCount int64      `json:"following_count"`
	FollowedAt     *time.Time `json:"followed_at,omitempty"`
}

// FollowItemDTO 关注/粉丝列表条目
type FollowItemDTO struct {
	User       UserBriefDTO `json:"user"`
	FollowedAt time.Time    `json:"followed_at"`
}

// PaginationDTO 分页
type PaginationDTO struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
}

type FollowListDTO struct {
	Items      []*FollowItemDTO `json:"items"`
	Pagination PaginationDTO    `json:"pagination"`
}

// ListQueryDTO 列表分页参数
type ListQueryDTO struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=50"`
}
