package dto

// UserBriefDTO 关注列表、推荐列表中的用户信息
type UserBriefDTO struct {
	ID             uint64 `json:"id"`
	Nickname       string `json:"nickname"`
	AvatarURL      string `json:"avatar_url"`
	IsVerified     bool   `json:"is_verified"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// DeleteAccountDTO 注销账号需要再次输入密码
type DeleteAccountDTO struct {
	Password string `json:"password" binding:"required" validate:"min=6,max=20"`
}
