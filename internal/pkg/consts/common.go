package consts

const (
	DefaultAvatarURL = "default_avatar.png"
)

const (
	// FollowListCacheSize 关注/粉丝列表缓存的条数上限，超出部分直接查库
	FollowListCacheSize = 1000
)

const (
	// SysBoxTypeFollow 系统通知类型：被关注
	SysBoxTypeFollow = 5
)
