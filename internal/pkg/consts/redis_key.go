package consts

const (
	UserFollowerKey  = "user:follower:"
	UserFollowingKey = "user:following:"
	FollowToggleKey  = "follow:toggle:result:"
	TokenBlacklist   = "token:blacklist:"
	MediaOrphanKey   = "media:orphan"
)

const (
	FollowPairLock   = "follow:pair:lock:"
	MediaCleanupLock = "media:cleanup:lock"
)
