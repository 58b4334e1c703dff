package dto

// MediaOrphanMeta 删除失败、等待定时任务重试的媒体对象
type MediaOrphanMeta struct {
	UserID    uint64 `json:"user_id"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error"`
	CreatedAt int64  `json:"created_at"`
	LastTryAt int64  `json:"last_try_at"`
}
