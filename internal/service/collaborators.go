package service

import "context"

// MediaStore 对象存储中的帖子媒体
type MediaStore interface {
	DeleteMedia(ctx context.Context, mediaURL string) error
}

// SearchIndexCleaner 搜索索引中的用户与帖子文档
type SearchIndexCleaner interface {
	DeleteUser(ctx context.Context, userID uint64) error
	DeletePostsByUser(ctx context.Context, userID uint64) error
}

// NotificationInbox 系统通知收件箱
type NotificationInbox interface {
	NotifyFollowed(ctx context.Context, receiverID, senderID uint64) error
	DeleteByUser(ctx context.Context, userID uint64) (int64, error)
}
