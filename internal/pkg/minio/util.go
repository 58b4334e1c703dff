package minio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Store 帖子媒体所在的存储桶
type Store struct {
	client *minio.Client
	bucket string
}

func NewStore(client *minio.Client, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// DeleteMedia 删除对象，对象已不存在视为成功
func (s *Store) DeleteMedia(ctx context.Context, mediaURL string) error {
	if s == nil || s.client == nil {
		return errors.New("minio client is not initialized")
	}
	objectName := ObjectNameFromURL(s.bucket, mediaURL)
	if objectName == "" {
		return fmt.Errorf("invalid media url %q", mediaURL)
	}

	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", objectName, err)
	}
	return nil
}

// ObjectNameFromURL 帖子媒体既可能存对象 key，也可能存完整的访问地址，统一还原为 key
func ObjectNameFromURL(bucket, mediaURL string) string {
	raw := strings.TrimSpace(mediaURL)
	if raw == "" {
		return ""
	}

	path := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		path = u.Path
	}

	path = strings.TrimPrefix(path, "/")
	if bucket != "" {
		path = strings.TrimPrefix(path, bucket+"/")
	}
	return path
}
