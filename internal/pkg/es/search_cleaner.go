package es

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/conflicts"
)

// SearchCleaner 注销后移除用户与其帖子的索引文档
type SearchCleaner struct {
	client    *elasticsearch.TypedClient
	userIndex string
	postIndex string
}

func NewSearchCleaner(client *elasticsearch.TypedClient, userIndex, postIndex string) *SearchCleaner {
	return &SearchCleaner{client: client, userIndex: userIndex, postIndex: postIndex}
}

// DeleteUser 文档不存在视为成功
func (s *SearchCleaner) DeleteUser(ctx context.Context, userID uint64) error {
	_, err := s.client.Delete(s.userIndex, strconv.FormatUint(userID, 10)).Do(ctx)
	if err != nil {
		if isStatus(err, NotFoundCode) {
			log.WarnContext(ctx, "User already deleted or not found in ES", "id", userID)
			return nil
		}
		return err
	}
	return nil
}

// DeletePostsByUser 按 user_id 删除帖子文档，版本冲突的文档跳过
func (s *SearchCleaner) DeletePostsByUser(ctx context.Context, userID uint64) error {
	resp, err := s.client.DeleteByQuery(s.postIndex).
		Query(&types.Query{
			Term: map[string]types.TermQuery{
				"user_id": {Value: userID},
			},
		}).
		Conflicts(conflicts.Proceed).
		Do(ctx)
	if err != nil {
		if isStatus(err, NotFoundCode) {
			return nil
		}
		return fmt.Errorf("post index: delete by user %d failed: %w", userID, err)
	}
	if len(resp.Failures) != 0 {
		return fmt.Errorf("post index: delete by user %d has %d failures", userID, len(resp.Failures))
	}
	return nil
}

func isStatus(err error, status int) bool {
	var e *types.ElasticsearchError
	return errors.As(err, &e) && e.Status == status
}
