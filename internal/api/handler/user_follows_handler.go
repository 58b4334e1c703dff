package handler

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/api/middleware"
	"Keystone/internal/pkg/response"
	"Keystone/internal/service"

	"github.com/gin-gonic/gin"
)

type UserFollowHandler struct {
	userFollowSvc service.UserFollowService
}

func NewUserFollowHandler(userFollowSvc service.UserFollowService) *UserFollowHandler {
	return &UserFollowHandler{userFollowSvc: userFollowSvc}
}

// Toggle 关注或取消关注
func (s *UserFollowHandler) Toggle(c *gin.Context) {
	userID := c.GetUint64(middleware.UserIDKey)
	targetID, err := paramUint64(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.userFollowSvc.ToggleFollow(c.Request.Context(), userID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Status 未登录时只返回计数
func (s *UserFollowHandler) Status(c *gin.Context) {
	viewerID := c.GetUint64(middleware.UserIDKey)
	targetID, err := paramUint64(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	status, err := s.userFollowSvc.GetFollowStatus(c.Request.Context(), viewerID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

func (s *UserFollowHandler) GetUserFollowers(c *gin.Context) {
	userID, query, err := s.listParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	followers, err := s.userFollowSvc.ListFollowers(c.Request.Context(), userID, query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, followers)
}

func (s *UserFollowHandler) GetUserFollowings(c *gin.Context) {
	userID, query, err := s.listParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	followings, err := s.userFollowSvc.ListFollowing(c.Request.Context(), userID, query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, followings)
}

func (s *UserFollowHandler) listParams(c *gin.Context) (uint64, *dto.ListQueryDTO, error) {
	userID, err := paramUint64(c, "user_id")
	if err != nil {
		return 0, nil, err
	}
	var query dto.ListQueryDTO
	if err = bindQuery(c, &query); err != nil {
		return 0, nil, err
	}
	return userID, &query, nil
}
