package handler

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/api/middleware"
	"Keystone/internal/pkg/response"
	"Keystone/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	purgeSvc service.AccountPurgeService
}

func NewAccountHandler(purgeSvc service.AccountPurgeService) *AccountHandler {
	return &AccountHandler{purgeSvc: purgeSvc}
}

// DeleteAccount 注销账号，需要再次输入密码
func (s *AccountHandler) DeleteAccount(c *gin.Context) {
	userID := c.GetUint64(middleware.UserIDKey)

	var req dto.DeleteAccountDTO
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	err := s.purgeSvc.DeleteAccount(c.Request.Context(), userID, req.Password, c.GetString(middleware.TokenKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
