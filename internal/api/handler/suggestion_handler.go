package handler

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/api/middleware"
	"Keystone/internal/pkg/response"
	"Keystone/internal/service"

	"github.com/gin-gonic/gin"
)

type SuggestionHandler struct {
	suggestionSvc service.SuggestionService
}

func NewSuggestionHandler(suggestionSvc service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionSvc: suggestionSvc}
}

func (s *SuggestionHandler) Suggest(c *gin.Context) {
	userID := c.GetUint64(middleware.UserIDKey)

	var query dto.SuggestionQueryDTO
	if err := bindQuery(c, &query); err != nil {
		response.Error(c, err)
		return
	}

	list, err := s.suggestionSvc.Suggest(c.Request.Context(), userID, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
