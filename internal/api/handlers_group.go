package api

import "Keystone/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserFollowHandler *handler.UserFollowHandler
	SuggestionHandler *handler.SuggestionHandler
	AccountHandler    *handler.AccountHandler
}
