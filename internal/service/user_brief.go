package service

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/model"
	"Keystone/internal/pkg/consts"

	"github.com/jinzhu/copier"
)

// toUserBrief 头像为空时使用默认头像
func toUserBrief(u *model.User) dto.UserBriefDTO {
	var brief dto.UserBriefDTO
	_ = copier.Copy(&brief, u)
	if brief.AvatarURL == "" {
		brief.AvatarURL = consts.DefaultAvatarURL
	}
	return brief
}
