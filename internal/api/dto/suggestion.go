package dto

// SuggestionDTO 推荐关注条目
type SuggestionDTO struct {
	User             UserBriefDTO `json:"user"`
	InteractionScore float64      `json:"interaction_score"`
	IsFollowing      bool         `json:"is_following"`
}

type SuggestionQueryDTO struct {
	Limit int `form:"limit" validate:"omitempty,min=1"`
}
