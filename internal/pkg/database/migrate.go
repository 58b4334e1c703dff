package database

import (
	"Keystone/internal/model"
	"fmt"

	"gorm.io/gorm"
)

// Migrate 建表
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.UserFollow{},
		&model.Post{},
		&model.PostMedia{},
		&model.PostComment{},
		&model.Like{},
		&model.CommentLike{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
