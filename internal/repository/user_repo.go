package repository

import (
	"Keystone/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	WithTx(tx *gorm.DB) UserRepo
	GetUserById(ctx context.Context, id uint64) (*model.User, error)
	GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error)
	LockUser(ctx context.Context, id uint64) (*model.User, error)
	GetRandomVerified(ctx context.Context, exclude []uint64, n int) ([]*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
}

type UserRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &UserRepoImpl{db: db}
}

func (s *UserRepoImpl) WithTx(tx *gorm.DB) UserRepo {
	return &UserRepoImpl{db: tx}
}

// GetUserById 用户不存在时返回 nil, nil
func (s *UserRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).First(user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

func (s *UserRepoImpl) GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error) {
	users := make([]*model.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	result := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

// LockUser 在事务中对用户行加写锁，同一用户的关注切换与注销因此串行执行
func (s *UserRepoImpl) LockUser(ctx context.Context, id uint64) (*model.User, error) {
	user := &model.User{}
	result := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return user, nil
}

// GetRandomVerified 随机取 n 个已认证用户，排除 exclude 中的用户
func (s *UserRepoImpl) GetRandomVerified(ctx context.Context, exclude []uint64, n int) ([]*model.User, error) {
	users := make([]*model.User, 0, n)
	if n <= 0 {
		return users, nil
	}

	query := s.db.WithContext(ctx).Where("is_verified = ?", true)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	result := query.
		Order(randomOrder(s.db)).
		Limit(n).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func randomOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "RANDOM()"
	}
	return "RAND()"
}
