package store

import (
	"context"
	"errors"

	"school-cafe-api/apperr"
	"school-cafe-api/models"

	"gorm.io/gorm"
)

// CreateUser inserts u. A taken username is a Conflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := s.DB(ctx).Model(&models.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return internal(err, "failed to check username")
	}
	if count > 0 {
		return apperr.New(apperr.Conflict, "Username already registered")
	}
	if err := s.DB(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.Conflict, "Username already registered")
		}
		return internal(err, "failed to create user")
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "User")
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.DB(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err, "User")
	}
	return &u, nil
}

// AddBalance applies delta to the user's balance in one conditional statement. It reports
// false when the user is missing or the result would be negative.
func (s *Store) AddBalance(ctx context.Context, userID uint, delta models.Money) (bool, error) {
	res := s.DB(ctx).Model(&models.User{}).
		Where("id = ? AND balance + ? >= 0", userID, int64(delta)).
		Update("balance", gorm.Expr("balance + ?", int64(delta)))
	if res.Error != nil {
		return false, internal(res.Error, "failed to update balance")
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, internal(err, "failed to count users")
	}
	return n, nil
}
