package store

import (
	"context"
	"errors"

	"school-cafe-api/apperr"
	"school-cafe-api/models"

	"gorm.io/gorm"
)

// ListMenu returns purchasable dishes, optionally for one category.
func (s *Store) ListMenu(ctx context.Context, category string) ([]models.Dish, error) {
	var dishes []models.Dish
	q := s.DB(ctx).Where("is_available = ?", true)
	if category != "" {
		q = q.Where("category = ?", category).Order("price").Order("id")
	} else {
		q = q.Order("category").Order("price").Order("id")
	}
	if err := q.Find(&dishes).Error; err != nil {
		return nil, internal(err, "failed to load menu")
	}
	return dishes, nil
}

func (s *Store) ListDishes(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := s.DB(ctx).Order("category").Order("name").Find(&dishes).Error; err != nil {
		return nil, internal(err, "failed to load dishes")
	}
	return dishes, nil
}

func (s *Store) GetDish(ctx context.Context, id uint) (*models.Dish, error) {
	var d models.Dish
	if err := s.DB(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err, "Dish")
	}
	return &d, nil
}

// GetDishForUpdate loads the dish and, on Postgres, locks its row until the transaction ends.
func (s *Store) GetDishForUpdate(ctx context.Context, id uint) (*models.Dish, error) {
	var d models.Dish
	if err := s.forUpdate(s.DB(ctx)).First(&d, id).Error; err != nil {
		return nil, notFound(err, "Dish")
	}
	return &d, nil
}

// DishNameTaken reports whether another dish (excluding excludeID) already uses name.
func (s *Store) DishNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := s.DB(ctx).Model(&models.Dish{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, internal(err, "failed to check dish name")
	}
	return count > 0, nil
}

func (s *Store) CreateDish(ctx context.Context, d *models.Dish) error {
	if err := s.DB(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.Conflict, "A dish with this name already exists")
		}
		return internal(err, "failed to create dish")
	}
	return nil
}

// UpdateDishFields writes the given columns. Keys are column names.
func (s *Store) UpdateDishFields(ctx context.Context, id uint, fields map[string]any) error {
	err := s.DB(ctx).Model(&models.Dish{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.Conflict, "A dish with this name already exists")
		}
		return internal(err, "failed to update dish")
	}
	return nil
}

func (s *Store) DeleteDish(ctx context.Context, id uint) error {
	if err := s.DB(ctx).Delete(&models.Dish{}, id).Error; err != nil {
		return internal(err, "failed to delete dish")
	}
	return nil
}

// AddStock applies delta to the dish quantity and recomputes is_available in the same
// statement. It reports false when the dish is missing or stock would go negative.
func (s *Store) AddStock(ctx context.Context, dishID uint, delta int) (bool, error) {
	res := s.DB(ctx).Model(&models.Dish{}).
		Where("id = ? AND quantity + ? >= 0", dishID, delta).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"is_available": gorm.Expr("(quantity + ? > 0 AND NOT hidden)", delta),
		})
	if res.Error != nil {
		return false, internal(res.Error, "failed to update stock")
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) CountDishes(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB(ctx).Model(&models.Dish{}).Count(&n).Error; err != nil {
		return 0, internal(err, "failed to count dishes")
	}
	return n, nil
}
