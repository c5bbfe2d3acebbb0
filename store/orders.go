package store

import (
	"context"

	"school-cafe-api/models"
)

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := s.DB(ctx).Create(o).Error; err != nil {
		return internal(err, "failed to create order")
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := s.DB(ctx).First(&o, id).Error; err != nil {
		return nil, notFound(err, "Order")
	}
	return &o, nil
}

// GetOrderForUpdate loads the order with a row lock on Postgres.
func (s *Store) GetOrderForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := s.forUpdate(s.DB(ctx)).First(&o, id).Error; err != nil {
		return nil, notFound(err, "Order")
	}
	return &o, nil
}

// TransitionOrder moves the order from one status to another, writing any extra columns
// in the same statement. It reports false if the order was no longer in status from.
func (s *Store) TransitionOrder(ctx context.Context, id uint, from, to models.OrderStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := s.DB(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, internal(res.Error, "failed to update order status")
	}
	return res.RowsAffected == 1, nil
}

// ListOrdersByUser returns the user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, internal(err, "failed to load orders")
	}
	return orders, nil
}

// ListPendingOrders is the kitchen queue: pending orders of every student, oldest first.
func (s *Store) ListPendingOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB(ctx).Preload("User").
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, internal(err, "failed to load pending orders")
	}
	return orders, nil
}

func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB(ctx).Preload("User").
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, internal(err, "failed to load orders")
	}
	return orders, nil
}

func (s *Store) CountPendingOrdersForDish(ctx context.Context, dishID uint) (int64, error) {
	var n int64
	err := s.DB(ctx).Model(&models.Order{}).
		Where("dish_id = ? AND status = ?", dishID, models.StatusPending).
		Count(&n).Error
	if err != nil {
		return 0, internal(err, "failed to count pending orders")
	}
	return n, nil
}

func (s *Store) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, internal(err, "failed to count orders")
	}
	return n, nil
}
