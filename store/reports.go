package store

import (
	"context"
	"time"

	"school-cafe-api/models"
)

// Aggregation rows. Revenue columns only ever sum served orders.

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type CategoryRevenue struct {
	Category   string       `json:"category"`
	OrderCount int64        `json:"order_count"`
	Revenue    models.Money `json:"revenue"`
}

type DishSales struct {
	DishName   string       `json:"dish_name"`
	OrderCount int64        `json:"order_count"`
	Revenue    models.Money `json:"revenue"`
}

type StudentSpending struct {
	UserID     uint         `json:"user_id"`
	Username   string       `json:"username"`
	FullName   string       `json:"full_name"`
	ClassName  string       `json:"class_name"`
	OrderCount int64        `json:"order_count"`
	TotalSpent models.Money `json:"total_spent"`
}

type UserActivity struct {
	ID          uint            `json:"id"`
	Username    string          `json:"username"`
	FullName    string          `json:"full_name"`
	Role        models.UserRole `json:"role"`
	ClassName   string          `json:"class_name"`
	Balance     models.Money    `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	TotalOrders int64           `json:"total_orders"`
	TotalSpent  models.Money    `json:"total_spent"`
}

type DishActivity struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Price       models.Money `json:"price"`
	Quantity    int          `json:"quantity"`
	Rating      float64      `json:"rating"`
	RatingCount int          `json:"rating_count"`
	OrderCount  int64        `json:"order_count"`
	Revenue     models.Money `json:"revenue"`
}

const servedSum = "CAST(COALESCE(SUM(CASE WHEN o.status = 'served' THEN o.price ELSE 0 END), 0) AS BIGINT)"

func (s *Store) ServedRevenue(ctx context.Context) (models.Money, error) {
	var total int64
	err := s.DB(ctx).Model(&models.Order{}).
		Select("CAST(COALESCE(SUM(price), 0) AS BIGINT)").
		Where("status = ?", models.StatusServed).
		Scan(&total).Error
	if err != nil {
		return 0, internal(err, "failed to sum revenue")
	}
	return models.Money(total), nil
}

func (s *Store) TotalBalance(ctx context.Context) (models.Money, error) {
	var total int64
	err := s.DB(ctx).Model(&models.User{}).
		Select("CAST(COALESCE(SUM(balance), 0) AS BIGINT)").
		Scan(&total).Error
	if err != nil {
		return 0, internal(err, "failed to sum balances")
	}
	return models.Money(total), nil
}

func (s *Store) OrdersByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := s.DB(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "failed to count orders by status")
	}
	return rows, nil
}

func (s *Store) PurchaseRequestsByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := s.DB(ctx).Model(&models.PurchaseRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "failed to count purchase requests by status")
	}
	return rows, nil
}

// RevenueByCategory groups served orders by the current category of their dish. Orders
// whose dish was deleted fall under "uncategorized".
func (s *Store) RevenueByCategory(ctx context.Context) ([]CategoryRevenue, error) {
	var rows []CategoryRevenue
	err := s.DB(ctx).Table("orders o").
		Select("COALESCE(d.category, 'uncategorized') AS category, COUNT(o.id) AS order_count, CAST(COALESCE(SUM(o.price), 0) AS BIGINT) AS revenue").
		Joins("LEFT JOIN dishes d ON d.id = o.dish_id").
		Where("o.status = ?", models.StatusServed).
		Group("COALESCE(d.category, 'uncategorized')").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "failed to aggregate revenue by category")
	}
	return rows, nil
}

// TopDishes ranks dishes by served revenue using the name snapshot on the order.
func (s *Store) TopDishes(ctx context.Context, limit int) ([]DishSales, error) {
	var rows []DishSales
	err := s.DB(ctx).Table("orders o").
		Select("o.dish_name AS dish_name, COUNT(o.id) AS order_count, CAST(COALESCE(SUM(o.price), 0) AS BIGINT) AS revenue").
		Where("o.status = ?", models.StatusServed).
		Group("o.dish_name").
		Order("revenue DESC").Order("dish_name").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "failed to rank dishes")
	}
	return rows, nil
}

func (s *Store) TopStudents(ctx context.Context, limit int) ([]StudentSpending, error) {
	var rows []StudentSpending
	err := s.DB(ctx).Table("orders o").
		Select("u.id AS user_id, u.username, u.full_name, u.class_name, COUNT(o.id) AS order_count, CAST(COALESCE(SUM(o.price), 0) AS BIGINT) AS total_spent").
		Joins("JOIN users u ON u.id = o.user_id").
		Where("o.status = ?", models.StatusServed).
		Group("u.id, u.username, u.full_name, u.class_name").
		Order("total_spent DESC").Order("u.id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "failed to rank students")
	}
	return rows, nil
}

// OrdersSince returns orders created at or after t. Callers bucket them by day.
func (s *Store) OrdersSince(ctx context.Context, t time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB(ctx).
		Where("created_at >= ?", t).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, internal(err, "failed to load recent orders")
	}
	return orders, nil
}

func (s *Store) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB(ctx).Preload("User").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, internal(err, "failed to load recent orders")
	}
	return orders, nil
}

func (s *Store) UserActivity(ctx context.Context) ([]UserActivity, error) {
	var rows []UserActivity
	err := s.DB(ctx).Table("users u").
		Select("u.id, u.username, u.full_name, u.role, u.class_name, u.balance, u.created_at, COUNT(o.id) AS total_orders, " + servedSum + " AS total_spent").
		Joins("LEFT JOIN orders o ON o.user_id = u.id").
		Group("u.id, u.username, u.full_name, u.role, u.class_name, u.balance, u.created_at").
		Order("total_spent DESC").Order("u.id").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "failed to aggregate user activity")
	}
	return rows, nil
}

func (s *Store) DishActivity(ctx context.Context) ([]DishActivity, error) {
	var rows []DishActivity
	err := s.DB(ctx).Table("dishes d").
		Select("d.id, d.name, d.category, d.price, d.quantity, d.rating, d.rating_count, COUNT(o.id) AS order_count, " + servedSum + " AS revenue").
		Joins("LEFT JOIN orders o ON o.dish_id = d.id").
		Group("d.id, d.name, d.category, d.price, d.quantity, d.rating, d.rating_count").
		Order("revenue DESC").Order("d.id").
		Scan(&rows).Error
	if err != nil {
		return nil, internal(err, "failed to aggregate dish activity")
	}
	return rows, nil
}
