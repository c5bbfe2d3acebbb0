package models

import "time"

// OrderStatus represents all possible states of a cafeteria order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusServed    OrderStatus = "served"
	StatusCancelled OrderStatus = "cancelled"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
)

type PaymentType string

const (
	PaymentSingle       PaymentType = "single"
	PaymentSubscription PaymentType = "subscription"
)

type Order struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	UserID      uint        `json:"user_id" gorm:"not null;index"`
	User        *User       `json:"-" gorm:"foreignKey:UserID"`
	DishID      *uint       `json:"dish_id" gorm:"index"`
	Dish        *Dish       `json:"-" gorm:"foreignKey:DishID;constraint:OnDelete:SET NULL"`
	DishName    string      `json:"dish_name" gorm:"not null"` // snapshot name
	Price       Money       `json:"price" gorm:"not null"`     // snapshot price at time of order
	MealType    MealType    `json:"meal_type"`
	PaymentType PaymentType `json:"payment_type"`
	Status      OrderStatus `json:"status" gorm:"not null;default:'pending';index"`
	ServedBy    *uint       `json:"served_by"`
	ServedAt    *time.Time  `json:"served_at"`
	CreatedAt   time.Time   `json:"order_date"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
