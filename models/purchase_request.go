package models

import "time"

type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchaseApproved PurchaseStatus = "approved"
	PurchaseRejected PurchaseStatus = "rejected"
)

// PurchaseRequest is a cook's requisition, resolved once by an admin.
type PurchaseRequest struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CreatedBy    uint           `json:"created_by" gorm:"not null;index"`
	Creator      *User          `json:"-" gorm:"foreignKey:CreatedBy"`
	DishID       *uint          `json:"dish_id"`
	Dish         *Dish          `json:"-" gorm:"foreignKey:DishID;constraint:OnDelete:SET NULL"`
	ProductName  string         `json:"product_name" gorm:"not null"`
	Quantity     int            `json:"quantity" gorm:"not null"`
	Reason       string         `json:"reason"`
	Status       PurchaseStatus `json:"status" gorm:"not null;default:'pending';index"`
	ProcessedBy  *uint          `json:"processed_by"`
	Processor    *User          `json:"-" gorm:"foreignKey:ProcessedBy"`
	ProcessedAt  *time.Time     `json:"processed_at"`
	AdminComment string         `json:"admin_comment"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
