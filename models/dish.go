package models

import "time"

// Dish categories used by the seed menu. Category is free-form, these are not enforced.
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDrink     = "drink"
)

type Dish struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Category    string    `json:"category" gorm:"not null;index"`
	Price       Money     `json:"price" gorm:"not null"`
	Ingredients string    `json:"ingredients"`
	Allergens   string    `json:"allergens"`
	Calories    *int      `json:"calories"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0"`
	IsAvailable bool      `json:"is_available" gorm:"not null;default:false"`
	Hidden      bool      `json:"hidden" gorm:"not null;default:false"` // forced off by an admin
	Rating      float64   `json:"rating" gorm:"default:0"`
	RatingCount int       `json:"rating_count" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Availability is the derived availability flag for a given stock level.
func Availability(quantity int, hidden bool) bool {
	return !hidden && quantity > 0
}

// Purchasable reports whether a student may order the dish right now.
func (d *Dish) Purchasable() bool {
	return d.IsAvailable && d.Quantity > 0
}
