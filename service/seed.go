package service

import (
	"context"
	"log/slog"

	"school-cafe-api/auth"
	"school-cafe-api/models"
	"school-cafe-api/store"
)

const seedPassword = "password123"

// Seed fills an empty database with demo accounts, a small menu and two open purchase
// requests. It does nothing once any user exists.
func Seed(ctx context.Context, st *store.Store, log *slog.Logger) error {
	n, err := st.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info("Database already populated, skipping seed", "users", n)
		return nil
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	users := []*models.User{
		{Username: "student1", FullName: "Ivan Petrov", Role: models.RoleStudent, ClassName: "9A", Balance: models.Rubles(1000), Allergies: "nuts"},
		{Username: "student2", FullName: "Maria Sidorova", Role: models.RoleStudent, ClassName: "10B", Balance: models.Rubles(1500), DietaryPreferences: "vegetarian"},
		{Username: "cook1", FullName: "Anna Kuznetsova", Role: models.RoleCook},
		{Username: "admin1", FullName: "Sergey Volkov", Role: models.RoleAdmin},
	}
	cal := func(n int) *int { return &n }
	dishes := []*models.Dish{
		{Name: "Oatmeal porridge", Category: models.CategoryBreakfast, Price: models.Rubles(80), Quantity: 30,
			Description: "Oatmeal with butter and honey", Ingredients: "oats, milk, butter, honey", Allergens: "milk", Calories: cal(250)},
		{Name: "Cheese pancakes", Category: models.CategoryBreakfast, Price: models.Rubles(120), Quantity: 20,
			Description: "Cottage cheese pancakes with sour cream", Ingredients: "cottage cheese, flour, eggs, sugar", Allergens: "milk, eggs, gluten", Calories: cal(320)},
		{Name: "Borscht", Category: models.CategoryLunch, Price: models.Rubles(150), Quantity: 25,
			Description: "Beet soup with sour cream", Ingredients: "beet, cabbage, potato, carrot, beef", Allergens: "milk", Calories: cal(280)},
		{Name: "Chicken cutlet with mashed potatoes", Category: models.CategoryLunch, Price: models.Rubles(180), Quantity: 20,
			Description: "Chicken cutlet served with mashed potatoes", Ingredients: "chicken, potato, milk, butter, breadcrumbs", Allergens: "milk, gluten", Calories: cal(450)},
		{Name: "Compote", Category: models.CategoryDrink, Price: models.Rubles(40), Quantity: 50,
			Description: "Dried fruit compote", Ingredients: "dried fruits, sugar, water", Calories: cal(90)},
	}

	return st.Transaction(ctx, func(tx *store.Store) error {
		for _, u := range users {
			u.PasswordHash = hash
			if err := tx.CreateUser(ctx, u); err != nil {
				return err
			}
		}
		for _, d := range dishes {
			d.IsAvailable = models.Availability(d.Quantity, false)
			if err := tx.CreateDish(ctx, d); err != nil {
				return err
			}
		}

		cook := users[2]
		requests := []*models.PurchaseRequest{
			{CreatedBy: cook.ID, DishID: &dishes[2].ID, ProductName: dishes[2].Name, Quantity: 30, Reason: "Weekly restock", Status: models.PurchasePending},
			{CreatedBy: cook.ID, ProductName: "Flour", Quantity: 10, Reason: "Baking supplies", Status: models.PurchasePending},
		}
		for _, pr := range requests {
			if err := tx.CreatePurchaseRequest(ctx, pr); err != nil {
				return err
			}
		}

		log.Info("Database seeded", "users", len(users), "dishes", len(dishes), "purchase_requests", len(requests))
		return nil
	})
}
