package service

import (
	"context"
	"strings"

	"school-cafe-api/apperr"
	"school-cafe-api/auth"
	"school-cafe-api/models"
	"school-cafe-api/store"
)

type MenuService struct {
	base
}

type DishInput struct {
	Name        string
	Description string
	Category    string
	Price       models.Money
	Ingredients string
	Allergens   string
	Calories    *int
	Quantity    int
}

// DishUpdate is a partial update; nil fields are left alone. IsAvailable sets or clears
// the admin's force-hide flag.
type DishUpdate struct {
	Name        *string
	Description *string
	Category    *string
	Price       *models.Money
	Ingredients *string
	Allergens   *string
	Calories    *int
	Quantity    *int
	IsAvailable *bool
}

// Menu returns what students can order right now.
func (s *MenuService) Menu(ctx context.Context, category string) ([]models.Dish, error) {
	return s.store.ListMenu(ctx, strings.TrimSpace(category))
}

func (s *MenuService) List(ctx context.Context, p auth.Principal) ([]models.Dish, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.store.ListDishes(ctx)
}

func (s *MenuService) Create(ctx context.Context, p auth.Principal, in DishInput) (*models.Dish, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return nil, apperr.New(apperr.Validation, "Name and category are required")
	}
	if in.Price <= 0 {
		return nil, apperr.New(apperr.Validation, "Price must be greater than 0")
	}
	if in.Quantity < 0 {
		return nil, apperr.New(apperr.Validation, "Quantity cannot be negative")
	}

	dish := &models.Dish{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Ingredients: in.Ingredients,
		Allergens:   in.Allergens,
		Calories:    in.Calories,
		Quantity:    in.Quantity,
		IsAvailable: models.Availability(in.Quantity, false),
	}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		taken, err := tx.DishNameTaken(ctx, dish.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.New(apperr.Conflict, "A dish with this name already exists")
		}
		return tx.CreateDish(ctx, dish)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Dish created", "dish_id", dish.ID, "name", dish.Name, "quantity", dish.Quantity)
	return dish, nil
}

// Update applies a partial edit. Stock changes go through the ledger so availability is
// recomputed the same way as for orders.
func (s *MenuService) Update(ctx context.Context, p auth.Principal, id uint, in DishUpdate) (*models.Dish, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	var dish *models.Dish
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.GetDishForUpdate(ctx, id)
		if err != nil {
			return err
		}

		fields, err := dishFields(in)
		if err != nil {
			return err
		}
		if name, ok := fields["name"].(string); ok && name != current.Name {
			taken, err := tx.DishNameTaken(ctx, name, id)
			if err != nil {
				return err
			}
			if taken {
				return apperr.New(apperr.Conflict, "A dish with this name already exists")
			}
		}
		if len(fields) > 0 {
			if err := tx.UpdateDishFields(ctx, id, fields); err != nil {
				return err
			}
		}

		delta := 0
		if in.Quantity != nil {
			delta = *in.Quantity - current.Quantity
		}
		dish, err = s.ledger.AdjustStock(ctx, tx, id, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Dish updated", "dish_id", dish.ID, "quantity", dish.Quantity, "is_available", dish.IsAvailable)
	return dish, nil
}

// dishFields validates an update and returns the columns it touches. Quantity is
// handled separately by the ledger.
func dishFields(in DishUpdate) (map[string]any, error) {
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.New(apperr.Validation, "Name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, apperr.New(apperr.Validation, "Category cannot be empty")
		}
		fields["category"] = category
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, apperr.New(apperr.Validation, "Price must be greater than 0")
		}
		fields["price"] = int64(*in.Price)
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, apperr.New(apperr.Validation, "Quantity cannot be negative")
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Ingredients != nil {
		fields["ingredients"] = *in.Ingredients
	}
	if in.Allergens != nil {
		fields["allergens"] = *in.Allergens
	}
	if in.Calories != nil {
		fields["calories"] = *in.Calories
	}
	if in.IsAvailable != nil {
		fields["hidden"] = !*in.IsAvailable
	}
	return fields, nil
}

// Delete removes a dish unless a pending order still references it.
func (s *MenuService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetDishForUpdate(ctx, id); err != nil {
			return err
		}
		pending, err := tx.CountPendingOrdersForDish(ctx, id)
		if err != nil {
			return err
		}
		if pending > 0 {
			return apperr.New(apperr.Conflict, "Cannot delete dish with %d pending order(s)", pending)
		}
		return tx.DeleteDish(ctx, id)
	})
	if err != nil {
		s.log.Warn("Dish delete refused", "dish_id", id, "error", err)
		return err
	}

	s.log.Info("Dish deleted", "dish_id", id)
	return nil
}

// Toggle flips the force-hide flag. A shown dish is available only while it has stock.
func (s *MenuService) Toggle(ctx context.Context, p auth.Principal, id uint) (*models.Dish, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	var dish *models.Dish
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.GetDishForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.UpdateDishFields(ctx, id, map[string]any{"hidden": !current.Hidden}); err != nil {
			return err
		}
		dish, err = s.ledger.AdjustStock(ctx, tx, id, 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Dish availability toggled", "dish_id", id, "hidden", dish.Hidden, "is_available", dish.IsAvailable)
	return dish, nil
}
