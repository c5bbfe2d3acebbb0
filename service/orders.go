package service

import (
	"context"
	"time"

	"school-cafe-api/apperr"
	"school-cafe-api/auth"
	"school-cafe-api/events"
	"school-cafe-api/models"
	"school-cafe-api/statemachine"
	"school-cafe-api/store"
)

type OrderService struct {
	base
}

type CreateOrderInput struct {
	DishID      uint
	MealType    models.MealType
	PaymentType models.PaymentType
}

// Create places an order for the calling student. The order row, the stock decrement
// and the balance debit commit together or not at all.
func (s *OrderService) Create(ctx context.Context, p auth.Principal, in CreateOrderInput) (*models.Order, error) {
	if err := auth.Require(p, models.RoleStudent); err != nil {
		return nil, err
	}
	if in.MealType == "" {
		in.MealType = models.MealLunch
	}
	if in.PaymentType == "" {
		in.PaymentType = models.PaymentSingle
	}
	if in.MealType != models.MealBreakfast && in.MealType != models.MealLunch {
		return nil, apperr.New(apperr.Validation, "Invalid meal type. Must be: breakfast or lunch")
	}
	if in.PaymentType != models.PaymentSingle && in.PaymentType != models.PaymentSubscription {
		return nil, apperr.New(apperr.Validation, "Invalid payment type. Must be: single or subscription")
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		dish, err := tx.GetDishForUpdate(ctx, in.DishID)
		if err != nil {
			return err
		}
		if !dish.Purchasable() {
			return apperr.New(apperr.DishUnavailable, "%s is not available", dish.Name)
		}

		order = &models.Order{
			UserID:      p.UserID,
			DishID:      &dish.ID,
			DishName:    dish.Name,
			Price:       dish.Price,
			MealType:    in.MealType,
			PaymentType: in.PaymentType,
			Status:      models.StatusPending,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if _, err := s.ledger.AdjustStock(ctx, tx, dish.ID, -1); err != nil {
			return err
		}
		_, err = s.ledger.AdjustBalance(ctx, tx, p.UserID, -dish.Price)
		return err
	})
	if err != nil {
		s.log.Warn("Order rejected", "user_id", p.UserID, "dish_id", in.DishID, "kind", apperr.KindOf(err), "error", err)
		return nil, err
	}

	s.log.Info("Order created",
		"order_id", order.ID,
		"user_id", p.UserID,
		"dish_id", in.DishID,
		"price", order.Price.String())
	s.publish(ctx, events.New(events.OrderCreated, order.ID, p.UserID, order))
	return order, nil
}

// Cancel cancels a pending order and refunds it in full: the dish gets its unit back and
// the student gets the snapshot price back. Students may only cancel their own orders.
func (s *OrderService) Cancel(ctx context.Context, p auth.Principal, id uint) (*models.Order, error) {
	if err := auth.Require(p, models.RoleStudent, models.RoleCook, models.RoleAdmin); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p.Is(models.RoleStudent) && current.UserID != p.UserID {
			return apperr.New(apperr.Forbidden, "You can only cancel your own orders")
		}
		if err := statemachine.Orders.CanTransition(current.Status, models.StatusCancelled, p.Role); err != nil {
			return err
		}

		ok, err := tx.TransitionOrder(ctx, id, models.StatusPending, models.StatusCancelled, nil)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.InvalidState, "Order is no longer pending")
		}

		if current.DishID != nil {
			if _, err := s.ledger.AdjustStock(ctx, tx, *current.DishID, 1); err != nil {
				return err
			}
		}
		if _, err := s.ledger.AdjustBalance(ctx, tx, current.UserID, current.Price); err != nil {
			return err
		}

		order, err = tx.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		s.log.Warn("Order cancel refused", "order_id", id, "actor_id", p.UserID, "kind", apperr.KindOf(err), "error", err)
		return nil, err
	}

	s.log.Info("Order cancelled",
		"order_id", id,
		"actor_id", p.UserID,
		"actor_role", p.Role,
		"refund", order.Price.String())
	s.publish(ctx, events.New(events.OrderCancelled, id, p.UserID, order))
	return order, nil
}

// Serve marks a pending order as handed out. Money and stock moved at creation.
func (s *OrderService) Serve(ctx context.Context, p auth.Principal, id uint) (*models.Order, error) {
	if err := auth.Require(p, models.RoleCook); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := statemachine.Orders.CanTransition(current.Status, models.StatusServed, p.Role); err != nil {
			return err
		}

		ok, err := tx.TransitionOrder(ctx, id, models.StatusPending, models.StatusServed, map[string]any{
			"served_by": p.UserID,
			"served_at": time.Now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.InvalidState, "Order is no longer pending")
		}

		order, err = tx.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		s.log.Warn("Order serve refused", "order_id", id, "cook_id", p.UserID, "kind", apperr.KindOf(err), "error", err)
		return nil, err
	}

	s.log.Info("Order served", "order_id", id, "cook_id", p.UserID)
	s.publish(ctx, events.New(events.OrderServed, id, p.UserID, order))
	return order, nil
}

// List is scoped by role: a student sees their own orders newest first, a cook sees the
// pending queue oldest first, an admin sees everything newest first.
func (s *OrderService) List(ctx context.Context, p auth.Principal) ([]models.OrderView, error) {
	var (
		orders []models.Order
		err    error
	)
	switch p.Role {
	case models.RoleStudent:
		orders, err = s.store.ListOrdersByUser(ctx, p.UserID)
	case models.RoleCook:
		orders, err = s.store.ListPendingOrders(ctx)
	case models.RoleAdmin:
		orders, err = s.store.ListAllOrders(ctx)
	default:
		return nil, apperr.New(apperr.Forbidden, "Access denied")
	}
	if err != nil {
		return nil, err
	}
	return models.NewOrderViews(orders), nil
}
