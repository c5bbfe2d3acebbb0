package service

import (
	"context"
	"strings"
	"time"

	"school-cafe-api/apperr"
	"school-cafe-api/auth"
	"school-cafe-api/events"
	"school-cafe-api/models"
	"school-cafe-api/statemachine"
	"school-cafe-api/store"
)

// MaxPurchaseQuantity bounds one requisition so approval cannot overflow stock.
const MaxPurchaseQuantity = 100000

type PurchaseService struct {
	base
}

type CreatePurchaseInput struct {
	DishID      *uint
	ProductName string
	Quantity    int
	Reason      string
}

func (s *PurchaseService) Create(ctx context.Context, p auth.Principal, in CreatePurchaseInput) (*models.PurchaseRequest, error) {
	if err := auth.Require(p, models.RoleCook); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 || in.Quantity > MaxPurchaseQuantity {
		return nil, apperr.New(apperr.Validation, "Quantity must be greater than 0 and at most %d", MaxPurchaseQuantity)
	}
	in.ProductName = strings.TrimSpace(in.ProductName)

	var pr *models.PurchaseRequest
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if in.DishID != nil {
			dish, err := tx.GetDish(ctx, *in.DishID)
			if err != nil {
				return err
			}
			if in.ProductName == "" {
				in.ProductName = dish.Name
			}
		}
		if in.ProductName == "" {
			return apperr.New(apperr.Validation, "Product name is required")
		}

		pr = &models.PurchaseRequest{
			CreatedBy:   p.UserID,
			DishID:      in.DishID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			Reason:      in.Reason,
			Status:      models.PurchasePending,
		}
		if err := tx.CreatePurchaseRequest(ctx, pr); err != nil {
			return err
		}
		loaded, err := tx.GetPurchaseRequest(ctx, pr.ID)
		if err != nil {
			return err
		}
		pr = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Purchase request created", "request_id", pr.ID, "cook_id", p.UserID, "product", pr.ProductName, "quantity", pr.Quantity)
	s.publish(ctx, events.New(events.PurchaseRequestCreated, pr.ID, p.UserID, pr))
	return pr, nil
}

// Approve resolves a pending request and, when it is linked to a dish, restocks the dish
// by the requested quantity in the same transaction.
func (s *PurchaseService) Approve(ctx context.Context, p auth.Principal, id uint, comment string) (*models.PurchaseRequest, error) {
	pr, err := s.resolve(ctx, p, id, models.PurchaseApproved, comment)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.PurchaseRequestApproved, id, p.UserID, pr))
	return pr, nil
}

// Reject resolves a pending request without touching stock.
func (s *PurchaseService) Reject(ctx context.Context, p auth.Principal, id uint, comment string) (*models.PurchaseRequest, error) {
	pr, err := s.resolve(ctx, p, id, models.PurchaseRejected, comment)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.PurchaseRequestRejected, id, p.UserID, pr))
	return pr, nil
}

func (s *PurchaseService) resolve(ctx context.Context, p auth.Principal, id uint, to models.PurchaseStatus, comment string) (*models.PurchaseRequest, error) {
	if err := auth.Require(p, models.RoleAdmin); err != nil {
		return nil, err
	}

	var pr *models.PurchaseRequest
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		current, err := tx.GetPurchaseRequest(ctx, id)
		if err != nil {
			return err
		}
		if err := statemachine.PurchaseRequests.CanTransition(current.Status, to, p.Role); err != nil {
			return err
		}

		ok, err := tx.TransitionPurchaseRequest(ctx, id, models.PurchasePending, to, map[string]any{
			"processed_by":  p.UserID,
			"processed_at":  time.Now(),
			"admin_comment": strings.TrimSpace(comment),
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(apperr.InvalidState, "Purchase request has already been processed")
		}

		if to == models.PurchaseApproved && current.DishID != nil {
			if _, err := s.ledger.AdjustStock(ctx, tx, *current.DishID, current.Quantity); err != nil {
				return err
			}
		}

		pr, err = tx.GetPurchaseRequest(ctx, id)
		return err
	})
	if err != nil {
		s.log.Warn("Purchase request resolution refused", "request_id", id, "to", to, "kind", apperr.KindOf(err), "error", err)
		return nil, err
	}

	s.log.Info("Purchase request resolved",
		"request_id", id,
		"status", to,
		"admin_id", p.UserID,
		"quantity", pr.Quantity)
	return pr, nil
}

// List shows a cook their own requests and an admin every request, pending first.
func (s *PurchaseService) List(ctx context.Context, p auth.Principal) ([]models.PurchaseRequestView, error) {
	var (
		requests []models.PurchaseRequest
		err      error
	)
	switch p.Role {
	case models.RoleCook:
		requests, err = s.store.ListPurchaseRequestsByCreator(ctx, p.UserID)
	case models.RoleAdmin:
		requests, err = s.store.ListAllPurchaseRequests(ctx)
	default:
		return nil, auth.Require(p, models.RoleCook, models.RoleAdmin)
	}
	if err != nil {
		return nil, err
	}
	return models.NewPurchaseRequestViews(requests), nil
}
