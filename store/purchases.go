package store

import (
	"context"

	"school-cafe-api/models"
)

func (s *Store) CreatePurchaseRequest(ctx context.Context, pr *models.PurchaseRequest) error {
	if err := s.DB(ctx).Create(pr).Error; err != nil {
		return internal(err, "failed to create purchase request")
	}
	return nil
}

func (s *Store) GetPurchaseRequest(ctx context.Context, id uint) (*models.PurchaseRequest, error) {
	var pr models.PurchaseRequest
	if err := s.DB(ctx).Preload("Creator").Preload("Processor").First(&pr, id).Error; err != nil {
		return nil, notFound(err, "Purchase request")
	}
	return &pr, nil
}

// TransitionPurchaseRequest is the compare-and-set for purchase requests; see TransitionOrder.
func (s *Store) TransitionPurchaseRequest(ctx context.Context, id uint, from, to models.PurchaseStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	res := s.DB(ctx).Model(&models.PurchaseRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, internal(res.Error, "failed to update purchase request status")
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) ListPurchaseRequestsByCreator(ctx context.Context, userID uint) ([]models.PurchaseRequest, error) {
	var requests []models.PurchaseRequest
	err := s.DB(ctx).Preload("Creator").Preload("Processor").
		Where("created_by = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, internal(err, "failed to load purchase requests")
	}
	return requests, nil
}

// ListAllPurchaseRequests orders pending requests first, then by status, newest first within each.
func (s *Store) ListAllPurchaseRequests(ctx context.Context) ([]models.PurchaseRequest, error) {
	var requests []models.PurchaseRequest
	err := s.DB(ctx).Preload("Creator").Preload("Processor").
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END").
		Order("status").
		Order("created_at DESC").Order("id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, internal(err, "failed to load purchase requests")
	}
	return requests, nil
}

func (s *Store) CountPurchaseRequests(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB(ctx).Model(&models.PurchaseRequest{}).Count(&n).Error; err != nil {
		return 0, internal(err, "failed to count purchase requests")
	}
	return n, nil
}
