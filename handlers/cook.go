package handlers

import (
	"net/http"

	"school-cafe-api/service"

	"github.com/gin-gonic/gin"
)

type CreatePurchaseRequestRequest struct {
	DishID      *uint  `json:"dish_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity" binding:"required,min=1,max=100000"`
	Reason      string `json:"reason"`
}

// CreatePurchaseRequest files a requisition for more stock (cook only)
func (h *Handler) CreatePurchaseRequest(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req CreatePurchaseRequestRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	pr, err := h.svc.Purchases.Create(c.Request.Context(), p, service.CreatePurchaseInput{
		DishID:      req.DishID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Purchase request created", "purchase_request": pr})
}

// ListPurchaseRequests returns a cook's own requests or, for an admin, all of them
func (h *Handler) ListPurchaseRequests(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	requests, err := h.svc.Purchases.List(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(requests), "purchase_requests": requests})
}
