package handlers

import (
	"net/http"

	"school-cafe-api/apperr"
	"school-cafe-api/models"
	"school-cafe-api/service"

	"github.com/gin-gonic/gin"
)

type CreateDishRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Category    string       `json:"category" binding:"required"`
	Price       models.Money `json:"price" binding:"required"`
	Ingredients string       `json:"ingredients"`
	Allergens   string       `json:"allergens"`
	Calories    *int         `json:"calories" binding:"omitempty,min=0"`
	Quantity    int          `json:"quantity" binding:"min=0"`
}

type UpdateDishRequest struct {
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	Category    *string       `json:"category"`
	Price       *models.Money `json:"price"`
	Ingredients *string       `json:"ingredients"`
	Allergens   *string       `json:"allergens"`
	Calories    *int          `json:"calories" binding:"omitempty,min=0"`
	Quantity    *int          `json:"quantity" binding:"omitempty,min=0"`
	IsAvailable *bool         `json:"is_available"`
}

type ResolvePurchaseRequestRequest struct {
	Comment string `json:"comment"`
}

// AdminListDishes returns every dish including hidden and sold-out ones
func (h *Handler) AdminListDishes(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dishes, err := h.svc.Menu.List(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(dishes), "dishes": dishes})
}

// CreateDish adds a dish to the menu
func (h *Handler) CreateDish(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req CreateDishRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	dish, err := h.svc.Menu.Create(c.Request.Context(), p, service.DishInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Ingredients: req.Ingredients,
		Allergens:   req.Allergens,
		Calories:    req.Calories,
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Dish created", "dish": dish})
}

// UpdateDish applies a partial edit to a dish
func (h *Handler) UpdateDish(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req UpdateDishRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	dish, err := h.svc.Menu.Update(c.Request.Context(), p, id, service.DishUpdate(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dish updated", "dish": dish})
}

// DeleteDish removes a dish that has no pending orders
func (h *Handler) DeleteDish(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Menu.Delete(c.Request.Context(), p, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dish deleted", "dish_id": id})
}

// ToggleDish hides a visible dish or shows a hidden one
func (h *Handler) ToggleDish(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dish, err := h.svc.Menu.Toggle(c.Request.Context(), p, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dish availability updated", "dish": dish})
}

// ApprovePurchaseRequest approves a pending request and restocks its dish
func (h *Handler) ApprovePurchaseRequest(c *gin.Context) {
	h.resolvePurchaseRequest(c, models.PurchaseApproved)
}

// RejectPurchaseRequest rejects a pending request
func (h *Handler) RejectPurchaseRequest(c *gin.Context) {
	h.resolvePurchaseRequest(c, models.PurchaseRejected)
}

func (h *Handler) resolvePurchaseRequest(c *gin.Context, to models.PurchaseStatus) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	// The comment body is optional.
	var req ResolvePurchaseRequestRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			h.respondError(c, err)
			return
		}
	}

	var pr *models.PurchaseRequest
	switch to {
	case models.PurchaseApproved:
		pr, err = h.svc.Purchases.Approve(c.Request.Context(), p, id, req.Comment)
	case models.PurchaseRejected:
		pr, err = h.svc.Purchases.Reject(c.Request.Context(), p, id, req.Comment)
	default:
		err = apperr.New(apperr.Validation, "Unknown purchase request status %q", to)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase request " + string(to), "purchase_request": pr})
}

// GetSummaryReport returns revenue and activity aggregates
func (h *Handler) GetSummaryReport(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	report, err := h.svc.Reports.Summary(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetDetailedReport returns recent orders and per-user and per-dish activity
func (h *Handler) GetDetailedReport(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	report, err := h.svc.Reports.Detailed(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
