package handlers

import (
	"net/http"

	"school-cafe-api/models"
	"school-cafe-api/service"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	DishID      uint               `json:"dish_id" binding:"required"`
	MealType    models.MealType    `json:"meal_type" binding:"omitempty,oneof=breakfast lunch"`
	PaymentType models.PaymentType `json:"payment_type" binding:"omitempty,oneof=single subscription"`
}

type TopUpRequest struct {
	Amount models.Money `json:"amount" binding:"required"`
}

// PlaceOrder creates a new order paid from the student's balance (student only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req PlaceOrderRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	order, err := h.svc.Orders.Create(c.Request.Context(), p, service.CreateOrderInput{
		DishID:      req.DishID,
		MealType:    req.MealType,
		PaymentType: req.PaymentType,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// TopUpBalance credits the student's balance (student only)
func (h *Handler) TopUpBalance(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req TopUpRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	balance, err := h.svc.Accounts.TopUp(c.Request.Context(), p, req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Balance topped up successfully",
		"balance": balance,
	})
}
