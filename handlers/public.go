package handlers

import (
	"net/http"

	"school-cafe-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetMenu returns the dishes students can order now, optionally for one category
func (h *Handler) GetMenu(c *gin.Context) {
	dishes, err := h.svc.Menu.Menu(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(dishes),
		"dishes": dishes,
	})
}

// GetStateMachineInfo returns both transition tables for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"orders": gin.H{
			"states":      []string{"pending", "served", "cancelled"},
			"transitions": statemachine.Orders.Transitions(),
		},
		"purchase_requests": gin.H{
			"states":      []string{"pending", "approved", "rejected"},
			"transitions": statemachine.PurchaseRequests.Transitions(),
		},
	})
}
