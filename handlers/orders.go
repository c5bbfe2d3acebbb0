package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListOrders returns the caller's view of orders: own orders for a student, the pending
// queue for a cook, everything for an admin
func (h *Handler) ListOrders(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	orders, err := h.svc.Orders.List(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// CancelOrder cancels a pending order and refunds it
func (h *Handler) CancelOrder(c *gin.Context) {
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

	order, err := h.svc.Orders.Cancel(c.Request.Context(), p, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}

// ServeOrder marks a pending order as served (cook only)
func (h *Handler) ServeOrder(c *gin.Context) {
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

	order, err := h.svc.Orders.Serve(c.Request.Context(), p, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order served", "order": order})
}
