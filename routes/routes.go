package routes

import (
	"school-cafe-api/auth"
	"school-cafe-api/handlers"
	"school-cafe-api/middleware"
	"school-cafe-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, creds auth.Credentials) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/menu", h.GetMenu)
		public.GET("/health", h.HealthCheck)

		// Order and purchase request transition tables, by role
		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes (any role) ────────────────────────────
	authed := r.Group("/api")
	authed.Use(middleware.AuthRequired(creds))
	{
		authed.GET("/user/profile", h.GetProfile)
		authed.GET("/orders/my", h.ListOrders)
		// Ownership is checked by the order workflow.
		authed.POST("/orders/:id/cancel", h.CancelOrder)
	}

	// ── Student routes ─────────────────────────────────────────────
	student := r.Group("/api")
	student.Use(middleware.AuthRequired(creds), middleware.RoleRequired(models.RoleStudent))
	{
		student.POST("/orders", h.PlaceOrder)
		student.POST("/balance/topup", h.TopUpBalance)
	}

	// ── Cook routes ────────────────────────────────────────────────
	cook := r.Group("/api")
	cook.Use(middleware.AuthRequired(creds), middleware.RoleRequired(models.RoleCook))
	{
		cook.POST("/orders/:id/serve", h.ServeOrder)
		cook.POST("/purchases", h.CreatePurchaseRequest)
	}

	// ── Cook & admin routes ────────────────────────────────────────
	staff := r.Group("/api")
	staff.Use(middleware.AuthRequired(creds), middleware.RoleRequired(models.RoleCook, models.RoleAdmin))
	{
		staff.GET("/purchases", h.ListPurchaseRequests)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(middleware.AuthRequired(creds), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dishes", h.AdminListDishes)
		admin.POST("/dishes", h.CreateDish)
		admin.PUT("/dishes/:id", h.UpdateDish)
		admin.DELETE("/dishes/:id", h.DeleteDish)
		admin.POST("/dishes/:id/toggle", h.ToggleDish)

		admin.POST("/purchases/:id/approve", h.ApprovePurchaseRequest)
		admin.POST("/purchases/:id/reject", h.RejectPurchaseRequest)

		admin.GET("/reports/summary", h.GetSummaryReport)
		admin.GET("/reports/detailed", h.GetDetailedReport)
	}
}
