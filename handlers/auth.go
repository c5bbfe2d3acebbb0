package handlers

import (
	"net/http"

	"school-cafe-api/models"
	"school-cafe-api/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username           string          `json:"username" binding:"required"`
	Password           string          `json:"password" binding:"required,min=6"`
	FullName           string          `json:"full_name" binding:"required"`
	Role               models.UserRole `json:"role" binding:"omitempty,oneof=student cook admin"`
	ClassName          string          `json:"class_name"`
	Allergies          string          `json:"allergies"`
	DietaryPreferences string          `json:"dietary_preferences"`
	Email              string          `json:"email" binding:"omitempty,email"`
	Phone              string          `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.svc.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Username:           req.Username,
		Password:           req.Password,
		FullName:           req.FullName,
		Role:               req.Role,
		ClassName:          req.ClassName,
		Allergies:          req.Allergies,
		DietaryPreferences: req.DietaryPreferences,
		Email:              req.Email,
		Phone:              req.Phone,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

// Login authenticates a user and returns a token
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.svc.Accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// GetProfile returns the logged-in user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.svc.Accounts.Profile(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
