// Package handlers is the HTTP surface. Handlers bind and validate input, call a
// workflow with the caller's Principal, and render the result or a typed error.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"school-cafe-api/apperr"
	"school-cafe-api/auth"
	"school-cafe-api/logger"
	"school-cafe-api/middleware"
	"school-cafe-api/models"
	"school-cafe-api/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	svc *service.Services
	log *slog.Logger
}

var registerTagName sync.Once

func New(svc *service.Services, log *slog.Logger) *Handler {
	registerTagName.Do(func() {
		// Report validation failures with json field names.
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(f reflect.StructField) string {
				name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
				if name == "-" || name == "" {
					return f.Name
				}
				return name
			})
		}
	})
	return &Handler{svc: svc, log: logger.WithComponent(log, "http")}
}

// respondError renders err as {"error", "kind"} with the status its kind maps to.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		h.log.Error("Internal error", "path", c.Request.URL.Path, "error", err)
	}
	c.Error(err)
	c.JSON(apperr.HTTPStatus(kind), gin.H{"error": apperr.Message(err), "kind": kind})
}

// bindJSON decodes the body into req and turns binding failures into Validation errors.
func bindJSON(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apperr.New(apperr.Validation, "%s", strings.Join(msgs, "; "))
	}
	if errors.Is(err, models.ErrMoneyPrecision) {
		return apperr.New(apperr.Validation, "Amounts may have at most two decimal places")
	}
	if errors.Is(err, models.ErrMoneyRange) {
		return apperr.New(apperr.Validation, "Amount is out of range")
	}
	return apperr.New(apperr.Validation, "Invalid request body: %v", err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.Validation, "Invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}

// principal returns the caller set by middleware.AuthRequired.
func principal(c *gin.Context) (auth.Principal, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return auth.Principal{}, apperr.New(apperr.Unauthenticated, "Authentication required")
	}
	return p, nil
}

// HealthCheck reports liveness and entity counts
func (h *Handler) HealthCheck(c *gin.Context) {
	report, err := h.svc.Reports.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}
	c.JSON(http.StatusOK, report)
}
