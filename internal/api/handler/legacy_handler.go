package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/api/metrics"
	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

// LegacyHandler serves the deprecated role-scoped registration endpoints.
// They coexist with /auth/register until the last key-only clients migrate.
type LegacyHandler struct {
	authService ports.AuthService
}

func NewLegacyHandler(authService ports.AuthService) *LegacyHandler {
	return &LegacyHandler{authService: authService}
}

// RegisterSupplier creates a supplier account and returns its sup_ key.
//
// @Summary      Register a supplier (legacy)
// @Tags         legacy
// @Accept       json
// @Produce      json
// @Param        body  body      legacyRegisterRequest  true  "Supplier details"
// @Success      201   {object}  legacyRegisterResponse
// @Failure      409   {object}  errorResponse
// @Router       /suppliers/register [post]
func (h *LegacyHandler) RegisterSupplier(c echo.Context) error {
	return h.register(c, domain.RoleSupplier, "supplier_legacy")
}

// RegisterReviewer creates a reviewer account and returns its rev_ key.
//
// @Summary      Register a reviewer (legacy)
// @Tags         legacy
// @Accept       json
// @Produce      json
// @Param        body  body      legacyRegisterRequest  true  "Reviewer details"
// @Success      201   {object}  legacyRegisterResponse
// @Failure      409   {object}  errorResponse
// @Router       /reviewers/register [post]
func (h *LegacyHandler) RegisterReviewer(c echo.Context) error {
	return h.register(c, domain.RoleReviewer, "reviewer_legacy")
}

func (h *LegacyHandler) register(c echo.Context, role domain.Role, metricPath string) error {
	var req legacyRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.authService.RegisterLegacy(c.Request().Context(), role, ports.LegacyRegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		StellarAddress:  req.StellarAddress,
		Specializations: req.Specializations,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(metricPath).Inc()
	return c.JSON(http.StatusCreated, legacyRegisterResponse{
		UserID:  account.ID,
		APIKey:  account.KeyForRole(role),
		Message: "Account created. Store this API key safely; it will not be shown again.",
	})
}
