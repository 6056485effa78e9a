package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/api/metrics"
	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

// UserHandler serves the aggregate user views and role grants. All routes
// run behind the Auth middleware, accepting either credential variant.
type UserHandler struct {
	authService ports.AuthService
	roles       ports.RoleResolver
}

func NewUserHandler(authService ports.AuthService, roles ports.RoleResolver) *UserHandler {
	return &UserHandler{authService: authService, roles: roles}
}

// Me returns the full profile of the authenticated user, including the
// role payloads resolved from the external ledgers.
//
// @Summary      Get current user profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  userProfileResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	profiles := h.resolve(c, account)
	return c.JSON(http.StatusOK, userProfileResponse{
		Account:     account,
		APIKey:      account.PrimaryAPIKey(),
		Profiles:    profiles,
		PrimaryRole: profiles.PrimaryRole(),
	})
}

// MeDetailed is Me plus every API key the account holds, for the profile
// settings page.
func (h *UserHandler) MeDetailed(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	profiles := h.resolve(c, account)
	return c.JSON(http.StatusOK, struct {
		userProfileResponse
		APIKeys []domain.LegacyAPIKey `json:"api_keys"`
	}{
		userProfileResponse: userProfileResponse{
			Account:     account,
			APIKey:      account.PrimaryAPIKey(),
			Profiles:    profiles,
			PrimaryRole: profiles.PrimaryRole(),
		},
		APIKeys: account.LegacyKeys,
	})
}

// GrantRole adds a role to the authenticated account. Roles are only ever
// added; granting a held role is a no-op and returns the current profile.
func (h *UserHandler) GrantRole(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req grantRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.authService.GrantRole(c.Request().Context(), account.ID, domain.Role(req.Role))
	if err != nil {
		return err
	}

	profiles := h.resolve(c, updated)
	return c.JSON(http.StatusOK, userProfileResponse{
		Account:     updated,
		APIKey:      updated.PrimaryAPIKey(),
		Profiles:    profiles,
		PrimaryRole: profiles.PrimaryRole(),
	})
}

// SupplierMe returns the supplier-scoped view for sup_-keyed clients that
// never adopted sessions.
func (h *UserHandler) SupplierMe(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	profiles := h.resolve(c, account)
	if profiles.Supplier == nil {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return c.JSON(http.StatusOK, struct {
		ID             string                  `json:"id"`
		Name           string                  `json:"name"`
		Email          string                  `json:"email"`
		StellarAddress string                  `json:"stellar_address"`
		Supplier       *domain.SupplierProfile `json:"supplier"`
	}{account.ID, account.Name, account.Email, account.StellarAddress, profiles.Supplier})
}

// ReviewerMe returns the reviewer-scoped view for rev_-keyed clients.
func (h *UserHandler) ReviewerMe(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	profiles := h.resolve(c, account)
	if profiles.Reviewer == nil {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return c.JSON(http.StatusOK, struct {
		ID             string                  `json:"id"`
		Name           string                  `json:"name"`
		Email          string                  `json:"email"`
		StellarAddress string                  `json:"stellar_address"`
		Reviewer       *domain.ReviewerProfile `json:"reviewer"`
	}{account.ID, account.Name, account.Email, account.StellarAddress, profiles.Reviewer})
}

func (h *UserHandler) resolve(c echo.Context, account *domain.Account) *domain.RoleProfiles {
	profiles := h.roles.Resolve(c.Request().Context(), account)
	if profiles.Supplier != nil && profiles.Supplier.Degraded {
		metrics.LedgerDegradedTotal.WithLabelValues("supplier").Inc()
	}
	if profiles.Reviewer != nil && profiles.Reviewer.Degraded {
		metrics.LedgerDegradedTotal.WithLabelValues("reviewer").Inc()
	}
	return profiles
}
