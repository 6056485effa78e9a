package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/squidpro/auth-system/internal/api/metrics"
	"github.com/squidpro/auth-system/internal/core/domain"
	"github.com/squidpro/auth-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// CheckUsername answers the signup form's availability probe.
//
// @Summary      Check username availability
// @Tags         auth
// @Produce      json
// @Param        username  query     string  true  "Username to check"
// @Success      200       {object}  availabilityResponse
// @Router       /auth/check-username [get]
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	avail, err := h.authService.CheckUsername(c.Request().Context(), c.QueryParam("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availabilityResponse{Available: avail.Available, Message: avail.Message})
}

// CheckEmail answers the signup form's email availability probe.
//
// @Summary      Check email availability
// @Tags         auth
// @Produce      json
// @Param        email  query     string  true  "Email to check"
// @Success      200    {object}  availabilityResponse
// @Router       /auth/check-email [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	avail, err := h.authService.CheckEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availabilityResponse{Available: avail.Available, Message: avail.Message})
}

// Register creates a unified multi-role account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username:       req.Username,
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		RepeatPassword: req.RepeatPassword,
		StellarAddress: req.StellarAddress,
		Roles:          toRoles(req.Roles),
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("unified").Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		UserID:   account.ID,
		Username: account.Username,
		APIKey:   account.PrimaryAPIKey(),
		Roles:    account.Roles,
		Message:  "Account created successfully!",
	})
}

// Login authenticates a username/password pair and mints a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, session, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{
		SessionToken: session.Token,
		User:         account,
	})
}

// Logout revokes the presented session token. Idempotent: revoking an
// unknown or already-revoked token succeeds, so this endpoint never runs
// behind the auth middleware.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	cred, err := domain.CredentialFromHeaders(c.Request().Header.Get("Authorization"), "")
	if err == nil && cred.Kind == domain.CredentialSessionToken {
		if err := h.authService.Logout(c.Request().Context(), cred.Value); err != nil {
			return err
		}
		metrics.SessionsRevokedTotal.Inc()
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// LogoutAll revokes every session of the authenticated account.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}
	if err := h.authService.LogoutAll(c.Request().Context(), account.ID); err != nil {
		return err
	}
	metrics.SessionsRevokedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out everywhere"})
}

// Session returns the account bound to a valid session token.
//
// @Summary      Get current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{User: account})
}
