package handler

import (
	"github.com/squidpro/auth-system/internal/core/domain"
)

// --- Request / Response types ---
//
// Presence checks live in the validate tags; value-shape rules (username
// pattern, password strength, stellar address format) belong to the domain
// so their specific error codes survive to the response envelope.

type registerRequest struct {
	Username       string   `json:"username"        validate:"required"`
	Name           string   `json:"name"            validate:"required"`
	Email          string   `json:"email"           validate:"required"`
	Password       string   `json:"password"        validate:"required"`
	RepeatPassword string   `json:"repeat_password" validate:"required"`
	StellarAddress string   `json:"stellar_address" validate:"required"`
	Roles          []string `json:"roles"`
}

type registerResponse struct {
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	APIKey   string        `json:"api_key"`
	Roles    []domain.Role `json:"roles"`
	Message  string        `json:"message"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	SessionToken string          `json:"session_token"`
	User         *domain.Account `json:"user"`
}

type sessionResponse struct {
	User *domain.Account `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type availabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type grantRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// userProfileResponse is the aggregate "current user" view: the account
// record plus the role payloads resolved from the external ledgers.
type userProfileResponse struct {
	*domain.Account
	APIKey      string               `json:"api_key,omitempty"`
	Profiles    *domain.RoleProfiles `json:"profiles,omitempty"`
	PrimaryRole domain.Role          `json:"primary_role,omitempty"`
}

type legacyRegisterRequest struct {
	Name            string   `json:"name"            validate:"required"`
	Email           string   `json:"email"           validate:"required"`
	StellarAddress  string   `json:"stellar_address" validate:"required"`
	Specializations []string `json:"specializations"`
}

type legacyRegisterResponse struct {
	UserID  string `json:"user_id"`
	APIKey  string `json:"api_key"`
	Message string `json:"message"`
}

func toRoles(raw []string) []domain.Role {
	roles := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		roles = append(roles, domain.Role(r))
	}
	return roles
}
