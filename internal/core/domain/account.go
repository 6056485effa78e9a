package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Role determines which dashboards and endpoints an account may use.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleReviewer Role = "reviewer"
)

// roleOrder is the canonical ordering of roles in stored and returned sets.
var roleOrder = []Role{RoleBuyer, RoleSupplier, RoleReviewer}

// ValidRole reports whether r names a known role.
func ValidRole(r Role) bool {
	return r == RoleBuyer || r == RoleSupplier || r == RoleReviewer
}

// Validation errors (reported synchronously, before any mutation).
var ErrInvalidUsername = errors.New("username must be 3-50 characters of letters, digits, or underscore")
var ErrInvalidName = errors.New("name must be 1-255 characters")
var ErrInvalidEmail = errors.New("email address is malformed")
var ErrWeakPassword = errors.New("password must be at least 8 characters")
var ErrPasswordsDontMatch = errors.New("passwords do not match")
var ErrInvalidStellarAddress = errors.New("stellar address must be 56 characters starting with G")
var ErrNoRolesSelected = errors.New("at least one role must be selected")
var ErrInvalidRole = errors.New("unknown role")

// Conflict errors (fixable by choosing a different value).
var ErrDuplicateUsername = errors.New("username is already taken")
var ErrDuplicateEmail = errors.New("email is already registered")

// Authentication errors. ErrInvalidCredentials deliberately covers both
// "no such user" and "wrong password" so usernames cannot be enumerated.
var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrAccountNotFound = errors.New("account not found")
var ErrUnauthorized = errors.New("unauthorized")

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
	passwordMaxLen = 128
	nameMaxLen     = 255
	stellarAddrLen = 56
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	stellarPattern  = regexp.MustCompile(`^G[A-Z2-7]{55}$`)
)

// ValidateUsername enforces the 3-50 character alphanumeric+underscore rule.
// Usernames are case-sensitive.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return ErrInvalidUsername
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateName enforces the 1-255 character display-name bound. Whitespace-only
// names read as empty.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len(name) > nameMaxLen {
		return ErrInvalidName
	}
	return nil
}

// ValidateEmail enforces the local@domain.tld shape.
func ValidateEmail(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return ErrWeakPassword
	}
	return nil
}

// ValidateStellarAddress enforces the 56-character G-prefixed address format.
func ValidateStellarAddress(addr string) error {
	if len(addr) != stellarAddrLen || !stellarPattern.MatchString(addr) {
		return ErrInvalidStellarAddress
	}
	return nil
}

// LegacyAPIKey is a long-lived credential scoped to exactly one role.
// The prefix (sup_/rev_/sq_) signals the scope; keys never expire.
type LegacyAPIKey struct {
	Key       string    `json:"key"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is one human identity in the marketplace, independent of which
// roles it has been granted.
type Account struct {
	ID              string         `json:"id"`
	Username        string         `json:"username"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	PasswordHash    string         `json:"-"`
	StellarAddress  string         `json:"stellar_address"`
	Roles           []Role         `json:"roles"`
	LegacyKeys      []LegacyAPIKey `json:"-"`
	Specializations []string       `json:"specializations,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// HasRole reports whether the account holds the given role. Authorization
// decisions always consult this, never cached role payloads.
func (a *Account) HasRole(r Role) bool {
	for _, held := range a.Roles {
		if held == r {
			return true
		}
	}
	return false
}

// KeyForRole returns the account's API key scoped to the given role, or ""
// when none was minted.
func (a *Account) KeyForRole(r Role) string {
	for _, k := range a.LegacyKeys {
		if k.Role == r {
			return k.Key
		}
	}
	return ""
}

// PrimaryAPIKey returns the key shown in registration responses and
// profile views: the supplier key when present, else the reviewer key,
// else the account-level buyer key.
func (a *Account) PrimaryAPIKey() string {
	for _, r := range []Role{RoleSupplier, RoleReviewer, RoleBuyer} {
		if k := a.KeyForRole(r); k != "" {
			return k
		}
	}
	return ""
}

// NormalizeRoles dedupes the requested role set, adds the implicit buyer
// role, and returns it in canonical order. An unknown role yields
// ErrInvalidRole; an empty request yields ErrNoRolesSelected.
func NormalizeRoles(requested []Role) ([]Role, error) {
	if len(requested) == 0 {
		return nil, ErrNoRolesSelected
	}
	seen := map[Role]bool{RoleBuyer: true}
	for _, r := range requested {
		if !ValidRole(r) {
			return nil, ErrInvalidRole
		}
		seen[r] = true
	}
	out := make([]Role, 0, len(seen))
	for _, r := range roleOrder {
		if seen[r] {
			out = append(out, r)
		}
	}
	return out, nil
}
