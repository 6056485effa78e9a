// Package ledger holds the HTTP clients for the external supplier and
// reviewer accounting subsystems. The auth service only reads stat
// snapshots from them; balances and payouts are owned entirely upstream.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/squidpro/auth-system/internal/core/domain"
)

const serviceTokenTTL = time.Minute

// Client calls one ledger service. Requests carry a short-lived HS256
// bearer token so the ledgers can reject traffic that did not originate
// from the auth system.
type Client struct {
	baseURL string
	secret  []byte
	http    *http.Client
}

// NewClient builds a ledger client. The timeout bounds every call,
// independent of the caller's context.
func NewClient(baseURL string, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		secret:  []byte(secret),
		http:    &http.Client{Timeout: timeout},
	}
}

// SupplierStats fetches the supplier ledger snapshot for an account.
func (c *Client) SupplierStats(ctx context.Context, accountID string) (*domain.SupplierProfile, error) {
	var body struct {
		Balance      float64 `json:"balance"`
		PackageCount int     `json:"package_count"`
	}
	if err := c.get(ctx, fmt.Sprintf("/suppliers/%s/stats", accountID), &body); err != nil {
		return nil, err
	}
	return &domain.SupplierProfile{
		Balance:      body.Balance,
		PackageCount: body.PackageCount,
	}, nil
}

// ReviewerStats fetches the reviewer ledger snapshot for an account.
func (c *Client) ReviewerStats(ctx context.Context, accountID string) (*domain.ReviewerProfile, error) {
	var body struct {
		Balance         float64  `json:"balance"`
		ReputationLevel string   `json:"reputation_level"`
		Specializations []string `json:"specializations"`
		TotalReviews    int      `json:"total_reviews"`
		ConsensusRate   float64  `json:"consensus_rate"`
	}
	if err := c.get(ctx, fmt.Sprintf("/reviewers/%s/stats", accountID), &body); err != nil {
		return nil, err
	}
	return &domain.ReviewerProfile{
		Balance:         body.Balance,
		ReputationLevel: body.ReputationLevel,
		Specializations: body.Specializations,
		Stats: domain.ReviewerStats{
			TotalReviews:  body.TotalReviews,
			ConsensusRate: body.ConsensusRate,
		},
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}

	token, err := c.serviceToken()
	if err != nil {
		return fmt.Errorf("sign service token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ledger response: %w", err)
	}
	return nil
}

func (c *Client) serviceToken() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   "auth-system",
		"scope": "ledger.read",
		"iat":   now.Unix(),
		"exp":   now.Add(serviceTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}
