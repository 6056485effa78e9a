package domain

// Role payloads are derived at read time from the external supplier and
// reviewer ledgers; the account record never owns them. Each variant has
// its own shape, modeled as one struct per role rather than an untyped map.

// BuyerProfile is the default payload, always present.
type BuyerProfile struct{}

// SupplierProfile carries the supplier ledger snapshot for an account.
type SupplierProfile struct {
	Balance      float64 `json:"balance"`
	PackageCount int     `json:"package_count"`
	LegacyAPIKey string  `json:"legacy_api_key,omitempty"`
	Degraded     bool    `json:"degraded,omitempty"`
}

// ReviewerStats is the consensus-scoring summary owned by the reviewer ledger.
type ReviewerStats struct {
	TotalReviews  int     `json:"total_reviews"`
	ConsensusRate float64 `json:"consensus_rate"`
}

// ReviewerProfile carries the reviewer ledger snapshot for an account.
type ReviewerProfile struct {
	Balance         float64       `json:"balance"`
	ReputationLevel string        `json:"reputation_level"`
	Specializations []string      `json:"specializations,omitempty"`
	LegacyAPIKey    string        `json:"legacy_api_key,omitempty"`
	Stats           ReviewerStats `json:"stats"`
	Degraded        bool          `json:"degraded,omitempty"`
}

// RoleProfiles aggregates the per-role payloads for one account. A nil
// field means the account does not hold that role.
type RoleProfiles struct {
	Buyer    *BuyerProfile    `json:"buyer,omitempty"`
	Supplier *SupplierProfile `json:"supplier,omitempty"`
	Reviewer *ReviewerProfile `json:"reviewer,omitempty"`
}

// PrimaryRole picks the role shown by default in role-tabbed clients.
// Tie-break order is supplier > reviewer > buyer. Display only; it must
// never feed an authorization decision.
func (p *RoleProfiles) PrimaryRole() Role {
	switch {
	case p.Supplier != nil:
		return RoleSupplier
	case p.Reviewer != nil:
		return RoleReviewer
	default:
		return RoleBuyer
	}
}
