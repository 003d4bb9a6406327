package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// RemoteProject is the canonical internal shape of a billing-provider
// project. All field-shape heterogeneity in provider payloads is resolved
// by NormalizeProject before a RemoteProject leaves this package.
type RemoteProject struct {
	ID               string
	Title            string
	Description      string
	Completed        bool
	Progress         *int
	DueDate          *time.Time
	Budget           *int64 // minor currency units
	FixedPrice       bool
	FixedPriceAmount *int64 // minor currency units
	ClientID         string
}

// RemoteClient is the canonical shape of a billing-provider client record
type RemoteClient struct {
	ID           string
	Name         string
	Email        string
	Organization string
}

// RemoteInvoice is the canonical shape of a billing-provider invoice
type RemoteInvoice struct {
	Number    string
	ProjectID string
	Amount    decimal.Decimal
	Currency  string
	Status    string
	IssuedAt  *time.Time
	PaidAt    *time.Time
}

// Token is an OAuth token for the billing-provider API
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry
func (t *Token) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// CreateProjectInput holds the fields sent when creating a remote project
type CreateProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ClientID    string `json:"client_id"`
}

// UpdateProjectInput holds the fields sent when updating a remote project.
// Nil fields are omitted from the request.
type UpdateProjectInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Budget      *int64     `json:"budget,omitempty"`
	FixedPrice  *bool      `json:"fixed_price,omitempty"`
}
