package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentGateway charges and refunds booking fees
type PaymentGateway interface {
	// Charge processes a payment charge
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)

	// Refund returns a settled charge to the payer
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) error

	// GetTransaction retrieves transaction details
	GetTransaction(ctx context.Context, transactionID string) (*TransactionInfo, error)

	// Name returns the gateway name
	Name() string
}

// ChargeRequest represents a charge request
type ChargeRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Description string
	CustomerID  string
	Metadata    map[string]string
}

// ChargeResponse represents a charge response
type ChargeResponse struct {
	Success       bool
	TransactionID string
	Status        string
	FailureReason string
}

// Transaction statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

// TransactionInfo represents transaction details
type TransactionInfo struct {
	TransactionID string
	Reference     string
	Status        string
	Amount        decimal.Decimal
	Currency      string
	CreatedAt     string
	Metadata      map[string]string
}
