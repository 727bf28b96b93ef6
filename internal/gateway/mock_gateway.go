package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrTransactionNotFound is returned for unknown transaction ids
var ErrTransactionNotFound = errors.New("transaction not found")

// MockGateway settles payments in process
type MockGateway struct {
	mu           sync.RWMutex
	config       MockGatewayConfig
	transactions sync.Map
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	// SuccessRate is the probability of a successful charge (0.0 to 1.0)
	SuccessRate float64

	// Delay is the simulated processing time
	Delay time.Duration

	// FailureReasons is a list of possible failure reasons
	FailureReasons []string
}

// DefaultMockGatewayConfig always settles immediately
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		SuccessRate:    1.0,
		FailureReasons: []string{"insufficient_funds", "card_declined", "processing_error"},
	}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	g := &MockGateway{config: *config}
	g.config.SuccessRate = clampRate(config.SuccessRate)
	return g
}

// Charge processes a mock payment charge
func (g *MockGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("charge request is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("charge amount must be positive, got %s", req.Amount.StringFixed(2))
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	g.mu.RLock()
	cfg := g.config
	g.mu.RUnlock()

	resp := &ChargeResponse{TransactionID: fmt.Sprintf("mock_txn_%s", uuid.New().String()[:8])}
	if rand.Float64() >= cfg.SuccessRate {
		resp.Status = StatusFailed
		resp.FailureReason = "payment_failed"
		if len(cfg.FailureReasons) > 0 {
			resp.FailureReason = cfg.FailureReasons[rand.Intn(len(cfg.FailureReasons))]
		}
		return resp, nil
	}

	resp.Success = true
	resp.Status = StatusCompleted
	g.transactions.Store(resp.TransactionID, &TransactionInfo{
		TransactionID: resp.TransactionID,
		Reference:     req.Reference,
		Status:        StatusCompleted,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CreatedAt:     time.Now().Format(time.RFC3339),
		Metadata:      req.Metadata,
	})
	return resp, nil
}

// Refund reverses a completed charge; partial refunds are not supported
func (g *MockGateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) error {
	if transactionID == "" {
		return fmt.Errorf("transaction ID is required")
	}
	if err := g.wait(ctx); err != nil {
		return err
	}

	v, ok := g.transactions.Load(transactionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	info := *v.(*TransactionInfo)
	if info.Status != StatusCompleted {
		return fmt.Errorf("transaction %s is %s", transactionID, info.Status)
	}
	if !amount.Equal(info.Amount) {
		return fmt.Errorf("refund amount %s does not match charge %s", amount.StringFixed(2), info.Amount.StringFixed(2))
	}
	info.Status = StatusRefunded
	g.transactions.Store(transactionID, &info)
	return nil
}

// GetTransaction retrieves transaction details
func (g *MockGateway) GetTransaction(ctx context.Context, transactionID string) (*TransactionInfo, error) {
	v, ok := g.transactions.Load(transactionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	}
	info := *v.(*TransactionInfo)
	return &info, nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

// SetSuccessRate updates the success rate
func (g *MockGateway) SetSuccessRate(rate float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config.SuccessRate = clampRate(rate)
}

func (g *MockGateway) wait(ctx context.Context) error {
	g.mu.RLock()
	delay := g.config.Delay
	g.mu.RUnlock()
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
