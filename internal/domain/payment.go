package domain

import (
	"fmt"
	"strings"
	"time"
)

// PaymentMessage is a payment to be screened, as delivered by the message source
type PaymentMessage struct {
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id"`

	// Parties
	SenderName       string `json:"sender_name"`
	SenderAccount    string `json:"sender_account"`
	SenderBank       string `json:"sender_bank,omitempty"`
	SenderCountry    string `json:"sender_country,omitempty"`
	RecipientName    string `json:"recipient_name"`
	RecipientAccount string `json:"recipient_account"`
	RecipientBank    string `json:"recipient_bank,omitempty"`
	RecipientCountry string `json:"recipient_country,omitempty"`

	// Payment details
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PaymentType string    `json:"payment_type"` // wire_transfer, ach, swift, sepa, ...
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks the fields required to screen both sides of a payment
func (p PaymentMessage) Validate() error {
	if strings.TrimSpace(p.PaymentID) == "" {
		return fmt.Errorf("%w: payment_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.SenderName) == "" {
		return fmt.Errorf("%w: sender_name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.RecipientName) == "" {
		return fmt.Errorf("%w: recipient_name is required", ErrInvalidInput)
	}
	return nil
}

// Sender returns the sending party as a screenable entity
func (p PaymentMessage) Sender() Entity {
	return Entity{
		Name:        p.SenderName,
		Nationality: p.SenderCountry,
		EntityType:  EntityTypeIndividual,
	}
}

// Recipient returns the receiving party as a screenable entity
func (p PaymentMessage) Recipient() Entity {
	return Entity{
		Name:        p.RecipientName,
		Nationality: p.RecipientCountry,
		EntityType:  EntityTypeIndividual,
	}
}

// FlaggedSide identifies which counterparty drove a payment decision
type FlaggedSide string

const (
	FlaggedSideNone      FlaggedSide = "none"
	FlaggedSideSender    FlaggedSide = "sender"
	FlaggedSideRecipient FlaggedSide = "recipient"
	FlaggedSideBoth      FlaggedSide = "both"
)

// PaymentScreeningResult combines the screening of both payment counterparties
type PaymentScreeningResult struct {
	PaymentID       string           `json:"payment_id"`
	TransactionID   string           `json:"transaction_id"`
	SenderResult    *ScreeningResult `json:"sender_result"`
	RecipientResult *ScreeningResult `json:"recipient_result"`

	OverallRiskScore float64        `json:"overall_risk_score"` // max of both sides
	Decision         Decision       `json:"decision"`
	ReviewPriority   ReviewPriority `json:"review_priority,omitempty"`
	FlaggedSide      FlaggedSide    `json:"flagged_side"`
	Degraded         bool           `json:"degraded"`

	// Payment context carried for downstream consumers
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PaymentType string  `json:"payment_type"`

	ProcessingTimeMs int64 `json:"processing_time_ms"`

	// AuditWarning is set when the result could not be persisted or published
	AuditWarning string `json:"audit_warning,omitempty"`
}

// IsApproved returns true if the payment was cleared
func (r *PaymentScreeningResult) IsApproved() bool {
	return r.Decision == DecisionClear
}

// IsBlocked returns true if the payment was blocked
func (r *PaymentScreeningResult) IsBlocked() bool {
	return r.Decision == DecisionBlock
}

// NeedsReview returns true if manual review is required
func (r *PaymentScreeningResult) NeedsReview() bool {
	return r.Decision == DecisionReview
}
