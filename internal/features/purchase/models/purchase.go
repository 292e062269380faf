package models

import (
	"time"

	"github.com/lib/pq"
)

// PaymentMethod is one of the manual payment rails the site accepts.
type PaymentMethod string

const (
	PaymentPagoMovil PaymentMethod = "pago_movil"
	PaymentBinance   PaymentMethod = "binance"
	PaymentZelle     PaymentMethod = "zelle"
)

// Valid reports whether the method is one the site accepts.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPagoMovil, PaymentBinance, PaymentZelle:
		return true
	}
	return false
}

// PurchaseStatus is the settlement state of a payment claim.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusValidated PurchaseStatus = "validated"
	PurchaseStatusRejected  PurchaseStatus = "rejected"
)

// Purchase is the canonical payment record: a fixed snapshot of numbers, a
// frozen total and the manual payment evidence, awaiting an admin decision.
type Purchase struct {
	ID               int64          `db:"id" json:"id"`
	UserID           int64          `db:"user_id" json:"user_id"`
	RaffleID         int64          `db:"raffle_id" json:"raffle_id"`
	Numbers          pq.StringArray `db:"numbers" json:"numbers"`
	TotalAmount      float64        `db:"total_amount" json:"total_amount"`
	PaymentMethod    PaymentMethod  `db:"payment_method" json:"payment_method"`
	PaymentReference string         `db:"payment_reference" json:"payment_reference"`
	PaymentProof     *string        `db:"payment_proof" json:"payment_proof,omitempty"`
	Status           PurchaseStatus `db:"status" json:"status"`
	ValidatedBy      *int64         `db:"validated_by" json:"validated_by,omitempty"`
	ValidatedAt      *time.Time     `db:"validated_at" json:"validated_at,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// CreatePurchaseInput is the buyer's submission.
type CreatePurchaseInput struct {
	RaffleID         int64         `json:"raffle_id"`
	Numbers          []string      `json:"numbers"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentReference string        `json:"payment_reference"`
	PaymentProof     *string       `json:"payment_proof,omitempty"`
}

// ValidateDecision is the admin's verdict on a pending purchase.
type ValidateDecision string

const (
	DecisionApprove ValidateDecision = "approve"
	DecisionReject  ValidateDecision = "reject"
)

// PurchaseWithRaffle is the buyer-facing listing row.
type PurchaseWithRaffle struct {
	Purchase
	RaffleTitle string    `db:"raffle_title" json:"raffle_title"`
	DrawDate    time.Time `db:"draw_date" json:"draw_date"`
}

// PurchaseDetail is the admin-facing listing row with buyer contact data.
type PurchaseDetail struct {
	Purchase
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Email       string `db:"email" json:"email"`
	Phone       string `db:"phone" json:"phone"`
	Cedula      string `db:"cedula" json:"cedula"`
	RaffleTitle string `db:"raffle_title" json:"raffle_title"`
}
