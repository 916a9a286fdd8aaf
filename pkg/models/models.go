package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are stored as bare JSON numbers, matching the persisted files.
	decimal.MarshalJSONWithoutQuotes = true
}

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
)

// Valid reports whether s is a known bill status.
func (s BillStatus) Valid() bool {
	return s == BillStatusPending || s == BillStatusPaid
}

type Bill struct {
	BillID        string          `json:"bill_id"` // Unique per mobile
	Mobile        string          `json:"mobile"`
	Name          string          `json:"name"`
	Plan          string          `json:"plan"` // Plan label, not a plan_id
	Amount        decimal.Decimal `json:"amount"`
	DueDate       Date            `json:"due_date"`
	Status        BillStatus      `json:"status"`
	BillingPeriod string          `json:"billing_period"`
	PaidDate      *Date           `json:"paid_date,omitempty"`
}

const PaymentStatusSuccess = "success"

type Payment struct {
	PaymentID     string          `json:"payment_id"`
	BillID        string          `json:"bill_id"` // Not checked against the bill store
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   Date            `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
}

// PaymentResult is the outcome of a payment attempt. Failures are reported here
// rather than as errors.
type PaymentResult struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Payment     *Payment `json:"payment,omitempty"`
	BillUpdated bool     `json:"bill_updated"`
}
