package models

import "time"

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Payment is a fee obligation tied to acceptance. A submission has at most
// one active (pending/paid) obligation at a time.
type Payment struct {
	PaymentID    int        `gorm:"primaryKey;column:payment_id" json:"payment_id"`
	SubmissionID int        `gorm:"column:submission_id;index" json:"submission_id"`
	Amount       float64    `gorm:"column:amount" json:"amount"`
	Currency     string     `gorm:"column:currency" json:"currency"`
	Status       string     `gorm:"column:status" json:"status"`
	// Reference assigned by the external payment provider.
	TransactionRef *string    `gorm:"column:transaction_ref" json:"transaction_ref,omitempty"`
	PaidAt         *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreateAt       time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table for Payment.
func (Payment) TableName() string {
	return "payments"
}

// IsActive reports whether the obligation still gates publication.
func (p *Payment) IsActive() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusPaid
}
