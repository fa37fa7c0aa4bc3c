package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPayment indicates a payment that is not positive or exceeds the balance.
var ErrInvalidPayment = errors.New("invalid payment amount")

// FeeType enumerates the billable fee categories.
type FeeType string

const (
	FeeTuition FeeType = "Tuition"
	FeeLab     FeeType = "Lab"
	FeeMisc    FeeType = "Misc"
)

// Valid returns true when the fee type is a supported value.
func (t FeeType) Valid() bool {
	switch t {
	case FeeTuition, FeeLab, FeeMisc:
		return true
	default:
		return false
	}
}

// FeeStatus classifies a fee by what is left to pay.
type FeeStatus string

const (
	FeePaid    FeeStatus = "Paid"
	FeePending FeeStatus = "Pending"
	FeeOverdue FeeStatus = "Overdue"
)

// FeeRecord is a fee assigned to a student.
type FeeRecord struct {
	ID          string  `json:"id,omitempty"`
	StudentID   string  `json:"studentId" binding:"required"`
	FeeType     FeeType `json:"feeType" binding:"omitempty,oneof=Tuition Lab Misc"`
	TotalAmount float64 `json:"totalAmount" binding:"gte=0"`
	PaidAmount  float64 `json:"paidAmount" binding:"gte=0"`
	DueDate     *Date   `json:"dueDate,omitempty"`
}

// Balance is what remains to be paid.
func (f FeeRecord) Balance() float64 {
	return f.TotalAmount - f.PaidAmount
}

// ApplyPayment returns a copy of f with amount added to the paid amount.
// Payments must be positive and may not exceed the outstanding balance.
func (f FeeRecord) ApplyPayment(amount float64) (FeeRecord, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return f, fmt.Errorf("payment of %v: %w", amount, ErrInvalidPayment)
	}
	if amount > f.Balance() {
		return f, fmt.Errorf("payment of %.2f exceeds balance %.2f: %w", amount, f.Balance(), ErrInvalidPayment)
	}
	f.PaidAmount += amount
	return f, nil
}

// FeeRow is a FeeRecord augmented with its balance and status.
type FeeRow struct {
	FeeRecord
	Balance float64   `json:"balance"`
	Status  FeeStatus `json:"status"`
}
