package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	// RentalStatusInquiry is a zero-price placeholder rental created
	// solely to anchor a chat thread before any real booking exists.
	// Inquiry rentals never move through the lifecycle.
	RentalStatusInquiry   RentalStatus = "inquiry"
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusConfirmed RentalStatus = "confirmed"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
	RentalStatusRejected  RentalStatus = "rejected"
)

type PaymentState string

const (
	PaymentStatePending  PaymentState = "pending"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateRefunded PaymentState = "refunded"
	PaymentStateFailed   PaymentState = "failed"
	// PaymentStateDelayed marks an extension surcharge that has not
	// been settled yet.
	PaymentStateDelayed PaymentState = "delayed"
)

// BlockingRentalStatuses are the statuses that occupy an inventory
// item's calendar: two rentals in these statuses must never hold
// overlapping [start, end) windows for the same item.
var BlockingRentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusConfirmed,
	RentalStatusActive,
}

type Rental struct {
	ID               uuid.UUID       `json:"rental_id"`
	InventoryID      uuid.UUID       `json:"inventory_id"`
	ClientID         uuid.UUID       `json:"client_id"`
	ManagerID        *uuid.UUID      `json:"manager_id,omitempty"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	ActualReturnDate *time.Time      `json:"actual_return_date,omitempty"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	DepositPaid      decimal.Decimal `json:"deposit_paid"`
	// AdditionalPayment accumulates extension surcharges.
	AdditionalPayment decimal.Decimal `json:"additional_payment"`
	Status            RentalStatus    `json:"status"`
	PaymentStatus     PaymentState    `json:"payment_status"`
	Notes             string          `json:"notes,omitempty"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	BankAccountID     *uuid.UUID      `json:"bank_account_id,omitempty"`
	CreatedDate       time.Time       `json:"created_date"`
}

// RentalDays is the number of billed days; the [start, end) window is
// half-open so back-to-back bookings share a boundary day.
func (r *Rental) RentalDays() int32 {
	return int32(r.EndDate.Sub(r.StartDate).Hours() / 24)
}

func (r *Rental) IsTerminal() bool {
	switch r.Status {
	case RentalStatusCompleted, RentalStatusCancelled, RentalStatusRejected:
		return true
	}
	return false
}

func (r *Rental) IsOverdue(now time.Time) bool {
	if r.Status == RentalStatusActive && r.ActualReturnDate == nil {
		return now.After(r.EndDate)
	}
	return false
}
