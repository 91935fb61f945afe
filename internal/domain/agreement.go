package domain

import (
	"time"

	"github.com/google/uuid"
)

// OwnerAgreement is the revenue-split contract between an owner and
// the store. Percentages are whole numbers summing to 100. Owners may
// sign several agreements over time; payout always uses the most
// recently created accepted one.
type OwnerAgreement struct {
	ID              uuid.UUID  `json:"agreement_id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	OwnerPercentage int32      `json:"owner_percentage"`
	StorePercentage int32      `json:"store_percentage"`
	IsAccepted      bool       `json:"is_accepted"`
	AcceptedDate    *time.Time `json:"accepted_date,omitempty"`
	CreatedDate     time.Time  `json:"created_date"`
}

// BankAccount is the payout destination bound to an inventory item.
type BankAccount struct {
	ID            uuid.UUID `json:"bank_account_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
}
