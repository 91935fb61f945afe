package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryStatus string

const (
	InventoryStatusPending          InventoryStatus = "pending"
	InventoryStatusAwaitingContract InventoryStatus = "awaiting_contract"
	InventoryStatusAvailable        InventoryStatus = "available"
	InventoryStatusRented           InventoryStatus = "rented"
	InventoryStatusMaintenance      InventoryStatus = "maintenance"
	InventoryStatusRejected         InventoryStatus = "rejected"
)

type InventoryCondition string

const (
	ConditionNew       InventoryCondition = "new"
	ConditionExcellent InventoryCondition = "excellent"
	ConditionGood      InventoryCondition = "good"
	ConditionFair      InventoryCondition = "fair"
)

type Inventory struct {
	ID            uuid.UUID          `json:"inventory_id"`
	OwnerID       uuid.UUID          `json:"owner_id"`
	ManagerID     *uuid.UUID         `json:"manager_id,omitempty"`
	CategoryID    uuid.UUID          `json:"category_id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Brand         string             `json:"brand"`
	Model         string             `json:"model"`
	PricePerDay   decimal.Decimal    `json:"price_per_day"`
	Condition     InventoryCondition `json:"condition"`
	Status        InventoryStatus    `json:"status"`
	MinRentalDays int32              `json:"min_rental_days"`
	MaxRentalDays int32              `json:"max_rental_days"`
	DepositAmount decimal.Decimal    `json:"deposit_amount"`
	AvgRating     *decimal.Decimal   `json:"avg_rating,omitempty"`
	TotalRentals  int32              `json:"total_rentals"`
	// Bank account owner earnings are paid out to. Payouts are skipped
	// with a warning when unset.
	BankAccountID   *uuid.UUID `json:"bank_account_id,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	AddedDate       time.Time  `json:"added_date"`
}

func (i *Inventory) IsAvailable() bool {
	return i.Status == InventoryStatusAvailable
}
