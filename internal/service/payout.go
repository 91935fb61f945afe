package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/repository"
)

var oneHundred = decimal.NewFromInt(100)

// PayoutResult describes how a completed rental's revenue was split.
// Skipped results are not errors: a rental completes fine even when the
// owner cannot be paid yet, and the reason is surfaced for the manager.
type PayoutResult struct {
	RentalID    uuid.UUID       `json:"rental_id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	OwnerAmount decimal.Decimal `json:"owner_amount"`
	StoreAmount decimal.Decimal `json:"store_amount"`
	BankName    string          `json:"bank_name,omitempty"`
	Skipped     bool            `json:"skipped"`
	Reason      string          `json:"reason,omitempty"`
}

// PayoutCalculator splits a completed rental's price between the
// inventory owner and the store according to the owner's latest
// accepted agreement, and credits the owner's running earnings.
type PayoutCalculator struct {
	inventoryRepo repository.InventoryRepository
	agreementRepo repository.AgreementRepository
	bankRepo      repository.BankAccountRepository
	userRepo      repository.UserRepository
}

func NewPayoutCalculator(
	inventoryRepo repository.InventoryRepository,
	agreementRepo repository.AgreementRepository,
	bankRepo repository.BankAccountRepository,
	userRepo repository.UserRepository,
) *PayoutCalculator {
	return &PayoutCalculator{
		inventoryRepo: inventoryRepo,
		agreementRepo: agreementRepo,
		bankRepo:      bankRepo,
		userRepo:      userRepo,
	}
}

// Settle computes and records the owner payout for a completed rental.
// It must run inside the completion transaction so the earnings credit
// commits (or rolls back) together with the rental transition.
func (p *PayoutCalculator) Settle(ctx context.Context, rental *domain.Rental) (*PayoutResult, error) {
	inv, err := p.inventoryRepo.GetByID(ctx, rental.InventoryID)
	if err != nil {
		return nil, fmt.Errorf("load inventory for payout: %w", err)
	}

	result := &PayoutResult{RentalID: rental.ID, OwnerID: inv.OwnerID}

	if inv.BankAccountID == nil {
		result.Skipped = true
		result.Reason = "inventory has no bank account for payouts"
		logger.Warn("payout skipped", "rental_id", rental.ID, "owner_id", inv.OwnerID, "reason", result.Reason)
		return result, nil
	}

	agreement, err := p.agreementRepo.LatestAccepted(ctx, inv.OwnerID)
	if errors.Is(err, domain.ErrNotFound) {
		result.Skipped = true
		result.Reason = "owner has no accepted agreement"
		logger.Warn("payout skipped", "rental_id", rental.ID, "owner_id", inv.OwnerID, "reason", result.Reason)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load owner agreement: %w", err)
	}

	result.OwnerAmount = rental.TotalPrice.
		Mul(decimal.NewFromInt32(agreement.OwnerPercentage)).
		Div(oneHundred)
	result.StoreAmount = rental.TotalPrice.Sub(result.OwnerAmount)

	if bank, err := p.bankRepo.GetByID(ctx, *inv.BankAccountID); err == nil {
		result.BankName = bank.BankName
	}

	if err := p.userRepo.AddOwnerEarnings(ctx, inv.OwnerID, result.OwnerAmount); err != nil {
		return nil, fmt.Errorf("credit owner earnings: %w", err)
	}

	logger.Info("payout settled",
		"rental_id", rental.ID,
		"owner_id", inv.OwnerID,
		"owner_amount", result.OwnerAmount,
		"store_amount", result.StoreAmount)
	return result, nil
}
