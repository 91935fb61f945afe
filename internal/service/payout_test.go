package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/goonthug/sport-kursach/internal/domain"
)

func TestPayoutCalculator_Settle(t *testing.T) {
	ctx := context.Background()

	newCalculator := func() (*PayoutCalculator, *MockInventoryRepo, *MockAgreementRepo, *MockBankAccountRepo, *MockUserRepo) {
		inventory := new(MockInventoryRepo)
		agreement := new(MockAgreementRepo)
		banks := new(MockBankAccountRepo)
		users := new(MockUserRepo)
		return NewPayoutCalculator(inventory, agreement, banks, users), inventory, agreement, banks, users
	}

	t.Run("SplitFollowsAgreement", func(t *testing.T) {
		calc, inventory, agreement, banks, users := newCalculator()
		bankID := uuid.New()
		inv := testInventory()
		inv.OwnerID = uuid.New()
		inv.BankAccountID = &bankID
		rental := &domain.Rental{ID: uuid.New(), InventoryID: inv.ID, TotalPrice: decimal.NewFromInt(1000)}

		inventory.On("GetByID", ctx, inv.ID).Return(inv, nil)
		agreement.On("LatestAccepted", ctx, inv.OwnerID).
			Return(&domain.OwnerAgreement{OwnerPercentage: 70, StorePercentage: 30, IsAccepted: true}, nil)
		banks.On("GetByID", ctx, bankID).Return(&domain.BankAccount{ID: bankID, BankName: "Sber"}, nil)
		users.On("AddOwnerEarnings", ctx, inv.OwnerID,
			mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(700)) })).Return(nil)

		result, err := calc.Settle(ctx, rental)

		assert.NoError(t, err)
		assert.False(t, result.Skipped)
		assert.True(t, result.OwnerAmount.Equal(decimal.NewFromInt(700)))
		assert.True(t, result.StoreAmount.Equal(decimal.NewFromInt(300)))
		// Owner and store shares reassemble the full price exactly.
		assert.True(t, result.OwnerAmount.Add(result.StoreAmount).Equal(rental.TotalPrice))
	})

	t.Run("FractionalPriceStaysExact", func(t *testing.T) {
		calc, inventory, agreement, banks, users := newCalculator()
		bankID := uuid.New()
		inv := testInventory()
		inv.OwnerID = uuid.New()
		inv.BankAccountID = &bankID
		rental := &domain.Rental{ID: uuid.New(), InventoryID: inv.ID, TotalPrice: decimal.RequireFromString("333.33")}

		inventory.On("GetByID", ctx, inv.ID).Return(inv, nil)
		agreement.On("LatestAccepted", ctx, inv.OwnerID).
			Return(&domain.OwnerAgreement{OwnerPercentage: 60, StorePercentage: 40, IsAccepted: true}, nil)
		banks.On("GetByID", ctx, bankID).Return(&domain.BankAccount{ID: bankID, BankName: "Sber"}, nil)
		users.On("AddOwnerEarnings", ctx, inv.OwnerID, mock.Anything).Return(nil)

		result, err := calc.Settle(ctx, rental)

		assert.NoError(t, err)
		assert.True(t, result.OwnerAmount.Equal(decimal.RequireFromString("199.998")), "owner amount = %s", result.OwnerAmount)
		assert.True(t, result.OwnerAmount.Add(result.StoreAmount).Equal(rental.TotalPrice))
	})

	t.Run("MissingAgreementSkips", func(t *testing.T) {
		calc, inventory, agreement, _, users := newCalculator()
		bankID := uuid.New()
		inv := testInventory()
		inv.OwnerID = uuid.New()
		inv.BankAccountID = &bankID
		rental := &domain.Rental{ID: uuid.New(), InventoryID: inv.ID, TotalPrice: decimal.NewFromInt(500)}

		inventory.On("GetByID", ctx, inv.ID).Return(inv, nil)
		agreement.On("LatestAccepted", ctx, inv.OwnerID).Return(nil, domain.ErrNotFound)

		result, err := calc.Settle(ctx, rental)

		assert.NoError(t, err)
		assert.True(t, result.Skipped)
		assert.Contains(t, result.Reason, "agreement")
		users.AssertNotCalled(t, "AddOwnerEarnings", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingBankAccountSkips", func(t *testing.T) {
		calc, inventory, agreement, _, users := newCalculator()
		inv := testInventory()
		inv.OwnerID = uuid.New()
		rental := &domain.Rental{ID: uuid.New(), InventoryID: inv.ID, TotalPrice: decimal.NewFromInt(500)}

		inventory.On("GetByID", ctx, inv.ID).Return(inv, nil)

		result, err := calc.Settle(ctx, rental)

		assert.NoError(t, err)
		assert.True(t, result.Skipped)
		agreement.AssertNotCalled(t, "LatestAccepted", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "AddOwnerEarnings", mock.Anything, mock.Anything, mock.Anything)
	})
}
