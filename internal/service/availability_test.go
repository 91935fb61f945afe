package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/goonthug/sport-kursach/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func testInventory() *domain.Inventory {
	return &domain.Inventory{
		ID:            uuid.New(),
		Name:          "Mountain bike",
		PricePerDay:   decimal.NewFromInt(50),
		Status:        domain.InventoryStatusAvailable,
		MinRentalDays: 2,
		MaxRentalDays: 14,
	}
}

func TestAvailabilityChecker_Check(t *testing.T) {
	ctx := context.Background()

	newChecker := func(rentalRepo *MockRentalRepo) *AvailabilityChecker {
		c := NewAvailabilityChecker(rentalRepo)
		c.now = fixedNow
		return c
	}

	t.Run("StartInPast", func(t *testing.T) {
		c := newChecker(new(MockRentalRepo))
		err := c.Check(ctx, testInventory(), day(1).AddDate(0, 0, -5), day(3), nil)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "start_date", validationErr.Field)
	})

	t.Run("StartTodayAllowed", func(t *testing.T) {
		repo := new(MockRentalRepo)
		repo.On("ListOverlapping", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]domain.Rental{}, nil)
		c := newChecker(repo)
		// now is midday; a booking starting today must still pass.
		assert.NoError(t, c.Check(ctx, testInventory(), day(1), day(4), nil))
	})

	t.Run("EndNotAfterStart", func(t *testing.T) {
		c := newChecker(new(MockRentalRepo))
		err := c.Check(ctx, testInventory(), day(10), day(10), nil)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "end_date", validationErr.Field)
	})

	t.Run("BelowMinimumDays", func(t *testing.T) {
		c := newChecker(new(MockRentalRepo))
		err := c.Check(ctx, testInventory(), day(10), day(11), nil)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Error(), "minimum rental period")
	})

	t.Run("AboveMaximumDays", func(t *testing.T) {
		c := newChecker(new(MockRentalRepo))
		err := c.Check(ctx, testInventory(), day(1), day(20), nil)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Error(), "maximum rental period")
	})

	t.Run("ConflictListsBlockingRanges", func(t *testing.T) {
		inv := testInventory()
		repo := new(MockRentalRepo)
		repo.On("ListOverlapping", ctx, inv.ID, day(5), day(10), (*uuid.UUID)(nil)).
			Return([]domain.Rental{
				{StartDate: day(4), EndDate: day(7)},
				{StartDate: day(8), EndDate: day(12)},
			}, nil)

		c := newChecker(repo)
		err := c.Check(ctx, inv, day(5), day(10), nil)

		var conflict *domain.DateConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.Len(t, conflict.Ranges, 2)
		assert.Contains(t, conflict.Error(), "2025-06-04")
		assert.Contains(t, conflict.Error(), "2025-06-08")
	})

	t.Run("FreeWindowPasses", func(t *testing.T) {
		inv := testInventory()
		repo := new(MockRentalRepo)
		repo.On("ListOverlapping", ctx, inv.ID, day(5), day(10), (*uuid.UUID)(nil)).
			Return([]domain.Rental{}, nil)

		c := newChecker(repo)
		assert.NoError(t, c.Check(ctx, inv, day(5), day(10), nil))
	})

	t.Run("ExcludeIDForwarded", func(t *testing.T) {
		inv := testInventory()
		exclude := uuid.New()
		repo := new(MockRentalRepo)
		repo.On("ListOverlapping", ctx, inv.ID, day(5), day(10), &exclude).
			Return([]domain.Rental{}, nil)

		c := newChecker(repo)
		assert.NoError(t, c.Check(ctx, inv, day(5), day(10), &exclude))
		repo.AssertExpectations(t)
	})
}

func TestDateRange_Overlaps(t *testing.T) {
	t.Run("SharedBoundaryIsNotAConflict", func(t *testing.T) {
		a := domain.DateRange{Start: day(1), End: day(5)}
		b := domain.DateRange{Start: day(5), End: day(8)}
		assert.False(t, a.Overlaps(b))
		assert.False(t, b.Overlaps(a))
	})

	t.Run("ContainedRangeConflicts", func(t *testing.T) {
		a := domain.DateRange{Start: day(1), End: day(10)}
		b := domain.DateRange{Start: day(3), End: day(5)}
		assert.True(t, a.Overlaps(b))
		assert.True(t, b.Overlaps(a))
	})

	t.Run("PartialOverlapConflicts", func(t *testing.T) {
		a := domain.DateRange{Start: day(1), End: day(6)}
		b := domain.DateRange{Start: day(5), End: day(9)}
		assert.True(t, a.Overlaps(b))
	})
}
