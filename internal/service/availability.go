package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/repository"
)

// AvailabilityChecker validates a requested booking window against an
// inventory item's rental terms and its existing bookings. Rentals in
// pending, confirmed or active status occupy the calendar; inquiry
// scaffolds do not. Windows are half-open, so a booking ending on the
// day another starts is not a conflict.
type AvailabilityChecker struct {
	rentalRepo repository.RentalRepository
	now        func() time.Time
}

func NewAvailabilityChecker(rentalRepo repository.RentalRepository) *AvailabilityChecker {
	return &AvailabilityChecker{rentalRepo: rentalRepo, now: time.Now}
}

// Check returns nil when the window can be booked. Validation failures
// come back as *domain.ValidationError; occupied windows come back as
// *domain.DateConflictError naming every blocking range.
func (c *AvailabilityChecker) Check(ctx context.Context, inv *domain.Inventory, start, end time.Time, excludeRentalID *uuid.UUID) error {
	today := truncateToDay(c.now())
	if truncateToDay(start).Before(today) {
		return domain.NewValidationError("start_date", "start date cannot be in the past")
	}
	if !end.After(start) {
		return domain.NewValidationError("end_date", "end date must be after start date")
	}

	days := int32(end.Sub(start).Hours() / 24)
	if days < inv.MinRentalDays {
		return domain.NewValidationError("end_date",
			fmt.Sprintf("minimum rental period for this inventory is %d days", inv.MinRentalDays))
	}
	if days > inv.MaxRentalDays {
		return domain.NewValidationError("end_date",
			fmt.Sprintf("maximum rental period for this inventory is %d days", inv.MaxRentalDays))
	}

	overlapping, err := c.rentalRepo.ListOverlapping(ctx, inv.ID, start, end, excludeRentalID)
	if err != nil {
		return fmt.Errorf("check overlapping rentals: %w", err)
	}
	if len(overlapping) > 0 {
		conflict := &domain.DateConflictError{}
		for _, rt := range overlapping {
			conflict.Ranges = append(conflict.Ranges, domain.DateRange{Start: rt.StartDate, End: rt.EndDate})
		}
		return conflict
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
