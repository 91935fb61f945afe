package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/logger"
)

// ActivateStartedRentals moves confirmed rentals whose start date has
// arrived into active status, so overdue tracking starts counting.
func (jr *JobRunner) ActivateStartedRentals() {
	jr.runWithRecovery("ActivateStartedRentals", func() {
		ctx := context.Background()

		rentals, err := jr.store.RentalRepository.ListStartedConfirmed(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list started rentals", "error", err)
			return
		}

		count := 0
		for i := range rentals {
			rental := &rentals[i]
			rental.Status = domain.RentalStatusActive
			if err := jr.store.RentalRepository.Update(ctx, rental); err != nil {
				logger.Error("Failed to activate rental", "rental_id", rental.ID, "error", err)
				continue
			}
			count++
			logger.Debug("Rental activated", "rental_id", rental.ID, "start_date", rental.StartDate)
		}

		logger.Info("Activated started rentals", "count", count)
	})
}

// NotifyOverdueRentals pushes a reminder to every client holding
// equipment past the rental end date. Statuses stay untouched; managers
// decide what to do with each overdue rental.
func (jr *JobRunner) NotifyOverdueRentals() {
	jr.runWithRecovery("NotifyOverdueRentals", func() {
		ctx := context.Background()
		now := time.Now()

		rentals, err := jr.store.RentalRepository.ListOverdueActive(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue rentals", "error", err)
			return
		}

		count := 0
		for i := range rentals {
			rental := &rentals[i]
			if !rental.IsOverdue(now) {
				continue
			}
			client, err := jr.store.UserRepository.GetClientByID(ctx, rental.ClientID)
			if err != nil {
				logger.Error("Failed to load client for overdue rental", "rental_id", rental.ID, "error", err)
				continue
			}

			daysOverdue := int(now.Sub(rental.EndDate).Hours() / 24)
			jr.notifier.Notify(client.UserID,
				"Rental overdue",
				fmt.Sprintf("Your rental was due back %d day(s) ago. Please return the equipment or contact your manager.", daysOverdue),
				"/rentals/"+rental.ID.String()+"/")

			count++
			logger.Debug("Overdue reminder sent",
				"rental_id", rental.ID,
				"client_id", rental.ClientID,
				"days_overdue", daysOverdue)
		}

		logger.Info("Overdue reminders sent", "count", count)
	})
}
