package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/repository"
)

const loyaltyPointsPerRental = 10

type rentalService struct {
	txm           repository.TxManager
	rentalRepo    repository.RentalRepository
	inventoryRepo repository.InventoryRepository
	paymentRepo   repository.PaymentRepository
	userRepo      repository.UserRepository
	availability  *AvailabilityChecker
	payout        *PayoutCalculator
	emailSvc      EmailService
	notifier      Notifier
	now           func() time.Time
}

func NewRentalService(
	txm repository.TxManager,
	rentalRepo repository.RentalRepository,
	inventoryRepo repository.InventoryRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	availability *AvailabilityChecker,
	payout *PayoutCalculator,
	emailSvc EmailService,
	notifier Notifier,
) RentalService {
	return &rentalService{
		txm:           txm,
		rentalRepo:    rentalRepo,
		inventoryRepo: inventoryRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		availability:  availability,
		payout:        payout,
		emailSvc:      emailSvc,
		notifier:      notifier,
		now:           time.Now,
	}
}

func (s *rentalService) CreateRequest(ctx context.Context, actor *domain.Identity, inventoryID uuid.UUID, start, end time.Time, notes string) (*domain.Rental, error) {
	if !actor.IsClient() {
		return nil, fmt.Errorf("only clients may request rentals: %w", domain.ErrAccessDenied)
	}

	inv, err := s.inventoryRepo.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if !inv.IsAvailable() {
		return nil, domain.NewValidationError("inventory", "this inventory is not available for rent")
	}

	if err := s.availability.Check(ctx, inv, start, end, nil); err != nil {
		return nil, err
	}

	rental := &domain.Rental{
		InventoryID:       inv.ID,
		ClientID:          actor.Client.ID,
		ManagerID:         inv.ManagerID,
		StartDate:         start,
		EndDate:           end,
		DepositPaid:       inv.DepositAmount,
		AdditionalPayment: decimal.Zero,
		Status:            domain.RentalStatusPending,
		PaymentStatus:     domain.PaymentStatePending,
		Notes:             notes,
		BankAccountID:     inv.BankAccountID,
	}
	rental.TotalPrice = inv.PricePerDay.Mul(decimal.NewFromInt32(rental.RentalDays()))

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.rentalRepo.Create(ctx, rental); err != nil {
			return err
		}
		payment := &domain.Payment{
			RentalID: rental.ID,
			Amount:   rental.TotalPrice.Add(rental.DepositPaid),
			Method:   domain.PaymentMethodOnline,
			Status:   domain.PaymentStatusPending,
		}
		return s.paymentRepo.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental request created", "rental_id", rental.ID, "client_id", rental.ClientID, "inventory_id", inv.ID)

	if rental.ManagerID != nil {
		if manager, err := s.userRepo.GetManagerByID(ctx, *rental.ManagerID); err == nil {
			s.notifier.Notify(manager.UserID, "New rental request",
				fmt.Sprintf("%s: %s – %s", inv.Name, start.Format("2006-01-02"), end.Format("2006-01-02")),
				"/rentals/"+rental.ID.String()+"/")
		}
	}

	return rental, nil
}

// StartInquiry creates (or finds) the zero-price inquiry rental that
// anchors a chat thread between a client and the inventory's manager
// before any real booking exists.
func (s *rentalService) StartInquiry(ctx context.Context, actor *domain.Identity, inventoryID uuid.UUID) (*domain.Rental, error) {
	if !actor.IsClient() {
		return nil, fmt.Errorf("chat is available to clients only: %w", domain.ErrAccessDenied)
	}

	inv, err := s.inventoryRepo.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if !inv.IsAvailable() {
		return nil, domain.NewValidationError("inventory", "this inventory is not available")
	}
	if inv.ManagerID == nil {
		return nil, domain.NewValidationError("inventory", "no manager is assigned to this inventory yet")
	}

	existing, err := s.rentalRepo.FindInquiry(ctx, inv.ID, actor.Client.ID)
	if err == nil {
		return existing, nil
	}

	start := s.now()
	rental := &domain.Rental{
		InventoryID:       inv.ID,
		ClientID:          actor.Client.ID,
		ManagerID:         inv.ManagerID,
		StartDate:         start,
		EndDate:           start.Add(24 * time.Hour), // placeholder window, never blocks the calendar
		TotalPrice:        decimal.Zero,
		DepositPaid:       decimal.Zero,
		AdditionalPayment: decimal.Zero,
		Status:            domain.RentalStatusInquiry,
		PaymentStatus:     domain.PaymentStatePending,
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, err
	}

	logger.Info("inquiry chat created", "rental_id", rental.ID, "inventory_id", inv.ID, "client_id", actor.Client.ID)
	return rental, nil
}

func (s *rentalService) Pay(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if !actor.IsClient() || rental.ClientID != actor.Client.ID {
		return nil, fmt.Errorf("payment is available to the renting client only: %w", domain.ErrAccessDenied)
	}
	if rental.PaymentStatus == domain.PaymentStatePaid {
		return nil, fmt.Errorf("rental is already paid: %w", domain.ErrStateConflict)
	}
	if rental.Status != domain.RentalStatusPending {
		return nil, fmt.Errorf("payment is not available for this rental: %w", domain.ErrStateConflict)
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.FirstPendingByRental(ctx, rental.ID)
		if err == nil {
			now := s.now()
			payment.Status = domain.PaymentStatusCompleted
			payment.PaymentDate = &now
			if err := s.paymentRepo.Update(ctx, payment); err != nil {
				return err
			}
		}
		rental.PaymentStatus = domain.PaymentStatePaid
		return s.rentalRepo.Update(ctx, rental)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental paid", "rental_id", rental.ID, "client_id", rental.ClientID)
	return rental, nil
}

func (s *rentalService) Confirm(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error) {
	if !actor.IsManager() {
		return nil, fmt.Errorf("only managers confirm rentals: %w", domain.ErrAccessDenied)
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusPending {
		return nil, fmt.Errorf("rental has already been processed: %w", domain.ErrStateConflict)
	}
	if rental.PaymentStatus != domain.PaymentStatePaid {
		return nil, domain.ErrPaymentRequired
	}

	managerID := actor.Manager.ID
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		rental.Status = domain.RentalStatusConfirmed
		rental.ManagerID = &managerID
		if err := s.rentalRepo.Update(ctx, rental); err != nil {
			return err
		}
		return s.inventoryRepo.UpdateStatus(ctx, rental.InventoryID, domain.InventoryStatusRented)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental confirmed", "rental_id", rental.ID, "manager_id", managerID)
	s.notifyClient(ctx, rental, "Rental confirmed", func(email, invName string) {
		_ = s.emailSvc.SendRentalConfirmed(ctx, email, invName)
	})
	return rental, nil
}

func (s *rentalService) Reject(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID, reason string) (*domain.Rental, error) {
	if !actor.IsManager() {
		return nil, fmt.Errorf("only managers reject rentals: %w", domain.ErrAccessDenied)
	}
	if reason == "" {
		return nil, domain.NewValidationError("reason", "rejection reason is required")
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusPending {
		return nil, fmt.Errorf("rental has already been processed: %w", domain.ErrStateConflict)
	}

	// The inventory was never locked for a pending rental, so there is
	// no status to revert.
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		rental.Status = domain.RentalStatusRejected
		rental.RejectionReason = reason
		return s.rentalRepo.Update(ctx, rental)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental rejected", "rental_id", rental.ID, "reason", reason)
	s.notifyClient(ctx, rental, "Rental rejected", func(email, invName string) {
		_ = s.emailSvc.SendRentalRejected(ctx, email, invName, reason)
	})
	return rental, nil
}

func (s *rentalService) Cancel(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsClient():
		if rental.ClientID != actor.Client.ID {
			return nil, fmt.Errorf("you cannot cancel someone else's rental: %w", domain.ErrAccessDenied)
		}
	case actor.IsManager(), actor.IsAdministrator():
	default:
		return nil, fmt.Errorf("cancellation is not available for this role: %w", domain.ErrAccessDenied)
	}

	if rental.Status != domain.RentalStatusPending && rental.Status != domain.RentalStatusConfirmed {
		return nil, fmt.Errorf("this rental can no longer be cancelled: %w", domain.ErrStateConflict)
	}

	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		rental.Status = domain.RentalStatusCancelled
		if err := s.rentalRepo.Update(ctx, rental); err != nil {
			return err
		}
		inv, err := s.inventoryRepo.GetByID(ctx, rental.InventoryID)
		if err != nil {
			return err
		}
		if inv.Status == domain.InventoryStatusRented {
			return s.inventoryRepo.UpdateStatus(ctx, inv.ID, domain.InventoryStatusAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental cancelled", "rental_id", rental.ID, "by_user", actor.User.ID)
	s.notifyClient(ctx, rental, "Rental cancelled", func(email, invName string) {
		_ = s.emailSvc.SendRentalCancelled(ctx, email, invName)
	})
	return rental, nil
}

func (s *rentalService) Complete(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, *PayoutResult, error) {
	if !actor.IsManager() {
		return nil, nil, fmt.Errorf("only managers complete rentals: %w", domain.ErrAccessDenied)
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	if rental.Status != domain.RentalStatusConfirmed && rental.Status != domain.RentalStatusActive {
		return nil, nil, fmt.Errorf("this rental cannot be completed: %w", domain.ErrStateConflict)
	}

	var result *PayoutResult
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now()
		rental.Status = domain.RentalStatusCompleted
		rental.ActualReturnDate = &now
		if err := s.rentalRepo.Update(ctx, rental); err != nil {
			return err
		}

		if err := s.inventoryRepo.UpdateStatus(ctx, rental.InventoryID, domain.InventoryStatusAvailable); err != nil {
			return err
		}
		if err := s.inventoryRepo.IncrementTotalRentals(ctx, rental.InventoryID); err != nil {
			return err
		}
		if err := s.userRepo.IncrementClientStats(ctx, rental.ClientID, 1, loyaltyPointsPerRental); err != nil {
			return err
		}

		result, err = s.payout.Settle(ctx, rental)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("rental completed", "rental_id", rental.ID, "payout_skipped", result.Skipped)
	s.notifyClient(ctx, rental, "Rental completed", func(email, invName string) {
		_ = s.emailSvc.SendRentalCompleted(ctx, email, invName, rental.TotalPrice)
	})
	return rental, result, nil
}

// Extend pushes the end date forward and accrues the surcharge. The
// extended window is deliberately not re-checked against other
// bookings: the equipment is already in the client's hands and the
// original flow accepts the risk of colliding with a later booking.
func (s *rentalService) Extend(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID, additionalDays int32) (*domain.Rental, error) {
	if !actor.IsManager() {
		return nil, fmt.Errorf("only managers extend rentals: %w", domain.ErrAccessDenied)
	}
	if additionalDays <= 0 {
		return nil, domain.NewValidationError("additional_days", "number of days must be greater than 0")
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.IsTerminal() || rental.Status == domain.RentalStatusInquiry {
		return nil, fmt.Errorf("completed or cancelled rentals cannot be extended: %w", domain.ErrStateConflict)
	}

	inv, err := s.inventoryRepo.GetByID(ctx, rental.InventoryID)
	if err != nil {
		return nil, err
	}

	surcharge := inv.PricePerDay.Mul(decimal.NewFromInt32(additionalDays))
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		rental.EndDate = rental.EndDate.AddDate(0, 0, int(additionalDays))
		rental.AdditionalPayment = rental.AdditionalPayment.Add(surcharge)
		rental.PaymentStatus = domain.PaymentStateDelayed
		return s.rentalRepo.Update(ctx, rental)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("rental extended", "rental_id", rental.ID, "additional_days", additionalDays, "surcharge", surcharge)
	return rental, nil
}

func (s *rentalService) Get(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsClient():
		if rental.ClientID != actor.Client.ID {
			return nil, domain.ErrAccessDenied
		}
	case actor.IsManager():
		if rental.ManagerID == nil || *rental.ManagerID != actor.Manager.ID {
			return nil, domain.ErrAccessDenied
		}
	case actor.IsOwner():
		inv, err := s.inventoryRepo.GetByID(ctx, rental.InventoryID)
		if err != nil {
			return nil, err
		}
		if inv.OwnerID != actor.Owner.ID {
			return nil, domain.ErrAccessDenied
		}
		// Owners see inquiry threads only through chat.
		if rental.Status == domain.RentalStatusInquiry {
			return nil, domain.ErrAccessDenied
		}
	case actor.IsAdministrator():
	default:
		return nil, domain.ErrAccessDenied
	}

	return rental, nil
}

func (s *rentalService) List(ctx context.Context, actor *domain.Identity, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	switch {
	case actor.IsClient():
		return s.rentalRepo.ListByClient(ctx, actor.Client.ID, status, page, pageSize)
	case actor.IsManager():
		return s.rentalRepo.ListByManager(ctx, actor.Manager.ID, status, page, pageSize)
	default:
		return nil, 0, domain.ErrAccessDenied
	}
}

// notifyClient sends the email and fan-out notification for a rental
// transition. Failures are logged and swallowed: notifications never
// fail a committed transition.
func (s *rentalService) notifyClient(ctx context.Context, rental *domain.Rental, title string, sendEmail func(email, inventoryName string)) {
	client, err := s.userRepo.GetClientByID(ctx, rental.ClientID)
	if err != nil {
		logger.Warn("client lookup for notification failed", "rental_id", rental.ID, "error", err)
		return
	}
	inv, err := s.inventoryRepo.GetByID(ctx, rental.InventoryID)
	if err != nil {
		logger.Warn("inventory lookup for notification failed", "rental_id", rental.ID, "error", err)
		return
	}

	if user, err := s.userRepo.GetUserByID(ctx, client.UserID); err == nil {
		sendEmail(user.Email, inv.Name)
	}
	s.notifier.Notify(client.UserID, title, inv.Name, "/rentals/"+rental.ID.String()+"/")
}
