package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goonthug/sport-kursach/internal/domain"
)

// TxManager draws the transaction boundary around multi-entity state
// transitions. The callback runs with a transaction bound to its
// context; every repository call inside it joins that transaction, and
// any error rolls the whole unit back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetClientByUserID(ctx context.Context, userID uuid.UUID) (*domain.Client, error)
	GetClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetOwnerByUserID(ctx context.Context, userID uuid.UUID) (*domain.Owner, error)
	GetOwnerByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error)
	GetManagerByUserID(ctx context.Context, userID uuid.UUID) (*domain.Manager, error)
	GetManagerByID(ctx context.Context, id uuid.UUID) (*domain.Manager, error)

	// IncrementClientStats bumps total_rentals and loyalty_points in a
	// single UPDATE so concurrent completions cannot lose counts.
	IncrementClientStats(ctx context.Context, clientID uuid.UUID, rentals, loyaltyPoints int32) error
	// AddOwnerEarnings credits total_earnings in a single UPDATE.
	AddOwnerEarnings(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal) error
}

type InventoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InventoryStatus) error
	IncrementTotalRentals(ctx context.Context, id uuid.UUID) error
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error

	// ListOverlapping returns rentals in a blocking status whose
	// half-open [start, end) window overlaps the given one, ordered by
	// start date. excludeID skips one rental (extension re-checks).
	ListOverlapping(ctx context.Context, inventoryID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]domain.Rental, error)

	ListByClient(ctx context.Context, clientID uuid.UUID, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	ListByManager(ctx context.Context, managerID uuid.UUID, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)

	// FindInquiry locates an existing inquiry rental for the
	// (inventory, client) pair so chat bootstrap stays idempotent.
	FindInquiry(ctx context.Context, inventoryID, clientID uuid.UUID) (*domain.Rental, error)

	// ListStartedConfirmed / ListOverdueActive back the cron jobs.
	ListStartedConfirmed(ctx context.Context, now time.Time) ([]domain.Rental, error)
	ListOverdueActive(ctx context.Context, now time.Time) ([]domain.Rental, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FirstPendingByRental(ctx context.Context, rentalID uuid.UUID) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.Payment, error)
}

type AgreementRepository interface {
	// LatestAccepted returns the most recently created accepted
	// agreement, or domain.ErrNotFound when the owner has none.
	LatestAccepted(ctx context.Context, ownerID uuid.UUID) (*domain.OwnerAgreement, error)
}

type BankAccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BankAccount, error)
}

type ChatMessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	ListByRental(ctx context.Context, rentalID uuid.UUID) ([]domain.ChatMessage, error)
	// MarkAllRead flips every unread message addressed to the user in
	// this rental in one UPDATE; returns the number of rows touched.
	MarkAllRead(ctx context.Context, rentalID, receiverID uuid.UUID, readAt time.Time) (int64, error)
	CountUnread(ctx context.Context, rentalID, receiverID uuid.UUID) (int32, error)
	// ListThreads groups a user's messages by rental, newest first.
	ListThreads(ctx context.Context, userID uuid.UUID) ([]domain.ChatThread, error)
}
