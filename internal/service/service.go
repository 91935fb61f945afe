package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goonthug/sport-kursach/internal/domain"
)

type RentalService interface {
	CreateRequest(ctx context.Context, actor *domain.Identity, inventoryID uuid.UUID, start, end time.Time, notes string) (*domain.Rental, error)
	StartInquiry(ctx context.Context, actor *domain.Identity, inventoryID uuid.UUID) (*domain.Rental, error)
	Pay(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error)
	Confirm(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error)
	Reject(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID, reason string) (*domain.Rental, error)
	Cancel(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error)
	Complete(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, *PayoutResult, error)
	Extend(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID, additionalDays int32) (*domain.Rental, error)
	Get(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*domain.Rental, error)
	List(ctx context.Context, actor *domain.Identity, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
}

// ChatAccess is the outcome of the room access check for one
// (user, rental) pair.
type ChatAccess struct {
	Allowed bool
	// ReadOnly marks administrators: they may observe a room but the
	// session layer drops anything they try to post.
	ReadOnly bool
	// CounterpartyUserID is nil when no counterparty exists yet (e.g.
	// a rental with no assigned manager); joining is still allowed,
	// posting is blocked downstream.
	CounterpartyUserID *uuid.UUID
	Rental             *domain.Rental
	InventoryName      string
}

type ChatService interface {
	ResolveAccess(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*ChatAccess, error)
	PostMessage(ctx context.Context, sender *domain.Identity, rentalID, receiverUserID uuid.UUID, text string) (*domain.ChatMessage, error)
	History(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, rentalID, receiverUserID uuid.UUID, at time.Time) (int64, error)
	Threads(ctx context.Context, userID uuid.UUID) ([]domain.ChatThread, error)
}

type IdentityService interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*domain.Identity, error)
}

// Notifier pushes a lightweight event to a user's private channel.
// Delivery is best-effort; implementations never block on storage.
type Notifier interface {
	Notify(userID uuid.UUID, title, body, url string)
}

type EmailService interface {
	SendRentalConfirmed(ctx context.Context, email, inventoryName string) error
	SendRentalRejected(ctx context.Context, email, inventoryName, reason string) error
	SendRentalCancelled(ctx context.Context, email, inventoryName string) error
	SendRentalCompleted(ctx context.Context, email, inventoryName string, total decimal.Decimal) error
}
