package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/repository"
)

type chatService struct {
	rentalRepo    repository.RentalRepository
	inventoryRepo repository.InventoryRepository
	userRepo      repository.UserRepository
	messageRepo   repository.ChatMessageRepository
	now           func() time.Time
}

func NewChatService(
	rentalRepo repository.RentalRepository,
	inventoryRepo repository.InventoryRepository,
	userRepo repository.UserRepository,
	messageRepo repository.ChatMessageRepository,
) ChatService {
	return &chatService{
		rentalRepo:    rentalRepo,
		inventoryRepo: inventoryRepo,
		userRepo:      userRepo,
		messageRepo:   messageRepo,
		now:           time.Now,
	}
}

// ResolveAccess decides whether a user may join the chat room of a
// rental and who sits on the other side of the conversation. A missing
// rental or a user outside the rental yields a denial, not an error, so
// callers can close the connection without leaking whether the rental
// exists.
func (s *chatService) ResolveAccess(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) (*ChatAccess, error) {
	denied := &ChatAccess{}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if errors.Is(err, domain.ErrNotFound) {
		return denied, nil
	}
	if err != nil {
		return nil, err
	}

	access := &ChatAccess{Rental: rental}
	if inv, err := s.inventoryRepo.GetByID(ctx, rental.InventoryID); err == nil {
		access.InventoryName = inv.Name
	}

	switch {
	case actor.IsClient() && rental.ClientID == actor.Client.ID:
		access.Allowed = true
		if rental.ManagerID != nil {
			if manager, err := s.userRepo.GetManagerByID(ctx, *rental.ManagerID); err == nil {
				access.CounterpartyUserID = &manager.UserID
			}
		}
	case actor.IsManager() && rental.ManagerID != nil && *rental.ManagerID == actor.Manager.ID:
		access.Allowed = true
		if client, err := s.userRepo.GetClientByID(ctx, rental.ClientID); err == nil {
			access.CounterpartyUserID = &client.UserID
		}
	case actor.IsAdministrator():
		access.Allowed = true
		access.ReadOnly = true
	default:
		return denied, nil
	}

	return access, nil
}

func (s *chatService) PostMessage(ctx context.Context, sender *domain.Identity, rentalID, receiverUserID uuid.UUID, text string) (*domain.ChatMessage, error) {
	if receiverUserID == uuid.Nil {
		return nil, domain.ErrNoCounterparty
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("message_text", "message text cannot be empty")
	}

	msg := &domain.ChatMessage{
		RentalID:   rentalID,
		SenderID:   sender.User.ID,
		ReceiverID: receiverUserID,
		Text:       text,
		Type:       domain.MessageTypeText,
		SentDate:   s.now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the full thread and marks the caller's unread
// messages as read, mirroring what joining the room does.
func (s *chatService) History(ctx context.Context, actor *domain.Identity, rentalID uuid.UUID) ([]domain.ChatMessage, error) {
	access, err := s.ResolveAccess(ctx, actor, rentalID)
	if err != nil {
		return nil, err
	}
	if !access.Allowed {
		return nil, domain.ErrAccessDenied
	}

	messages, err := s.messageRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if !access.ReadOnly {
		if _, err := s.MarkRead(ctx, rentalID, actor.User.ID, s.now()); err != nil {
			logger.Warn("mark read on history failed", "rental_id", rentalID, "error", err)
		}
	}
	return messages, nil
}

func (s *chatService) MarkRead(ctx context.Context, rentalID, receiverUserID uuid.UUID, at time.Time) (int64, error) {
	return s.messageRepo.MarkAllRead(ctx, rentalID, receiverUserID, at)
}

func (s *chatService) Threads(ctx context.Context, userID uuid.UUID) ([]domain.ChatThread, error) {
	return s.messageRepo.ListThreads(ctx, userID)
}
