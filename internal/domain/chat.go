package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// ChatMessage is one message in a rental's chat thread. Immutable once
// created except for the read flag.
type ChatMessage struct {
	ID         uuid.UUID   `json:"message_id"`
	RentalID   uuid.UUID   `json:"rental_id"`
	SenderID   uuid.UUID   `json:"sender_id"`
	ReceiverID uuid.UUID   `json:"receiver_id"`
	Text       string      `json:"message_text"`
	Type       MessageType `json:"message_type"`
	FileURL    string      `json:"file_url,omitempty"`
	SentDate   time.Time   `json:"sent_date"`
	IsRead     bool        `json:"is_read"`
	ReadDate   *time.Time  `json:"read_date,omitempty"`
}

// ChatThread summarizes one rental's conversation for the thread list.
type ChatThread struct {
	RentalID      uuid.UUID   `json:"rental_id"`
	InventoryName string      `json:"inventory_name"`
	LastMessage   ChatMessage `json:"last_message"`
	UnreadCount   int32       `json:"unread_count"`
}

// ChatRoomName is the broadcast group scoped to one rental's thread.
func ChatRoomName(rentalID uuid.UUID) string {
	return "chat_" + rentalID.String()
}

// UserChannelName is the private broadcast group scoped to one user,
// used for cross-room notifications.
func UserChannelName(userID uuid.UUID) string {
	return "user_" + userID.String()
}
