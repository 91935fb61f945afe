package chat

import (
	stdjson "encoding/json"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/goonthug/sport-kursach/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// EventChatMessage is broadcast to a rental's room when a new
	// message lands in the thread.
	EventChatMessage = "chat.message"
	// EventNotification is pushed to a user's private channel so they
	// hear about messages in rooms they are not currently watching.
	EventNotification = "notify.message"
)

const previewRunes = 120

// Event is one frame pushed to a websocket client. Exactly one payload
// field is set, matching Type; on the wire both payload kinds travel
// under the "message" key.
type Event struct {
	Type         string
	Message      *ChatMessagePayload
	Notification *NotificationPayload
}

func (e Event) MarshalJSON() ([]byte, error) {
	frame := struct {
		Type    string `json:"type"`
		Message any    `json:"message"`
	}{Type: e.Type}
	switch {
	case e.Message != nil:
		frame.Message = e.Message
	case e.Notification != nil:
		frame.Message = e.Notification
	}
	return json.Marshal(frame)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var frame struct {
		Type    string             `json:"type"`
		Message stdjson.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	e.Type = frame.Type
	e.Message = nil
	e.Notification = nil
	if len(frame.Message) == 0 {
		return nil
	}
	if e.Type == EventNotification {
		e.Notification = &NotificationPayload{}
		return json.Unmarshal(frame.Message, e.Notification)
	}
	e.Message = &ChatMessagePayload{}
	return json.Unmarshal(frame.Message, e.Message)
}

type ChatMessagePayload struct {
	MessageID     uuid.UUID `json:"message_id"`
	SenderID      uuid.UUID `json:"sender_id"`
	SenderName    string    `json:"sender_name"`
	Text          string    `json:"text"`
	TextPreview   string    `json:"text_preview"`
	SentDate      string    `json:"sent_date"`
	IsRead        bool      `json:"is_read"`
	InventoryName string    `json:"inventory_name"`
	FileURL       string    `json:"file_url,omitempty"`
}

type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Inbound is the only frame clients may send: plain message text.
type Inbound struct {
	Message string `json:"message"`
}

func NewMessageEvent(m *domain.ChatMessage, senderName, inventoryName string) Event {
	return Event{
		Type: EventChatMessage,
		Message: &ChatMessagePayload{
			MessageID:     m.ID,
			SenderID:      m.SenderID,
			SenderName:    senderName,
			Text:          m.Text,
			TextPreview:   Preview(m.Text),
			SentDate:      m.SentDate.Format(time.RFC3339),
			IsRead:        m.IsRead,
			InventoryName: inventoryName,
			FileURL:       m.FileURL,
		},
	}
}

func NewNotificationEvent(title, body, url string) Event {
	return Event{
		Type:         EventNotification,
		Notification: &NotificationPayload{Title: title, Body: body, URL: url},
	}
}

// Preview truncates message text to the first 120 runes for thread
// lists and notifications.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}

func EncodeEvent(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}

func DecodeInbound(data []byte) (*Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	return &in, nil
}
