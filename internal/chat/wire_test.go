package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/goonthug/sport-kursach/internal/domain"
)

func TestEncodeEvent_ChatMessageFrame(t *testing.T) {
	msg := &domain.ChatMessage{
		ID:       uuid.New(),
		RentalID: uuid.New(),
		SenderID: uuid.New(),
		Text:     "is the kayak free tomorrow?",
		Type:     domain.MessageTypeText,
		SentDate: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := EncodeEvent(NewMessageEvent(msg, "Ivan Petrov", "Kayak"))
	assert.NoError(t, err)

	var frame map[string]any
	assert.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, EventChatMessage, frame["type"])
	assert.NotContains(t, frame, "notification")

	payload, ok := frame["message"].(map[string]any)
	if assert.True(t, ok, "payload must sit under the message key") {
		assert.Equal(t, "is the kayak free tomorrow?", payload["text"])
		assert.Equal(t, "Ivan Petrov", payload["sender_name"])
		assert.Equal(t, "Kayak", payload["inventory_name"])
		assert.Equal(t, "2025-06-01T12:00:00Z", payload["sent_date"])
	}
}

func TestEncodeEvent_NotificationFrame(t *testing.T) {
	data, err := EncodeEvent(NewNotificationEvent("New message from Ivan Petrov", "Kayak: hi", "/chat/abc/"))
	assert.NoError(t, err)

	var frame map[string]any
	assert.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, EventNotification, frame["type"])
	assert.NotContains(t, frame, "notification")

	payload, ok := frame["message"].(map[string]any)
	if assert.True(t, ok, "payload must sit under the message key") {
		assert.Equal(t, "New message from Ivan Petrov", payload["title"])
		assert.Equal(t, "Kayak: hi", payload["body"])
		assert.Equal(t, "/chat/abc/", payload["url"])
	}
}

// Events travel through the AMQP exchange encoded the same way they hit
// the socket, so decoding must pick the payload type from the frame
// type.
func TestEvent_RoundTrip(t *testing.T) {
	t.Run("Notification", func(t *testing.T) {
		evt := NewNotificationEvent("Rental overdue", "Please return the equipment", "/rentals/x/")
		data, err := EncodeEvent(evt)
		assert.NoError(t, err)

		var got Event
		assert.NoError(t, json.Unmarshal(data, &got))
		assert.Nil(t, got.Message)
		assert.Equal(t, evt.Notification, got.Notification)
	})

	t.Run("ChatMessage", func(t *testing.T) {
		msg := &domain.ChatMessage{
			ID:       uuid.New(),
			SenderID: uuid.New(),
			Text:     "hello",
			SentDate: time.Now().UTC(),
		}
		evt := NewMessageEvent(msg, "Ivan Petrov", "Kayak")
		data, err := EncodeEvent(evt)
		assert.NoError(t, err)

		var got Event
		assert.NoError(t, json.Unmarshal(data, &got))
		assert.Nil(t, got.Notification)
		if assert.NotNil(t, got.Message) {
			assert.Equal(t, msg.ID, got.Message.MessageID)
			assert.Equal(t, "hello", got.Message.Text)
			assert.Equal(t, "Ivan Petrov", got.Message.SenderName)
		}
	})
}
