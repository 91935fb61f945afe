package chat

import (
	"github.com/google/uuid"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/service"
)

type brokerNotifier struct {
	broker Broker
}

// NewNotifier publishes notifications to users' private channels.
// Users with no open notification socket simply miss the push; the
// unread counters in the thread list cover them.
func NewNotifier(broker Broker) service.Notifier {
	return &brokerNotifier{broker: broker}
}

func (n *brokerNotifier) Notify(userID uuid.UUID, title, body, url string) {
	n.broker.Publish(domain.UserChannelName(userID), NewNotificationEvent(title, body, url))
}
