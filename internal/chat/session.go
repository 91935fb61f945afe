package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/service"
)

// Conn is the transport half of a chat connection. The websocket
// handler adapts the real socket to it; tests plug in a recorder.
type Conn interface {
	Send(evt Event) error
	Close() error
}

type sessionState int

const (
	stateConnecting sessionState = iota
	stateJoined
	stateClosed
)

// Session drives one user's connection to one rental's chat room:
// access check and room join on connect, inbound message handling, and
// room leave on disconnect. Malformed or disallowed inbound frames are
// dropped silently, the same way an unauthorized connect is closed
// without explanation.
type Session struct {
	chatSvc  service.ChatService
	notifier service.Notifier
	broker   Broker
	limiter  *rate.Limiter
	now      func() time.Time

	actor    *domain.Identity
	rentalID uuid.UUID
	room     string

	mu     sync.Mutex
	state  sessionState
	conn   Conn
	access *service.ChatAccess
}

func NewSession(
	chatSvc service.ChatService,
	notifier service.Notifier,
	broker Broker,
	messagesPerSecond float64,
	burst int,
	actor *domain.Identity,
	rentalID uuid.UUID,
	conn Conn,
) *Session {
	return &Session{
		chatSvc:  chatSvc,
		notifier: notifier,
		broker:   broker,
		limiter:  rate.NewLimiter(rate.Limit(messagesPerSecond), burst),
		now:      time.Now,
		actor:    actor,
		rentalID: rentalID,
		room:     domain.ChatRoomName(rentalID),
		conn:     conn,
	}
}

// Connect checks room access, joins the room and marks the actor's
// unread messages in the thread as read. A denial closes the
// connection and reports ErrAccessDenied so the handler can finish the
// websocket close handshake.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateConnecting {
		return fmt.Errorf("session already started: %w", domain.ErrStateConflict)
	}

	access, err := s.chatSvc.ResolveAccess(ctx, s.actor, s.rentalID)
	if err != nil {
		_ = s.conn.Close()
		s.state = stateClosed
		return err
	}
	if !access.Allowed {
		_ = s.conn.Close()
		s.state = stateClosed
		return domain.ErrAccessDenied
	}
	s.access = access

	s.broker.Join(s.room, s)
	s.state = stateJoined

	if !access.ReadOnly {
		if n, err := s.chatSvc.MarkRead(ctx, s.rentalID, s.actor.User.ID, s.now()); err != nil {
			logger.Warn("mark read on connect failed", "rental_id", s.rentalID, "error", err)
		} else if n > 0 {
			logger.Debug("messages marked read on connect", "rental_id", s.rentalID, "count", n)
		}
	}
	return nil
}

// Deliver forwards a room event to the underlying connection. A write
// failure tears the session down; the client reconnects and reloads
// history.
func (s *Session) Deliver(evt Event) {
	s.mu.Lock()
	conn := s.conn
	joined := s.state == stateJoined
	s.mu.Unlock()
	if !joined {
		return
	}
	if err := conn.Send(evt); err != nil {
		logger.Debug("dropping chat connection after write failure", "rental_id", s.rentalID, "error", err)
		s.Disconnect()
	}
}

// HandleInbound processes one frame from the client. Every reason not
// to post — read-only role, rate limit, bad payload, empty text, no
// counterparty — drops the frame without a reply.
func (s *Session) HandleInbound(ctx context.Context, data []byte) {
	s.mu.Lock()
	access := s.access
	joined := s.state == stateJoined
	s.mu.Unlock()
	if !joined || access.ReadOnly {
		return
	}
	if !s.limiter.Allow() {
		logger.Debug("rate limit exceeded, dropping message", "rental_id", s.rentalID, "user_id", s.actor.User.ID)
		return
	}

	in, err := DecodeInbound(data)
	if err != nil {
		logger.Debug("dropping unparseable chat frame", "rental_id", s.rentalID, "error", err)
		return
	}
	text := strings.TrimSpace(in.Message)
	if text == "" {
		return
	}
	if access.CounterpartyUserID == nil {
		logger.Debug("dropping message without counterparty", "rental_id", s.rentalID)
		return
	}

	msg, err := s.chatSvc.PostMessage(ctx, s.actor, s.rentalID, *access.CounterpartyUserID, text)
	if err != nil {
		logger.Warn("failed to store chat message", "rental_id", s.rentalID, "error", err)
		return
	}

	s.broker.Publish(s.room, NewMessageEvent(msg, s.actor.User.FullName, access.InventoryName))

	s.notifier.Notify(
		*access.CounterpartyUserID,
		fmt.Sprintf("New message from %s", s.actor.User.FullName),
		fmt.Sprintf("%s: %s", access.InventoryName, Preview(text)),
		fmt.Sprintf("/chat/%s/", s.rentalID),
	)
}

// Disconnect leaves the room and closes the connection. Safe to call
// more than once.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateClosed {
		return
	}
	if s.state == stateJoined {
		s.broker.Leave(s.room, s)
	}
	_ = s.conn.Close()
	s.state = stateClosed
}

// ChannelSubscriber bridges a plain connection onto a broker group,
// used for the per-user notification channel where no room logic is
// needed.
type ChannelSubscriber struct {
	conn    Conn
	onError func()
}

func NewChannelSubscriber(conn Conn, onError func()) *ChannelSubscriber {
	return &ChannelSubscriber{conn: conn, onError: onError}
}

func (c *ChannelSubscriber) Deliver(evt Event) {
	if err := c.conn.Send(evt); err != nil && c.onError != nil {
		c.onError()
	}
}
