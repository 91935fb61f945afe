package http

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/goonthug/sport-kursach/internal/chat"
	"github.com/goonthug/sport-kursach/internal/config"
	"github.com/goonthug/sport-kursach/internal/domain"
	"github.com/goonthug/sport-kursach/internal/logger"
	"github.com/goonthug/sport-kursach/internal/service"
)

type ChatHandler struct {
	chats    service.ChatService
	rentals  service.RentalService
	notifier service.Notifier
	broker   chat.Broker
	cfg      config.ChatConfig
	upgrader websocket.Upgrader
}

func NewChatHandler(
	chats service.ChatService,
	rentals service.RentalService,
	notifier service.Notifier,
	broker chat.Broker,
	cfg config.ChatConfig,
) *ChatHandler {
	return &ChatHandler{
		chats:    chats,
		rentals:  rentals,
		notifier: notifier,
		broker:   broker,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth already gates the route; cross-origin pages
			// cannot obtain a token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// wsConn adapts a gorilla websocket to the chat transport. Writes are
// serialized: the session's Deliver and the handler goroutine may both
// touch the socket.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) Send(evt chat.Event) error {
	data, err := chat.EncodeEvent(evt)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Close()
}

// ServeChat upgrades the connection and runs a chat session until the
// client hangs up. A failed access check closes the socket right after
// the upgrade, exactly like an unknown rental id.
func (h *ChatHandler) ServeChat(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathUUID(r, "rental_id")
	if err != nil {
		writeError(w, err)
		return
	}
	identity := IdentityFromContext(r.Context())

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := chat.NewSession(
		h.chats, h.notifier, h.broker,
		h.cfg.MessagesPerSecond, h.cfg.Burst,
		identity, rentalID, &wsConn{ws: ws},
	)
	if err := session.Connect(r.Context()); err != nil {
		logger.Debug("chat connect refused", "rental_id", rentalID, "user_id", identity.User.ID, "error", err)
		return
	}
	defer session.Disconnect()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		session.HandleInbound(r.Context(), data)
	}
}

// ServeNotifications subscribes the connection to the user's private
// channel. The socket is push-only; inbound frames are discarded.
func (h *ChatHandler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn := &wsConn{ws: ws}

	channel := domain.UserChannelName(identity.User.ID)
	sub := chat.NewChannelSubscriber(conn, func() { _ = conn.Close() })
	h.broker.Join(channel, sub)
	defer func() {
		h.broker.Leave(channel, sub)
		_ = conn.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// StartInquiry bootstraps (or finds) the inquiry rental anchoring a
// chat thread about an inventory item.
func (h *ChatHandler) StartInquiry(w http.ResponseWriter, r *http.Request) {
	inventoryID, err := pathUUID(r, "inventory_id")
	if err != nil {
		writeError(w, err)
		return
	}
	rental, err := h.rentals.StartInquiry(r.Context(), IdentityFromContext(r.Context()), inventoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	rentalID, err := pathUUID(r, "rental_id")
	if err != nil {
		writeError(w, err)
		return
	}
	messages, err := h.chats.History(r.Context(), IdentityFromContext(r.Context()), rentalID)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) Threads(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())
	threads, err := h.chats.Threads(r.Context(), identity.User.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if threads == nil {
		threads = []domain.ChatThread{}
	}
	writeJSON(w, http.StatusOK, threads)
}
