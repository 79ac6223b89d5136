package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/metrics"
)

const (
	// authTimeout — клиент обязан прислать токен в течение 5 секунд после апгрейда
	authTimeout = 5 * time.Second

	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second

	maxMessageSize = 8192
	writeWait      = 10 * time.Second

	// janitorInterval — период проверки простаивающих сессий
	janitorInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить origin списком фронтов перед выкаткой наружу
		return true
	},
}

// AuthFunc валидирует JWT токен и возвращает userID и роль подписчика
type AuthFunc func(token string) (userID, role string, err error)

// MessageHandler обрабатывает входящие сообщения сессии
// (subscribe / unsubscribe / ping)
type MessageHandler func(session *Session, messageType string, data json.RawMessage) error

// Session — одно WebSocket соединение подписчика.
//
// У каждой сессии ограниченная очередь исходящих: медленный потребитель
// теряет самые старые события (drop-oldest) и помечается degraded,
// но никогда не блокирует write path доставки.
type Session struct {
	ID     string
	UserID string
	Role   string

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  *logger.Logger

	mu         sync.Mutex
	closed     bool
	degraded   bool
	lastActive time.Time
}

// Degraded сообщает, терялись ли события этой сессии из-за переполнения очереди
func (s *Session) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// enqueue кладет сообщение в очередь сессии, вытесняя самое старое при
// переполнении. Никогда не блокируется и не паникует на закрытой сессии.
func (s *Session) enqueue(message []byte) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	for {
		select {
		case s.send <- message:
			s.mu.Unlock()
			return true
		default:
		}

		// Очередь полна: выталкиваем самое старое событие
		select {
		case <-s.send:
			metrics.FanoutDroppedTotal.Inc()
			s.degraded = true
		default:
		}
	}
}

// Send сериализует и ставит сообщение в очередь сессии
func (s *Session) Send(data interface{}) error {
	message, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.enqueue(message)
	return nil
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// Hub управляет всеми активными сессиями подписчиков и их подписками
// на доставки
type Hub struct {
	sessions   map[string]*Session
	byDelivery map[string]map[string]*Session // deliveryID -> sessionID -> session
	mu         sync.RWMutex

	register   chan *Session
	unregister chan *Session

	authFunc       AuthFunc
	messageHandler MessageHandler

	queueSize   int
	idleTimeout time.Duration

	log *logger.Logger
}

// NewHub создает hub. После создания установить MessageHandler и запустить
// Run(ctx) в горутине.
func NewHub(authFunc AuthFunc, queueSize int, idleTimeout time.Duration, log *logger.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Hub{
		sessions:    make(map[string]*Session),
		byDelivery:  make(map[string]map[string]*Session),
		register:    make(chan *Session, 10),
		unregister:  make(chan *Session, 10),
		authFunc:    authFunc,
		queueSize:   queueSize,
		idleTimeout: idleTimeout,
		log:         log,
	}
}

// SetMessageHandler устанавливает обработчик входящих сообщений сессий
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.messageHandler = handler
}

// Run запускает главный цикл хаба: регистрация, отключение, eviction
func (h *Hub) Run(ctx context.Context) {
	janitor := time.NewTicker(janitorInterval)
	defer janitor.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.log.Info(logger.Entry{Action: "hub_stopped", Message: "websocket hub stopped"})
			return

		case session := <-h.register:
			h.mu.Lock()
			h.sessions[session.ID] = session
			h.mu.Unlock()
			h.log.Info(logger.Entry{
				Action:  "session_registered",
				Message: session.ID,
				Additional: map[string]any{
					"user_id": session.UserID,
					"role":    session.Role,
				},
			})

		case session := <-h.unregister:
			h.removeSession(session)
			h.log.Info(logger.Entry{
				Action:  "session_unregistered",
				Message: session.ID,
			})

		case now := <-janitor.C:
			h.evictIdle(now)
		}
	}
}

func (h *Hub) removeSession(session *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[session.ID]; ok {
		delete(h.sessions, session.ID)
		for deliveryID, subs := range h.byDelivery {
			delete(subs, session.ID)
			if len(subs) == 0 {
				delete(h.byDelivery, deliveryID)
			}
		}
	}
	h.mu.Unlock()
	session.close()
}

// evictIdle закрывает сессии без активности дольше idleTimeout
func (h *Hub) evictIdle(now time.Time) {
	if h.idleTimeout <= 0 {
		return
	}

	h.mu.RLock()
	var stale []*Session
	for _, s := range h.sessions {
		if s.idleSince(now) > h.idleTimeout {
			stale = append(stale, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range stale {
		h.log.Info(logger.Entry{
			Action:  "session_evicted_idle",
			Message: s.ID,
			Additional: map[string]any{
				"user_id":      s.UserID,
				"idle_timeout": h.idleTimeout.String(),
			},
		})
		h.removeSession(s)
		_ = s.conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.byDelivery = make(map[string]map[string]*Session)
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
		_ = s.conn.Close()
	}
}

// Subscribe подписывает сессию на события доставки
func (h *Hub) Subscribe(session *Session, deliveryID string) {
	h.mu.Lock()
	subs, ok := h.byDelivery[deliveryID]
	if !ok {
		subs = make(map[string]*Session)
		h.byDelivery[deliveryID] = subs
	}
	subs[session.ID] = session
	h.mu.Unlock()
}

// Unsubscribe снимает подписку сессии с доставки
func (h *Hub) Unsubscribe(session *Session, deliveryID string) {
	h.mu.Lock()
	if subs, ok := h.byDelivery[deliveryID]; ok {
		delete(subs, session.ID)
		if len(subs) == 0 {
			delete(h.byDelivery, deliveryID)
		}
	}
	h.mu.Unlock()
}

// PublishToDelivery рассылает событие всем подписчикам доставки.
// Не блокируется: переполненные очереди теряют самые старые события.
func (h *Hub) PublishToDelivery(deliveryID string, data interface{}) {
	message, err := json.Marshal(data)
	if err != nil {
		h.log.Error(logger.Entry{
			Action:     "fanout_marshal_failed",
			Message:    err.Error(),
			DeliveryID: deliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return
	}

	h.mu.RLock()
	subs := make([]*Session, 0, len(h.byDelivery[deliveryID]))
	for _, s := range h.byDelivery[deliveryID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if s.enqueue(message) {
			metrics.FanoutPublishedTotal.Inc()
		}
	}
}

// SubscriberCount возвращает число активных подписчиков доставки
func (h *Hub) SubscriberCount(deliveryID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byDelivery[deliveryID])
}

// ServeWS обрабатывает HTTP запрос на WebSocket соединение
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(logger.Entry{
			Action:  "ws_upgrade_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return
	}

	session := &Session{
		ID:         uuid.NewString(),
		conn:       conn,
		send:       make(chan []byte, h.queueSize),
		hub:        h,
		log:        h.log,
		lastActive: time.Now(),
	}

	// Дедлайн на аутентификацию
	_ = conn.SetReadDeadline(time.Now().Add(authTimeout))

	var authMsg struct {
		Token string `json:"token"`
	}
	if err := conn.ReadJSON(&authMsg); err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseProtocolError, "auth timeout"))
		_ = conn.Close()
		h.log.Warn(logger.Entry{
			Action:  "ws_auth_failed",
			Message: "no auth message received",
		})
		return
	}

	userID, role, err := h.authFunc(authMsg.Token)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": "invalid token"})
		_ = conn.Close()
		h.log.Warn(logger.Entry{
			Action:  "ws_auth_invalid_token",
			Message: err.Error(),
		})
		return
	}

	session.UserID = userID
	session.Role = role

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		session.touch()
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	h.register <- session

	_ = conn.WriteJSON(map[string]string{
		"status":     "authenticated",
		"session_id": session.ID,
		"user_id":    userID,
	})

	go session.writePump()
	go session.readPump()
}

// readPump читает сообщения сессии и передает их обработчику
func (s *Session) readPump() {
	defer func() {
		s.hub.unregister <- s
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Error(logger.Entry{
					Action:  "ws_read_error",
					Message: s.ID,
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
			}
			break
		}

		s.touch()

		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data,omitempty"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			s.log.Error(logger.Entry{
				Action:  "ws_parse_message_error",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
				Additional: map[string]any{
					"session_id": s.ID,
					"raw":        string(message),
				},
			})
			continue
		}

		if s.hub.messageHandler != nil {
			if err := s.hub.messageHandler(s, msg.Type, msg.Data); err != nil {
				s.log.Error(logger.Entry{
					Action:  "ws_handle_message_error",
					Message: err.Error(),
					Error:   &logger.ErrObj{Msg: err.Error()},
					Additional: map[string]any{
						"session_id": s.ID,
						"msg_type":   msg.Type,
					},
				})
			}
		}
	}
}

// writePump отправляет сообщения очереди в соединение
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
