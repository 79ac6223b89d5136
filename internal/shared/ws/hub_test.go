package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverytrack/internal/shared/logger"
)

func newTestHub(queueSize int) *Hub {
	auth := func(token string) (string, string, error) { return "u-1", "customer", nil }
	return NewHub(auth, queueSize, time.Minute, logger.NewLogger("test"))
}

func newTestSession(h *Hub, id string) *Session {
	return &Session{
		ID:         id,
		UserID:     "u-" + id,
		Role:       "customer",
		send:       make(chan []byte, h.queueSize),
		hub:        h,
		log:        h.log,
		lastActive: time.Now(),
	}
}

func drain(s *Session) []string {
	var messages []string
	for {
		select {
		case m := <-s.send:
			messages = append(messages, string(m))
		default:
			return messages
		}
	}
}

func TestHubSubscriptions(t *testing.T) {
	t.Run("subscribe and unsubscribe", func(t *testing.T) {
		h := newTestHub(4)
		s := newTestSession(h, "s-1")

		assert.Equal(t, 0, h.SubscriberCount("d-1"))

		h.Subscribe(s, "d-1")
		assert.Equal(t, 1, h.SubscriberCount("d-1"))

		// повторная подписка не удваивает
		h.Subscribe(s, "d-1")
		assert.Equal(t, 1, h.SubscriberCount("d-1"))

		h.Unsubscribe(s, "d-1")
		assert.Equal(t, 0, h.SubscriberCount("d-1"))
	})

	t.Run("remove session drops all its subscriptions", func(t *testing.T) {
		h := newTestHub(4)
		s := newTestSession(h, "s-1")
		h.sessions[s.ID] = s
		h.Subscribe(s, "d-1")
		h.Subscribe(s, "d-2")

		h.removeSession(s)

		assert.Equal(t, 0, h.SubscriberCount("d-1"))
		assert.Equal(t, 0, h.SubscriberCount("d-2"))
		// канал сессии закрыт
		_, ok := <-s.send
		assert.False(t, ok)
	})
}

func TestHubPublish(t *testing.T) {
	t.Run("fanout reaches only subscribers of the delivery", func(t *testing.T) {
		h := newTestHub(4)
		sub := newTestSession(h, "sub")
		other := newTestSession(h, "other")
		h.Subscribe(sub, "d-1")
		h.Subscribe(other, "d-2")

		h.PublishToDelivery("d-1", map[string]string{"type": "status"})

		got := drain(sub)
		require.Len(t, got, 1)
		assert.JSONEq(t, `{"type":"status"}`, got[0])
		assert.Empty(t, drain(other))
	})

	t.Run("messages preserve publish order", func(t *testing.T) {
		h := newTestHub(4)
		sub := newTestSession(h, "sub")
		h.Subscribe(sub, "d-1")

		h.PublishToDelivery("d-1", map[string]int{"n": 1})
		h.PublishToDelivery("d-1", map[string]int{"n": 2})

		got := drain(sub)
		require.Len(t, got, 2)
		assert.JSONEq(t, `{"n":1}`, got[0])
		assert.JSONEq(t, `{"n":2}`, got[1])
	})

	t.Run("publish to delivery without subscribers is a no-op", func(t *testing.T) {
		h := newTestHub(4)
		h.PublishToDelivery("d-404", map[string]string{"type": "status"})
	})
}

func TestSessionQueue(t *testing.T) {
	t.Run("slow consumer loses oldest messages", func(t *testing.T) {
		h := newTestHub(2)
		s := newTestSession(h, "slow")

		assert.True(t, s.enqueue([]byte("1")))
		assert.True(t, s.enqueue([]byte("2")))
		assert.False(t, s.Degraded())

		// очередь полна: третье сообщение вытесняет первое
		assert.True(t, s.enqueue([]byte("3")))
		assert.True(t, s.Degraded())

		got := drain(s)
		assert.Equal(t, []string{"2", "3"}, got)
	})

	t.Run("enqueue on closed session is a safe no-op", func(t *testing.T) {
		h := newTestHub(2)
		s := newTestSession(h, "closed")
		s.close()

		assert.False(t, s.enqueue([]byte("late")))
	})

	t.Run("double close does not panic", func(t *testing.T) {
		h := newTestHub(2)
		s := newTestSession(h, "s")
		s.close()
		s.close()
	})

	t.Run("send marshals payload to json", func(t *testing.T) {
		h := newTestHub(2)
		s := newTestSession(h, "s")

		require.NoError(t, s.Send(map[string]string{"type": "pong"}))
		got := drain(s)
		require.Len(t, got, 1)
		assert.JSONEq(t, `{"type":"pong"}`, got[0])
	})
}
