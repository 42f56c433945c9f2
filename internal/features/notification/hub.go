package notification

import (
	"encoding/json"
	"sync"

	"crm-notifications/internal/common/models"

	"go.uber.org/zap"
)

// Publisher pushes flushed notifications to whoever is listening
type Publisher interface {
	Publish(n *Notification)
}

const subscriberBuffer = 16

// Hub fans notifications out to live subscribers of a user company account
type Hub struct {
	mu          sync.RWMutex
	subscribers map[models.ID]map[chan []byte]struct{}
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[models.ID]map[chan []byte]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for account. The returned func unregisters
// it and closes the channel.
func (h *Hub) Subscribe(account models.ID) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	if h.subscribers[account] == nil {
		h.subscribers[account] = make(map[chan []byte]struct{})
	}
	h.subscribers[account][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[account], ch)
			if len(h.subscribers[account]) == 0 {
				delete(h.subscribers, account)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish never blocks: slow subscribers miss messages
func (h *Hub) Publish(n *Notification) {
	if n == nil || n.Target() == nil {
		return
	}
	account := n.Target().UUID()

	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := h.subscribers[account]
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(ToApiNotification(n))
	if err != nil {
		h.logger.Error("Failed to encode notification", zap.String("notification_id", n.ID().String()), zap.Error(err))
		return
	}
	for ch := range subs {
		select {
		case ch <- payload:
		default:
			h.logger.Warn("Dropping notification for slow subscriber",
				zap.String("notification_id", n.ID().String()),
				zap.String("account_id", account.String()),
			)
		}
	}
}

// Subscribers is the number of live listeners for account
func (h *Hub) Subscribers(account models.ID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[account])
}
