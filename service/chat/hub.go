package chat

import (
	"context"
	"sync"

	"PChat/logger"
	chatmodel "PChat/module/chat/model"
)

// HistoryLimit bounds the backfill snapshot sent to a new connection.
const HistoryLimit = 50

// MessageStore is the slice of the message store the hub needs.
type MessageStore interface {
	Append(ctx context.Context, sender, text string) (chatmodel.Message, error)
	RecentMessages(ctx context.Context, limit int64) ([]chatmodel.Message, error)
}

// Hub is the broadcast core: it owns the registry, persists inbound
// messages and fans them out to every live connection. OnMessage holds a
// single mutex for persist+fanout, so persistence order, broadcast order
// and the order every client observes are one and the same.
type Hub struct {
	mu    sync.Mutex
	store MessageStore
	reg   *Registry
}

func NewHub(store MessageStore, reg *Registry) *Hub {
	return &Hub{store: store, reg: reg}
}

func (h *Hub) Registry() *Registry {
	return h.reg
}

// OnConnect delivers the history snapshot to the new client, then admits it
// into the broadcast set. A failed history fetch is logged and the client is
// admitted with an empty backfill; it is never fatal to the connect flow.
func (h *Hub) OnConnect(ctx context.Context, c *Client) {
	history, err := h.store.RecentMessages(ctx, HistoryLimit)
	if err != nil {
		logger.Errorf("[Hub] history fetch failed conn=%s err=%v", c.ConnID, err)
		history = nil
	}
	payload, err := EncodeHistoryEvent(history)
	if err != nil {
		logger.Errorf("[Hub] encode history failed conn=%s err=%v", c.ConnID, err)
	} else {
		// The client is not registered yet, so this cannot race with a
		// Remove; the queue is fresh and the backfill is its first entry.
		select {
		case c.Send <- payload:
		default:
			logger.Warnf("[Hub] history dropped, queue full conn=%s", c.ConnID)
		}
	}
	h.reg.Add(c)
	logger.Infof("[Hub] client connected conn=%s history=%d total=%d", c.ConnID, len(history), h.reg.Len())
}

// OnMessage validates, persists, then broadcasts one inbound message to all
// registered clients, sender included. Empty sender or text is dropped
// silently; a store failure drops the message without broadcast. The sender
// gets no error reply either way (fire-and-forget transport).
func (h *Hub) OnMessage(ctx context.Context, sender, text string) {
	if sender == "" || text == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	msg, err := h.store.Append(ctx, sender, text)
	if err != nil {
		logger.Errorf("[Hub] persist message failed sender=%s err=%v", sender, err)
		return
	}
	payload, err := EncodeMessageEvent(msg)
	if err != nil {
		logger.Errorf("[Hub] encode message failed sender=%s err=%v", sender, err)
		return
	}
	h.reg.ForEach(func(c *Client) {
		h.reg.Send(c.ConnID, payload)
	})
}

// OnDisconnect drops the connection from the broadcast set.
func (h *Hub) OnDisconnect(connID string) {
	h.reg.Remove(connID)
}
