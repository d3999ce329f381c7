package chat

import (
	"context"
	"net/http"

	"PChat/logger"
	chatmodel "PChat/module/chat/model"

	"github.com/gin-gonic/gin"
)

// historyLimit matches the realtime backfill window.
const historyLimit = 50

// HistoryStore is the read side of the message store used by the HTTP
// fallback endpoint.
type HistoryStore interface {
	AllRecentAscending(ctx context.Context, limit int64) ([]chatmodel.Message, error)
}

type Handler struct {
	store HistoryStore
}

func NewHandler(store HistoryStore) *Handler {
	return &Handler{store: store}
}

// HandlerMessages serves GET /api/chat/messages for clients that cannot hold
// a websocket: the most recent window, ascending by timestamp.
func (h *Handler) HandlerMessages(c *gin.Context) {
	msgs, err := h.store.AllRecentAscending(c.Request.Context(), historyLimit)
	if err != nil {
		logger.Errorf("[ChatAPI] fetch messages failed err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	if msgs == nil {
		msgs = []chatmodel.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}
