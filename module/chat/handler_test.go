package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chatmodel "PChat/module/chat/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	msgs []chatmodel.Message
	err  error
}

func (f *fakeHistory) AllRecentAscending(context.Context, int64) ([]chatmodel.Message, error) {
	return f.msgs, f.err
}

func newTestRouter(store HistoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/chat/messages", NewHandler(store).HandlerMessages)
	return r
}

func TestHandlerMessagesEmptyStoreReturnsEmptyArray(t *testing.T) {
	r := newTestRouter(&fakeHistory{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/messages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHandlerMessagesAscendingOrder(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeHistory{msgs: []chatmodel.Message{
		{Sender: "alice", Text: "first", Timestamp: base},
		{Sender: "bob", Text: "second", Timestamp: base.Add(time.Second)},
	}}
	r := newTestRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/messages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []chatmodel.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
}

func TestHandlerMessagesStoreFailure(t *testing.T) {
	r := newTestRouter(&fakeHistory{err: fmt.Errorf("mongo down")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/messages", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"server error"}`, w.Body.String())
}
