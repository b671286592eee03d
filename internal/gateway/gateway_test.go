package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceinsight/voiceinsight/internal/platform"
)

type fakeHandler struct {
	updates []*platform.Update
}

func (f *fakeHandler) HandleUpdate(ctx context.Context, upd *platform.Update) {
	f.updates = append(f.updates, upd)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func TestGateway_DispatchesUpdate(t *testing.T) {
	h := &fakeHandler{}
	srv := New(":0", h, &fakePinger{})

	body := `{"message": {"message_id": 10, "chat_id": 100, "text": "/start", "from": {"id": 7, "language_code": "en"}}}`
	req := httptest.NewRequest(http.MethodPost, "/updates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.updates, 1)
	require.NotNil(t, h.updates[0].Message)
	assert.Equal(t, int64(100), h.updates[0].Message.ChatID)
	assert.Equal(t, "/start", h.updates[0].Message.Text)
}

func TestGateway_DispatchesCallback(t *testing.T) {
	h := &fakeHandler{}
	srv := New(":0", h, &fakePinger{})

	body := `{"callback_query": {"id": "cb1", "data": "show_summary", "message": {"message_id": 500, "chat_id": 100}}}`
	req := httptest.NewRequest(http.MethodPost, "/updates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.updates, 1)
	require.NotNil(t, h.updates[0].Callback)
	assert.Equal(t, "show_summary", h.updates[0].Callback.Data)
}

func TestGateway_RejectsMalformedBody(t *testing.T) {
	h := &fakeHandler{}
	srv := New(":0", h, &fakePinger{})

	req := httptest.NewRequest(http.MethodPost, "/updates", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.updates)
}

func TestGateway_RejectsEmptyUpdate(t *testing.T) {
	h := &fakeHandler{}
	srv := New(":0", h, &fakePinger{})

	req := httptest.NewRequest(http.MethodPost, "/updates", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.updates)
}

func TestGateway_Health(t *testing.T) {
	srv := New(":0", &fakeHandler{}, &fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGateway_HealthStoreDown(t *testing.T) {
	srv := New(":0", &fakeHandler{}, &fakePinger{err: errors.New("db locked")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
