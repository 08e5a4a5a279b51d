package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/blum-farm-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBotAPI struct {
	mu         sync.Mutex
	getMeFails atomic.Int32
	sent       []string
}

func (f *fakeBotAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			if f.getMeFails.Load() > 0 {
				f.getMeFails.Add(-1)
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"ok":false,"error_code":502,"description":"Bad Gateway"}`))
				return
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bfarm","username":"bfarm_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "42", r.Form.Get("chat_id"))
			f.mu.Lock()
			f.sent = append(f.sent, r.Form.Get("text"))
			f.mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestNotifierSendsFormattedEvent(t *testing.T) {
	t.Parallel()

	fake := &fakeBotAPI{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	notifier, err := New(context.Background(), Options{
		Token:      "123:abc",
		ChatID:     42,
		Endpoint:   server.URL + "/bot%s/%s",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	err = notifier.Notify(context.Background(), ports.Event{
		Kind:    ports.EventSessionInvalid,
		Account: "main",
		Text:    "init data revoked",
	})
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "[main] session invalid, account stopped\ninit data revoked", fake.sent[0])
}

func TestNewRetriesConnection(t *testing.T) {
	t.Parallel()

	fake := &fakeBotAPI{}
	fake.getMeFails.Store(2)
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	var delays []time.Duration
	_, err := New(context.Background(), Options{
		Token:      "123:abc",
		ChatID:     42,
		Endpoint:   server.URL + "/bot%s/%s",
		HTTPClient: server.Client(),
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestNewRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Options{ChatID: 1})
	assert.ErrorContains(t, err, "token is required")

	_, err = New(context.Background(), Options{Token: "t"})
	assert.ErrorContains(t, err, "chat id is required")
}

func TestFormatEventWithoutText(t *testing.T) {
	assert.Equal(t, "[alt] cycle completed", formatEvent(ports.Event{Kind: ports.EventCycleCompleted, Account: "alt"}))
}
