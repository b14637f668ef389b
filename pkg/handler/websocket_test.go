package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *HandlerSuite) dial(ctx context.Context, path string, origin string) (*websocket.Conn, *http.Response, error) {
	srv := httptest.NewServer(s.engine)
	s.T().Cleanup(srv.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
}

func (s *HandlerSuite) TestWebsocketStreamsTenantTopic() {
	s.tenant = phoenixTenant()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := s.dial(ctx, "/ws/schedule/event/4/chat/", "https://phoenix.chalan-pro.net")
	require.NoError(s.T(), err)
	defer conn.CloseNow()

	msg, err := notifications.NewMessage(notifications.ChatMessage, map[string]string{"text": "hola"})
	require.NoError(s.T(), err)
	// the other tenant's topic with the same group
	require.NoError(s.T(), s.broker.Publish(ctx, "public.schedule_4_chat", msg))
	require.NoError(s.T(), s.broker.Publish(ctx, "phoenix_electric.schedule_4_chat", msg))

	var got notifications.Message
	require.NoError(s.T(), wsjson.Read(ctx, conn, &got))
	assert.Equal(s.T(), msg.ID, got.ID)
	assert.Equal(s.T(), "phoenix_electric.schedule_4_chat", got.Topic)
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.WebsocketConnections))

	require.NoError(s.T(), conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(s.T(), func() bool {
		return testutil.ToFloat64(s.metrics.WebsocketConnections) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func (s *HandlerSuite) TestWebsocketPublicCalendar() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := s.dial(ctx, "/ws/calendar-updates/", "")
	require.NoError(s.T(), err)
	defer conn.CloseNow()

	msg, err := notifications.NewMessage(notifications.CalendarUpdated, nil)
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.broker.Publish(ctx, "public.calendar_updates", msg))

	var got notifications.Message
	require.NoError(s.T(), wsjson.Read(ctx, conn, &got))
	assert.Equal(s.T(), notifications.CalendarUpdated, got.Event)
}

func (s *HandlerSuite) TestWebsocketRejectsForeignOrigin() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, resp, err := s.dial(ctx, "/ws/calendar-updates/", "https://attacker.example.com")
	require.Error(s.T(), err)
	require.NotNil(s.T(), resp)
	assert.Equal(s.T(), http.StatusForbidden, resp.StatusCode)
}

func (s *HandlerSuite) TestWebsocketInvalidID() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, resp, err := s.dial(ctx, "/ws/schedule/unread/user/abc/", "")
	require.Error(s.T(), err)
	require.NotNil(s.T(), resp)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
}
