package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/chalanpro/tenant-gateway/pkg/instrumentation"
	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/chalanpro/tenant-gateway/pkg/tenancy"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebsocketHandler streams the messages of one tenant topic to a client. The
// tenant is the one the gateway bound for the upgrade request and stays
// fixed for the life of the connection.
type WebsocketHandler struct {
	Broker       notifications.Broker
	AllowList    *tenancy.AllowList
	Metrics      *instrumentation.Metrics
	PublicSchema string
}

func RegisterWebsocketRoutes(engine *echo.Echo, h *WebsocketHandler) {
	if engine == nil {
		panic("engine is nil")
	}
	if h == nil || h.Broker == nil {
		panic("broker is nil")
	}
	ws := engine.Group("/ws")
	ws.GET("/calendar-updates/", h.stream(func(echo.Context) (string, error) {
		return notifications.CalendarUpdatesGroup, nil
	}))
	ws.GET("/schedule/event/:id/", h.stream(byID(notifications.EventNotesGroup)))
	ws.GET("/schedule/work-account/:id/notes/", h.stream(byID(notifications.WorkAccountNotesGroup)))
	ws.GET("/schedule/event/:id/chat/", h.stream(byID(notifications.ScheduleChatGroup)))
	ws.GET("/schedule/work-account/:id/chat/", h.stream(byID(notifications.WorkAccountChatGroup)))
	ws.GET("/schedule/unread/user/:id/", h.stream(byID(notifications.UserUnreadGroup)))
}

type groupFunc func(c echo.Context) (string, error)

func byID(group func(int64) string) groupFunc {
	return func(c echo.Context) (string, error) {
		id, err := parseID(c, "id")
		if err != nil {
			return "", err
		}
		return group(id), nil
	}
}

// checkOrigin admits requests without an Origin header, browsers always send one.
func (h *WebsocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	if origin == "" || h.AllowList == nil {
		return true
	}
	return h.AllowList.IsAllowedOrigin(origin)
}

func (h *WebsocketHandler) stream(group groupFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		name, err := group(c)
		if err != nil {
			return err
		}
		if !h.checkOrigin(c.Request()) {
			return echo.NewHTTPError(http.StatusForbidden, "Origin not allowed.")
		}

		ctx := c.Request().Context()
		topic := notifications.Topic(schemaOf(c, h.PublicSchema), name)
		logger := log.Ctx(ctx).With().Str("topic", topic).Logger()

		// subscribe before the upgrade so nothing published after the
		// handshake is missed
		sub, err := h.Broker.Subscribe(ctx, topic)
		if err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "Notifications unavailable.")
		}
		defer sub.Close()

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return nil
		}
		defer conn.CloseNow()

		h.Metrics.RecordWebsocket(1)
		defer h.Metrics.RecordWebsocket(-1)
		logger.Debug().Msg("websocket connected")

		err = forward(conn.CloseRead(ctx), conn, sub)
		switch {
		case err == nil:
			conn.Close(websocket.StatusGoingAway, "")
		case errors.Is(err, context.Canceled), websocket.CloseStatus(err) != -1:
		default:
			logger.Debug().Err(err).Msg("websocket closed")
		}
		return nil
	}
}

// forward writes every message of sub to conn until ctx is done or the
// subscription ends, which returns nil.
func forward(ctx context.Context, conn *websocket.Conn, sub *notifications.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				return err
			}
		}
	}
}
