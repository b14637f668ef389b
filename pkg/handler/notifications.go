package handler

import (
	"net/http"

	"github.com/chalanpro/tenant-gateway/pkg/api"
	ce "github.com/chalanpro/tenant-gateway/pkg/errors"
	"github.com/chalanpro/tenant-gateway/pkg/notifications"
	"github.com/labstack/echo/v4"
)

type NotificationsHandler struct {
	Broker       notifications.Broker
	PublicSchema string
}

func RegisterNotificationRoutes(group *echo.Group, broker notifications.Broker, publicSchema string) {
	if group == nil {
		panic("group is nil")
	}
	if broker == nil {
		panic("broker is nil")
	}
	h := NotificationsHandler{Broker: broker, PublicSchema: publicSchema}
	group.POST("/notifications/:group/", h.publish)
}

// publish sends the body to a group of the tenant serving the request, the
// explicit publication point for changes made by downstream services.
func (h *NotificationsHandler) publish(c echo.Context) error {
	group := c.Param("group")
	if !notifications.ValidGroup(group) {
		return ce.NewErrorResponse(http.StatusNotFound, "Unknown group", "Unknown notification group "+group)
	}
	var req api.NotificationRequest
	if err := c.Bind(&req); err != nil {
		return ce.NewErrorResponse(http.StatusBadRequest, "Error binding parameters", err.Error())
	}
	event := notifications.Published
	if req.Event != "" {
		event = notifications.EventName(req.Event)
	}
	msg, err := notifications.NewMessage(event, nil)
	if err != nil {
		return ce.NewErrorResponse(http.StatusInternalServerError, "Error building message", err.Error())
	}
	msg.Payload = req.Payload

	topic := notifications.Topic(schemaOf(c, h.PublicSchema), group)
	if err := h.Broker.Publish(c.Request().Context(), topic, msg); err != nil {
		return ce.NewErrorResponse(http.StatusServiceUnavailable, "Error publishing notification", err.Error())
	}
	return c.JSON(http.StatusAccepted, api.NotificationResponse{ID: msg.ID, Topic: topic})
}
