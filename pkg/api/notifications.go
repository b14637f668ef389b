package api

import "encoding/json"

// NotificationRequest is published to a group of the current tenant
type NotificationRequest struct {
	Event   string          `json:"event,omitempty"` // Event name, "published" when empty
	Payload json.RawMessage `json:"payload"`         // Any JSON value forwarded to listeners
}

type NotificationResponse struct {
	ID    string `json:"id"`    // Message id
	Topic string `json:"topic"` // Tenant scoped topic the message went to
}
