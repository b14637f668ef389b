package api

// RootResponse describes the public API.
type RootResponse struct {
	Message   string            `json:"message"`   // Name of the API
	Version   string            `json:"version"`   // API version
	Endpoints map[string]string `json:"endpoints"` // Public endpoints by name
}

type PingResponse struct {
	Message string `json:"message"`
}
