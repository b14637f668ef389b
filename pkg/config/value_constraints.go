package config

import "github.com/labstack/echo/v4"

const (
	HeaderRequestId     = "X-Request-Id"
	RequestIdLoggingKey = "request_id"
	HeaderForwardedHost = "X-Forwarded-Host"
)

const (
	ClientTypeElectric        = "electric"
	ClientTypeAirConditioning = "air_conditioning"
	ClientTypeSolar           = "solar"
	ClientTypePlumbing        = "plumbing"
	ClientTypeHvac            = "hvac"
	ClientTypeGeneral         = "general"
)

// ClientTypes lists the accepted tenant client types with their display names.
var ClientTypes = []ValueLabel{
	{Value: ClientTypeElectric, Label: "Electric"},
	{Value: ClientTypeAirConditioning, Label: "Air Conditioning"},
	{Value: ClientTypeSolar, Label: "Solar"},
	{Value: ClientTypePlumbing, Label: "Plumbing"},
	{Value: ClientTypeHvac, Label: "HVAC"},
	{Value: ClientTypeGeneral, Label: "General"},
}

// Preferences are the modules a tenant may enable at onboarding.
var Preferences = []string{"inventory", "contracts", "schedule", "crews", "notes"}

type ValueLabel struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func ValidClientType(clientType string) bool {
	for _, ct := range ClientTypes {
		if ct.Value == clientType {
			return true
		}
	}
	return false
}

// FilterPreferences keeps only known preferences, dropping duplicates.
func FilterPreferences(prefs []string) []string {
	filtered := []string{}
	seen := map[string]bool{}
	for _, p := range prefs {
		if seen[p] {
			continue
		}
		for _, valid := range Preferences {
			if p == valid {
				filtered = append(filtered, p)
				seen[p] = true
				break
			}
		}
	}
	return filtered
}

// SkipLogging skips access logging for liveness and metrics endpoints.
func SkipLogging(c echo.Context) bool {
	p := c.Path()
	return p == "/ping" || p == "/ping/" || p == "/metrics"
}
