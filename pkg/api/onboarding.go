package api

import "github.com/chalanpro/tenant-gateway/pkg/config"

// OnboardingRequest holds the data received to create a tenant
type OnboardingRequest struct {
	CompanyName string   `json:"company_name"`          // Display name of the company, at least 3 characters
	Email       string   `json:"email"`                 // Contact email, must be unused
	ClientType  string   `json:"client_type,omitempty"` // One of the client types, general when unknown
	Address     string   `json:"address,omitempty"`     // Postal address
	Preferences []string `json:"preferences,omitempty"` // Modules to enable
}

// OnboardingResponse is returned once the tenant is provisioned
type OnboardingResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	URL     string                `json:"url"`    // Login page of the new tenant
	Domain  string                `json:"domain"` // Primary domain of the new tenant
	Tenant  OnboardingTenantShort `json:"tenant"`
}

type OnboardingTenantShort struct {
	Name       string `json:"name"`
	SchemaName string `json:"schema_name"`
	TenantID   string `json:"tenant_id"`
	ClientType string `json:"client_type"`
}

// OnboardingOptionsResponse lists the choices of the onboarding form
type OnboardingOptionsResponse struct {
	ClientTypes []config.ValueLabel `json:"client_types"`
	Preferences []string            `json:"preferences"`
}
