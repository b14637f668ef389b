package api

// TenantResponse describes the tenant serving the request. Only SchemaName is
// set under public routing.
type TenantResponse struct {
	Name          string   `json:"name,omitempty"`
	SchemaName    string   `json:"schema_name"`
	TenantID      string   `json:"tenant_id,omitempty"`
	ClientType    string   `json:"client_type,omitempty"`
	Preferences   []string `json:"preferences,omitempty"`
	OnTrial       bool     `json:"on_trial,omitempty"`
	PrimaryDomain string   `json:"primary_domain,omitempty"`
	Domains       []string `json:"domains,omitempty"`
}
