// internal/models/tenant.go
package models

// Tenant is an organizational sub-scope, unique per organization+environment.
type Tenant struct {
	ID             string                 `json:"id"`
	Identifier     string                 `json:"identifier"`
	Name           string                 `json:"name,omitempty"`
	OrganizationID string                 `json:"organizationId"`
	EnvironmentID  string                 `json:"environmentId"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// WorkflowOverride customizes a workflow per tenant. When present, its Active
// flag supersedes the workflow's own.
type WorkflowOverride struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	EnvironmentID  string `json:"environmentId"`
	WorkflowID     string `json:"workflowId"`
	TenantID       string `json:"tenantId"`
	Active         bool   `json:"active"`
}
