// internal/models/organization.go
package models

// Branding carries the visual identity applied to compiled email content.
type Branding struct {
	Logo  string `json:"logo,omitempty"`
	Color string `json:"color,omitempty"`
}

// Organization is the tenant-owning account scope.
type Organization struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Branding *Branding `json:"branding,omitempty"`
}

// Layout is an organization-scoped wrapper template for email content.
type Layout struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	EnvironmentID  string     `json:"environmentId"`
	Name           string     `json:"name,omitempty"`
	Content        string     `json:"content"`
	Variables      []Variable `json:"variables,omitempty"`
	IsDefault      bool       `json:"isDefault,omitempty"`
}
