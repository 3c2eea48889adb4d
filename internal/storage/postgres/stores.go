// internal/storage/postgres/stores.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"notification-engine/internal/models"
)

// WorkflowStore reads workflows and their steps/triggers from Postgres. The
// steps and triggers columns are jsonb documents.
type WorkflowStore struct {
	db *sql.DB
}

func NewWorkflowStore(db *sql.DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

// FindByTriggerIdentifier returns the workflow registered under the given
// trigger identifier, or (nil, nil) when no row matches.
func (s *WorkflowStore) FindByTriggerIdentifier(ctx context.Context, environmentID, identifier string) (*models.Workflow, error) {
	const query = `
		SELECT id, organization_id, environment_id, name, active, steps, triggers
		FROM workflows
		WHERE environment_id = $1 AND trigger_identifier = $2`

	var (
		workflow     models.Workflow
		stepsJSON    []byte
		triggersJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, environmentID, identifier).Scan(
		&workflow.ID,
		&workflow.OrganizationID,
		&workflow.EnvironmentID,
		&workflow.Name,
		&workflow.Active,
		&stepsJSON,
		&triggersJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query workflow %q: %w", identifier, err)
	}

	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &workflow.Steps); err != nil {
			return nil, fmt.Errorf("decode workflow steps: %w", err)
		}
	}
	if len(triggersJSON) > 0 {
		if err := json.Unmarshal(triggersJSON, &workflow.Triggers); err != nil {
			return nil, fmt.Errorf("decode workflow triggers: %w", err)
		}
	}
	return &workflow, nil
}

// TenantStore reads tenants by identifier.
type TenantStore struct {
	db *sql.DB
}

func NewTenantStore(db *sql.DB) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) FindOne(ctx context.Context, environmentID, identifier string) (*models.Tenant, error) {
	const query = `
		SELECT id, identifier, name, organization_id, environment_id, data
		FROM tenants
		WHERE environment_id = $1 AND identifier = $2`

	var (
		tenant   models.Tenant
		dataJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, environmentID, identifier).Scan(
		&tenant.ID,
		&tenant.Identifier,
		&tenant.Name,
		&tenant.OrganizationID,
		&tenant.EnvironmentID,
		&dataJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query tenant %q: %w", identifier, err)
	}
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &tenant.Data); err != nil {
			return nil, fmt.Errorf("decode tenant data: %w", err)
		}
	}
	return &tenant, nil
}

// OverrideStore reads per-tenant workflow overrides.
type OverrideStore struct {
	db *sql.DB
}

func NewOverrideStore(db *sql.DB) *OverrideStore {
	return &OverrideStore{db: db}
}

func (s *OverrideStore) FindOne(ctx context.Context, environmentID, organizationID, workflowID, tenantID string) (*models.WorkflowOverride, error) {
	const query = `
		SELECT id, organization_id, environment_id, workflow_id, tenant_id, active
		FROM workflow_overrides
		WHERE environment_id = $1 AND organization_id = $2 AND workflow_id = $3 AND tenant_id = $4`

	var override models.WorkflowOverride
	err := s.db.QueryRowContext(ctx, query, environmentID, organizationID, workflowID, tenantID).Scan(
		&override.ID,
		&override.OrganizationID,
		&override.EnvironmentID,
		&override.WorkflowID,
		&override.TenantID,
		&override.Active,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query workflow override: %w", err)
	}
	return &override, nil
}

// OrganizationStore reads organizations with their branding document.
type OrganizationStore struct {
	db *sql.DB
}

func NewOrganizationStore(db *sql.DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

func (s *OrganizationStore) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	const query = `SELECT id, name, branding FROM organizations WHERE id = $1`

	var (
		org          models.Organization
		brandingJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.Name, &brandingJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query organization %q: %w", id, err)
	}
	if len(brandingJSON) > 0 {
		if err := json.Unmarshal(brandingJSON, &org.Branding); err != nil {
			return nil, fmt.Errorf("decode organization branding: %w", err)
		}
	}
	return &org, nil
}

// LayoutStore reads organization email layouts.
type LayoutStore struct {
	db *sql.DB
}

func NewLayoutStore(db *sql.DB) *LayoutStore {
	return &LayoutStore{db: db}
}

func (s *LayoutStore) FindOne(ctx context.Context, layoutID, environmentID, organizationID string) (*models.Layout, error) {
	const query = `
		SELECT id, organization_id, environment_id, name, content, variables, is_default
		FROM layouts
		WHERE id = $1 AND environment_id = $2 AND organization_id = $3`

	var (
		layout        models.Layout
		variablesJSON []byte
	)
	err := s.db.QueryRowContext(ctx, query, layoutID, environmentID, organizationID).Scan(
		&layout.ID,
		&layout.OrganizationID,
		&layout.EnvironmentID,
		&layout.Name,
		&layout.Content,
		&variablesJSON,
		&layout.IsDefault,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query layout %q: %w", layoutID, err)
	}
	if len(variablesJSON) > 0 {
		if err := json.Unmarshal(variablesJSON, &layout.Variables); err != nil {
			return nil, fmt.Errorf("decode layout variables: %w", err)
		}
	}
	return &layout, nil
}

// UserStore reads platform users.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByID(ctx context.Context, userID string) (*models.User, error) {
	const query = `SELECT id, email, first_name, last_name FROM users WHERE id = $1`

	var user models.User
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user %q: %w", userID, err)
	}
	return &user, nil
}

// MemberStore counts organization members.
type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) CountForOrganization(ctx context.Context, organizationID string) (int, error) {
	const query = `SELECT COUNT(*) FROM organization_members WHERE organization_id = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, organizationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count members for organization %q: %w", organizationID, err)
	}
	return count, nil
}
