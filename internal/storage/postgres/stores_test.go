package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowStoreFindByTriggerIdentifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	steps := `[{"id":"step-1","channel":"email","active":true,"template":{"contentType":"editor","subject":"Hi"}}]`
	triggers := `[{"identifier":"welcome-email","reservedVariables":[{"type":"tenant"}]}]`

	mock.ExpectQuery("SELECT id, organization_id, environment_id, name, active, steps, triggers").
		WithArgs("env-1", "welcome-email").
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "environment_id", "name", "active", "steps", "triggers"}).
			AddRow("wf-1", "org-1", "env-1", "Welcome", true, []byte(steps), []byte(triggers)))

	store := NewWorkflowStore(db)
	workflow, err := store.FindByTriggerIdentifier(context.Background(), "env-1", "welcome-email")
	require.NoError(t, err)
	require.NotNil(t, workflow)
	assert.Equal(t, "wf-1", workflow.ID)
	assert.True(t, workflow.Active)
	require.Len(t, workflow.Steps, 1)
	assert.Equal(t, "Hi", workflow.Steps[0].Template.Subject)
	require.Len(t, workflow.Triggers, 1)
	assert.Equal(t, "welcome-email", workflow.Triggers[0].Identifier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowStoreMissingRowIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, organization_id, environment_id, name, active, steps, triggers").
		WithArgs("env-1", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "environment_id", "name", "active", "steps", "triggers"}))

	store := NewWorkflowStore(db)
	workflow, err := store.FindByTriggerIdentifier(context.Background(), "env-1", "ghost")
	require.NoError(t, err)
	assert.Nil(t, workflow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantStoreFindOne(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, identifier, name, organization_id, environment_id, data").
		WithArgs("env-1", "acme").
		WillReturnRows(sqlmock.NewRows([]string{"id", "identifier", "name", "organization_id", "environment_id", "data"}).
			AddRow("tenant-1", "acme", "Acme Corp", "org-1", "env-1", []byte(`{"tier":"gold"}`)))

	store := NewTenantStore(db)
	tenant, err := store.FindOne(context.Background(), "env-1", "acme")
	require.NoError(t, err)
	require.NotNil(t, tenant)
	assert.Equal(t, "acme", tenant.Identifier)
	assert.Equal(t, "gold", tenant.Data["tier"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationStoreDecodesBranding(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, branding FROM organizations").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "branding"}).
			AddRow("org-1", "Acme", []byte(`{"logo":"https://cdn.example.com/logo.png","color":"#112233"}`)))

	store := NewOrganizationStore(db)
	org, err := store.FindByID(context.Background(), "org-1")
	require.NoError(t, err)
	require.NotNil(t, org)
	require.NotNil(t, org.Branding)
	assert.Equal(t, "#112233", org.Branding.Color)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberStoreCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM organization_members`).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	store := NewMemberStore(db)
	count, err := store.CountForOrganization(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
