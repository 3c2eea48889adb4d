// internal/models/trigger.go
package models

import "encoding/json"

// TriggerContextType tags a reserved context object carried on a trigger.
type TriggerContextType string

const (
	TriggerContextTenant TriggerContextType = "tenant"
	TriggerContextActor  TriggerContextType = "actor"
)

// TriggerStatus is the terminal status of a processed trigger event.
type TriggerStatus string

const (
	TriggerStatusProcessed             TriggerStatus = "processed"
	TriggerStatusNotActive             TriggerStatus = "trigger_not_active"
	TriggerStatusTenantMissing         TriggerStatus = "no_tenant_found"
	TriggerStatusNoWorkflowSteps       TriggerStatus = "no_workflow_steps_defined"
	TriggerStatusNoWorkflowActiveSteps TriggerStatus = "no_workflow_active_steps_defined"
	TriggerStatusError                 TriggerStatus = "error"
)

// TenantReference is a tenant pointer supplied on a trigger, either as a bare
// identifier string or as an object carrying one.
type TenantReference struct {
	Identifier string                 `json:"identifier"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// UnmarshalJSON accepts both `"acme"` and `{"identifier": "acme"}`.
func (t *TenantReference) UnmarshalJSON(raw []byte) error {
	var identifier string
	if err := json.Unmarshal(raw, &identifier); err == nil {
		t.Identifier = identifier
		return nil
	}
	type alias TenantReference
	var obj alias
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	*t = TenantReference(obj)
	return nil
}

// AsMap exposes the reference for reserved-context field checks.
func (t *TenantReference) AsMap() map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range t.Data {
		out[k] = v
	}
	if t.Identifier != "" {
		out["identifier"] = t.Identifier
	}
	return out
}

// Recipient addresses a subscriber targeted by a trigger.
type Recipient struct {
	SubscriberID string `json:"subscriberId"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// TriggerEvent is the inbound command that starts workflow processing.
type TriggerEvent struct {
	Identifier     string                 `json:"name"`
	OrganizationID string                 `json:"organizationId"`
	EnvironmentID  string                 `json:"environmentId"`
	UserID         string                 `json:"userId"`
	To             []Recipient            `json:"to"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	Overrides      map[string]interface{} `json:"overrides,omitempty"`
	Actor          map[string]interface{} `json:"actor,omitempty"`
	Tenant         *TenantReference       `json:"tenant,omitempty"`
	TransactionID  string                 `json:"transactionId,omitempty"`
}

// Attachment is an inbound file reference after base64 decoding. Content is
// uploaded out-of-band and never carried on the enqueued job.
type Attachment struct {
	Name        string `json:"name"`
	Mime        string `json:"mime,omitempty"`
	StoragePath string `json:"storagePath"`
	Content     []byte `json:"-"`
}

// JobData is the payload handed to the delivery queue: the original command
// plus the actor and the assigned transaction id.
type JobData struct {
	Identifier     string                 `json:"name"`
	OrganizationID string                 `json:"organizationId"`
	EnvironmentID  string                 `json:"environmentId"`
	UserID         string                 `json:"userId"`
	To             []Recipient            `json:"to"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	Overrides      map[string]interface{} `json:"overrides,omitempty"`
	Actor          map[string]interface{} `json:"actor,omitempty"`
	Tenant         *TenantReference       `json:"tenant,omitempty"`
	TransactionID  string                 `json:"transactionId"`
}

// QueueMessage is the enqueue command consumed by the delivery queue.
type QueueMessage struct {
	Name    string  `json:"name"`
	Data    JobData `json:"data"`
	GroupID string  `json:"groupId"`
}

// TriggerResult acknowledges a processed trigger event.
type TriggerResult struct {
	Acknowledged  bool          `json:"acknowledged"`
	Status        TriggerStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	Error         []string      `json:"error,omitempty"`
}
