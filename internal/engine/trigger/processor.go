package trigger

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"notification-engine/internal/common/cache"
	"notification-engine/internal/common/errors"
	"notification-engine/internal/common/logger"
	"notification-engine/internal/common/metrics"
	"notification-engine/internal/common/observability"
	"notification-engine/internal/engine/payload"
	"notification-engine/internal/models"
)

// ==========================
// Collaborator ports
// ==========================

// WorkflowReader resolves workflows by trigger identifier. A missing workflow
// is (nil, nil), not an error.
type WorkflowReader interface {
	FindByTriggerIdentifier(ctx context.Context, environmentID, identifier string) (*models.Workflow, error)
}

// TenantReader resolves tenants by identifier within an environment.
type TenantReader interface {
	FindOne(ctx context.Context, environmentID, identifier string) (*models.Tenant, error)
}

// OverrideReader resolves per-tenant workflow overrides.
type OverrideReader interface {
	FindOne(ctx context.Context, environmentID, organizationID, workflowID, tenantID string) (*models.WorkflowOverride, error)
}

// AttachmentUploader stores decoded attachment content out-of-band before the
// job is enqueued.
type AttachmentUploader interface {
	Upload(ctx context.Context, attachments []models.Attachment) error
}

// Queue is the opaque enqueue operation of the delivery pipeline.
type Queue interface {
	Enqueue(ctx context.Context, message models.QueueMessage) error
}

// Dependencies wires a Processor. Cache, Nudge and Observability are optional.
type Dependencies struct {
	Workflows     WorkflowReader
	Tenants       TenantReader
	Overrides     OverrideReader
	Uploader      AttachmentUploader
	Queue         Queue
	Cache         *cache.Store
	Nudge         *Nudge
	Observability *observability.Observability
	Logger        logger.Logger
}

// Processor is the top-level trigger state machine. It holds no mutable state
// across invocations; concurrent events are independent.
type Processor struct {
	workflows WorkflowReader
	tenants   TenantReader
	overrides OverrideReader
	uploader  AttachmentUploader
	queue     Queue
	cache     *cache.Store
	nudge     *Nudge
	obs       *observability.Observability
	logger    logger.Logger
}

func NewProcessor(deps Dependencies) *Processor {
	return &Processor{
		workflows: deps.Workflows,
		tenants:   deps.Tenants,
		overrides: deps.Overrides,
		uploader:  deps.Uploader,
		queue:     deps.Queue,
		cache:     deps.Cache,
		nudge:     deps.Nudge,
		obs:       deps.Observability,
		logger:    deps.Logger,
	}
}

// Process runs one trigger event to a terminal status. Workflow-not-found and
// incomplete reserved context are the only user-visible errors of the happy
// path; tenant/active/steps checks resolve to acknowledged statuses. All
// short-circuit checks happen strictly before any attachment or enqueue work.
func (p *Processor) Process(ctx context.Context, event *models.TriggerEvent) (*models.TriggerResult, error) {
	started := time.Now()
	if p.obs != nil {
		spanCtx, span := p.obs.StartSpan(ctx, "trigger.process")
		ctx = spanCtx
		defer span.End()
	}

	transactionID := event.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	workflow, err := p.findWorkflow(ctx, event.EnvironmentID, event.Identifier)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("workflow", err)
	}
	if workflow == nil {
		metrics.TriggersFailed.WithLabelValues(string(errors.ErrCodeWorkflowNotFound)).Inc()
		return nil, errors.NewWorkflowNotFoundError(event.Identifier)
	}

	if err := ValidateTriggerContext(event, workflow.ReservedVariableTypes()); err != nil {
		metrics.TriggersFailed.WithLabelValues(string(errors.ErrCodeTriggerContextInvalid)).Inc()
		return nil, err
	}

	var tenant *models.Tenant
	if event.Tenant != nil {
		tenant, err = p.findTenant(ctx, event.EnvironmentID, event.Tenant.Identifier)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("tenant", err)
		}
		if tenant == nil {
			return p.terminal(ctx, started, models.TriggerStatusTenantMissing, ""), nil
		}
	}

	var override *models.WorkflowOverride
	if tenant != nil {
		override, err = p.overrides.FindOne(ctx, event.EnvironmentID, event.OrganizationID, workflow.ID, tenant.ID)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("workflow_override", err)
		}
	}

	effectiveActive := workflow.Active
	if override != nil {
		effectiveActive = override.Active
	}
	if !effectiveActive {
		message := "workflow is not active"
		if override != nil {
			message = "workflow is not active by workflow override"
		}
		p.logger.Info(message, map[string]interface{}{
			"workflowId":    workflow.ID,
			"transactionId": transactionID,
		})
		return p.terminal(ctx, started, models.TriggerStatusNotActive, ""), nil
	}

	if len(workflow.Steps) == 0 {
		return p.terminal(ctx, started, models.TriggerStatusNoWorkflowSteps, ""), nil
	}
	if !workflow.HasActiveSteps() {
		return p.terminal(ctx, started, models.TriggerStatusNoWorkflowActiveSteps, ""), nil
	}

	// Attachment upload runs only once every short-circuit check has passed,
	// and must complete before enqueue so the job never references
	// un-uploaded binaries.
	jobPayload, err := p.processAttachments(ctx, event)
	if err != nil {
		return nil, err
	}

	defaults := payload.Verify(workflow.DeclaredVariables(), jobPayload)
	jobPayload = payload.Merge(defaults, jobPayload)

	jobData := models.JobData{
		Identifier:     event.Identifier,
		OrganizationID: event.OrganizationID,
		EnvironmentID:  event.EnvironmentID,
		UserID:         event.UserID,
		To:             event.To,
		Payload:        jobPayload,
		Overrides:      event.Overrides,
		Actor:          event.Actor,
		Tenant:         event.Tenant,
		TransactionID:  transactionID,
	}

	// Best-effort side channel; failures never reach the caller.
	if p.nudge != nil {
		p.nudge.MaybeSend(ctx, event)
	}

	if err := p.queue.Enqueue(ctx, models.QueueMessage{
		Name:    transactionID,
		Data:    jobData,
		GroupID: event.OrganizationID,
	}); err != nil {
		metrics.TriggersFailed.WithLabelValues(string(errors.ErrCodeEnqueueFailed)).Inc()
		return nil, errors.NewEnqueueFailedError(err)
	}

	return p.terminal(ctx, started, models.TriggerStatusProcessed, transactionID), nil
}

// findWorkflow is the cache-wrapped workflow lookup. The cache is a pure
// accelerator: any cache failure falls through to a fresh repository read.
func (p *Processor) findWorkflow(ctx context.Context, environmentID, identifier string) (*models.Workflow, error) {
	key := cache.BuildWorkflowKey(environmentID, identifier)
	return cache.Fetch(ctx, p.cache, "workflow", key, func(ctx context.Context) (*models.Workflow, error) {
		return p.workflows.FindByTriggerIdentifier(ctx, environmentID, identifier)
	})
}

// findTenant is the cache-wrapped tenant lookup with the same fall-through
// semantics as findWorkflow.
func (p *Processor) findTenant(ctx context.Context, environmentID, identifier string) (*models.Tenant, error) {
	key := cache.BuildTenantKey(environmentID, identifier)
	return cache.Fetch(ctx, p.cache, "tenant", key, func(ctx context.Context) (*models.Tenant, error) {
		return p.tenants.FindOne(ctx, environmentID, identifier)
	})
}

// processAttachments returns the payload to enqueue. When the inbound payload
// carries attachments they are decoded, uploaded, and replaced by entries
// without binary content; the caller's payload is never modified.
func (p *Processor) processAttachments(ctx context.Context, event *models.TriggerEvent) (map[string]interface{}, error) {
	raw, ok := event.Payload["attachments"].([]interface{})
	if !ok || len(raw) == 0 {
		return event.Payload, nil
	}

	attachments := make([]models.Attachment, 0, len(raw))
	sanitized := make([]interface{}, 0, len(raw))

	for i, entry := range raw {
		object, ok := entry.(map[string]interface{})
		if !ok {
			return nil, errors.NewTriggerPayloadInvalidError(fmt.Sprintf("attachments[%d] is not an object", i))
		}

		name, _ := object["name"].(string)
		encoded, ok := object["file"].(string)
		if !ok {
			return nil, errors.NewTriggerPayloadInvalidError(fmt.Sprintf("attachments[%d].file is not a base64 string", i))
		}
		content, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.NewTriggerPayloadInvalidError(fmt.Sprintf("attachments[%d].file: %v", i, err))
		}

		mime, _ := object["mime"].(string)
		storagePath := fmt.Sprintf("%s/%s/%s/%s", event.OrganizationID, event.EnvironmentID, uuid.NewString(), name)

		attachments = append(attachments, models.Attachment{
			Name:        name,
			Mime:        mime,
			StoragePath: storagePath,
			Content:     content,
		})

		clean := map[string]interface{}{}
		for k, v := range object {
			if k == "file" {
				continue
			}
			clean[k] = v
		}
		clean["storagePath"] = storagePath
		sanitized = append(sanitized, clean)
	}

	if err := p.uploader.Upload(ctx, attachments); err != nil {
		metrics.TriggersFailed.WithLabelValues(string(errors.ErrCodeAttachmentUploadFailed)).Inc()
		return nil, errors.NewAttachmentUploadFailedError(err)
	}
	metrics.AttachmentsUploaded.Add(float64(len(attachments)))

	jobPayload := make(map[string]interface{}, len(event.Payload))
	for k, v := range event.Payload {
		jobPayload[k] = v
	}
	jobPayload["attachments"] = sanitized
	return jobPayload, nil
}

func (p *Processor) terminal(ctx context.Context, started time.Time, status models.TriggerStatus, transactionID string) *models.TriggerResult {
	metrics.TriggersProcessed.WithLabelValues(string(status)).Inc()
	metrics.TriggerDuration.WithLabelValues(string(status)).Observe(time.Since(started).Seconds())
	if p.obs != nil {
		p.obs.RecordTriggerProcessed(ctx, string(status))
		p.obs.RecordTriggerDuration(ctx, float64(time.Since(started).Milliseconds()), string(status))
	}
	return &models.TriggerResult{
		Acknowledged:  true,
		Status:        status,
		TransactionID: transactionID,
	}
}
