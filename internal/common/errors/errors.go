// Package errors provides standardized error handling for the trigger pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeWorkflowNotFound      ErrorCode = "WORKFLOW_NOT_FOUND"
	ErrCodeTriggerContextInvalid ErrorCode = "TRIGGER_CONTEXT_INVALID"
	ErrCodeTriggerPayloadInvalid ErrorCode = "TRIGGER_PAYLOAD_INVALID"

	ErrCodeOrganizationNotFound     ErrorCode = "ORGANIZATION_NOT_FOUND"
	ErrCodeContentGenerationFailed  ErrorCode = "CONTENT_GENERATION_FAILED"
	ErrCodeTemplateCompilationError ErrorCode = "TEMPLATE_COMPILATION_ERROR"

	ErrCodeAttachmentUploadFailed ErrorCode = "ATTACHMENT_UPLOAD_FAILED"
	ErrCodeEnqueueFailed          ErrorCode = "ENQUEUE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewWorkflowNotFoundError creates a non-retryable trigger resolution error.
func NewWorkflowNotFoundError(identifier string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowNotFound,
		Message:   "workflow_not_found",
		Details:   fmt.Sprintf("triggerIdentifier: %s", identifier),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTriggerContextInvalidError aggregates every missing reserved context
// object and field into one non-retryable error.
func NewTriggerContextInvalidError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTriggerContextInvalid,
		Message:   fmt.Sprintf("Trigger is missing: %s", strings.Join(missing, ", ")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTriggerPayloadInvalidError creates a non-retryable request shape error.
func NewTriggerPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTriggerPayloadInvalid,
		Message:   "Trigger request failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrganizationNotFoundError creates a non-retryable lookup error.
func NewOrganizationNotFoundError(organizationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrganizationNotFound,
		Message:   fmt.Sprintf("Organization %s not found", organizationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContentGenerationError wraps a render failure into the single
// user-facing compilation error. Partial output is never returned.
func NewContentGenerationError(cause error) *StandardError {
	message := "Message content could not be generated"
	if cause != nil && cause.Error() != "" {
		message = cause.Error()
	}
	return &StandardError{
		Code:      ErrCodeContentGenerationFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateCompilationError creates a non-retryable template syntax error.
func NewTemplateCompilationError(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateCompilationError,
		Message:   "Template compilation failed",
		Details:   cause.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAttachmentUploadFailedError creates a retryable storage error.
func NewAttachmentUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAttachmentUploadFailed,
		Message:   "Attachment upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnqueueFailedError creates a retryable queue error.
func NewEnqueueFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnqueueFailed,
		Message:   "Failed to enqueue trigger job",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable repository error.
func NewQueryExecutionFailedError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Repository query execution error",
		Details:   fmt.Sprintf("entity: %s, error: %s", entity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
