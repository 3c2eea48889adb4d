// internal/models/workflow.go
package models

// ChannelType identifies the delivery channel of a workflow step.
type ChannelType string

const (
	ChannelEmail  ChannelType = "email"
	ChannelSMS    ChannelType = "sms"
	ChannelPush   ChannelType = "push"
	ChannelChat   ChannelType = "chat"
	ChannelInApp  ChannelType = "in_app"
	ChannelDigest ChannelType = "digest"
	ChannelDelay  ChannelType = "delay"
	ChannelCustom ChannelType = "custom"
)

// ContentType distinguishes structured block content from raw HTML bodies.
type ContentType string

const (
	ContentTypeEditor     ContentType = "editor"
	ContentTypeCustomHTML ContentType = "customHtml"
)

// Variable declares a named template variable with an optional default.
type Variable struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"` // "string", "number", "boolean", "array", "object"
	Required bool        `json:"required"`
	Default  interface{} `json:"defaultValue,omitempty"`
}

// StepTemplate carries the renderable content of a single step.
type StepTemplate struct {
	Content     string       `json:"content,omitempty"`
	Blocks      []EmailBlock `json:"blocks,omitempty"`
	ContentType ContentType  `json:"contentType,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Preheader   string       `json:"preheader,omitempty"`
	LayoutID    string       `json:"layoutId,omitempty"`
	Variables   []Variable   `json:"variables,omitempty"`
}

// Step is one ordered entry of a workflow.
type Step struct {
	ID       string       `json:"id"`
	Channel  ChannelType  `json:"channel"`
	Active   bool         `json:"active"`
	Template StepTemplate `json:"template"`
}

// ReservedVariableContract binds a trigger context type to the fields it must carry.
type ReservedVariableContract struct {
	Type TriggerContextType `json:"type"`
}

// Trigger is the declared entry point of a workflow.
type Trigger struct {
	Identifier        string                     `json:"identifier"`
	ReservedVariables []ReservedVariableContract `json:"reservedVariables,omitempty"`
}

// Workflow is a named, ordered sequence of notification steps.
type Workflow struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	EnvironmentID  string    `json:"environmentId"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
	Steps          []Step    `json:"steps"`
	Triggers       []Trigger `json:"triggers"`
}

// HasActiveSteps reports whether any step of the workflow is active.
func (w *Workflow) HasActiveSteps() bool {
	for _, step := range w.Steps {
		if step.Active {
			return true
		}
	}
	return false
}

// ReservedVariableTypes returns the context types declared by the first trigger.
func (w *Workflow) ReservedVariableTypes() []TriggerContextType {
	if len(w.Triggers) == 0 {
		return nil
	}
	reserved := w.Triggers[0].ReservedVariables
	types := make([]TriggerContextType, 0, len(reserved))
	for _, contract := range reserved {
		types = append(types, contract.Type)
	}
	return types
}

// DeclaredVariables collects the template variables of every step.
func (w *Workflow) DeclaredVariables() []Variable {
	var variables []Variable
	for _, step := range w.Steps {
		variables = append(variables, step.Template.Variables...)
	}
	return variables
}

// EmailBlock is one entry of a structured ("editor" mode) email body.
type EmailBlock struct {
	Type    string                 `json:"type,omitempty"`
	Content string                 `json:"content"`
	URL     string                 `json:"url,omitempty"`
	Styles  map[string]interface{} `json:"styles,omitempty"`
}
