// internal/validation/trigger.go
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"notification-engine/internal/common/errors"
)

// triggerRequestSchema shapes the inbound trigger body before it is decoded
// into the event model. Tenant accepts either an identifier string or an
// object carrying one.
var triggerRequestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name", "to"},
	"properties": map[string]interface{}{
		"name": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"to": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"subscriberId"},
				"properties": map[string]interface{}{
					"subscriberId": map[string]interface{}{"type": "string", "minLength": 1},
					"email":        map[string]interface{}{"type": "string"},
					"phone":        map[string]interface{}{"type": "string"},
				},
			},
		},
		"payload":   map[string]interface{}{"type": "object"},
		"overrides": map[string]interface{}{"type": "object"},
		"actor":     map[string]interface{}{"type": "object"},
		"tenant": map[string]interface{}{
			"anyOf": []interface{}{
				map[string]interface{}{"type": "string", "minLength": 1},
				map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"identifier"},
					"properties": map[string]interface{}{
						"identifier": map[string]interface{}{"type": "string", "minLength": 1},
						"name":       map[string]interface{}{"type": "string"},
						"data":       map[string]interface{}{"type": "object"},
					},
				},
			},
		},
		"transactionId": map[string]interface{}{"type": "string"},
	},
}

var compiledTriggerSchema = gojsonschema.NewGoLoader(triggerRequestSchema)

// ValidateTriggerRequest checks the raw request body against the trigger
// schema. The returned error carries every violation, joined.
func ValidateTriggerRequest(body []byte) error {
	result, err := gojsonschema.Validate(compiledTriggerSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.NewTriggerPayloadInvalidError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		violations[i] = desc.String()
	}
	return errors.NewTriggerPayloadInvalidError(strings.Join(violations, "; "))
}
