// Package trigger implements the trigger-processing state machine: workflow
// resolution, reserved-context validation, tenant/override resolution,
// attachment side effects and job enqueueing.
package trigger

import (
	"fmt"

	"notification-engine/internal/common/errors"
	"notification-engine/internal/models"
)

// reservedVariableFields maps every known trigger context type to the fields
// a trigger must carry for it. The mapping is a closed table resolved by
// exhaustive matching, never by dynamic property lookup.
var reservedVariableFields = map[models.TriggerContextType][]string{
	models.TriggerContextTenant: {"identifier"},
	models.TriggerContextActor:  {"subscriberId"},
}

// ValidateTriggerContext checks that every reserved context object declared
// by the workflow is present and complete on the event. It walks every type
// and every field before failing, aggregating all violations into a single
// error. A wholly-absent object contributes one entry and skips field checks.
// The event is never modified.
func ValidateTriggerContext(event *models.TriggerEvent, reservedTypes []models.TriggerContextType) error {
	var missing []string

	for _, contextType := range reservedTypes {
		object, declared := contextObject(event, contextType)
		if !declared || len(object) == 0 {
			missing = append(missing, fmt.Sprintf("%s object", contextType))
			continue
		}

		for _, fieldName := range reservedVariableFields[contextType] {
			if !presentValue(object[fieldName]) {
				missing = append(missing, fmt.Sprintf("%s property of %s", fieldName, contextType))
			}
		}
	}

	if len(missing) > 0 {
		return errors.NewTriggerContextInvalidError(missing)
	}
	return nil
}

func contextObject(event *models.TriggerEvent, contextType models.TriggerContextType) (map[string]interface{}, bool) {
	switch contextType {
	case models.TriggerContextTenant:
		if event.Tenant == nil {
			return nil, false
		}
		return event.Tenant.AsMap(), true
	case models.TriggerContextActor:
		if event.Actor == nil {
			return nil, false
		}
		return event.Actor, true
	}
	return nil, false
}

func presentValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return true
}
