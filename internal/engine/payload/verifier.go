// Package payload fills template-variable defaults into trigger payloads.
// Detection of hard "missing required" violations is layered separately; this
// package only produces a default-filled map suitable for a deep merge where
// caller-supplied values always win.
package payload

import "notification-engine/internal/models"

// Verify returns a mapping of defaults for every declared variable that the
// payload leaves unset (or set to an empty value for its type). The input
// payload is never mutated. Required variables carrying neither a value nor a
// default contribute nothing.
func Verify(variables []models.Variable, payload map[string]interface{}) map[string]interface{} {
	defaults := map[string]interface{}{}

	for _, variable := range variables {
		if variable.Name == "" {
			continue
		}

		value, present := payload[variable.Name]
		if present && !isEmptyForType(value, variable.Type) {
			continue
		}

		if variable.Default != nil {
			defaults[variable.Name] = variable.Default
			continue
		}

		if variable.Required {
			// Left for the reserved-context layer; defaulting would mask it.
			continue
		}

		defaults[variable.Name] = emptyValue(variable.Type)
	}

	return defaults
}

// Merge deep-merges override onto base, override winning on every conflict.
// Nested maps merge recursively; everything else replaces. Neither input is
// mutated and the merge is idempotent.
func Merge(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))

	for key, value := range base {
		merged[key] = value
	}

	for key, value := range override {
		existing, ok := merged[key]
		if !ok {
			merged[key] = value
			continue
		}

		existingMap, existingIsMap := existing.(map[string]interface{})
		valueMap, valueIsMap := value.(map[string]interface{})
		if existingIsMap && valueIsMap {
			merged[key] = Merge(existingMap, valueMap)
			continue
		}

		merged[key] = value
	}

	return merged
}

func isEmptyForType(value interface{}, varType string) bool {
	if value == nil {
		return true
	}

	switch varType {
	case "string":
		s, ok := value.(string)
		return ok && s == ""
	case "array":
		arr, ok := value.([]interface{})
		return ok && len(arr) == 0
	case "object":
		obj, ok := value.(map[string]interface{})
		return ok && len(obj) == 0
	}

	return false
}

func emptyValue(varType string) interface{} {
	switch varType {
	case "string":
		return ""
	case "number":
		return float64(0)
	case "boolean":
		return false
	case "array":
		return []interface{}{}
	case "object":
		return map[string]interface{}{}
	}
	return ""
}
