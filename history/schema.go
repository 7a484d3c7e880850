package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/fxpyramid/chatapp/conversation"
)

// ErrInvalidHistory marks a history file whose contents do not match the
// saved-conversation shape.
var ErrInvalidHistory = errors.New("invalid history file")

// historySchema is the decoded JSON Schema for a saved conversation, built
// once from the message type. The required fields and the role enum come
// from the struct tags on conversation.Message.
var historySchema = buildHistorySchema()

func buildHistorySchema() map[string]any {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect([]conversation.Message{})

	data, err := json.Marshal(schema)
	if err != nil {
		// The schema is derived from a fixed type; failing to build it
		// means every load would be rejected for the wrong reason.
		panic(fmt.Sprintf("failed to encode history schema: %v", err))
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		panic(fmt.Sprintf("failed to decode history schema: %v", err))
	}
	return decoded
}

// ValidateHistory checks that data holds a JSON array of messages matching
// the saved-conversation schema.
func ValidateHistory(data []byte) error {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}
	if err := validateNode(decoded, historySchema); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHistory, err)
	}
	return nil
}

// validateNode checks one decoded JSON value against its schema node.
func validateNode(data any, schema map[string]any) error {
	schemaType, ok := schema["type"].(string)
	if !ok {
		return fmt.Errorf("schema missing 'type'")
	}

	switch schemaType {
	case "array":
		return validateArray(data, schema)
	case "object":
		return validateObject(data, schema)
	case "string":
		return validateString(data, schema)
	default:
		return fmt.Errorf("unsupported schema type %q", schemaType)
	}
}

func validateArray(data any, schema map[string]any) error {
	items, ok := data.([]any)
	if !ok {
		return fmt.Errorf("expected array, got %T", data)
	}
	itemSchema, ok := schema["items"].(map[string]any)
	if !ok {
		return fmt.Errorf("schema missing 'items'")
	}
	for i, item := range items {
		if err := validateNode(item, itemSchema); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func validateObject(data any, schema map[string]any) error {
	obj, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", data)
	}

	required, _ := schema["required"].([]any)
	for _, field := range required {
		name, ok := field.(string)
		if !ok {
			continue
		}
		if _, present := obj[name]; !present {
			return fmt.Errorf("missing required field %q", name)
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	additional, declared := schema["additionalProperties"].(bool)
	for name, value := range obj {
		propSchema, known := properties[name].(map[string]any)
		if !known {
			if declared && !additional {
				return fmt.Errorf("unknown field %q", name)
			}
			continue
		}
		if err := validateNode(value, propSchema); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

func validateString(data any, schema map[string]any) error {
	str, ok := data.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", data)
	}
	enum, ok := schema["enum"].([]any)
	if !ok {
		return nil
	}
	for _, allowed := range enum {
		if allowed == str {
			return nil
		}
	}
	return fmt.Errorf("value %q is not allowed", str)
}
