package generation

import "sort"

// Type is a JSON schema primitive type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is the vendor-neutral output schema handed to a Generator.
// Backends translate it into their own structured-output format.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Enum        []string
}

// Object builds an object schema where every listed property is required.
func Object(description string, props map[string]*Schema) *Schema {
	return &Schema{
		Type:        TypeObject,
		Description: description,
		Properties:  props,
		Required:    sortedKeys(props),
	}
}

// Array builds an array schema of items.
func Array(description string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: items}
}

// String builds a string schema.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Number builds a number schema.
func Number(description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description}
}

// PropertyNames returns property names in a stable order.
func (s *Schema) PropertyNames() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Properties)
}

// JSONSchema renders the schema as a JSON Schema document. Objects are closed
// (additionalProperties=false) so strict structured-output modes accept them.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}

	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = append([]string(nil), s.Enum...)
	}

	switch s.Type {
	case TypeObject:
		props := make(map[string]any, len(s.Properties))
		for _, name := range s.PropertyNames() {
			props[name] = s.Properties[name].JSONSchema()
		}
		out["properties"] = props
		required := s.Required
		if required == nil {
			required = []string{}
		}
		out["required"] = required
		out["additionalProperties"] = false
	case TypeArray:
		if s.Items != nil {
			out["items"] = s.Items.JSONSchema()
		}
	}

	return out
}

func sortedKeys[V any](props map[string]V) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
