// Package generation defines the vendor-neutral structured-generation request
// and the decoding of generated JSON into validated Go values.
package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOutput is returned when generated output does not match the expected shape.
var ErrInvalidOutput = errors.New("generated output does not conform to schema")

// Media is binary input (an image) attached to a prompt.
type Media struct {
	MIMEType string
	Data     []byte
}

// Request is one structured-generation call.
type Request struct {
	// Name identifies the prompt in logs and in backends that require a schema name.
	Name   string
	Prompt string
	Media  []Media
	Schema *Schema
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses raw model output, checks it against schema when one is given,
// then decodes it into v and validates the struct's `validate` tags.
// Code fences around the JSON are tolerated; anything after the JSON value is not.
func Decode(raw []byte, schema *Schema, v any) error {
	body := stripFences(raw)
	if len(body) == 0 {
		return fmt.Errorf("%w: empty output", ErrInvalidOutput)
	}

	var doc any
	if err := decodeSingle(body, &doc, false); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := conform(doc, schema, "$"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if err := decodeSingle(body, v, schema != nil); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}

func decodeSingle(body []byte, v any, strict bool) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected content after JSON value")
	}
	return nil
}

// conform walks a generic JSON document and reports the first place it departs from s.
// Objects are closed and every required property must be present and non-null.
func conform(doc any, s *Schema, path string) error {
	if s == nil {
		return nil
	}
	if doc == nil {
		return fmt.Errorf("%s: null where %s expected", path, s.Type)
	}

	switch s.Type {
	case TypeObject:
		obj, ok := doc.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object", path)
		}
		for _, name := range s.Required {
			if value, present := obj[name]; !present || value == nil {
				return fmt.Errorf("%s.%s: required property missing", path, name)
			}
		}
		for _, name := range sortedKeys(obj) {
			prop, known := s.Properties[name]
			if !known {
				return fmt.Errorf("%s.%s: unexpected property", path, name)
			}
			if obj[name] == nil {
				continue
			}
			if err := conform(obj[name], prop, path+"."+name); err != nil {
				return err
			}
		}
	case TypeArray:
		items, ok := doc.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array", path)
		}
		for i, item := range items {
			if err := conform(item, s.Items, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case TypeString:
		str, ok := doc.(string)
		if !ok {
			return fmt.Errorf("%s: expected string", path)
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return fmt.Errorf("%s: %q not in enum", path, str)
		}
	case TypeNumber:
		if _, ok := doc.(json.Number); !ok {
			return fmt.Errorf("%s: expected number", path)
		}
	case TypeInteger:
		n, ok := doc.(json.Number)
		if !ok {
			return fmt.Errorf("%s: expected integer", path)
		}
		if _, err := n.Int64(); err != nil {
			return fmt.Errorf("%s: expected integer", path)
		}
	case TypeBoolean:
		if _, ok := doc.(bool); !ok {
			return fmt.Errorf("%s: expected boolean", path)
		}
	}
	return nil
}

func stripFences(raw []byte) []byte {
	text := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(text, "```") {
		return []byte(text)
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return []byte(strings.TrimSpace(text))
}
