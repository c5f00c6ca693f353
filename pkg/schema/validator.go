package schema

import (
	"fmt"
	"regexp"
)

// Missing describes one required property the user data did not supply.
// The description and constraints are echoed back so the caller can
// explain exactly what to collect.
type Missing struct {
	FieldID     string   `json:"field_id"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Invalid describes one supplied property whose value fails its
// declared constraint, including the offending value and the
// constraint it violated.
type Invalid struct {
	FieldID  string `json:"field_id"`
	Value    any    `json:"provided_value"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// Result is the outcome of validating user data against a schema.
// Valid is true only when both violation lists are empty.
type Result struct {
	Valid   bool      `json:"valid"`
	Missing []Missing `json:"missing_fields"`
	Invalid []Invalid `json:"invalid_fields"`
}

// Validate checks user data against the schema and collects every
// violation rather than failing on the first one. It is pure: no side
// effects, never panics. Callers branch on Result.Valid.
func Validate(s *Schema, data map[string]any) Result {
	res := Result{
		Missing: []Missing{},
		Invalid: []Invalid{},
	}
	if s == nil {
		res.Valid = true
		return res
	}

	for _, fieldID := range s.Required {
		if _, ok := data[fieldID]; ok {
			continue
		}
		prop := s.Properties[fieldID]
		res.Missing = append(res.Missing, Missing{
			FieldID:     fieldID,
			Description: prop.Description,
			Type:        prop.Type,
			Pattern:     prop.Pattern,
			Enum:        prop.Enum,
		})
	}

	for fieldID, value := range data {
		prop, declared := s.Properties[fieldID]
		if !declared {
			// Undeclared fields are ignored: the wizard simply never
			// references them.
			continue
		}
		res.Invalid = append(res.Invalid, checkValue(fieldID, prop, value)...)
	}

	res.Valid = len(res.Missing) == 0 && len(res.Invalid) == 0
	return res
}

// checkValue validates one value against one property and returns all
// violations found, using fieldID as the reported path.
func checkValue(fieldID string, prop Property, value any) []Invalid {
	switch prop.Type {
	case "string":
		return checkString(fieldID, prop, value)
	case "number":
		return checkNumber(fieldID, prop, value, false)
	case "integer":
		return checkNumber(fieldID, prop, value, true)
	case "boolean":
		if _, ok := value.(bool); !ok {
			return []Invalid{{
				FieldID:  fieldID,
				Value:    value,
				Expected: "boolean",
				Reason:   fmt.Sprintf("value must be a boolean, got %T", value),
			}}
		}
		return nil
	case "array":
		return checkArray(fieldID, prop, value)
	case "":
		// Untyped property: nothing to check.
		return nil
	default:
		return []Invalid{{
			FieldID:  fieldID,
			Value:    value,
			Expected: prop.Type,
			Reason:   fmt.Sprintf("schema declares unsupported type %q", prop.Type),
		}}
	}
}

func checkString(fieldID string, prop Property, value any) []Invalid {
	str, ok := value.(string)
	if !ok {
		return []Invalid{{
			FieldID:  fieldID,
			Value:    value,
			Expected: "string",
			Reason:   fmt.Sprintf("value must be a string, got %T", value),
		}}
	}

	var out []Invalid
	if prop.Pattern != "" {
		re, err := regexp.Compile(prop.Pattern)
		if err != nil {
			out = append(out, Invalid{
				FieldID:  fieldID,
				Value:    str,
				Expected: prop.Pattern,
				Reason:   fmt.Sprintf("schema pattern does not compile: %v", err),
			})
		} else if !re.MatchString(str) {
			out = append(out, Invalid{
				FieldID:  fieldID,
				Value:    str,
				Expected: fmt.Sprintf("pattern %s", prop.Pattern),
				Reason:   fmt.Sprintf("value must match pattern %s. %s", prop.Pattern, prop.Description),
			})
		}
	}
	if len(prop.Enum) > 0 && !containsString(prop.Enum, str) {
		out = append(out, Invalid{
			FieldID:  fieldID,
			Value:    str,
			Expected: fmt.Sprintf("one of %v", prop.Enum),
			Reason:   fmt.Sprintf("value must be one of %v", prop.Enum),
		})
	}
	return out
}

func checkNumber(fieldID string, prop Property, value any, integral bool) []Invalid {
	num, ok := asFloat(value)
	if !ok {
		expected := "number"
		if integral {
			expected = "integer"
		}
		return []Invalid{{
			FieldID:  fieldID,
			Value:    value,
			Expected: expected,
			Reason:   fmt.Sprintf("value must be a %s, got %T", expected, value),
		}}
	}

	var out []Invalid
	if integral && num != float64(int64(num)) {
		out = append(out, Invalid{
			FieldID:  fieldID,
			Value:    value,
			Expected: "integer",
			Reason:   "value must be a whole number",
		})
	}
	if prop.Minimum != nil && num < *prop.Minimum {
		out = append(out, Invalid{
			FieldID:  fieldID,
			Value:    value,
			Expected: fmt.Sprintf(">= %v", *prop.Minimum),
			Reason:   fmt.Sprintf("value must be >= %v", *prop.Minimum),
		})
	}
	if prop.Maximum != nil && num > *prop.Maximum {
		out = append(out, Invalid{
			FieldID:  fieldID,
			Value:    value,
			Expected: fmt.Sprintf("<= %v", *prop.Maximum),
			Reason:   fmt.Sprintf("value must be <= %v", *prop.Maximum),
		})
	}
	return out
}

// checkArray validates a repeatable-group value: a list of records,
// each checked against the property's item schema.
func checkArray(fieldID string, prop Property, value any) []Invalid {
	items, ok := asSlice(value)
	if !ok {
		return []Invalid{{
			FieldID:  fieldID,
			Value:    value,
			Expected: "array",
			Reason:   fmt.Sprintf("value must be a list, got %T", value),
		}}
	}

	var out []Invalid
	if prop.MinItems != nil && len(items) < *prop.MinItems {
		out = append(out, Invalid{
			FieldID:  fieldID,
			Value:    len(items),
			Expected: fmt.Sprintf(">= %d items", *prop.MinItems),
			Reason:   fmt.Sprintf("list must contain at least %d item(s)", *prop.MinItems),
		})
	}
	if prop.MaxItems != nil && len(items) > *prop.MaxItems {
		out = append(out, Invalid{
			FieldID:  fieldID,
			Value:    len(items),
			Expected: fmt.Sprintf("<= %d items", *prop.MaxItems),
			Reason:   fmt.Sprintf("list must contain at most %d item(s)", *prop.MaxItems),
		})
	}
	if prop.Items == nil {
		return out
	}

	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", fieldID, i)
		if prop.Items.Type == "object" || len(prop.Items.Properties) > 0 {
			record, ok := item.(map[string]any)
			if !ok {
				out = append(out, Invalid{
					FieldID:  path,
					Value:    item,
					Expected: "object",
					Reason:   fmt.Sprintf("list item must be an object, got %T", item),
				})
				continue
			}
			for _, sub := range prop.Items.Required {
				if _, ok := record[sub]; !ok {
					out = append(out, Invalid{
						FieldID:  path + "." + sub,
						Value:    nil,
						Expected: "required",
						Reason:   fmt.Sprintf("item is missing required property %q", sub),
					})
				}
			}
			for sub, subProp := range prop.Items.Properties {
				if subValue, ok := record[sub]; ok {
					out = append(out, checkValue(path+"."+sub, subProp, subValue)...)
				}
			}
		} else {
			out = append(out, checkValue(path, *prop.Items, item)...)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
