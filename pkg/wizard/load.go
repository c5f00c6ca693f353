package wizard

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var wizardIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Decode reads a wizard structure document from r and validates it.
func Decode(r io.Reader) (*Structure, error) {
	var s Structure
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode wizard structure: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// FromFile loads and validates a wizard structure from a JSON file.
func FromFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wizard file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Validate checks the structure's internal consistency: id shape,
// non-empty selectors, contiguous 1-indexed pages, closed interaction
// and selector kinds, unique field ids, and group field requirements.
func (s *Structure) Validate() error {
	if !wizardIDPattern.MatchString(s.WizardID) {
		return fmt.Errorf("wizard_id %q must be lowercase letters, digits, and hyphens", s.WizardID)
	}
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("wizard %s: url is empty", s.WizardID)
	}
	if len(s.Pages) == 0 {
		return fmt.Errorf("wizard %s: no pages declared", s.WizardID)
	}
	if s.Start != nil {
		if err := validateAction("start_action", *s.Start); err != nil {
			return fmt.Errorf("wizard %s: %w", s.WizardID, err)
		}
	}

	seen := make(map[string]bool)
	for i, page := range s.Pages {
		if page.Number != i+1 {
			return fmt.Errorf("wizard %s: pages must be numbered contiguously from 1, got %d at position %d", s.WizardID, page.Number, i)
		}
		if err := validateAction(fmt.Sprintf("page %d continue_button", page.Number), page.Continue); err != nil {
			return fmt.Errorf("wizard %s: %w", s.WizardID, err)
		}
		for _, field := range page.Fields {
			if err := validateField(page.Number, field); err != nil {
				return fmt.Errorf("wizard %s: %w", s.WizardID, err)
			}
			if seen[field.FieldID] {
				return fmt.Errorf("wizard %s: duplicate field_id %q", s.WizardID, field.FieldID)
			}
			seen[field.FieldID] = true
		}
	}
	return nil
}

func validateField(pageNumber int, f Field) error {
	if strings.TrimSpace(f.FieldID) == "" {
		return fmt.Errorf("page %d: field with empty field_id", pageNumber)
	}
	if strings.TrimSpace(f.Selector) == "" {
		return fmt.Errorf("page %d field %s: selector is empty", pageNumber, f.FieldID)
	}
	if !f.Kind.valid() {
		return fmt.Errorf("page %d field %s: unknown selector_type %q", pageNumber, f.FieldID, f.Kind)
	}
	if !f.Interaction.valid() {
		return fmt.Errorf("page %d field %s: unknown interaction %q", pageNumber, f.FieldID, f.Interaction)
	}

	if f.Interaction == InteractGroup {
		if strings.TrimSpace(f.AddSelector) == "" {
			return fmt.Errorf("page %d field %s: group field is missing add_selector", pageNumber, f.FieldID)
		}
		if len(f.SubFields) == 0 {
			return fmt.Errorf("page %d field %s: group field must declare at least one sub_field", pageNumber, f.FieldID)
		}
		for _, sub := range f.SubFields {
			if strings.TrimSpace(sub.FieldID) == "" || strings.TrimSpace(sub.Selector) == "" {
				return fmt.Errorf("page %d field %s: sub_field with empty field_id or selector", pageNumber, f.FieldID)
			}
			if !sub.Interaction.valid() {
				return fmt.Errorf("page %d field %s: sub_field %s has unknown interaction %q", pageNumber, f.FieldID, sub.FieldID, sub.Interaction)
			}
		}
		if f.MaxItems > 0 && f.MinItems > f.MaxItems {
			return fmt.Errorf("page %d field %s: min_items %d exceeds max_items %d", pageNumber, f.FieldID, f.MinItems, f.MaxItems)
		}
	}
	return nil
}
