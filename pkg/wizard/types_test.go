package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStructure() *Structure {
	return &Structure{
		WizardID: "aid-estimator",
		Name:     "Aid Estimator",
		URL:      "https://example.gov/estimator/",
		Start:    &Action{Selector: "Start Now", Kind: SelectorText},
		Pages: []Page{
			{
				Number: 1,
				Title:  "About you",
				Fields: []Field{
					{FieldID: "name", Selector: "#input-name", Interaction: InteractFill, Required: true},
				},
				Continue: Action{Selector: "btn-continue", Kind: SelectorID},
			},
			{
				Number: 2,
				Fields: []Field{
					{FieldID: "country", Selector: "#select-country", Interaction: InteractSelect},
				},
				Continue: Action{Selector: "button.submit", Kind: SelectorCSS},
			},
		},
	}
}

func TestActionLocator_NormalizesIDSelectors(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		expected string
	}{
		{
			name:     "bare id gets prefix",
			action:   Action{Selector: "btn-continue", Kind: SelectorID},
			expected: "#btn-continue",
		},
		{
			name:     "prefixed id unchanged",
			action:   Action{Selector: "#btn-continue", Kind: SelectorID},
			expected: "#btn-continue",
		},
		{
			name:     "css passes through",
			action:   Action{Selector: "button.submit", Kind: SelectorCSS},
			expected: "button.submit",
		},
		{
			name:     "text passes through",
			action:   Action{Selector: "Continue", Kind: SelectorText},
			expected: "Continue",
		},
		{
			name:     "empty kind treated as css",
			action:   Action{Selector: "div > button"},
			expected: "div > button",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.action.Locator())
		})
	}
}

func TestFieldLocator_NormalizesIDSelectors(t *testing.T) {
	f := Field{FieldID: "name", Selector: "input-name", Kind: SelectorID, Interaction: InteractFill}
	assert.Equal(t, "#input-name", f.Locator())
}

func TestStructureValidate_Valid(t *testing.T) {
	require.NoError(t, validStructure().Validate())
}

func TestStructureValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Structure)
		wantErr string
	}{
		{
			name:    "bad wizard id",
			mutate:  func(s *Structure) { s.WizardID = "Aid Estimator" },
			wantErr: "wizard_id",
		},
		{
			name:    "empty url",
			mutate:  func(s *Structure) { s.URL = " " },
			wantErr: "url is empty",
		},
		{
			name:    "no pages",
			mutate:  func(s *Structure) { s.Pages = nil },
			wantErr: "no pages",
		},
		{
			name:    "non-contiguous page numbers",
			mutate:  func(s *Structure) { s.Pages[1].Number = 5 },
			wantErr: "numbered contiguously",
		},
		{
			name:    "unknown interaction",
			mutate:  func(s *Structure) { s.Pages[0].Fields[0].Interaction = "hover" },
			wantErr: "unknown interaction",
		},
		{
			name:    "unknown selector kind",
			mutate:  func(s *Structure) { s.Pages[0].Fields[0].Kind = "xpath" },
			wantErr: "unknown selector_type",
		},
		{
			name:    "empty continue selector",
			mutate:  func(s *Structure) { s.Pages[0].Continue.Selector = "" },
			wantErr: "continue_button",
		},
		{
			name: "duplicate field id",
			mutate: func(s *Structure) {
				s.Pages[1].Fields[0].FieldID = "name"
			},
			wantErr: "duplicate field_id",
		},
		{
			name: "group without sub fields",
			mutate: func(s *Structure) {
				s.Pages[0].Fields[0].Interaction = InteractGroup
				s.Pages[0].Fields[0].AddSelector = "#add"
			},
			wantErr: "at least one sub_field",
		},
		{
			name: "group without add selector",
			mutate: func(s *Structure) {
				s.Pages[0].Fields[0].Interaction = InteractGroup
				s.Pages[0].Fields[0].SubFields = []SubField{
					{FieldID: "amount", Selector: "#amount", Interaction: InteractFill},
				}
			},
			wantErr: "add_selector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStructure()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecode_ValidDocument(t *testing.T) {
	doc := `{
		"wizard_id": "aid-estimator",
		"wizard_name": "Aid Estimator",
		"url": "https://example.gov/estimator/",
		"start_action": {"selector": "Start Now", "selector_type": "text"},
		"pages": [
			{
				"page_number": 1,
				"fields": [
					{"field_id": "name", "selector": "input-name", "selector_type": "id", "interaction": "fill", "required": true}
				],
				"continue_button": {"selector": "Continue", "selector_type": "text"}
			}
		]
	}`

	s, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "aid-estimator", s.WizardID)
	require.Len(t, s.Pages, 1)
	assert.Equal(t, "#input-name", s.Pages[0].Fields[0].Locator())
	assert.True(t, s.Pages[0].Fields[0].Required)
}

func TestDecode_RejectsInvalidDocument(t *testing.T) {
	doc := `{
		"wizard_id": "aid-estimator",
		"url": "https://example.gov/",
		"pages": [
			{
				"page_number": 1,
				"fields": [
					{"field_id": "name", "selector": "#n", "interaction": "hover"}
				],
				"continue_button": {"selector": "#next"}
			}
		]
	}`

	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown interaction")
}

func TestFieldCount(t *testing.T) {
	assert.Equal(t, 2, validStructure().FieldCount())
}
