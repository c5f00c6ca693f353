// Package wizard defines the declarative structure of a multi-page web
// wizard: pages, fields, selectors, and interaction kinds as recorded
// by the discovery collaborator. Structures are immutable per-call
// inputs to the execution engine.
package wizard

import (
	"fmt"
	"strings"
)

// SelectorKind identifies how a selector locates an element.
type SelectorKind string

const (
	// SelectorCSS is a raw CSS selector, the default.
	SelectorCSS SelectorKind = "css"

	// SelectorID is an element id; Locator normalizes it to the #-prefixed
	// form whether or not the source data included the prefix.
	SelectorID SelectorKind = "id"

	// SelectorText matches an element by its exact visible text.
	SelectorText SelectorKind = "text"
)

// valid reports whether the kind is one of the closed set. An empty
// kind is accepted and treated as css.
func (k SelectorKind) valid() bool {
	switch k {
	case SelectorCSS, SelectorID, SelectorText, "":
		return true
	}
	return false
}

// Interaction identifies how the executor drives a field.
type Interaction string

const (
	// InteractFill sets a text input directly.
	InteractFill Interaction = "fill"

	// InteractFillEnter fills then presses Enter. Typeahead inputs do
	// not register a selection until the commit keystroke is sent.
	InteractFillEnter Interaction = "fill_enter"

	// InteractClick performs an ordinary visibility-gated click.
	InteractClick Interaction = "click"

	// InteractJavaScriptClick dispatches a click through the DOM,
	// bypassing the visibility check. Needed for styled radio inputs
	// hidden beneath their labels.
	InteractJavaScriptClick Interaction = "javascript_click"

	// InteractSelect chooses an option in a single-value dropdown.
	InteractSelect Interaction = "select"

	// InteractGroup drives a repeatable add/fill/save cycle, one pass
	// per record in the supplied list.
	InteractGroup Interaction = "group"
)

func (i Interaction) valid() bool {
	switch i {
	case InteractFill, InteractFillEnter, InteractClick,
		InteractJavaScriptClick, InteractSelect, InteractGroup:
		return true
	}
	return false
}

// Action is a clickable control declared by the discovery collaborator:
// the wizard's start button or a page's continue button.
type Action struct {
	Selector string       `json:"selector"`
	Kind     SelectorKind `json:"selector_type,omitempty"`
}

// Locator returns the selector in the form the browser layer expects.
// id-kind selectors always come back #-prefixed; other kinds pass
// through unchanged.
func (a Action) Locator() string {
	return normalizeSelector(a.Selector, a.Kind)
}

// SubField is one input inside a repeatable group's add form.
type SubField struct {
	FieldID     string      `json:"field_id"`
	Selector    string      `json:"selector"`
	Interaction Interaction `json:"interaction"`
}

// Field is one declared input on a wizard page. The FieldID maps to a
// property in the wizard's data schema; the selector and interaction
// kind bind it to the live page.
type Field struct {
	FieldID     string       `json:"field_id"`
	Selector    string       `json:"selector"`
	Kind        SelectorKind `json:"selector_type,omitempty"`
	Interaction Interaction  `json:"interaction"`
	Required    bool         `json:"required,omitempty"`

	// Group fields only: the add-control that reveals the item form,
	// the ordered sub-field descriptors, and instance count bounds.
	// MaxItems of zero means unbounded.
	AddSelector string     `json:"add_selector,omitempty"`
	SubFields   []SubField `json:"sub_fields,omitempty"`
	MinItems    int        `json:"min_items,omitempty"`
	MaxItems    int        `json:"max_items,omitempty"`
}

// Locator returns the field's selector normalized for the browser layer.
func (f Field) Locator() string {
	return normalizeSelector(f.Selector, f.Kind)
}

// Page is one step of the wizard: its fields in fill order and the
// control that advances to the next page.
type Page struct {
	Number   int     `json:"page_number"`
	Title    string  `json:"title,omitempty"`
	Fields   []Field `json:"fields"`
	Continue Action  `json:"continue_button"`
}

// ResultsRule tells the engine where to read results on the terminal
// page. An empty selector means the whole page text; the discovery
// collaborator's declaration is authoritative.
type ResultsRule struct {
	Selector string       `json:"selector,omitempty"`
	Kind     SelectorKind `json:"selector_type,omitempty"`
}

// Locator returns the rule's selector normalized for the browser layer.
func (r ResultsRule) Locator() string {
	return normalizeSelector(r.Selector, r.Kind)
}

// Structure is a complete declarative wizard description.
type Structure struct {
	WizardID string       `json:"wizard_id"`
	Name     string       `json:"wizard_name"`
	URL      string       `json:"url"`
	Start    *Action      `json:"start_action,omitempty"`
	Pages    []Page       `json:"pages"`
	Results  *ResultsRule `json:"results,omitempty"`
}

// FieldCount returns the total number of declared fields across pages.
func (s *Structure) FieldCount() int {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Fields)
	}
	return n
}

func normalizeSelector(selector string, kind SelectorKind) string {
	if kind == SelectorID && !strings.HasPrefix(selector, "#") {
		return "#" + selector
	}
	return selector
}

func validateAction(context string, a Action) error {
	if strings.TrimSpace(a.Selector) == "" {
		return fmt.Errorf("%s: selector is empty", context)
	}
	if !a.Kind.valid() {
		return fmt.Errorf("%s: unknown selector_type %q", context, a.Kind)
	}
	return nil
}
