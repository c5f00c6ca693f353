package runner

import (
	"github.com/entrhq/wizardrunner/pkg/schema"
	"github.com/entrhq/wizardrunner/pkg/screenshot"
)

// ErrorKind classifies a failed execution for the caller.
type ErrorKind string

const (
	// ErrorKindValidation means the user data failed the schema
	// contract. The browser was never touched.
	ErrorKindValidation ErrorKind = "schema_validation"

	// ErrorKindNavigation means the target did not load within the
	// full retry budget.
	ErrorKindNavigation ErrorKind = "navigation"

	// ErrorKindFieldFill means a declared field could not be filled by
	// any available strategy.
	ErrorKindFieldFill ErrorKind = "field_fill"

	// ErrorKindInternal covers everything else caught by the top-level
	// handler.
	ErrorKindInternal ErrorKind = "internal"
)

// Results is the content extracted from the terminal page.
type Results struct {
	PageURL   string   `json:"page_url"`
	PageTitle string   `json:"page_title,omitempty"`
	Headings  []string `json:"headings,omitempty"`
	Text      string   `json:"text"`
}

// ExecutionResult is the uniform payload for every execution attempt,
// success or failure. Screenshots have already had the retention
// policy applied; ScreenshotsTotal preserves the full captured count.
type ExecutionResult struct {
	ExecutionID      string            `json:"execution_id"`
	Success          bool              `json:"success"`
	WizardID         string            `json:"wizard_id"`
	State            State             `json:"state"`
	PagesCompleted   int               `json:"pages_completed"`
	Results          *Results          `json:"results,omitempty"`
	Validation       *schema.Result    `json:"validation_errors,omitempty"`
	Screenshots      []screenshot.Shot `json:"screenshots"`
	ScreenshotsTotal int               `json:"screenshots_total"`
	ExecutionTimeMS  int64             `json:"execution_time_ms"`
	ErrorKind        ErrorKind         `json:"error_kind,omitempty"`
	Error            string            `json:"error,omitempty"`
}
