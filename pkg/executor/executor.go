// Package executor performs single declared interactions against the
// live page: fills, clicks, dropdown selection with fallback matching,
// and repeatable field groups. It never retries - a broken selector
// rarely self-heals - but it fails with enough detail (field, selector,
// attempted strategies) for screenshot-based diagnosis.
package executor

import (
	"fmt"
	"strconv"
	"time"

	"github.com/entrhq/wizardrunner/pkg/config"
	"github.com/entrhq/wizardrunner/pkg/logging"
	"github.com/entrhq/wizardrunner/pkg/wizard"
)

// groupSaveText is the exact visible text of the save control inside a
// repeatable group's item form on the target site.
const groupSaveText = "Save"

// Page is the surface the executor drives. *browser.Session implements
// it; tests substitute a scripted fake.
type Page interface {
	Fill(selector, value string) error
	Press(selector, key string) error
	Click(selector string) error
	JSClick(selector string) error
	ClickByText(text string) error
	SelectByValue(selector, value string, timeout time.Duration) error
	SelectByLabel(selector, label string, timeout time.Duration) error
	WaitSettle(d time.Duration)
}

// Executor fills declared fields on one page surface.
type Executor struct {
	page     Page
	timeouts config.TimeoutConfig
	log      *logging.Logger

	// strategyUsed records, per select field, which fallback strategy
	// eventually matched. Diagnostic only.
	strategyUsed map[string]string
}

// New creates an executor for one execution's page.
func New(page Page, timeouts config.TimeoutConfig) *Executor {
	log, _ := logging.NewLogger("executor")
	return &Executor{
		page:         page,
		timeouts:     timeouts,
		log:          log,
		strategyUsed: make(map[string]string),
	}
}

// StrategyFor returns the name of the select strategy that filled the
// given field, or empty if the field was not a select or never filled.
func (e *Executor) StrategyFor(fieldID string) string {
	return e.strategyUsed[fieldID]
}

// FillField performs the field's declared interaction with the given
// value. The interaction set is closed; an unknown kind is a
// programming error surfaced as a FieldFillError.
func (e *Executor) FillField(field wizard.Field, value any) error {
	selector := field.Locator()
	e.log.Debugf("filling %s: %s = %v", field.FieldID, selector, value)

	switch field.Interaction {
	case wizard.InteractFill:
		if err := e.page.Fill(selector, valueString(value)); err != nil {
			return &FieldFillError{FieldID: field.FieldID, Selector: selector, Err: err}
		}
		return nil

	case wizard.InteractFillEnter:
		// Typeahead inputs only register the selection after an
		// explicit commit keystroke.
		if err := e.page.Fill(selector, valueString(value)); err != nil {
			return &FieldFillError{FieldID: field.FieldID, Selector: selector, Err: err}
		}
		if err := e.page.Press(selector, "Enter"); err != nil {
			return &FieldFillError{FieldID: field.FieldID, Selector: selector, Err: err}
		}
		e.page.WaitSettle(e.timeouts.Settle.Std())
		return nil

	case wizard.InteractClick:
		if err := e.page.Click(selector); err != nil {
			return &FieldFillError{FieldID: field.FieldID, Selector: selector, Err: err}
		}
		return nil

	case wizard.InteractJavaScriptClick:
		if err := e.page.JSClick(selector); err != nil {
			return &FieldFillError{FieldID: field.FieldID, Selector: selector, Err: err}
		}
		return nil

	case wizard.InteractSelect:
		return e.selectOption(field.FieldID, selector, valueString(value))

	case wizard.InteractGroup:
		return e.fillGroup(field, value)

	default:
		return &FieldFillError{
			FieldID:  field.FieldID,
			Selector: selector,
			Err:      fmt.Errorf("unknown interaction kind %q", field.Interaction),
		}
	}
}

// selectOption chooses a dropdown option using the four-strategy
// fallback: value as given, value with normalized punctuation, visible
// label as given, label normalized. The target site renders typographic
// apostrophes in option text while user data usually carries the ASCII
// glyph, so the later strategies recover those mismatches. Each
// strategy is bounded by the short per-strategy timeout: exhausting
// all four costs a small multiple of one bound, not four full
// operation waits.
func (e *Executor) selectOption(fieldID, selector, value string) error {
	timeout := e.timeouts.SelectStrategy.Std()
	normalized := normalizePunctuation(value)

	strategies := []struct {
		name  string
		apply func() error
	}{
		{"value", func() error { return e.page.SelectByValue(selector, value, timeout) }},
		{"value-normalized", func() error { return e.page.SelectByValue(selector, normalized, timeout) }},
		{"label", func() error { return e.page.SelectByLabel(selector, value, timeout) }},
		{"label-normalized", func() error { return e.page.SelectByLabel(selector, normalized, timeout) }},
	}

	var attempted []string
	var lastErr error
	for _, strategy := range strategies {
		attempted = append(attempted, strategy.name)
		if err := strategy.apply(); err != nil {
			lastErr = err
			e.log.Debugf("select strategy %q failed for %s: %v", strategy.name, fieldID, err)
			continue
		}
		e.strategyUsed[fieldID] = strategy.name
		e.log.Debugf("select strategy %q matched for %s", strategy.name, fieldID)
		return nil
	}

	return &FieldFillError{
		FieldID:    fieldID,
		Selector:   selector,
		Strategies: attempted,
		Err:        lastErr,
	}
}

// selectSubOption is the simplified two-strategy fallback used inside
// group item forms: raw value, then normalized value.
func (e *Executor) selectSubOption(fieldID, selector, value string) error {
	timeout := e.timeouts.SelectStrategy.Std()

	if err := e.page.SelectByValue(selector, value, timeout); err == nil {
		e.strategyUsed[fieldID] = "value"
		return nil
	}
	if err := e.page.SelectByValue(selector, normalizePunctuation(value), timeout); err != nil {
		return &FieldFillError{
			FieldID:    fieldID,
			Selector:   selector,
			Strategies: []string{"value", "value-normalized"},
			Err:        err,
		}
	}
	e.strategyUsed[fieldID] = "value-normalized"
	return nil
}

// fillGroup drives a repeatable field: one add/fill/save cycle per
// record in the list. An empty list skips the field entirely - zero
// occurrences must stay distinguishable from omitted, so not even the
// add-control is touched.
func (e *Executor) fillGroup(field wizard.Field, value any) error {
	items, err := groupItems(value)
	if err != nil {
		return &FieldFillError{FieldID: field.FieldID, Selector: field.Locator(), Err: err}
	}

	if len(items) == 0 {
		e.log.Debugf("group %s: empty list, skipping entirely", field.FieldID)
		return nil
	}
	if len(items) < field.MinItems {
		return &FieldFillError{
			FieldID:  field.FieldID,
			Selector: field.Locator(),
			Err:      fmt.Errorf("group requires at least %d item(s), got %d", field.MinItems, len(items)),
		}
	}
	if field.MaxItems > 0 && len(items) > field.MaxItems {
		return &FieldFillError{
			FieldID:  field.FieldID,
			Selector: field.Locator(),
			Err:      fmt.Errorf("group allows at most %d item(s), got %d", field.MaxItems, len(items)),
		}
	}

	for i, item := range items {
		e.log.Debugf("group %s: adding item %d/%d", field.FieldID, i+1, len(items))

		if err := e.page.Click(field.AddSelector); err != nil {
			return &FieldFillError{
				FieldID:  field.FieldID,
				Selector: field.AddSelector,
				Err:      fmt.Errorf("failed to open item form for item %d: %w", i+1, err),
			}
		}
		e.page.WaitSettle(e.timeouts.Settle.Std())

		for _, sub := range field.SubFields {
			subValue, ok := item[sub.FieldID]
			if !ok {
				e.log.Warnf("group %s item %d: no value for sub-field %s", field.FieldID, i+1, sub.FieldID)
				continue
			}
			subID := fmt.Sprintf("%s[%d].%s", field.FieldID, i, sub.FieldID)

			switch sub.Interaction {
			case wizard.InteractFill:
				if err := e.page.Fill(sub.Selector, valueString(subValue)); err != nil {
					return &FieldFillError{FieldID: subID, Selector: sub.Selector, Err: err}
				}
			case wizard.InteractSelect:
				if err := e.selectSubOption(subID, sub.Selector, valueString(subValue)); err != nil {
					return err
				}
			default:
				e.log.Warnf("group %s: unsupported sub-field interaction %q", field.FieldID, sub.Interaction)
			}
		}

		if err := e.page.ClickByText(groupSaveText); err != nil {
			return &FieldFillError{
				FieldID:  field.FieldID,
				Selector: groupSaveText,
				Err:      fmt.Errorf("failed to save item %d: %w", i+1, err),
			}
		}
		e.page.WaitSettle(e.timeouts.Settle.Std())
	}

	return nil
}

// groupItems coerces a group value into its list-of-records form.
func groupItems(value any) ([]map[string]any, error) {
	switch v := value.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		items := make([]map[string]any, 0, len(v))
		for _, raw := range v {
			record, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("group item must be an object, got %T", raw)
			}
			items = append(items, record)
		}
		return items, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("group value must be a list, got %T", value)
	}
}

// valueString renders a user-data value the way the page expects it
// typed. Integral floats (the usual result of JSON decoding) come out
// without a trailing ".0".
func valueString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
