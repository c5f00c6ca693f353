package executor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/wizardrunner/pkg/config"
	"github.com/entrhq/wizardrunner/pkg/wizard"
)

// fakePage is a scripted page surface. Dropdowns are simulated with
// explicit option value and label sets; everything else records calls.
type fakePage struct {
	calls []string

	optionValues map[string][]string // selector -> accepted values
	optionLabels map[string][]string // selector -> accepted labels

	fillErr  error
	clickErr map[string]error
	saveErr  error
}

func newFakePage() *fakePage {
	return &fakePage{
		optionValues: make(map[string][]string),
		optionLabels: make(map[string][]string),
		clickErr:     make(map[string]error),
	}
}

func (p *fakePage) record(format string, v ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, v...))
}

func (p *fakePage) Fill(selector, value string) error {
	p.record("fill %s=%s", selector, value)
	return p.fillErr
}

func (p *fakePage) Press(selector, key string) error {
	p.record("press %s %s", selector, key)
	return nil
}

func (p *fakePage) Click(selector string) error {
	p.record("click %s", selector)
	return p.clickErr[selector]
}

func (p *fakePage) JSClick(selector string) error {
	p.record("jsclick %s", selector)
	return nil
}

func (p *fakePage) ClickByText(text string) error {
	p.record("clicktext %s", text)
	if text == groupSaveText {
		return p.saveErr
	}
	return nil
}

func (p *fakePage) SelectByValue(selector, value string, _ time.Duration) error {
	p.record("selectvalue %s=%s", selector, value)
	for _, v := range p.optionValues[selector] {
		if v == value {
			return nil
		}
	}
	return errors.New("no option with value")
}

func (p *fakePage) SelectByLabel(selector, label string, _ time.Duration) error {
	p.record("selectlabel %s=%s", selector, label)
	for _, v := range p.optionLabels[selector] {
		if v == label {
			return nil
		}
	}
	return errors.New("no option with label")
}

func (p *fakePage) WaitSettle(time.Duration) {}

func newExecutor(p Page) *Executor {
	return New(p, config.Default().Timeouts)
}

func TestFillField_Fill(t *testing.T) {
	page := newFakePage()
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "name", Selector: "#name", Interaction: wizard.InteractFill,
	}, "Ada")

	require.NoError(t, err)
	assert.Equal(t, []string{"fill #name=Ada"}, page.calls)
}

func TestFillField_FillNormalizesIDSelector(t *testing.T) {
	page := newFakePage()
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "name", Selector: "input-name", Kind: wizard.SelectorID,
		Interaction: wizard.InteractFill,
	}, "Ada")

	require.NoError(t, err)
	assert.Equal(t, []string{"fill #input-name=Ada"}, page.calls)
}

func TestFillField_FillEnterCommitsWithKeystroke(t *testing.T) {
	page := newFakePage()
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "school", Selector: "#school", Interaction: wizard.InteractFillEnter,
	}, "State University")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"fill #school=State University",
		"press #school Enter",
	}, page.calls)
}

func TestFillField_ClickVariants(t *testing.T) {
	page := newFakePage()
	exec := newExecutor(page)

	require.NoError(t, exec.FillField(wizard.Field{
		FieldID: "agree", Selector: "#agree", Interaction: wizard.InteractClick,
	}, "true"))
	require.NoError(t, exec.FillField(wizard.Field{
		FieldID: "status", Selector: "#radio-single", Interaction: wizard.InteractJavaScriptClick,
	}, "true"))

	assert.Equal(t, []string{"click #agree", "jsclick #radio-single"}, page.calls)
}

func TestFillField_NumericValueFormatting(t *testing.T) {
	page := newFakePage()
	exec := newExecutor(page)

	// JSON decoding hands numbers over as float64; the page must see
	// them without a trailing fraction.
	err := exec.FillField(wizard.Field{
		FieldID: "income", Selector: "#income", Interaction: wizard.InteractFill,
	}, float64(85000))

	require.NoError(t, err)
	assert.Equal(t, []string{"fill #income=85000"}, page.calls)
}

func TestSelect_FirstStrategyWins(t *testing.T) {
	page := newFakePage()
	page.optionValues["#state"] = []string{"Illinois"}
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "state", Selector: "#state", Interaction: wizard.InteractSelect,
	}, "Illinois")

	require.NoError(t, err)
	assert.Equal(t, "value", exec.StrategyFor("state"))
	assert.Len(t, page.calls, 1)
}

func TestSelect_TypographicApostropheRecoveredByLaterStrategy(t *testing.T) {
	// The site's option uses U+2019; user data has the ASCII glyph.
	page := newFakePage()
	page.optionLabels["#territory"] = []string{"People’s Republic"}
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "territory", Selector: "#territory", Interaction: wizard.InteractSelect,
	}, "People's Republic")

	require.NoError(t, err)
	assert.Equal(t, "label-normalized", exec.StrategyFor("territory"))
	// All four strategies ran: value, value-normalized, label, label-normalized.
	assert.Len(t, page.calls, 4)
}

func TestSelect_NormalizedValueStrategy(t *testing.T) {
	page := newFakePage()
	page.optionValues["#territory"] = []string{"People’s Republic"}
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "territory", Selector: "#territory", Interaction: wizard.InteractSelect,
	}, "People's Republic")

	require.NoError(t, err)
	assert.Equal(t, "value-normalized", exec.StrategyFor("territory"))
}

func TestSelect_ExhaustionNamesStrategies(t *testing.T) {
	page := newFakePage()
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "state", Selector: "#state", Interaction: wizard.InteractSelect,
	}, "Atlantis")

	require.Error(t, err)
	var fillErr *FieldFillError
	require.ErrorAs(t, err, &fillErr)
	assert.Equal(t, "state", fillErr.FieldID)
	assert.Equal(t, "#state", fillErr.Selector)
	assert.Equal(t, []string{"value", "value-normalized", "label", "label-normalized"}, fillErr.Strategies)
	assert.Empty(t, exec.StrategyFor("state"))
}

func groupField() wizard.Field {
	return wizard.Field{
		FieldID:     "loans",
		Selector:    "#loans-table",
		Interaction: wizard.InteractGroup,
		AddSelector: "#add-loan",
		SubFields: []wizard.SubField{
			{FieldID: "loan_type", Selector: "#loan-type", Interaction: wizard.InteractSelect},
			{FieldID: "amount", Selector: "#loan-amount", Interaction: wizard.InteractFill},
		},
	}
}

func TestGroup_EmptyListSkipsEntirely(t *testing.T) {
	page := newFakePage()
	exec := newExecutor(page)

	err := exec.FillField(groupField(), []any{})

	require.NoError(t, err)
	assert.Empty(t, page.calls, "empty group must not touch the page")
}

func TestGroup_AddFillSaveCyclePerItem(t *testing.T) {
	page := newFakePage()
	page.optionValues["#loan-type"] = []string{"Direct Subsidized"}
	exec := newExecutor(page)

	err := exec.FillField(groupField(), []any{
		map[string]any{"loan_type": "Direct Subsidized", "amount": float64(5500)},
		map[string]any{"loan_type": "Direct Subsidized", "amount": float64(2000)},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{
		"click #add-loan",
		"selectvalue #loan-type=Direct Subsidized",
		"fill #loan-amount=5500",
		"clicktext Save",
		"click #add-loan",
		"selectvalue #loan-type=Direct Subsidized",
		"fill #loan-amount=2000",
		"clicktext Save",
	}, page.calls)
}

func TestGroup_SubSelectUsesTwoStrategyFallback(t *testing.T) {
	page := newFakePage()
	page.optionValues["#loan-type"] = []string{"Parent’s PLUS"}
	exec := newExecutor(page)

	err := exec.FillField(groupField(), []any{
		map[string]any{"loan_type": "Parent's PLUS", "amount": float64(100)},
	})

	require.NoError(t, err)
	assert.Equal(t, "value-normalized", exec.StrategyFor("loans[0].loan_type"))
}

func TestGroup_SaveFailureSurfaces(t *testing.T) {
	page := newFakePage()
	page.optionValues["#loan-type"] = []string{"Direct Subsidized"}
	page.saveErr = errors.New("no save control")
	exec := newExecutor(page)

	err := exec.FillField(groupField(), []any{
		map[string]any{"loan_type": "Direct Subsidized", "amount": float64(1)},
	})

	require.Error(t, err)
	var fillErr *FieldFillError
	require.ErrorAs(t, err, &fillErr)
	assert.Equal(t, "loans", fillErr.FieldID)
	assert.Contains(t, fillErr.Error(), "save item 1")
}

func TestGroup_ItemCountBounds(t *testing.T) {
	field := groupField()
	field.MinItems = 1
	field.MaxItems = 2

	exec := newExecutor(newFakePage())

	// Too many items.
	err := exec.FillField(field, []any{
		map[string]any{"amount": 1.0}, map[string]any{"amount": 2.0}, map[string]any{"amount": 3.0},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 2")

	// Empty still skips: zero occurrences beats min_items because the
	// schema layer owns requiredness.
	require.NoError(t, exec.FillField(field, []any{}))
}

func TestGroup_NonListValueRejected(t *testing.T) {
	exec := newExecutor(newFakePage())

	err := exec.FillField(groupField(), "not a list")

	require.Error(t, err)
	var fillErr *FieldFillError
	require.ErrorAs(t, err, &fillErr)
	assert.Equal(t, "loans", fillErr.FieldID)
}

func TestFillField_ErrorCarriesFieldAndSelector(t *testing.T) {
	page := newFakePage()
	page.fillErr = errors.New("element not visible")
	exec := newExecutor(page)

	err := exec.FillField(wizard.Field{
		FieldID: "name", Selector: "#name", Interaction: wizard.InteractFill,
	}, "Ada")

	require.Error(t, err)
	var fillErr *FieldFillError
	require.ErrorAs(t, err, &fillErr)
	assert.Equal(t, "name", fillErr.FieldID)
	assert.Equal(t, "#name", fillErr.Selector)
	assert.ErrorIs(t, err, page.fillErr)
}

func TestNormalizePunctuation(t *testing.T) {
	assert.Equal(t, "People’s", normalizePunctuation("People's"))
	assert.Equal(t, "plain", normalizePunctuation("plain"))
}
