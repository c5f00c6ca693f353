// Package runner drives a full wizard execution: navigate, optional
// start action, per-page fill-and-advance, terminal-page extraction.
// It owns the execution state machine and the single top-level error
// handler, which guarantees browser teardown and a uniform failure
// result on every exit path.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/wizardrunner/pkg/browser"
	"github.com/entrhq/wizardrunner/pkg/config"
	"github.com/entrhq/wizardrunner/pkg/executor"
	"github.com/entrhq/wizardrunner/pkg/logging"
	"github.com/entrhq/wizardrunner/pkg/schema"
	"github.com/entrhq/wizardrunner/pkg/screenshot"
	"github.com/entrhq/wizardrunner/pkg/wizard"
)

// Session is the browser surface one execution drives. *browser.Session
// implements it; tests substitute a scripted fake.
type Session interface {
	executor.Page
	Navigate(ctx context.Context, url string) error
	Screenshot(label string) ([]byte, error)
	Content() (string, error)
	Title() string
	URL() string
	Close()
}

// SessionFactory creates the session for one execution. Injectable so
// the state machine is testable without a real browser, and so tests
// can assert that invalid data never creates a session.
type SessionFactory func(cfg config.Config) (Session, error)

// Runner executes wizards. It holds no per-execution state: each
// Execute call owns its session, recorder, and executor, so arbitrarily
// many executions may run concurrently on one Runner.
type Runner struct {
	cfg     config.Config
	factory SessionFactory
	log     *logging.Logger
}

// New creates a runner with an explicit session factory.
func New(cfg config.Config, factory SessionFactory) *Runner {
	log, _ := logging.NewLogger("runner")
	return &Runner{cfg: cfg, factory: factory, log: log}
}

// NewFromManager creates a runner backed by a real browser manager.
func NewFromManager(cfg config.Config, m *browser.Manager) *Runner {
	return New(cfg, func(cfg config.Config) (Session, error) {
		return m.NewSession(cfg)
	})
}

// Execute runs one wizard atomically: validate, create a session,
// walk every page, extract results, tear down. It never returns an
// error; every outcome is an ExecutionResult. The structure, schema,
// and user data are treated as immutable.
func (r *Runner) Execute(ctx context.Context, structure *wizard.Structure, sch *schema.Schema, userData map[string]any) *ExecutionResult {
	start := time.Now()
	result := &ExecutionResult{
		ExecutionID: uuid.New().String(),
		WizardID:    structure.WizardID,
		State:       StateInit,
		Screenshots: []screenshot.Shot{},
	}

	r.log.Infof("execution %s: wizard=%s pages=%d", result.ExecutionID, structure.WizardID, len(structure.Pages))

	// Gate: the schema contract is checked before any browser activity.
	validation := schema.Validate(sch, userData)
	if !validation.Valid {
		r.log.Errorf("execution %s: user data failed validation (%d missing, %d invalid)",
			result.ExecutionID, len(validation.Missing), len(validation.Invalid))
		result.State = StateFailed
		result.ErrorKind = ErrorKindValidation
		result.Error = "user data does not satisfy the wizard's schema"
		result.Validation = &validation
		result.ExecutionTimeMS = time.Since(start).Milliseconds()
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeouts.Execution.Std())
	defer cancel()

	session, err := r.factory(r.cfg)
	if err != nil {
		result.State = StateFailed
		result.ErrorKind = ErrorKindInternal
		result.Error = fmt.Sprintf("failed to create browser session: %v", err)
		result.ExecutionTimeMS = time.Since(start).Milliseconds()
		return result
	}
	// Teardown on every path out of this function. Atomic execution:
	// no session outlives its run.
	defer session.Close()

	rec := screenshot.NewRecorder()
	runErr := r.run(ctx, session, structure, userData, rec, result)

	if runErr != nil {
		// Capture the failure point before assembling, so the reviewer
		// sees the page exactly as the error left it.
		r.capture(session, rec, "failure")
		result.State = StateFailed
		result.ErrorKind = classifyError(runErr)
		result.Error = runErr.Error()
		r.log.Errorf("execution %s failed in %s: %v", result.ExecutionID, result.ErrorKind, runErr)
	} else {
		result.Success = true
		result.State = StateDone
		r.log.Infof("execution %s completed: %d page(s)", result.ExecutionID, result.PagesCompleted)
	}

	result.Screenshots = screenshot.Retain(r.cfg.Mode, result.Success, rec.Shots())
	result.ScreenshotsTotal = rec.Count()
	result.ExecutionTimeMS = time.Since(start).Milliseconds()
	return result
}

// run walks the state machine. Any returned error is handled exactly
// once, by Execute's top-level handler.
func (r *Runner) run(ctx context.Context, session Session, structure *wizard.Structure, userData map[string]any, rec *screenshot.Recorder, result *ExecutionResult) error {
	if err := session.Navigate(ctx, structure.URL); err != nil {
		return err
	}
	result.State = StateNavigated
	r.capture(session, rec, "initial")

	if structure.Start != nil {
		if err := r.clickAction(session, *structure.Start); err != nil {
			return fmt.Errorf("start action failed: %w", err)
		}
		session.WaitSettle(r.cfg.Timeouts.PageSettle.Std())
		result.State = StateStarted
		r.capture(session, rec, "after_start")
	}

	exec := executor.New(session, r.cfg.Timeouts)
	result.State = StatePages

	for _, page := range structure.Pages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("execution timed out on page %d: %w", page.Number, err)
		}
		r.log.Infof("page %d/%d: %s", page.Number, len(structure.Pages), page.Title)

		for _, field := range page.Fields {
			value, ok := userData[field.FieldID]
			if !ok {
				if field.Required {
					return fmt.Errorf("no value supplied for required field %q on page %d", field.FieldID, page.Number)
				}
				continue
			}
			if err := exec.FillField(field, value); err != nil {
				return err
			}
			session.WaitSettle(r.cfg.Timeouts.Settle.Std())
		}

		r.capture(session, rec, fmt.Sprintf("page_%d_filled", page.Number))

		if err := r.clickAction(session, page.Continue); err != nil {
			return fmt.Errorf("continue on page %d failed: %w", page.Number, err)
		}
		session.WaitSettle(r.cfg.Timeouts.PageSettle.Std())
		result.PagesCompleted++
		r.capture(session, rec, fmt.Sprintf("page_%d_complete", page.Number))
	}

	// After the last declared page the current page is assumed terminal.
	result.State = StateResults
	r.capture(session, rec, "final_results")

	html, err := session.Content()
	if err != nil {
		return fmt.Errorf("failed to read terminal page: %w", err)
	}
	results, err := extractResults(html, session.URL(), session.Title(), structure.Results)
	if err != nil {
		return err
	}
	result.Results = results
	return nil
}

// clickAction clicks a declared start/continue control using
// selector-kind-aware resolution: text kinds match exact visible text,
// everything else goes through the normalized locator.
func (r *Runner) clickAction(session Session, action wizard.Action) error {
	if action.Kind == wizard.SelectorText {
		return session.ClickByText(action.Selector)
	}
	return session.Click(action.Locator())
}

// capture takes a screenshot and appends it to the trail. Capture
// failures are logged and swallowed: evidence collection must never
// fail the run it documents.
func (r *Runner) capture(session Session, rec *screenshot.Recorder, label string) {
	data, err := session.Screenshot(label)
	if err != nil {
		r.log.Warnf("screenshot %q failed: %v", label, err)
		return
	}
	rec.Capture(label, data)
}

// classifyError maps a run error onto the caller-facing taxonomy.
func classifyError(err error) ErrorKind {
	var navErr *browser.NavigationError
	if errors.As(err, &navErr) {
		return ErrorKindNavigation
	}
	var fillErr *executor.FieldFillError
	if errors.As(err, &fillErr) {
		return ErrorKindFieldFill
	}
	return ErrorKindInternal
}
