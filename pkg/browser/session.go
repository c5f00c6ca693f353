package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/wizardrunner/pkg/config"
	"github.com/entrhq/wizardrunner/pkg/logging"
)

// Session is one browser, context, and page, owned by a single wizard
// execution from creation to Close. Nothing else mutates the page
// while the execution runs.
type Session struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     config.Config
	log     *logging.Logger
}

// Navigate loads the target URL, retrying on failure. Each attempt is
// bounded by the per-attempt navigation timeout; between attempts the
// session waits the configured retry delay. The target's load time is
// bimodal, so a fresh short attempt recovers most transient failures
// faster than one long wait would. Retry state is an explicit counter
// so the budget arithmetic stays auditable.
func (s *Session) Navigate(ctx context.Context, url string) error {
	retries := s.cfg.Timeouts.NavigationRetries
	waitUntil := playwright.WaitUntilState("networkidle")

	attempts, err := retryNavigation(ctx, retries, s.cfg.Timeouts.RetryDelay.Std(), func() error {
		_, gotoErr := s.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: &waitUntil,
			Timeout:   playwright.Float(s.cfg.Timeouts.NavigationAttempt.Millis()),
		})
		if gotoErr != nil {
			s.log.Warnf("navigation attempt failed: %v", gotoErr)
		}
		return gotoErr
	})
	if err != nil {
		return &NavigationError{URL: url, Attempts: attempts, Err: err}
	}

	s.log.Infof("navigation succeeded on attempt %d/%d", attempts, retries+1)
	s.WaitSettle(s.cfg.Timeouts.PageSettle.Std())
	return nil
}

// Fill sets an input's value, bounded by the operation timeout.
func (s *Session) Fill(selector, value string) error {
	err := s.page.Fill(selector, value, playwright.PageFillOptions{
		Timeout: playwright.Float(s.cfg.Timeouts.Operation.Millis()),
	})
	if err != nil {
		return fmt.Errorf("fill %s failed: %w", selector, err)
	}
	return nil
}

// Press sends a key to the element, bounded by the operation timeout.
func (s *Session) Press(selector, key string) error {
	err := s.page.Press(selector, key, playwright.PagePressOptions{
		Timeout: playwright.Float(s.cfg.Timeouts.Operation.Millis()),
	})
	if err != nil {
		return fmt.Errorf("press %s on %s failed: %w", key, selector, err)
	}
	return nil
}

// Click performs a visibility-gated click.
func (s *Session) Click(selector string) error {
	err := s.page.Click(selector, playwright.PageClickOptions{
		Timeout: playwright.Float(s.cfg.Timeouts.Operation.Millis()),
	})
	if err != nil {
		return fmt.Errorf("click %s failed: %w", selector, err)
	}
	return nil
}

// JSClick dispatches a click through the DOM, bypassing the visibility
// check. Styled radio inputs hidden beneath a label fail the gated
// click but respond to this.
func (s *Session) JSClick(selector string) error {
	_, err := s.page.Evaluate(fmt.Sprintf("document.querySelector(%q).click()", selector))
	if err != nil {
		return fmt.Errorf("javascript click %s failed: %w", selector, err)
	}
	return nil
}

// ClickByText clicks the element with the exact visible text.
func (s *Session) ClickByText(text string) error {
	err := s.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(true),
	}).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(s.cfg.Timeouts.Operation.Millis()),
	})
	if err != nil {
		return fmt.Errorf("click by text %q failed: %w", text, err)
	}
	return nil
}

// SelectByValue selects a dropdown option by its value attribute,
// bounded by the given timeout rather than the page default so the
// fallback chain in the executor stays cheap.
func (s *Session) SelectByValue(selector, value string, timeout time.Duration) error {
	_, err := s.page.SelectOption(selector, playwright.SelectOptionValues{
		Values: &[]string{value},
	}, playwright.PageSelectOptionOptions{
		Timeout: playwright.Float(float64(timeout / time.Millisecond)),
	})
	if err != nil {
		return fmt.Errorf("select value %q on %s failed: %w", value, selector, err)
	}
	return nil
}

// SelectByLabel selects a dropdown option by its visible label.
func (s *Session) SelectByLabel(selector, label string, timeout time.Duration) error {
	_, err := s.page.SelectOption(selector, playwright.SelectOptionValues{
		Labels: &[]string{label},
	}, playwright.PageSelectOptionOptions{
		Timeout: playwright.Float(float64(timeout / time.Millisecond)),
	})
	if err != nil {
		return fmt.Errorf("select label %q on %s failed: %w", label, selector, err)
	}
	return nil
}

// WaitSettle pauses the execution, giving dynamic content time to
// render. Used between field fills and after page transitions.
func (s *Session) WaitSettle(d time.Duration) {
	if d > 0 {
		s.page.WaitForTimeout(float64(d / time.Millisecond))
	}
}

// Screenshot captures the current viewport as JPEG bytes. If disk
// persistence is configured the image is also written under the
// screenshot directory with the label in the filename.
func (s *Session) Screenshot(label string) ([]byte, error) {
	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(s.cfg.Screenshots.Quality),
		FullPage: playwright.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot %q failed: %w", label, err)
	}

	if s.cfg.Screenshots.SaveToDisk && s.cfg.Screenshots.Dir != "" {
		name := fmt.Sprintf("screenshot_%s_%s.jpg", time.Now().UTC().Format("20060102_150405.000"), label)
		path := filepath.Join(s.cfg.Screenshots.Dir, name)
		if err := os.MkdirAll(s.cfg.Screenshots.Dir, 0o750); err == nil {
			if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
				s.log.Warnf("failed to save screenshot to %s: %v", path, writeErr)
			}
		}
	}

	return data, nil
}

// Content returns the page's full HTML.
func (s *Session) Content() (string, error) {
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Title returns the page title, or empty if unavailable.
func (s *Session) Title() string {
	title, err := s.page.Title()
	if err != nil {
		return ""
	}
	return title
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.page.URL()
}

// Close tears down the page, context, and browser. Individual close
// errors are ignored so cleanup always runs to completion; Close is
// deferred by the execution owner on every exit path.
func (s *Session) Close() {
	_ = s.page.Close()
	_ = s.context.Close()
	_ = s.browser.Close()
	s.log.Infof("session closed")
}
