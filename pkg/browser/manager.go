// Package browser owns the Playwright runtime and the one-session-per-
// execution lifecycle. A Session bundles a browser, an isolated
// context, and a page; it is created fresh for each wizard run and
// torn down on every exit path.
package browser

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/wizardrunner/pkg/config"
	"github.com/entrhq/wizardrunner/pkg/logging"
)

// Manager initializes the Playwright runtime once per process and
// hands out isolated sessions. Sessions share nothing with each other,
// so arbitrarily many executions may run in parallel.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	initialized bool
	log         *logging.Logger
}

// NewManager creates an uninitialized manager.
func NewManager() *Manager {
	log, _ := logging.NewLogger("browser")
	return &Manager{log: log}
}

// Initialize installs and starts the Playwright driver. Must be called
// before NewSession. Safe to call more than once.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output is discarded so it cannot interleave with the
	// caller's own stdout protocol.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// NewSession launches a browser with an isolated context and a single
// page for one wizard execution. The configured operation timeout is
// applied to the page immediately, so no later click, fill, or select
// ever runs on a library default.
func (m *Manager) NewSession(cfg config.Config) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	var launcher playwright.BrowserType
	switch cfg.Browser.Type {
	case "webkit":
		launcher = m.playwright.WebKit
	case "firefox":
		launcher = m.playwright.Firefox
	default:
		launcher = m.playwright.Chromium
	}

	browser, err := launcher.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Browser.Headless),
		SlowMo:   playwright.Float(cfg.Browser.SlowMo.Millis()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", cfg.Browser.Type, err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
		UserAgent: playwright.String(cfg.Browser.UserAgent),
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(cfg.Timeouts.Operation.Millis())

	m.log.Infof("session created: %s headless=%v viewport=%dx%d",
		cfg.Browser.Type, cfg.Browser.Headless,
		cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)

	return &Session{
		browser: browser,
		context: context,
		page:    page,
		cfg:     cfg,
		log:     m.log,
	}, nil
}

// Shutdown stops the Playwright runtime. Sessions must be closed by
// their owners first.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized || m.playwright == nil {
		return nil
	}
	if err := m.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	m.playwright = nil
	m.initialized = false
	return nil
}
