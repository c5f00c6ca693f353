// Package config holds every tunable of the execution engine as an
// explicit named value. Nothing in the engine runs on a library
// default timeout: each bound is declared here, threaded through
// construction, and checked once against the timeout hierarchy.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects the screenshot retention behavior.
type Mode string

const (
	// ModeDebug returns every captured screenshot in the response.
	ModeDebug Mode = "debug"

	// ModeProduction trims screenshots to the final few so responses
	// stay within downstream transport limits.
	ModeProduction Mode = "production"
)

// Duration wraps time.Duration so YAML config files can use plain
// duration strings ("20s", "500ms").
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"20s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Millis returns the duration in the float milliseconds playwright expects.
func (d Duration) Millis() float64 {
	return float64(time.Duration(d) / time.Millisecond)
}

// BrowserConfig configures the browser session created per execution.
type BrowserConfig struct {
	// Type is the engine: chromium, firefox, or webkit. The target
	// site only renders reliably headless under webkit, so that is
	// the production pairing.
	Type     string `yaml:"type"`
	Headless bool   `yaml:"headless"`

	// SlowMo delays every browser action, for watching a headed run.
	SlowMo Duration `yaml:"slow_mo"`

	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	UserAgent      string `yaml:"user_agent"`
}

// TimeoutConfig is the single source for every bound in the engine.
// The hierarchy invariant (Validate) keeps each outer bound larger
// than the inner operations it contains.
type TimeoutConfig struct {
	// SelectStrategy bounds one attempt of the dropdown fallback chain,
	// so exhausting all four strategies costs a small multiple of this
	// rather than four navigation-length waits.
	SelectStrategy Duration `yaml:"select_strategy"`

	// Operation is the default applied to every page-level operation
	// (clicks, fills, selects) the moment the page is created.
	Operation Duration `yaml:"operation"`

	// NavigationAttempt bounds a single page load. The target site's
	// load time is bimodal, so a short bound with retries beats one
	// long wait.
	NavigationAttempt Duration `yaml:"navigation_attempt"`

	// NavigationRetries is the number of retries after the first
	// attempt; N retries means N+1 total attempts.
	NavigationRetries int `yaml:"navigation_retries"`

	// RetryDelay is the pause between navigation attempts.
	RetryDelay Duration `yaml:"retry_delay"`

	// Settle is the brief pause between field fills and group items.
	Settle Duration `yaml:"settle"`

	// PageSettle is the longer pause after navigation and page
	// transitions, giving dynamic content time to render.
	PageSettle Duration `yaml:"page_settle"`

	// Execution caps one whole wizard run.
	Execution Duration `yaml:"execution"`
}

// ScreenshotConfig configures capture and optional disk persistence.
type ScreenshotConfig struct {
	// Quality is the JPEG quality (1-100). Screenshots are viewport-only
	// JPEG to keep each one around 50-100KB.
	Quality int `yaml:"quality"`

	// SaveToDisk also writes each capture under Dir, for local debugging.
	SaveToDisk bool   `yaml:"save_to_disk"`
	Dir        string `yaml:"dir"`
}

// Config is the full engine configuration.
type Config struct {
	Mode        Mode             `yaml:"mode"`
	Browser     BrowserConfig    `yaml:"browser"`
	Timeouts    TimeoutConfig    `yaml:"timeouts"`
	Screenshots ScreenshotConfig `yaml:"screenshots"`
}

// Default returns the configuration tuned against the production
// target site. The navigation retry budget is an empirical default,
// not a universal constant.
func Default() Config {
	return Config{
		Mode: ModeProduction,
		Browser: BrowserConfig{
			Type:           "webkit",
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 1024,
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Timeouts: TimeoutConfig{
			SelectStrategy:    Duration(5 * time.Second),
			Operation:         Duration(10 * time.Second),
			NavigationAttempt: Duration(20 * time.Second),
			NavigationRetries: 4,
			RetryDelay:        Duration(2 * time.Second),
			Settle:            Duration(300 * time.Millisecond),
			PageSettle:        Duration(1500 * time.Millisecond),
			Execution:         Duration(2 * time.Minute),
		},
		Screenshots: ScreenshotConfig{
			Quality: 80,
		},
	}
}

// Load reads a YAML config file over the defaults, so a file only
// needs to name the values it changes. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enforces the timeout hierarchy:
// select strategy < operation < navigation attempt < total execution.
// An outer bound shorter than what an inner operation legitimately
// needs is rejected here, once, instead of discovered in production.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeDebug, ModeProduction:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDebug, ModeProduction, c.Mode)
	}

	switch c.Browser.Type {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("browser type must be chromium, firefox, or webkit, got %q", c.Browser.Type)
	}
	if c.Browser.ViewportWidth < 100 || c.Browser.ViewportWidth > 5000 {
		return fmt.Errorf("viewport_width must be between 100 and 5000, got %d", c.Browser.ViewportWidth)
	}
	if c.Browser.ViewportHeight < 100 || c.Browser.ViewportHeight > 5000 {
		return fmt.Errorf("viewport_height must be between 100 and 5000, got %d", c.Browser.ViewportHeight)
	}

	t := c.Timeouts
	for name, d := range map[string]Duration{
		"select_strategy":    t.SelectStrategy,
		"operation":          t.Operation,
		"navigation_attempt": t.NavigationAttempt,
		"execution":          t.Execution,
	} {
		if d <= 0 {
			return fmt.Errorf("timeout %s must be positive", name)
		}
	}
	if t.RetryDelay < 0 || t.Settle < 0 || t.PageSettle < 0 {
		return fmt.Errorf("retry_delay, settle, and page_settle must not be negative")
	}
	if t.NavigationRetries < 0 || t.NavigationRetries > 10 {
		return fmt.Errorf("navigation_retries must be between 0 and 10, got %d", t.NavigationRetries)
	}

	if t.SelectStrategy >= t.Operation {
		return fmt.Errorf("timeout hierarchy violated: select_strategy (%s) must be shorter than operation (%s)",
			t.SelectStrategy.Std(), t.Operation.Std())
	}
	if t.Operation >= t.NavigationAttempt {
		return fmt.Errorf("timeout hierarchy violated: operation (%s) must be shorter than navigation_attempt (%s)",
			t.Operation.Std(), t.NavigationAttempt.Std())
	}
	if t.NavigationAttempt >= t.Execution {
		return fmt.Errorf("timeout hierarchy violated: navigation_attempt (%s) must be shorter than execution (%s)",
			t.NavigationAttempt.Std(), t.Execution.Std())
	}

	if c.Screenshots.Quality < 1 || c.Screenshots.Quality > 100 {
		return fmt.Errorf("screenshot quality must be between 1 and 100, got %d", c.Screenshots.Quality)
	}
	if c.Screenshots.SaveToDisk && c.Screenshots.Dir == "" {
		return fmt.Errorf("screenshots.dir is required when save_to_disk is enabled")
	}
	return nil
}
