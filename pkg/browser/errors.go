package browser

import "fmt"

// NavigationError reports that the target URL failed to load within
// the full retry budget. Attempts is the total number of attempts
// made, including the first.
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
