// pkg/interact/request.go
package interact

import (
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
	"github.com/xkilldash9x/tabwarden/pkg/fault"
)

// ErrEmptyLocator is returned, without waiting or reporting, when a lookup is
// asked to search for an empty value.
var ErrEmptyLocator = errors.New("empty locator value")

// FindRequest describes an element lookup.
type FindRequest struct {
	// Window is the window the lookup must run in.
	Window  browser.WindowHandle
	Locator browser.Locator
	// Timeout bounds the presence poll. Zero means the engine default.
	Timeout time.Duration
	// FailureMessage completes "Failed to find ..." in the user prompt.
	FailureMessage string
}

// Validate checks the request shape once, at the public boundary.
func (r FindRequest) Validate(op string) error {
	if r.Window == "" {
		return fault.Configuration(op, "window", "a window handle is required")
	}
	if !r.Locator.Strategy.Valid() {
		return fault.Configuration(op, "strategy",
			fmt.Sprintf("%s is not a valid locator strategy", r.Locator.Strategy))
	}
	if r.Timeout < 0 {
		return fault.Configuration(op, "timeout", fmt.Sprintf("must not be negative, got %s", r.Timeout))
	}
	return nil
}

// ActionRequest describes a single action against an element found earlier.
type ActionRequest struct {
	Window         browser.WindowHandle
	Element        browser.Element
	FailureMessage string
}

// Validate checks the request shape.
func (r ActionRequest) Validate(op string) error {
	if r.Window == "" {
		return fault.Configuration(op, "window", "a window handle is required")
	}
	if r.Element == nil {
		return fault.Configuration(op, "element", "an element is required")
	}
	return nil
}

// NavigateRequest describes a page load in a given window.
type NavigateRequest struct {
	Window         browser.WindowHandle
	URL            string
	FailureMessage string
}

// Validate checks the request shape.
func (r NavigateRequest) Validate(op string) error {
	if r.Window == "" {
		return fault.Configuration(op, "window", "a window handle is required")
	}
	if r.URL == "" {
		return fault.Configuration(op, "url", "a URL is required")
	}
	return nil
}

// Stage names a step of a composite pipeline.
type Stage int

const (
	StageFind Stage = iota
	StageClick
	StageEnterText
	StagePressEnter
)

func (s Stage) String() string {
	switch s {
	case StageFind:
		return "find"
	case StageClick:
		return "click"
	case StageEnterText:
		return "enter_text"
	case StagePressEnter:
		return "press_enter"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// StageError reports which step stopped a composite pipeline. Every later
// step was skipped.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stopped at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StoppedAt returns the stage that stopped the pipeline, if err came from one.
func StoppedAt(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}
