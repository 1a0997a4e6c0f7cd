// pkg/interact/pipeline.go
package interact

import (
	"context"

	"github.com/xkilldash9x/tabwarden/pkg/browser"
)

// The composite helpers below run their stages in order and stop at the first
// failure. A nil return means every stage ran; otherwise the *StageError names
// the stage that stopped the pipeline.

// FindAndClick finds an element and clicks it.
func (e *Engine) FindAndClick(ctx context.Context, req FindRequest) error {
	el, err := e.FindElement(ctx, req)
	if err != nil {
		return &StageError{Stage: StageFind, Err: err}
	}
	if err := e.Click(ctx, e.action(req, el)); err != nil {
		return &StageError{Stage: StageClick, Err: err}
	}
	return nil
}

// FindAndEnterText finds an element and types text into it.
func (e *Engine) FindAndEnterText(ctx context.Context, req FindRequest, text string) error {
	el, err := e.FindElement(ctx, req)
	if err != nil {
		return &StageError{Stage: StageFind, Err: err}
	}
	if err := e.EnterText(ctx, e.action(req, el), text); err != nil {
		return &StageError{Stage: StageEnterText, Err: err}
	}
	return nil
}

// FindAndEnterTextThenPressEnter finds an element, types text and presses Enter.
func (e *Engine) FindAndEnterTextThenPressEnter(ctx context.Context, req FindRequest, text string) error {
	el, err := e.FindElement(ctx, req)
	if err != nil {
		return &StageError{Stage: StageFind, Err: err}
	}
	action := e.action(req, el)
	if err := e.EnterText(ctx, action, text); err != nil {
		return &StageError{Stage: StageEnterText, Err: err}
	}
	if err := e.PressEnter(ctx, action); err != nil {
		return &StageError{Stage: StagePressEnter, Err: err}
	}
	return nil
}

func (e *Engine) action(req FindRequest, el browser.Element) ActionRequest {
	return ActionRequest{Window: req.Window, Element: el, FailureMessage: req.FailureMessage}
}
