// Package tui provides terminal user interface entry points for redraw.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/redraw/internal/domain/execution"
)

// RenderProgressOptions configures the render progress view.
type RenderProgressOptions struct {
	// Output defaults to stdout.
	Output io.Writer
	// Input defaults to stdin.
	Input io.Reader
	// DisableInput runs the view without reading keys.
	DisableInput bool
}

// RenderFunc renders while reporting each step to progress.
type RenderFunc func(ctx context.Context, progress execution.ProgressFunc) error

// ErrRenderCancelled is returned when the user cancels the view.
var ErrRenderCancelled = errors.New("render cancelled")

// RunRenderProgress runs render while displaying its progress. Cancelling the
// view cancels the context passed to render and waits for it to return.
func RunRenderProgress(ctx context.Context, opts RenderProgressOptions, render RenderFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	switch {
	case opts.DisableInput:
		programOpts = append(programOpts, tea.WithInput(nil))
	case opts.Input != nil:
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}

	p := tea.NewProgram(newRenderProgressModel(), programOpts...)

	errCh := make(chan error, 1)
	go func() {
		err := render(ctx, func(progress execution.Progress) {
			p.Send(StepMsg{Progress: progress})
		})
		p.Send(RenderDoneMsg{Err: err})
		errCh <- err
	}()

	finalModel, runErr := p.Run()
	if m, ok := finalModel.(renderProgressModel); ok && m.done {
		return <-errCh
	}

	cancel()
	renderErr := <-errCh
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("render progress failed: %w", runErr)
	}
	if m, ok := finalModel.(renderProgressModel); ok && m.cancelled {
		if renderErr != nil {
			return fmt.Errorf("%w: %w", ErrRenderCancelled, renderErr)
		}
		return ErrRenderCancelled
	}
	return renderErr
}
