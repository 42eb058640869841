package execution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
	"github.com/felixgeelhaar/redraw/internal/testutil"
)

// trace records operation names in the order they run.
type trace struct {
	mu    sync.Mutex
	names []string
}

func (tr *trace) op(name string, err error) plan.Op {
	return func(_ context.Context, _ *state.State) error {
		tr.mu.Lock()
		tr.names = append(tr.names, name)
		tr.mu.Unlock()
		return err
	}
}

func (tr *trace) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.names...)
}

func single(id string, op plan.Op) plan.Step {
	return plan.NewStep(plan.MustNewStepID(id), plan.Single(op), id)
}

func TestExecutor_EmptyPlan(t *testing.T) {
	t.Parallel()

	result, err := NewExecutor().Execute(context.Background(), plan.New(), state.New(10, 10))
	require.NoError(t, err)
	assert.Empty(t, result.Steps)
	assert.NoError(t, result.Err())
}

func TestExecutor_ExecutesInOrder(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	p := plan.New()
	p.Add(single("step:first", tr.op("first", nil)))
	p.Add(plan.NewStep(plan.MustNewStepID("step:second"),
		plan.Sequence(tr.op("second-a", nil), tr.op("second-b", nil)), "pair"))
	p.Add(single("step:third", tr.op("third", nil)))

	result, err := NewExecutor().Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second-a", "second-b", "third"}, tr.list())
	require.Len(t, result.Steps, 3)
	for _, r := range result.Steps {
		assert.True(t, r.Success(), r.StepID().String())
	}
	assert.Equal(t, "pair", result.Steps[1].Message())
}

func TestExecutor_SequenceStopsAtFirstError(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	boom := errors.New("boom")
	p := plan.New()
	p.Add(plan.NewStep(plan.MustNewStepID("shapes:draw"),
		plan.Sequence(tr.op("type", boom), tr.op("shapes", nil)), "draw"))
	p.Add(single("finalize", tr.op("finish", nil)))

	result, err := NewExecutor().Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)

	assert.Equal(t, []string{"type", "finish"}, tr.list())
	assert.Equal(t, plan.StatusFailed, result.Steps[0].Status())
	assert.ErrorIs(t, result.Steps[0].Error(), boom)

	var stepErr *plan.StepError
	require.ErrorAs(t, result.Steps[0].Error(), &stepErr)
	assert.Equal(t, plan.ErrCodeStepFailed, stepErr.Code)
	assert.Equal(t, plan.StatusDone, result.Steps[1].Status())
	assert.ErrorIs(t, result.Err(), boom)
}

func TestExecutor_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		gate bool
		want plan.Status
	}{
		{name: "check true runs", gate: true, want: plan.StatusDone},
		{name: "check false skips", gate: false, want: plan.StatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := &trace{}
			p := plan.New()
			p.Add(single("color:scale", tr.op("scale", nil)).
				WithCheck(func(*state.State) bool { return tt.gate }))

			result, err := NewExecutor().Execute(context.Background(), p, state.New(10, 10))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Steps[0].Status())
			assert.Equal(t, tt.gate, len(tr.list()) == 1)
		})
	}
}

func TestExecutor_CheckSeesEarlierMutations(t *testing.T) {
	t.Parallel()

	p := plan.New()
	p.Add(single("color:resolve", func(_ context.Context, s *state.State) error {
		s.Color.Type = state.KeyNumber
		return nil
	}))
	ran := false
	p.Add(single("color:scale", func(context.Context, *state.State) error {
		ran = true
		return nil
	}).WithCheck(func(s *state.State) bool { return s.Color.Type == state.KeyNumber }))

	_, err := NewExecutor().Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)
	assert.True(t, ran)
}

func asyncStep(id string, delay time.Duration, err error, mark func()) plan.Step {
	return plan.NewStep(plan.MustNewStepID(id), plan.Async(
		func(ctx context.Context, _ *state.State, done plan.Done) {
			go func() {
				select {
				case <-time.After(delay):
					if mark != nil {
						mark()
					}
					done(err)
				case <-ctx.Done():
					done(ctx.Err())
				}
			}()
		}), "Loading...")
}

func TestExecutor_WaitsForAsyncCompletion(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	p := plan.New()
	loaded := tr.op("loaded", nil)
	p.Add(asyncStep("load:data", 20*time.Millisecond, nil, func() { _ = loaded(context.Background(), nil) }))
	p.Add(single("data:reindex", tr.op("reindex", nil)))

	result, err := NewExecutor().Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)

	assert.Equal(t, []string{"loaded", "reindex"}, tr.list())
	assert.True(t, result.Steps[0].Success())
	assert.GreaterOrEqual(t, result.Steps[0].Duration(), 20*time.Millisecond)
}

func TestExecutor_LoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := plan.NewLoadFailedError("load:data", errors.New("404"))

	t.Run("abort skips remaining steps", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		p := plan.New()
		p.Add(asyncStep("load:data", time.Millisecond, loadErr, nil))
		p.Add(single("data:reindex", tr.op("reindex", nil)))
		p.Add(single("finalize", tr.op("finish", nil)))

		result, err := NewExecutor().Execute(context.Background(), p, state.New(10, 10))
		require.NoError(t, err)

		assert.True(t, result.Aborted)
		assert.Empty(t, tr.list())
		assert.Equal(t, plan.StatusFailed, result.Steps[0].Status())
		assert.Equal(t, plan.StatusSkipped, result.Steps[1].Status())
		assert.Equal(t, plan.StatusSkipped, result.Steps[2].Status())

		var stepErr *plan.StepError
		require.ErrorAs(t, result.Err(), &stepErr)
		assert.Equal(t, plan.ErrCodeLoadFailed, stepErr.Code)
	})

	t.Run("continue with partial data", func(t *testing.T) {
		t.Parallel()

		tr := &trace{}
		p := plan.New()
		p.Add(asyncStep("load:data", time.Millisecond, loadErr, nil))
		p.Add(single("finalize", tr.op("finish", nil)))

		result, err := NewExecutor().WithAbortOnLoadFailure(false).
			Execute(context.Background(), p, state.New(10, 10))
		require.NoError(t, err)

		assert.False(t, result.Aborted)
		assert.Equal(t, []string{"finish"}, tr.list())
	})
}

func TestExecutor_DryRun(t *testing.T) {
	t.Parallel()

	tr := &trace{}
	p := plan.New()
	p.Add(single("layout", tr.op("layout", nil)))
	p.Add(asyncStep("load:data", time.Hour, nil, nil))

	result, err := NewExecutor().WithDryRun(true).Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)

	assert.Empty(t, tr.list())
	for _, r := range result.Steps {
		assert.True(t, r.Skipped())
	}
}

func TestExecutor_ContextCancellation(t *testing.T) {
	t.Parallel()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		tr := &trace{}
		p := plan.New()
		p.Add(single("layout", tr.op("layout", nil)))
		p.Add(single("finalize", tr.op("finish", nil)))

		result, err := NewExecutor().Execute(ctx, p, state.New(10, 10))
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, result.Cancelled)
		assert.Empty(t, tr.list())
		require.Len(t, result.Steps, 2)
		assert.Equal(t, plan.StatusCancelled, result.Steps[0].Status())
	})

	t.Run("during async step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		tr := &trace{}
		p := plan.New()
		p.Add(asyncStep("load:data", time.Hour, nil, nil))
		p.Add(single("data:reindex", tr.op("reindex", nil)))

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		var stepErr *plan.StepError
		result, err := NewExecutor().Execute(ctx, p, state.New(10, 10))
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, plan.ErrCodeCancelled, stepErr.Code)
		assert.Equal(t, plan.StatusCancelled, result.Steps[0].Status())
		assert.Equal(t, plan.StatusCancelled, result.Steps[1].Status())
		assert.Empty(t, tr.list())
	})

	t.Run("grace expires for unresponsive step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := plan.New()
		p.Add(plan.NewStep(plan.MustNewStepID("load:data"), plan.Async(
			func(context.Context, *state.State, plan.Done) {}), "Loading..."))

		exec := NewExecutor().WithCancelGrace(5 * time.Millisecond)
		err := exec.runStep(ctx, p.Steps()[0], state.New(10, 10))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestExecutor_Progress(t *testing.T) {
	t.Parallel()

	var got []Progress
	p := plan.New()
	p.Add(single("layout", func(context.Context, *state.State) error { return nil }))
	p.Add(single("finalize", func(context.Context, *state.State) error { return nil }))

	_, err := NewExecutor().
		WithProgress(func(pr Progress) { got = append(got, pr) }).
		Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Index)
	assert.Equal(t, 2, got[1].Total)
	assert.Equal(t, "finalize", got[1].StepID.String())
	assert.Equal(t, "finalize", got[1].Message)
}

func TestExecutor_Middleware(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next Runner) Runner {
			return func(ctx context.Context, step plan.Step, s *state.State) error {
				order = append(order, name+">")
				err := next(ctx, step, s)
				order = append(order, "<"+name)
				return err
			}
		}
	}

	p := plan.New()
	p.Add(single("layout", func(context.Context, *state.State) error {
		order = append(order, "run")
		return nil
	}))

	_, err := NewExecutor().WithMiddleware(mw("outer"), mw("inner")).
		Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"outer>", "inner>", "run", "<inner", "<outer"}, order)
}

func TestExecutor_WithOptionsDoNotMutate(t *testing.T) {
	t.Parallel()

	base := NewExecutor()
	dry := base.WithDryRun(true).WithMiddleware(Timing(nil))

	assert.False(t, base.dryRun)
	assert.Empty(t, base.middleware)
	assert.True(t, dry.dryRun)
	assert.Len(t, dry.middleware, 1)
	assert.True(t, dry.abortOnLoadFailure)
}

func TestTiming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dev  bool
		want int
	}{
		{name: "dev mode logs", dev: true, want: 1},
		{name: "quiet otherwise", dev: false, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := testutil.NewRecordingLogger()
			s := state.New(10, 10)
			s.Dev = tt.dev

			p := plan.New()
			p.Add(single("layout", func(context.Context, *state.State) error { return nil }))

			_, err := NewExecutor().WithMiddleware(Timing(logger)).Execute(context.Background(), p, s)
			require.NoError(t, err)

			timings := 0
			for _, e := range logger.Entries() {
				if e.Message == "step timing" {
					timings++
					step, _ := e.Field("step")
					assert.Equal(t, "layout", step)
				}
			}
			assert.Equal(t, tt.want, timings)
		})
	}
}

func TestExecutor_LogsFailures(t *testing.T) {
	t.Parallel()

	logger := testutil.NewRecordingLogger()
	p := plan.New()
	p.Add(single("layout", func(context.Context, *state.State) error { return errors.New("bad margin") }))

	_, err := NewExecutor().WithLogger(logger).Execute(context.Background(), p, state.New(10, 10))
	require.NoError(t, err)

	assert.Contains(t, logger.Messages(ports.LevelWarn), "step failed")
}

func TestExecutor_AsyncApply(t *testing.T) {
	t.Parallel()

	setTitle := func(title string) plan.Apply {
		return func(s *state.State) { s.Title.Value = title }
	}

	t.Run("applied when accepted", func(t *testing.T) {
		t.Parallel()

		s := state.New(10, 10)
		step := plan.NewStep(plan.MustNewStepID("load:data"), plan.Async(
			func(_ context.Context, _ *state.State, done plan.Done) {
				go done(nil, setTitle("loaded"))
			}), "Loading...")

		require.NoError(t, NewExecutor().runStep(context.Background(), step, s))
		assert.Equal(t, "loaded", s.Title.Value)
	})

	t.Run("failure not applied", func(t *testing.T) {
		t.Parallel()

		s := state.New(10, 10)
		step := plan.NewStep(plan.MustNewStepID("load:data"), plan.Async(
			func(_ context.Context, _ *state.State, done plan.Done) {
				done(errors.New("boom"), setTitle("loaded"))
			}), "Loading...")

		require.Error(t, NewExecutor().runStep(context.Background(), step, s))
		assert.Empty(t, s.Title.Value)
	})

	t.Run("late completion never touches state", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		pending := make(chan plan.Done, 1)
		step := plan.NewStep(plan.MustNewStepID("load:data"), plan.Async(
			func(_ context.Context, _ *state.State, done plan.Done) {
				pending <- done
			}), "Loading...")

		s := state.New(10, 10)
		err := NewExecutor().WithCancelGrace(5*time.Millisecond).runStep(ctx, step, s)
		require.ErrorIs(t, err, context.Canceled)

		(<-pending)(nil, setTitle("late"))
		assert.Empty(t, s.Title.Value)
	})
}
