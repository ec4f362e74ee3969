package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"delphi/internal/adapters/config"
	"delphi/internal/agents"
	"delphi/internal/cache"
	"delphi/internal/metrics"
	"delphi/pkg/errors"
	"delphi/pkg/logger"
)

// Pseudo agent names used on progress events outside the six steps.
const (
	stageInitializing = "initializing"
	stageComplete     = "complete"
)

// Step is one stage of the analysis pipeline. Run receives the state
// accumulated so far and returns a copy with its own output merged in.
type Step struct {
	Kind   agents.Kind
	Weight int
	Run    func(ctx context.Context, st agents.AnalysisState) (agents.AnalysisState, error)
}

// AnalysisSteps builds the six step descriptors in pipeline order. The
// weights derive the progress breakpoints; they sum to 95 so the stream
// reaches 100 only once the supervisor has finished.
func AnalysisSteps(team *agents.Team) []Step {
	return []Step{
		{Kind: agents.KindNews, Weight: 20, Run: team.AnalyzeNews},
		{Kind: agents.KindMarket, Weight: 15, Run: team.AnalyzeMarket},
		{Kind: agents.KindFundamentals, Weight: 15, Run: team.AnalyzeFundamentals},
		{Kind: agents.KindBull, Weight: 15, Run: team.DebateBull},
		{Kind: agents.KindBear, Weight: 15, Run: team.DebateBear},
		{Kind: agents.KindSupervisor, Weight: 15, Run: team.Supervise},
	}
}

// EmitFunc receives every event of one run, in order. The run waits on each
// call, so implementations should hand off quickly.
type EmitFunc func(Event)

// Runner executes analysis runs step by step, streaming progress events and
// caching completed runs.
type Runner struct {
	steps   []Step
	store   *cache.Store
	timeout time.Duration
	log     *logger.Logger
}

// NewRunner builds a runner over the given steps. A nil store disables
// caching; a zero timeout falls back to five minutes.
func NewRunner(steps []Step, store *cache.Store, cfg config.PipelineConfig, log *logger.Logger) *Runner {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &Runner{
		steps:   steps,
		store:   store,
		timeout: cfg.RunTimeout,
		log:     log.With("component", "pipeline"),
	}
}

// Run executes the full pipeline for one ticker and date. Every event of the
// run, start through the terminal complete or error, reaches emit before Run
// returns; a nil emit discards them. The returned result is the same
// envelope the complete event carries. The first failing step halts the run
// with exactly one error event, and a failed run writes no cache entry.
func (r *Runner) Run(ctx context.Context, ticker, date string, emit EmitFunc) (*agents.Result, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	st := agents.NewState(ticker, date)
	runID := uuid.New().String()
	log := r.log.With("run_id", runID, "ticker", st.Ticker, "date", st.Date)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	log.Infow("analysis run starting", "steps", len(r.steps), "timeout", r.timeout)
	started := time.Now()

	emit(NewStartEvent(st.Ticker, st.Date))
	emit(NewProgressEvent(stageInitializing, 0, "Initializing trading agents..."))
	emit(NewProgressEvent(stageInitializing, 5, "Starting analysis pipeline..."))

	percent := 0
	for _, step := range r.steps {
		percent += step.Weight
		emit(NewProgressEvent(step.Kind.String(), percent, "Running "+step.Kind.DisplayName()+"..."))

		stepStart := time.Now()
		next, err := r.runStep(ctx, step, st)
		if err != nil {
			err = r.failure(step.Kind, err)
			log.Errorw("analysis run failed",
				"step", step.Kind,
				"step_duration", time.Since(stepStart),
				"error", err,
			)
			metrics.RecordPipelineRun(time.Since(started), runStatus(err))
			emit(NewErrorEvent(err.Error()))
			return nil, err
		}

		st = next
		log.Debugw("step finished", "step", step.Kind, "duration", time.Since(stepStart), "progress", percent)
	}

	emit(NewProgressEvent(stageComplete, 100, "Analysis complete!"))

	if r.store != nil {
		if err := r.store.Save(st); err != nil {
			log.Warnw("cache save failed", "error", err)
		}
	}

	result := st.Result()
	metrics.RecordPipelineRun(time.Since(started), "completed")
	log.Infow("analysis run completed",
		"decision", st.Decision,
		"confidence", st.Confidence,
		"duration", time.Since(started),
	)
	emit(NewCompleteEvent(result))
	return result, nil
}

// runStep executes one step with panic recovery. A panicking step surfaces
// as a step error so the run fails the same way as any other step failure.
func (r *Runner) runStep(ctx context.Context, step Step, st agents.AnalysisState) (out agents.AnalysisState, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = st
			err = errors.Wrapf(errors.ErrInternal, "step panicked: %v", rec)
			r.log.Errorf("Step panic recovered in %s: %v", step.Kind, rec)
		}
	}()

	if ctx.Err() != nil {
		return st, ctx.Err()
	}
	return step.Run(ctx, st)
}

// failure maps a step error onto the run-level error the stream reports.
func (r *Runner) failure(kind agents.Kind, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errors.Wrapf(errors.ErrTimeout, "analysis timed out after %s", r.timeout)
	case errors.Is(err, context.Canceled):
		return errors.Wrap(errors.ErrRunAborted, "analysis canceled")
	default:
		return errors.Wrapf(err, "pipeline failed at %s", kind)
	}
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, errors.ErrTimeout):
		return "timeout"
	case errors.Is(err, errors.ErrRunAborted):
		return "canceled"
	default:
		return "failed"
	}
}
