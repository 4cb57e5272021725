package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"pianoclips/internal/config"
	"pianoclips/internal/keyboard"
	"pianoclips/internal/layout"
	"pianoclips/internal/ledger"
	"pianoclips/internal/logging"
	"pianoclips/internal/preflight"
	"pianoclips/internal/services"
	"pianoclips/internal/stage"
	"pianoclips/internal/stageexec"
)

// Ledger is the run history the runner writes to. *ledger.Store satisfies it.
type Ledger interface {
	stageexec.ArtifactRecorder
	BeginRun(ctx context.Context, run ledger.Run) error
	FinishRun(ctx context.Context, id string, status ledger.Status, completedKeys int, errMessage string) error
}

// PreflightFunc validates the environment before any key is processed.
type PreflightFunc func(ctx context.Context, cfg *config.Config) error

// Preflight runs every environment check and fails on the first report with
// failures.
func Preflight(ctx context.Context, cfg *config.Config) error {
	return preflight.Failed(preflight.RunAll(ctx, cfg))
}

// Options configures a Runner.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	Stages    []stage.Handler
	Keyboard  keyboard.Keyboard
	Ledger    Ledger
	Preflight PreflightFunc
}

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Keys      int
	Completed int
	Elapsed   time.Duration
}

// Runner executes the stages for each key.
type Runner struct {
	cfg       *config.Config
	base      *slog.Logger
	logger    *slog.Logger
	stages    []stage.Handler
	keyboard  keyboard.Keyboard
	ledger    Ledger
	preflight PreflightFunc
	layout    layout.Layout
	workers   int
}

// NewRunner validates opts and constructs a runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline requires a config")
	}
	if len(opts.Stages) == 0 {
		return nil, errors.New("pipeline stages not configured")
	}
	if opts.Keyboard.Len() == 0 {
		return nil, errors.New("keyboard range is empty")
	}
	workers := opts.Config.Pipeline.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > opts.Keyboard.Len() {
		workers = opts.Keyboard.Len()
	}
	base := opts.Logger
	if base == nil {
		base = logging.NewNop()
	}
	return &Runner{
		cfg:       opts.Config,
		base:      base,
		logger:    logging.NewComponentLogger(base, "pipeline"),
		stages:    opts.Stages,
		keyboard:  opts.Keyboard,
		ledger:    opts.Ledger,
		preflight: opts.Preflight,
		layout:    layout.New(opts.Config.Paths),
		workers:   workers,
	}, nil
}

// Run processes every key. It returns the first stage error, after which no
// further keys are started.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Keys: r.keyboard.Len()}
	started := time.Now()

	if err := r.cfg.EnsureDirectories(); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "ensure directories", "", err)
	}

	lock := flock.New(r.layout.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return summary, fmt.Errorf("another pianoclips run is using %s", r.layout.Root())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release results lock", logging.Error(err))
		}
	}()

	if r.preflight != nil {
		if err := r.preflight(ctx, r.cfg); err != nil {
			return summary, services.Wrap(services.ErrConfiguration, "pipeline", "preflight", "", err)
		}
	}
	if err := r.checkStages(ctx); err != nil {
		return summary, err
	}

	summary.RunID = uuid.NewString()
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	for _, handler := range r.stages {
		if aware, ok := handler.(stage.LoggerAware); ok {
			aware.SetLogger(logging.WithContext(ctx, r.base))
		}
	}

	if r.ledger != nil {
		err := r.ledger.BeginRun(context.WithoutCancel(ctx), ledger.Run{
			ID:           summary.RunID,
			StartedAt:    started,
			FirstKey:     r.cfg.Keyboard.FirstKey,
			LastKey:      r.cfg.Keyboard.LastKey,
			KeyCount:     summary.Keys,
			Workers:      r.workers,
			Instrument:   r.cfg.Note.Instrument,
			SpeechEngine: r.cfg.Speech.Engine,
		})
		if err != nil {
			return summary, fmt.Errorf("record run start: %w", err)
		}
	}

	logger.Info("generation started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("keys", summary.Keys),
		logging.Int("workers", r.workers),
	)

	var runErr error
	if r.workers == 1 {
		summary.Completed, runErr = r.runSequential(ctx, logger)
	} else {
		summary.Completed, runErr = r.runPool(ctx, logger)
	}
	summary.Elapsed = time.Since(started)

	r.finish(ctx, logger, summary, runErr)
	return summary, runErr
}

func (r *Runner) checkStages(ctx context.Context) error {
	var problems []string
	for _, handler := range r.stages {
		health := handler.HealthCheck(ctx)
		if !health.Ready {
			problems = append(problems, fmt.Sprintf("%s: %s", handler.Name(), health.Detail))
		}
	}
	if len(problems) > 0 {
		return services.Wrap(services.ErrConfiguration, "pipeline", "health check", strings.Join(problems, "; "), nil)
	}
	return nil
}

func (r *Runner) runSequential(ctx context.Context, logger *slog.Logger) (int, error) {
	completed := 0
	for _, key := range r.keyboard.Keys() {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		if err := r.processKey(ctx, logger, key); err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}

func (r *Runner) runPool(ctx context.Context, logger *slog.Logger) (int, error) {
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		once      sync.Once
		firstErr  error
		completed atomic.Int64
	)
	jobs := make(chan keyboard.Key)

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				if err := r.processKey(poolCtx, logger, key); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				completed.Add(1)
			}
		}()
	}

feed:
	for _, key := range r.keyboard.Keys() {
		select {
		case <-poolCtx.Done():
			break feed
		case jobs <- key:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return int(completed.Load()), firstErr
}

func (r *Runner) processKey(ctx context.Context, logger *slog.Logger, key keyboard.Key) error {
	item := stage.NewItem(key)
	started := time.Now()
	var recorder stageexec.ArtifactRecorder
	if r.ledger != nil {
		recorder = r.ledger
	}
	runID, _ := services.RunIDFromContext(ctx)
	for _, handler := range r.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := stageexec.Run(ctx, stageexec.Options{
			Logger:   logger,
			Recorder: recorder,
			Handler:  handler,
			Item:     item,
			RunID:    runID,
		})
		if err != nil {
			return err
		}
	}
	logger.Debug("key complete",
		logging.Int(logging.FieldKeyIndex, key.Index),
		logging.String(logging.FieldKeyName, key.Name),
		logging.Elapsed(time.Since(started)),
	)
	return nil
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, summary Summary, runErr error) {
	status := ledger.StatusSucceeded
	message := ""
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		status = ledger.StatusCancelled
		message = runErr.Error()
	default:
		status = ledger.StatusFailed
		message = runErr.Error()
	}

	if r.ledger != nil {
		if err := r.ledger.FinishRun(context.WithoutCancel(ctx), summary.RunID, status, summary.Completed, message); err != nil {
			logger.Warn("failed to record run result", logging.Error(err))
		}
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("status", string(status)),
		logging.Int("completed_keys", summary.Completed),
		logging.Int("keys", summary.Keys),
		logging.Elapsed(summary.Elapsed),
	}
	if runErr != nil {
		attrs = append(attrs, logging.Error(runErr))
		logger.Error("generation stopped", logging.Args(attrs...)...)
		return
	}
	logger.Info("generation finished", logging.Args(attrs...)...)
}
