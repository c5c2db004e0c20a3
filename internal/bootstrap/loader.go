package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScriptRunner fetches and executes one script.
// RunScript must not return until the script has finished executing.
type ScriptRunner interface {
	RunScript(ctx context.Context, path string) error
}

// Injector inserts style and icon references into a document.
type Injector interface {
	InjectStyle(ctx context.Context, path string) error
	InjectIcon(ctx context.Context, path string) error
}

// Loader runs bootstrap sequences against one runner and injector.
// A Loader holds no state between calls.
type Loader struct {
	runner   ScriptRunner
	injector Injector
	logger   *zap.Logger
	now      func() time.Time
	newRunID func() string
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for progress and failures.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock replaces time.Now for durations in reports.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLoader creates a Loader.
// Panics if runner or injector is nil (programmer error).
func NewLoader(runner ScriptRunner, injector Injector, opts ...Option) *Loader {
	if runner == nil {
		panic("bootstrap: NewLoader runner must not be nil")
	}
	if injector == nil {
		panic("bootstrap: NewLoader injector must not be nil")
	}

	l := &Loader{
		runner:   runner,
		injector: injector,
		logger:   zap.NewNop(),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Report describes the outcome of one Run.
type Report struct {
	RunID        string
	Loaded       []string   // scripts that finished, in order; each path once
	Injected     []Resource // styles and icons injected without error
	InjectErrors []error    // non-fatal style and icon failures
	Completed    bool       // all scripts ran and onComplete was invoked
	Duration     time.Duration
}

// Run validates the manifest, injects styles and icons, then loads scripts
// sequentially. onComplete, if non-nil, is invoked exactly once after the
// last script, and never if a script fails. Run returns after onComplete
// has returned.
//
// An invalid manifest is rejected before any resource is touched. Style and
// icon failures are recorded in the report and do not fail Run. A script
// failure is returned as *ScriptLoadError.
func (l *Loader) Run(ctx context.Context, m Manifest, onComplete func()) (*Report, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	start := l.now()
	runID := l.newRunID()
	log := l.logger.With(zap.String("run_id", runID))
	log.Debug("bootstrap started",
		zap.Int("scripts", len(m.Scripts)),
		zap.Int("styles", len(m.Styles)),
		zap.Int("icons", len(m.Icons)))

	report := &Report{RunID: runID}

	// Styles and icons do not wait for scripts or for each other.
	report.collect(KindStyle, m.Styles, l.injectAll(ctx, log, KindStyle, m.Styles))
	report.collect(KindIcon, m.Icons, l.injectAll(ctx, log, KindIcon, m.Icons))

	c := l.loadScripts(ctx, log, m.Scripts)
	if onComplete != nil {
		// An observer panic is read back through ObserverErr below.
		_ = c.OnComplete(onComplete)
	}
	<-c.Done()

	report.Loaded = c.Loaded()
	report.Duration = l.now().Sub(start)
	if err := c.Err(); err != nil {
		return report, err
	}
	report.Completed = true
	if err := c.ObserverErr(); err != nil {
		log.Error("completion observer failed", zap.Error(err))
		return report, err
	}
	log.Debug("bootstrap completed", zap.Duration("duration", report.Duration))
	return report, nil
}

// LoadScriptsSequentially starts loading scripts in order and returns the
// Completion that resolves after the last one, or at the first failure.
// With no scripts the Completion is already resolved on return.
func (l *Loader) LoadScriptsSequentially(ctx context.Context, paths []string) *Completion {
	log := l.logger.With(zap.String("run_id", l.newRunID()))
	return l.loadScripts(ctx, log, paths)
}

func (l *Loader) loadScripts(ctx context.Context, log *zap.Logger, paths []string) *Completion {
	c := newCompletion()
	if len(paths) == 0 {
		c.resolve(nil, nil)
		return c
	}

	// Copy so callers can reuse their slice while the sequence runs.
	paths = append([]string(nil), paths...)
	go l.runSequence(ctx, log, paths, c)
	return c
}

func (l *Loader) runSequence(ctx context.Context, log *zap.Logger, paths []string, c *Completion) {
	loaded := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))

	for i, p := range paths {
		_, dup := seen[p]
		seen[p] = struct{}{}

		var err error
		switch {
		case ctx.Err() != nil:
			err = ctx.Err()
		case p == "":
			err = ErrEmptyPath
		case dup:
			err = ErrDuplicateScript
		default:
			started := l.now()
			err = l.runScript(ctx, p)
			if err == nil {
				log.Debug("script loaded",
					zap.Int("index", i),
					zap.String("path", p),
					zap.Duration("elapsed", l.now().Sub(started)))
			}
		}

		if err != nil {
			log.Warn("script failed, bootstrap stopped",
				zap.Int("index", i),
				zap.String("path", p),
				zap.Int("skipped", len(paths)-i-1),
				zap.Error(err))
			c.resolve(loaded, &ScriptLoadError{Index: i, Path: p, Err: err})
			return
		}
		loaded = append(loaded, p)
	}

	c.resolve(loaded, nil)
}

// runScript converts a runner panic into a load failure so the sequence
// still resolves.
func (l *Loader) runScript(ctx context.Context, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runner panic: %v", r)
		}
	}()
	return l.runner.RunScript(ctx, path)
}

// InjectStyles injects one style reference per unique path.
// It returns the failures; none of them stops the remaining injections.
func (l *Loader) InjectStyles(ctx context.Context, paths []string) []error {
	return l.injectAll(ctx, l.logger, KindStyle, paths)
}

// InjectIcons injects one icon reference per unique path.
// It returns the failures; none of them stops the remaining injections.
func (l *Loader) InjectIcons(ctx context.Context, paths []string) []error {
	return l.injectAll(ctx, l.logger, KindIcon, paths)
}

func (l *Loader) injectAll(ctx context.Context, log *zap.Logger, kind Kind, paths []string) []error {
	var errs []error
	for _, p := range uniquePaths(paths) {
		if err := l.inject(ctx, kind, p); err != nil {
			ierr := &InjectError{Resource: Resource{Path: p, Kind: kind}, Err: err}
			log.Warn("resource injection failed",
				zap.Stringer("kind", kind),
				zap.String("path", p),
				zap.Error(err))
			errs = append(errs, ierr)
		}
	}
	return errs
}

func (l *Loader) inject(ctx context.Context, kind Kind, path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	switch kind {
	case KindStyle:
		return l.injector.InjectStyle(ctx, path)
	case KindIcon:
		return l.injector.InjectIcon(ctx, path)
	default:
		return fmt.Errorf("cannot inject %s %q", kind, path)
	}
}

// collect records which paths of kind were injected and which failed.
func (r *Report) collect(kind Kind, paths []string, errs []error) {
	failed := make(map[string]struct{}, len(errs))
	for _, err := range errs {
		var ierr *InjectError
		if errors.As(err, &ierr) {
			failed[ierr.Resource.Path] = struct{}{}
		}
	}
	for _, p := range uniquePaths(paths) {
		if _, ok := failed[p]; ok {
			continue
		}
		r.Injected = append(r.Injected, Resource{Path: p, Kind: kind})
	}
	r.InjectErrors = append(r.InjectErrors, errs...)
}
