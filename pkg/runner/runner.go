// Package runner executes named commands concurrently, each one tracked as a
// loader in a wait.Registry for as long as it runs.
package runner

import (
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/arthur-debert/busy/pkg/errors"
	"github.com/arthur-debert/busy/pkg/logging"
	"github.com/arthur-debert/busy/pkg/wait"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const waitDelay = 2 * time.Second

// Result is the outcome of one job
type Result struct {
	Job      Job
	Err      error
	Duration time.Duration
}

// Options configures a Runner
type Options struct {
	// MaxParallel bounds concurrently running jobs; 0 means unbounded
	MaxParallel int
	// FailFast cancels the remaining jobs after the first failure
	FailFast bool
	// Stdout and Stderr receive job output; nil discards it
	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs jobs under loaders of a registry
type Runner struct {
	reg    *wait.Registry
	opts   Options
	logger zerolog.Logger

	// outMu serialises writes from concurrent jobs
	outMu sync.Mutex
}

// New creates a Runner
func New(reg *wait.Registry, opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Runner{
		reg:    reg,
		opts:   opts,
		logger: logging.GetLogger("runner"),
	}
}

// Run executes jobs and returns one Result per job in input order. The error
// is the first job failure, or nil when every job succeeded.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	done := logging.LogOperationStart(r.logger, "run")
	defer done()

	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	if r.opts.MaxParallel > 0 {
		g.SetLimit(r.opts.MaxParallel)
	}

	// without fail-fast a failed job must not cancel its siblings
	jobCtx := ctx
	if r.opts.FailFast {
		jobCtx = gctx
	}

	var firstErr error
	var errOnce sync.Once

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = r.runOne(jobCtx, job)
			if err := results[i].Err; err != nil {
				errOnce.Do(func() { firstErr = err })
				if r.opts.FailFast {
					return err
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	return results, firstErr
}

func (r *Runner) runOne(ctx context.Context, job Job) Result {
	start := time.Now()
	res := Result{Job: job}

	if err := ctx.Err(); err != nil {
		res.Err = errors.Wrapf(err, errors.ErrJobCancelled, "job %s not started", job.Name).
			WithDetail("job", job.Name)
		return res
	}

	err := r.reg.TrackContext(ctx, job.Name, func(ctx context.Context) error {
		logging.LogCommand(r.logger, job.Command, job.Args)

		cmd := exec.CommandContext(ctx, job.Command, job.Args...)
		// grandchildren holding the output pipes must not block Wait forever
		cmd.WaitDelay = waitDelay
		cmd.Stdout = &lockedWriter{mu: &r.outMu, w: r.opts.Stdout}
		cmd.Stderr = &lockedWriter{mu: &r.outMu, w: r.opts.Stderr}
		return cmd.Run()
	})
	res.Duration = time.Since(start)

	if err != nil {
		code := errors.ErrJobFailed
		if ctx.Err() != nil {
			code = errors.ErrJobCancelled
		}
		res.Err = errors.Wrapf(err, code, "job %s failed", job.Name).
			WithDetail("job", job.Name).
			WithDetail("command", job.String())
		r.logger.Warn().Err(err).Str("job", job.Name).Dur("duration", res.Duration).Msg("Job failed")
		return res
	}

	r.logger.Info().Str("job", job.Name).Dur("duration", res.Duration).Msg("Job finished")
	return res
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
