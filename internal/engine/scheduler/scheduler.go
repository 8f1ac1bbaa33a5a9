// Package scheduler runs batches of resolutions against a runtime.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
	"go.trai.ch/pnp/internal/engine/resolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// JobStatus represents the status of a job.
type JobStatus string

const (
	// StatusPending indicates the job is waiting to be resolved.
	StatusPending JobStatus = "Pending"
	// StatusRunning indicates the job is currently resolving.
	StatusRunning JobStatus = "Running"
	// StatusCompleted indicates the job resolved successfully.
	StatusCompleted JobStatus = "Completed"
	// StatusFailed indicates the job could not be resolved.
	StatusFailed JobStatus = "Failed"
	// StatusCached indicates the job reused the result of an identical job of the batch.
	StatusCached JobStatus = "Cached"
)

// Resolver resolves a single request. *resolver.Runtime implements it.
type Resolver interface {
	ResolveRequest(request, issuer string, opts ...resolver.ResolveOption) (string, bool, error)
}

// Job is one request of a batch.
type Job struct {
	Request string
	Issuer  string
}

func (j Job) key() string {
	return j.Request + "\x00" + j.Issuer
}

// Result is the outcome of a job. Builtin is true when the request was left to the platform.
type Result struct {
	Job     Job
	Path    string
	Builtin bool
	Status  JobStatus
	Err     error
}

// Scheduler resolves batches of jobs concurrently. It keeps no per-batch state, so concurrent
// Run calls are safe.
type Scheduler struct {
	telemetry ports.Telemetry
}

// NewScheduler creates a new Scheduler recording every job through telemetry.
func NewScheduler(telemetry ports.Telemetry) *Scheduler {
	return &Scheduler{telemetry: telemetry}
}

// Run resolves jobs with at most parallelism resolutions in flight. Results come back in job
// order. A job identical to an earlier one is resolved once and reported as cached. The
// returned error joins every failure.
func (s *Scheduler) Run(
	ctx context.Context,
	r Resolver,
	jobs []Job,
	parallelism int,
	opts ...resolver.ResolveOption,
) ([]Result, error) {
	if len(jobs) == 0 {
		return nil, domain.ErrNoRequests
	}
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]Result, len(jobs))

	firsts := make(map[string]int, len(jobs))
	var unique []int
	for i, job := range jobs {
		results[i].Job, results[i].Status = job, StatusPending
		if _, seen := firsts[job.key()]; seen {
			continue
		}
		firsts[job.key()] = i
		unique = append(unique, i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, i := range unique {
		g.Go(func() error {
			s.resolve(gctx, r, &results[i], opts)
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for i := range results {
		if first := firsts[results[i].Job.key()]; first != i {
			s.reuse(ctx, &results[i], results[first])
		}

		if results[i].Err != nil {
			wrapped := zerr.With(zerr.Wrap(results[i].Err, "resolution failed"), "request", results[i].Job.Request)
			errs = errors.Join(errs, zerr.With(wrapped, "issuer", results[i].Job.Issuer))
		}
	}

	return results, errs
}

func (s *Scheduler) resolve(ctx context.Context, r Resolver, res *Result, opts []resolver.ResolveOption) {
	_, vertex := s.telemetry.Record(ctx, res.Job.Request, ports.WithGroup(res.Job.Issuer))

	if err := ctx.Err(); err != nil {
		res.Status, res.Err = StatusFailed, err
		vertex.Complete(err)
		return
	}

	res.Status = StatusRunning
	resolved, ok, err := r.ResolveRequest(res.Job.Request, res.Job.Issuer, opts...)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		vertex.Log(domain.LogLevelError, err.Error())
		vertex.Complete(err)
		return
	}

	res.Status, res.Path, res.Builtin = StatusCompleted, resolved, !ok
	if res.Builtin {
		_, _ = fmt.Fprintln(vertex.Stdout(), "builtin")
	} else {
		_, _ = fmt.Fprintln(vertex.Stdout(), resolved)
	}
	vertex.Complete(nil)
}

func (s *Scheduler) reuse(ctx context.Context, res *Result, first Result) {
	_, vertex := s.telemetry.Record(ctx, res.Job.Request, ports.WithGroup(res.Job.Issuer))
	vertex.Cached()

	res.Path, res.Builtin, res.Err = first.Path, first.Builtin, first.Err
	res.Status = StatusCached
	vertex.Complete(first.Err)
}
