// Package worker runs save jobs off the UI goroutine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/itohio/emgplot/pkg/render"
)

var (
	// ErrBusy is returned by Start while another job is running.
	ErrBusy = errors.New("a render job is already running")
	// ErrNoOutput is returned by Start for requests that render on screen.
	ErrNoOutput = errors.New("render job needs an output file")
)

// EventKind tells what an Event reports.
type EventKind int

const (
	Progress EventKind = iota
	Done
	Failed
)

func (k EventKind) String() string {
	switch k {
	case Progress:
		return "progress"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a job status update.
type Event struct {
	Kind    EventKind
	Message string         // Progress text
	Result  *render.Result // Done only
	Err     error          // Failed only
}

// RenderFunc renders a request. render.Render in production.
type RenderFunc func(ctx context.Context, req render.Request) (*render.Result, error)

// Runner executes at most one job at a time.
type Runner struct {
	render RenderFunc
	logger *logrus.Entry

	mu  sync.Mutex
	job *Job
}

// New creates a runner. A nil fn uses render.Render.
func New(fn RenderFunc) *Runner {
	if fn == nil {
		fn = render.Render
	}
	return &Runner{
		render: fn,
		logger: logrus.WithField("tag", "worker"),
	}
}

// Job is one running render.
type Job struct {
	ID uuid.UUID

	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
}

// Events delivers Progress updates followed by exactly one Done or Failed
// event. The channel is closed afterwards.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Wait blocks until the job has finished.
func (j *Job) Wait() {
	<-j.done
}

// Start launches req in the background. Events are buffered so a slow
// reader never blocks the render.
func (r *Runner) Start(ctx context.Context, req render.Request) (*Job, error) {
	if req.Output == "" {
		return nil, ErrNoOutput
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job != nil {
		return nil, ErrBusy
	}

	ctx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:     uuid.New(),
		events: make(chan Event, 4),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.job = job

	go r.run(ctx, job, req)
	return job, nil
}

func (r *Runner) run(ctx context.Context, job *Job, req render.Request) {
	logger := r.logger.WithField("job", job.ID)

	job.events <- Event{Kind: Progress, Message: fmt.Sprintf("Rendering %s", req.CSVPath)}
	logger.WithField("output", req.Output).Debug("job started")

	var final Event
	res, err := r.render(ctx, req)
	if err != nil {
		logger.WithError(err).Warn("job failed")
		final = Event{Kind: Failed, Err: err}
	} else {
		job.events <- Event{Kind: Progress, Message: fmt.Sprintf("Wrote %d file(s)", len(res.Files))}
		logger.WithField("files", res.Files).Debug("job done")
		final = Event{Kind: Done, Result: res}
	}

	// The runner is free again by the time the final event is observed.
	job.cancel()
	r.mu.Lock()
	r.job = nil
	r.mu.Unlock()

	job.events <- final
	close(job.events)
	close(job.done)
}

// Cancel cancels the running job, if any.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.job != nil {
		r.job.cancel()
	}
}

// Running reports whether a job is in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.job != nil
}
