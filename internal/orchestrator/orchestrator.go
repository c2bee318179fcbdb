// Package orchestrator owns the single tracked analysis job: it starts the
// remote task, polls its status while running and fetches the result once.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/remote"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/metrics"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// Orchestrator drives one analysis job at a time. All mutation happens
// inside the orchestrator; callers read through Snapshot and Subscribe.
type Orchestrator struct {
	remote Remote
	opts   Options

	mu         sync.Mutex
	job        Job
	generation uint64
	fetchedGen uint64
	cancel     context.CancelFunc
	subs       map[int]chan Job
	nextSub    int
	closed     bool
	wg         sync.WaitGroup
}

// New returns an idle orchestrator.
func New(r Remote, opts Options) *Orchestrator {
	return &Orchestrator{
		remote: r,
		opts:   opts.withDefaults(),
		job:    Job{Status: StatusIdle},
		subs:   make(map[int]chan Job),
	}
}

// Snapshot returns a copy of the current job.
func (o *Orchestrator) Snapshot() Job {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job.clone()
}

// Subscribe returns a channel that always holds the latest job state. Slow
// readers miss intermediate states, never the most recent one. The returned
// func unsubscribes.
func (o *Orchestrator) Subscribe() (<-chan Job, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch := make(chan Job, 1)
	if o.closed {
		close(ch)
		return ch, func() {}
	}
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	ch <- o.job.clone()
	return ch, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if sub, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(sub)
		}
	}
}

// Start begins a new analysis for skills. It returns ErrConflict, leaving
// the job untouched, while another analysis is running.
func (o *Orchestrator) Start(ctx context.Context, skills []string) (Job, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return Job{}, ErrClosed
	}
	if o.job.Status == StatusRunning {
		snap := o.job.clone()
		o.mu.Unlock()
		return snap, ErrConflict
	}
	if o.cancel != nil {
		o.cancel()
	}
	o.generation++
	gen := o.generation
	from := o.job.Status
	loopCtx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.job = Job{
		Status:     StatusRunning,
		Progress:   0,
		Message:    startingMessage,
		Skills:     append([]string(nil), skills...),
		Generation: gen,
		StartedAt:  o.opts.Now(),
	}
	o.publishLocked()
	o.mu.Unlock()

	logTransition(from, StatusRunning, gen, nil)

	if _, err := o.remote.StartAnalysis(ctx, skills); err != nil {
		cancel()
		if errors.Is(err, remote.ErrAlreadyRunning) {
			o.forceError(gen, "analysis already running on the server", err.Error())
			return o.Snapshot(), fmt.Errorf("%w: %w: %v", ErrConflict, ErrRemoteBusy, err)
		}
		o.forceError(gen, "Analysis could not be started.", err.Error())
		return o.Snapshot(), fmt.Errorf("start analysis: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || gen != o.generation || o.job.Status != StatusRunning {
		cancel()
		return o.job.clone(), nil
	}
	ticker := o.opts.NewTicker(o.opts.Interval)
	o.wg.Add(1)
	go o.run(loopCtx, gen, ticker)
	return o.job.clone(), nil
}

// Stop cancels the running analysis, if any. The job ends in error with
// reason "cancelled".
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.job.Status != StatusRunning {
		o.mu.Unlock()
		return
	}
	gen := o.generation
	o.job.Status = StatusError
	o.job.Error = ErrCancelled.Error()
	o.job.Message = "Analysis cancelled."
	o.publishLocked()
	snap := o.job.clone()
	o.mu.Unlock()

	logTransition(StatusRunning, StatusError, gen, map[string]any{"reason": snap.Error})
	if n := o.opts.Notifier; n != nil {
		n.AnalysisCancelled(snap)
	}
}

// Close stops polling, waits for the poll loop to exit and closes every
// subscription. It must not be called from a Notifier callback.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	o.Stop()
	o.wg.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, ticker Ticker) {
	defer o.wg.Done()
	defer ticker.Stop()

	started := o.opts.Now()
	polls := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
		if !o.isLive(gen) {
			return
		}

		polls++
		status, err := o.remote.AnalysisStatus(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			metrics.IncPollTick("failed")
			telemetry.Warn("analysis.poll_failed", map[string]any{
				"generation": gen,
				"poll":       polls,
				"error":      err,
			})
		} else {
			metrics.IncPollTick(pollLabel(status.Status))
			switch o.apply(gen, status) {
			case StatusCompleted:
				o.fetchResult(ctx, gen)
				return
			case StatusError:
				return
			}
		}

		if polls >= o.opts.MaxPolls || o.opts.Now().Sub(started) >= o.opts.MaxElapsed {
			o.timeout(gen, polls)
			return
		}
	}
}

func (o *Orchestrator) isLive(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen == o.generation && o.job.Status == StatusRunning
}

// apply copies a polled status onto the job and returns the terminal state it
// reached, or "" when the job is still running or the response was stale.
func (o *Orchestrator) apply(gen uint64, st remote.Status) Status {
	o.mu.Lock()
	if gen != o.generation || o.job.Status != StatusRunning {
		o.mu.Unlock()
		telemetry.Info("analysis.poll_discarded", map[string]any{"generation": gen, "status": st.Status})
		return ""
	}

	switch Status(st.Status) {
	case StatusRunning:
		o.job.Progress = st.Progress
		o.job.Message = st.Message
		o.publishLocked()
		o.mu.Unlock()
		return ""
	case StatusCompleted:
		o.job.Status = StatusCompleted
		o.job.Progress = st.Progress
		if o.job.Progress == 0 {
			o.job.Progress = 100
		}
		o.job.Message = st.Message
		o.publishLocked()
		o.mu.Unlock()
		logTransition(StatusRunning, StatusCompleted, gen, nil)
		return StatusCompleted
	case StatusError:
		o.job.Status = StatusError
		o.job.Progress = st.Progress
		o.job.Message = st.Message
		o.job.Error = st.Error
		if o.job.Error == "" {
			o.job.Error = "analysis failed"
		}
		o.publishLocked()
		snap := o.job.clone()
		o.mu.Unlock()
		logTransition(StatusRunning, StatusError, gen, map[string]any{"reason": snap.Error})
		if n := o.opts.Notifier; n != nil {
			n.AnalysisFailed(snap)
		}
		return StatusError
	default:
		// idle means the backend has not picked the task up yet.
		o.mu.Unlock()
		return ""
	}
}

// fetchResult retrieves the final payload at most once per job.
func (o *Orchestrator) fetchResult(ctx context.Context, gen uint64) {
	o.mu.Lock()
	if gen != o.generation || o.fetchedGen == gen || o.job.Status != StatusCompleted {
		o.mu.Unlock()
		return
	}
	o.fetchedGen = gen
	o.mu.Unlock()

	result, err := o.remote.AnalysisResult(ctx)

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}
	if err == nil {
		o.job.ResultRef = &result
		o.publishLocked()
	}
	snap := o.job.clone()
	o.mu.Unlock()

	n := o.opts.Notifier
	if err != nil {
		telemetry.Error("analysis.result_unavailable", map[string]any{"generation": gen, "error": err})
		if n != nil {
			n.ResultUnavailable(snap, err)
		}
		return
	}
	telemetry.Info("analysis.result_fetched", map[string]any{"generation": gen, "file_path": result.FilePath})
	if n != nil {
		n.AnalysisCompleted(snap)
	}
}

func (o *Orchestrator) timeout(gen uint64, polls int) {
	o.mu.Lock()
	if gen != o.generation || o.job.Status != StatusRunning {
		o.mu.Unlock()
		return
	}
	o.job.Status = StatusError
	o.job.Error = ErrTimeout.Error()
	o.job.Message = "Analysis timed out."
	o.publishLocked()
	snap := o.job.clone()
	o.mu.Unlock()

	logTransition(StatusRunning, StatusError, gen, map[string]any{"reason": snap.Error, "polls": polls})
	if n := o.opts.Notifier; n != nil {
		n.AnalysisTimedOut(snap)
	}
}

func (o *Orchestrator) forceError(gen uint64, message, reason string) {
	o.mu.Lock()
	if gen != o.generation || o.job.Status != StatusRunning {
		o.mu.Unlock()
		return
	}
	o.job.Status = StatusError
	o.job.Message = message
	o.job.Error = reason
	o.publishLocked()
	o.mu.Unlock()
	logTransition(StatusRunning, StatusError, gen, map[string]any{"reason": reason})
}

// publishLocked pushes the current job to every subscriber, replacing any
// value the subscriber has not read yet.
func (o *Orchestrator) publishLocked() {
	snap := o.job.clone()
	for _, ch := range o.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// pollLabel bounds the metric label to the known job states.
func pollLabel(status string) string {
	switch s := Status(status); s {
	case StatusIdle, StatusRunning, StatusCompleted, StatusError:
		return string(s)
	}
	return "other"
}

func logTransition(from, to Status, gen uint64, extra map[string]any) {
	fields := map[string]any{
		"status_transition": string(from) + "->" + string(to),
		"generation":        gen,
	}
	for k, v := range extra {
		fields[k] = v
	}
	if to == StatusError {
		telemetry.Error("analysis.status", fields)
		return
	}
	telemetry.Info("analysis.status", fields)
}
