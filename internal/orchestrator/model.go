package orchestrator

import (
	"context"
	"time"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/remote"
)

// Status of the tracked analysis job.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Terminal reports whether polling must stop in this state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job is a copy of the tracked analysis state.
type Job struct {
	Status     Status         `json:"status"`
	Progress   int            `json:"progress"`
	Message    string         `json:"message"`
	ResultRef  *remote.Result `json:"resultRef,omitempty"`
	Error      string         `json:"error,omitempty"`
	Skills     []string       `json:"skills,omitempty"`
	Generation uint64         `json:"generation"`
	StartedAt  time.Time      `json:"startedAt,omitzero"`
}

func (j Job) clone() Job {
	out := j
	out.Skills = append([]string(nil), j.Skills...)
	if j.ResultRef != nil {
		ref := *j.ResultRef
		out.ResultRef = &ref
	}
	return out
}

// Remote is the analysis backend.
type Remote interface {
	StartAnalysis(ctx context.Context, skills []string) (remote.StartResponse, error)
	AnalysisStatus(ctx context.Context) (remote.Status, error)
	AnalysisResult(ctx context.Context) (remote.Result, error)
}

// Notifier receives the asynchronous outcomes of a job. Start failures are
// reported only through Start's return value. Callbacks run on the polling
// goroutine and must not call Close.
type Notifier interface {
	AnalysisCompleted(job Job)
	AnalysisFailed(job Job)
	AnalysisTimedOut(job Job)
	AnalysisCancelled(job Job)
	ResultUnavailable(job Job, err error)
}

// Ticker delivers poll ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Options tunes polling. Zero values select the defaults.
type Options struct {
	Interval   time.Duration
	MaxPolls   int
	MaxElapsed time.Duration
	Notifier   Notifier
	NewTicker  func(time.Duration) Ticker
	Now        func() time.Time
}

const (
	DefaultInterval   = 2 * time.Second
	DefaultMaxPolls   = 500
	DefaultMaxElapsed = 30 * time.Minute

	startingMessage = "Starting analysis..."
)

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = DefaultMaxPolls
	}
	if o.MaxElapsed <= 0 {
		o.MaxElapsed = DefaultMaxElapsed
	}
	if o.NewTicker == nil {
		o.NewTicker = newRealTicker
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
