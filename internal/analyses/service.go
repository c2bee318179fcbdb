package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/intent"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/metrics"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/storage/object"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

const (
	startingMessage  = "Starting analysis..."
	completedMessage = "Analysis completed!"
	failedMessage    = "Analysis failed."
	resultFileName   = "result.json"
)

// Service runs at most one analysis at a time and tracks its progress.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Pipeline Pipeline
	Now      func() time.Time

	mu        sync.Mutex
	currentID string
	wg        sync.WaitGroup
}

// Start records a new run and executes the pipeline in the background.
// ErrAlreadyRunning is returned while another run is in flight.
func (s *Service) Start(ctx context.Context, skills []string) (Run, error) {
	skills = cleanSkills(skills)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentID != "" {
		return Run{}, ErrAlreadyRunning
	}
	if s.Pipeline == nil {
		return Run{}, errors.New("analysis pipeline is not configured")
	}

	now := s.now()
	run := Run{
		ID:        uuid.NewString(),
		Skills:    skills,
		Status:    StatusRunning,
		Progress:  0,
		Message:   startingMessage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	s.currentID = run.ID
	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       run.ID,
		"skills":            skills,
		"status":            StatusRunning,
		"status_transition": "idle->running",
	})

	s.wg.Add(1)
	go s.execute(detached(ctx), run)
	return cloneRun(run), nil
}

// Current returns the latest run, or a run in the idle state when nothing
// has ever run.
func (s *Service) Current(ctx context.Context) (Run, error) {
	run, err := s.Repo.Latest(ctx)
	if errors.Is(err, ErrNotFound) {
		return Run{Status: StatusIdle}, nil
	}
	return run, err
}

// Result returns the completed run together with its stored payload.
func (s *Service) Result(ctx context.Context) (Run, json.RawMessage, error) {
	run, body, err := s.OpenResult(ctx)
	if err != nil {
		return run, nil, err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return run, nil, fmt.Errorf("read result %s: %w", run.ResultKey, err)
	}
	return run, json.RawMessage(data), nil
}

// OpenResult opens the stored payload of the latest run. The caller closes
// the reader.
func (s *Service) OpenResult(ctx context.Context) (Run, io.ReadCloser, error) {
	run, err := s.Repo.Latest(ctx)
	if err != nil {
		return Run{}, nil, err
	}
	switch run.Status {
	case StatusCompleted:
	case StatusError:
		return run, nil, ErrFailed
	default:
		return run, nil, ErrPending
	}
	if run.ResultKey == "" {
		return run, nil, ErrNoArtifact
	}
	body, err := s.Store.Open(ctx, run.ResultKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return run, nil, ErrNoArtifact
		}
		return run, nil, fmt.Errorf("open result %s: %w", run.ResultKey, err)
	}
	return run, body, nil
}

// Recover marks a run left running by a previous process as failed. It must
// be called before the service accepts requests.
func (s *Service) Recover(ctx context.Context) error {
	run, err := s.Repo.Latest(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if run.Status != StatusRunning {
		return nil
	}
	now := s.now()
	run.Status = StatusError
	run.Message = failedMessage
	run.Error = "interrupted by restart"
	run.UpdatedAt = now
	run.CompletedAt = &now
	telemetry.Warn("analysis.recovered", map[string]any{"analysis_id": run.ID})
	return s.Repo.Update(ctx, run)
}

// Wait blocks until the in-flight run, if any, has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) execute(ctx context.Context, run Run) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.currentID = ""
		s.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, run, fmt.Errorf("panic: %v", r))
		}
	}()

	var progressMu sync.Mutex
	report := func(progress int, message string) {
		progressMu.Lock()
		defer progressMu.Unlock()
		run.Progress = clampProgress(progress)
		run.Message = message
		run.UpdatedAt = s.now()
		if err := s.Repo.Update(ctx, run); err != nil {
			telemetry.Warn("analysis.progress_update_failed", map[string]any{
				"analysis_id": run.ID,
				"error":       err,
			})
		}
	}

	payload, err := s.Pipeline.Run(ctx, run.Skills, report)
	progressMu.Lock()
	defer progressMu.Unlock()
	if err != nil {
		s.fail(ctx, run, err)
		return
	}
	if !json.Valid(payload) {
		s.fail(ctx, run, errors.New("pipeline produced invalid JSON"))
		return
	}

	key := fmt.Sprintf("analyses/%s/%s", run.ID, resultFileName)
	if _, err := s.Store.Put(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.fail(ctx, run, fmt.Errorf("store result: %w", err))
		return
	}

	completedAt := s.now()
	run.Status = StatusCompleted
	run.Progress = 100
	run.Message = completedMessage
	run.ResultKey = key
	run.UpdatedAt = completedAt
	run.CompletedAt = &completedAt
	if err := s.Repo.Update(ctx, run); err != nil {
		s.fail(ctx, run, fmt.Errorf("set completed: %w", err))
		return
	}
	duration := float64(completedAt.Sub(run.CreatedAt).Microseconds()) / 1000.0
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(duration)
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       run.ID,
		"status":            StatusCompleted,
		"status_transition": "running->completed",
		"result_key":        key,
		"duration_ms":       duration,
	})
}

func (s *Service) fail(ctx context.Context, run Run, cause error) {
	completedAt := s.now()
	run.Status = StatusError
	run.Progress = 0
	run.Message = failedMessage
	run.Error = sanitizeError(cause)
	run.UpdatedAt = completedAt
	run.CompletedAt = &completedAt
	if err := s.Repo.Update(context.Background(), run); err != nil {
		telemetry.Error("analysis.fail_update_failed", map[string]any{
			"analysis_id": run.ID,
			"error":       err,
			"cause":       cause,
		})
	}
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(float64(completedAt.Sub(run.CreatedAt).Microseconds()) / 1000.0)
	telemetry.Warn("analysis.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"analysis_id":       run.ID,
		"status":            StatusError,
		"status_transition": "running->error",
		"error":             run.Error,
	})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	if len(out) == 0 {
		return []string{intent.DefaultSkill}
	}
	return out
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
