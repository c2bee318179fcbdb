package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/roles"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/storage/object/local"
)

// gatedPipeline blocks until release is closed, then returns payload.
type gatedPipeline struct {
	release  chan struct{}
	reported chan int
	payload  json.RawMessage
	err      error
}

func newGatedPipeline(payload string) *gatedPipeline {
	return &gatedPipeline{
		release:  make(chan struct{}),
		reported: make(chan int, 8),
		payload:  json.RawMessage(payload),
	}
}

func (g *gatedPipeline) Run(ctx context.Context, skills []string, report ProgressFunc) (json.RawMessage, error) {
	report(40, "Updating skills from modules.")
	g.reported <- 40
	<-g.release
	return g.payload, g.err
}

func setupService(t *testing.T, p Pipeline) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo, Store: local.New(t.TempDir()), Pipeline: p}
	t.Cleanup(svc.Wait)
	return svc, repo
}

func TestServiceRunsToCompletionAndStoresResult(t *testing.T) {
	p := newGatedPipeline(`{"skills_breakdown":[{"skill":"SQL"}]}`)
	svc, _ := setupService(t, p)

	run, err := svc.Start(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Analyst"}, run.Skills)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, startingMessage, run.Message)

	<-p.reported
	current, err := svc.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, current.Status)
	assert.Equal(t, 40, current.Progress)

	_, _, err = svc.Result(t.Context())
	require.ErrorIs(t, err, ErrPending)

	close(p.release)
	svc.Wait()

	current, err = svc.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, current.Status)
	assert.Equal(t, 100, current.Progress)
	assert.Equal(t, completedMessage, current.Message)
	assert.Equal(t, "analyses/"+run.ID+"/result.json", current.ResultKey)
	require.NotNil(t, current.CompletedAt)

	got, data, err := svc.Result(t.Context())
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.JSONEq(t, `{"skills_breakdown":[{"skill":"SQL"}]}`, string(data))
}

func TestServiceRejectsConcurrentStart(t *testing.T) {
	p := newGatedPipeline(`{}`)
	svc, _ := setupService(t, p)

	first, err := svc.Start(t.Context(), []string{"Nurse"})
	require.NoError(t, err)
	_, err = svc.Start(t.Context(), []string{"Teacher"})
	require.ErrorIs(t, err, ErrAlreadyRunning)

	close(p.release)
	svc.Wait()

	second, err := svc.Start(t.Context(), []string{"Teacher"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	svc.Wait()
}

func TestServicePipelineFailure(t *testing.T) {
	p := newGatedPipeline("")
	p.err = errors.New("scraper crashed\nstack")
	svc, _ := setupService(t, p)

	_, err := svc.Start(t.Context(), []string{"Writer"})
	require.NoError(t, err)
	close(p.release)
	svc.Wait()

	current, err := svc.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusError, current.Status)
	assert.Equal(t, failedMessage, current.Message)
	assert.Equal(t, "scraper crashed stack", current.Error)

	_, _, err = svc.Result(t.Context())
	require.ErrorIs(t, err, ErrFailed)
}

func TestServiceRejectsInvalidPayload(t *testing.T) {
	p := newGatedPipeline(`{not json`)
	svc, _ := setupService(t, p)

	_, err := svc.Start(t.Context(), nil)
	require.NoError(t, err)
	close(p.release)
	svc.Wait()

	current, err := svc.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusError, current.Status)
}

func TestServiceRecoversPanickingPipeline(t *testing.T) {
	svc, _ := setupService(t, PipelineFunc(func(ctx context.Context, skills []string, report ProgressFunc) (json.RawMessage, error) {
		panic("boom")
	}))

	_, err := svc.Start(t.Context(), nil)
	require.NoError(t, err)
	svc.Wait()

	current, err := svc.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusError, current.Status)
	assert.Contains(t, current.Error, "panic: boom")
}

func TestServiceIdleWhenNothingRan(t *testing.T) {
	svc, _ := setupService(t, newGatedPipeline(`{}`))

	current, err := svc.Current(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, current.Status)

	_, _, err = svc.Result(t.Context())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceRecoverMarksOrphanedRun(t *testing.T) {
	svc, repo := setupService(t, newGatedPipeline(`{}`))
	require.NoError(t, repo.Create(t.Context(), Run{ID: "orphan", Status: StatusRunning, CreatedAt: time.Now()}))

	require.NoError(t, svc.Recover(t.Context()))
	run, err := repo.GetByID(t.Context(), "orphan")
	require.NoError(t, err)
	assert.Equal(t, StatusError, run.Status)
	assert.NotEmpty(t, run.Error)
}

func TestCatalogPipelineReportsStagesAndUsesRole(t *testing.T) {
	p := &CatalogPipeline{
		Roles: &roles.Resolver{Static: roles.NewStaticSource()},
		Now:   func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
	var progress []int
	raw, err := p.Run(t.Context(), []string{"Data Scientist"}, func(pct int, _ string) {
		progress = append(progress, pct)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 20, 50, 80, 95}, progress)

	var out struct {
		Metadata struct {
			RoleSource string `json:"role_source"`
		} `json:"analysis_metadata"`
		Role struct {
			Role string `json:"role"`
		} `json:"role"`
		SkillsBreakdown []skillEntry `json:"skills_breakdown"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, roles.TierStatic, out.Metadata.RoleSource)
	assert.Equal(t, "Data Scientist", out.Role.Role)
	assert.Len(t, out.SkillsBreakdown, roles.MaxSkills)
	assert.Equal(t, 1, out.SkillsBreakdown[0].Rank)
}

func TestCatalogPipelineUnknownRoleFallsBackToSkills(t *testing.T) {
	p := &CatalogPipeline{Roles: &roles.Resolver{Static: roles.NewStaticSource()}}
	raw, err := p.Run(t.Context(), []string{"Astronaut", "Pilot"}, func(int, string) {})
	require.NoError(t, err)

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Nil(t, out.Role)
	require.Len(t, out.SkillsBreakdown, 2)
	assert.Equal(t, "Pilot", out.SkillsBreakdown[1].Skill)
}

func TestCatalogPipelineStopsOnCancel(t *testing.T) {
	p := &CatalogPipeline{StageDelay: time.Hour}
	ctx, cancel := context.WithCancel(t.Context())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := p.Run(ctx, []string{"Nurse"}, func(int, string) { calls++ })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
