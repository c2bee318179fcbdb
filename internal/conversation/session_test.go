package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/imagery"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/intent"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/orchestrator"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/remote"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/roles"
)

type scriptedChat struct {
	resp remote.ChatResponse
	err  error
}

func (s scriptedChat) Chat(ctx context.Context, message string) (remote.ChatResponse, error) {
	return s.resp, s.err
}

type scriptedBackend struct {
	mu          sync.Mutex
	startErr    error
	statuses    []remote.Status
	fallback    remote.Status
	resultErr   error
	startSkills [][]string
	resultCalls int
}

func (b *scriptedBackend) StartAnalysis(ctx context.Context, skills []string) (remote.StartResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startSkills = append(b.startSkills, skills)
	return remote.StartResponse{Status: "started"}, b.startErr
}

func (b *scriptedBackend) AnalysisStatus(ctx context.Context) (remote.Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.statuses) == 0 {
		return b.fallback, nil
	}
	next := b.statuses[0]
	b.statuses = b.statuses[1:]
	return next, nil
}

func (b *scriptedBackend) AnalysisResult(ctx context.Context) (remote.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resultCalls++
	if b.resultErr != nil {
		return remote.Result{}, b.resultErr
	}
	return remote.Result{Status: "completed", Data: json.RawMessage(`{"skills_breakdown":[]}`), FilePath: "analyses/1/result.json"}, nil
}

type stepTicker struct{ ch chan time.Time }

func (s *stepTicker) C() <-chan time.Time { return s.ch }
func (s *stepTicker) Stop()               {}

type stepClock struct {
	mu  sync.Mutex
	all []*stepTicker
}

func (c *stepClock) factory(time.Duration) orchestrator.Ticker {
	tk := &stepTicker{ch: make(chan time.Time)}
	c.mu.Lock()
	c.all = append(c.all, tk)
	c.mu.Unlock()
	return tk
}

func (c *stepClock) tick(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	require.NotEmpty(t, c.all)
	tk := c.all[len(c.all)-1]
	c.mu.Unlock()
	select {
	case tk.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("poll loop did not accept tick")
	}
}

func startReply(skills ...string) scriptedChat {
	return scriptedChat{resp: remote.ChatResponse{
		Message: "Great! I'll start a comprehensive analysis.",
		Action:  intent.ActionStartAnalysis,
		Skills:  skills,
	}}
}

func newSession(t *testing.T, chat intent.Chatter, backend *scriptedBackend, opts orchestrator.Options) *Session {
	t.Helper()
	s := New(intent.Router{Remote: chat}, backend, &roles.Resolver{Static: roles.NewStaticSource()}, opts)
	t.Cleanup(s.Close)
	return s
}

func contents(s *Session) []string {
	var out []string
	for _, m := range s.Log.Messages() {
		out = append(out, m.Content)
	}
	return out
}

func countContaining(s *Session, fragment string) int {
	n := 0
	for _, c := range contents(s) {
		if strings.Contains(c, fragment) {
			n++
		}
	}
	return n
}

func TestSendStartsAnalysisAndReportsCompletionOnce(t *testing.T) {
	clock := &stepClock{}
	backend := &scriptedBackend{statuses: []remote.Status{
		{Status: remote.StatusRunning, Progress: 40, Message: "Updating skills from modules."},
		{Status: remote.StatusCompleted, Progress: 100, Message: "Analysis completed!"},
	}}
	s := newSession(t, startReply(), backend, orchestrator.Options{NewTicker: clock.factory})

	reply, err := s.Send(t.Context(), "I want to become a data analyst")
	require.NoError(t, err)
	assert.Equal(t, intent.ActionStartAnalysis, reply.Action)

	job := s.Jobs.Snapshot()
	assert.Equal(t, orchestrator.StatusRunning, job.Status)
	assert.Equal(t, []string{"Data Analyst"}, job.Skills)

	clock.tick(t)
	assert.Eventually(t, func() bool { return s.Jobs.Snapshot().Progress == 40 }, time.Second, 5*time.Millisecond)

	clock.tick(t)
	assert.Eventually(t, func() bool {
		j := s.Jobs.Snapshot()
		return j.Status == orchestrator.StatusCompleted && j.ResultRef != nil
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return countContaining(s, "is complete") == 1 }, time.Second, 5*time.Millisecond)

	msgs := s.Log.Messages()
	require.GreaterOrEqual(t, len(msgs), 3)
	assert.Equal(t, OriginUser, msgs[0].Origin)
	assert.Equal(t, OriginAssistant, msgs[1].Origin)
	assert.Contains(t, msgs[len(msgs)-1].Content, "Data Analyst")
}

func TestSendPrefersRemoteSkills(t *testing.T) {
	backend := &scriptedBackend{fallback: remote.Status{Status: remote.StatusRunning}}
	s := newSession(t, startReply("Cloud Computing"), backend, orchestrator.Options{NewTicker: (&stepClock{}).factory})

	_, err := s.Send(t.Context(), "tell me about nursing")
	require.NoError(t, err)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.startSkills, 1)
	assert.Equal(t, []string{"Cloud Computing"}, backend.startSkills[0])
}

func TestSendWhileRunningReportsConflict(t *testing.T) {
	backend := &scriptedBackend{fallback: remote.Status{Status: remote.StatusRunning}}
	s := newSession(t, startReply(), backend, orchestrator.Options{NewTicker: (&stepClock{}).factory})

	_, err := s.Send(t.Context(), "start")
	require.NoError(t, err)
	_, err = s.Send(t.Context(), "start again")
	require.NoError(t, err)

	assert.Equal(t, 1, countContaining(s, "already in progress"))
	assert.Equal(t, orchestrator.StatusRunning, s.Jobs.Snapshot().Status)
}

func TestSendStartFailureIsDistinctFromConflict(t *testing.T) {
	backend := &scriptedBackend{startErr: &remote.NetworkError{Op: "start_analysis", Err: errors.New("connection refused")}}
	s := newSession(t, startReply(), backend, orchestrator.Options{NewTicker: (&stepClock{}).factory})

	_, err := s.Send(t.Context(), "go")
	require.NoError(t, err)
	assert.Equal(t, 1, countContaining(s, "couldn't start the analysis"))
	assert.Zero(t, countContaining(s, "already in progress"))
	assert.Equal(t, orchestrator.StatusError, s.Jobs.Snapshot().Status)
}

func TestSendRemoteAlreadyRunningAsksToRetry(t *testing.T) {
	clock := &stepClock{}
	backend := &scriptedBackend{startErr: remote.ErrAlreadyRunning}
	s := newSession(t, startReply(), backend, orchestrator.Options{NewTicker: clock.factory})

	_, err := s.Send(t.Context(), "go")
	require.NoError(t, err)

	job := s.Jobs.Snapshot()
	assert.Equal(t, orchestrator.StatusError, job.Status)
	clock.mu.Lock()
	assert.Empty(t, clock.all, "no poll loop may run for a job the backend refused")
	clock.mu.Unlock()

	assert.Equal(t, 1, countContaining(s, "already running on the server"))
	assert.Zero(t, countContaining(s, "I'll let you know"))
	assert.Zero(t, countContaining(s, "couldn't start"))
}

func TestTimeoutAndFailureMessagesDiffer(t *testing.T) {
	clock := &stepClock{}
	backend := &scriptedBackend{fallback: remote.Status{Status: remote.StatusRunning, Progress: 10}}
	s := newSession(t, startReply(), backend, orchestrator.Options{NewTicker: clock.factory, MaxPolls: 2})

	_, err := s.Send(t.Context(), "begin")
	require.NoError(t, err)
	clock.tick(t)
	clock.tick(t)
	assert.Eventually(t, func() bool { return countContaining(s, "longer than expected") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, orchestrator.ErrTimeout.Error(), s.Jobs.Snapshot().Error)

	backend.mu.Lock()
	backend.statuses = []remote.Status{{Status: remote.StatusError, Message: "Analysis failed.", Error: "scraper crashed"}}
	backend.mu.Unlock()

	_, err = s.Send(t.Context(), "begin")
	require.NoError(t, err)
	clock.tick(t)
	assert.Eventually(t, func() bool { return countContaining(s, "scraper crashed") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, countContaining(s, "longer than expected"))
}

func TestResultUnavailableAndCancelled(t *testing.T) {
	clock := &stepClock{}
	backend := &scriptedBackend{
		statuses:  []remote.Status{{Status: remote.StatusCompleted, Progress: 100}},
		resultErr: remote.ErrNotFound,
	}
	s := newSession(t, startReply(), backend, orchestrator.Options{NewTicker: clock.factory})

	_, err := s.Send(t.Context(), "yes")
	require.NoError(t, err)
	clock.tick(t)
	assert.Eventually(t, func() bool { return countContaining(s, "couldn't retrieve the results") == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, countContaining(s, "is complete"))
	assert.Equal(t, orchestrator.StatusCompleted, s.Jobs.Snapshot().Status)

	backend.mu.Lock()
	backend.fallback = remote.Status{Status: remote.StatusRunning}
	backend.mu.Unlock()
	_, err = s.Send(t.Context(), "yes")
	require.NoError(t, err)
	s.Jobs.Stop()
	assert.Equal(t, 1, countContaining(s, "was cancelled"))
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	s := newSession(t, startReply(), &scriptedBackend{}, orchestrator.Options{})
	_, err := s.Send(t.Context(), "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, s.Log.Len())
}

func TestSendUnreachableChatDoesNotStart(t *testing.T) {
	backend := &scriptedBackend{}
	s := newSession(t, scriptedChat{err: &remote.NetworkError{Op: "chat", StatusCode: 503}}, backend, orchestrator.Options{})

	reply, err := s.Send(t.Context(), "data analyst please")
	require.NoError(t, err)
	assert.Contains(t, reply.Content, "trouble connecting")
	assert.Empty(t, backend.startSkills)
	assert.Equal(t, orchestrator.StatusIdle, s.Jobs.Snapshot().Status)
}

func TestViewRoleStates(t *testing.T) {
	s := newSession(t, startReply(), &scriptedBackend{}, orchestrator.Options{})

	page := s.ViewRole(t.Context(), "data-scientist")
	require.Equal(t, PageReady, page.State)
	assert.Equal(t, roles.TierStatic, page.Source)
	assert.LessOrEqual(t, len(page.Content.Skills), roles.MaxSkills)

	page = s.ViewRole(t.Context(), "unknown-role")
	assert.Equal(t, PageNotFound, page.State)
	assert.Equal(t, roleNotFoundMessage, page.Message)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	page = s.ViewRole(ctx, "data-scientist")
	assert.Equal(t, PageError, page.State)
	assert.NotEqual(t, roleNotFoundMessage, page.Message)
}

func TestRolePageImageFailureFallsBackToStableExternal(t *testing.T) {
	resolver := &roles.Resolver{
		Static: roles.NewStaticSource(),
		Assets: roles.MapAssets{"data-scientist": {ImageRef: "/assets/data-scientist.png", ImageQuery: "data scientist"}},
	}
	s := New(intent.Router{Remote: startReply()}, &scriptedBackend{}, resolver, orchestrator.Options{})
	t.Cleanup(s.Close)

	page := s.ViewRole(t.Context(), "data-scientist")
	require.Equal(t, PageReady, page.State)
	assert.Equal(t, "/assets/data-scientist.png", page.Content.ImageURL)

	want := imagery.ExternalURL("data scientist")
	first := page.ImageFailed()
	second := page.ImageFailed()
	assert.Equal(t, want, first)
	assert.Equal(t, first, second)
	assert.Equal(t, want, page.Content.ImageURL)

	fresh := s.ViewRole(t.Context(), "data-scientist")
	assert.Equal(t, "/assets/data-scientist.png", fresh.Content.ImageURL)
}

func TestRolePageImageFailureKeepsRecordQuery(t *testing.T) {
	resolver := &roles.Resolver{
		Static: roles.NewStaticSource(),
		Assets: roles.MapAssets{"data-scientist": {ImageRef: "/assets/data-scientist.png"}},
	}
	s := New(intent.Router{Remote: startReply()}, &scriptedBackend{}, resolver, orchestrator.Options{})
	t.Cleanup(s.Close)

	page := s.ViewRole(t.Context(), "data-scientist")
	require.Equal(t, PageReady, page.State)
	assert.Equal(t, imagery.ExternalURL("data science analytics machine learning"), page.ImageFailed())
}
