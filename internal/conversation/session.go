// Package conversation ties the chat router, the analysis orchestrator and
// the role resolver into one user-facing session.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/intent"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/orchestrator"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/roles"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

var ErrEmptyMessage = errors.New("message is empty")

// Session is a single user's conversation.
type Session struct {
	Router intent.Router
	Jobs   *orchestrator.Orchestrator
	Roles  *roles.Resolver
	Log    *Log
	Now    func() time.Time

	mu        sync.Mutex
	completed map[uint64]bool
}

// New builds a session whose orchestrator reports back into the log.
func New(router intent.Router, backend orchestrator.Remote, resolver *roles.Resolver, opts orchestrator.Options) *Session {
	s := &Session{
		Router:    router,
		Roles:     resolver,
		Log:       &Log{},
		Now:       time.Now,
		completed: map[uint64]bool{},
	}
	opts.Notifier = s
	s.Jobs = orchestrator.New(backend, opts)
	return s
}

// Greet appends the opening assistant message.
func (s *Session) Greet() ChatMessage {
	return s.say(welcomeMessage, nil, "")
}

// Send records the user's message, routes it and records the reply. When the
// reply asks for an analysis the resolved skills are handed to the
// orchestrator and any start failure is written to the log.
func (s *Session) Send(ctx context.Context, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	s.Log.Append(ChatMessage{Origin: OriginUser, Content: text, Timestamp: s.now()})

	reply := s.Router.Route(ctx, text)
	msg := s.say(reply.Message, reply.Suggestions, reply.Action)
	if !reply.StartsAnalysis() || s.Jobs == nil {
		return msg, nil
	}

	skills := intent.ResolveSkills(reply)
	if job, err := s.Jobs.Start(ctx, skills); err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrRemoteBusy):
			s.say(remoteBusyMessage, nil, "")
		case errors.Is(err, orchestrator.ErrConflict):
			s.say(conflictMessage, nil, "")
		default:
			reason := job.Error
			if reason == "" {
				reason = err.Error()
			}
			s.say(fmt.Sprintf(startFailedMessage, reason), nil, "")
		}
		telemetry.Warn("conversation.start_failed", map[string]any{"skills": skills, "error": err})
	}
	return msg, nil
}

// Close stops any running job and releases the orchestrator.
func (s *Session) Close() {
	if s.Jobs != nil {
		s.Jobs.Close()
	}
}

func (s *Session) AnalysisCompleted(job orchestrator.Job) {
	s.mu.Lock()
	seen := s.completed[job.Generation]
	s.completed[job.Generation] = true
	s.mu.Unlock()
	if seen {
		return
	}
	s.say(fmt.Sprintf(completedMessage, skillList(job.Skills)), nil, "")
}

func (s *Session) AnalysisFailed(job orchestrator.Job) {
	reason := job.Error
	if reason == "" {
		reason = job.Message
	}
	if reason == "" {
		reason = "unknown error"
	}
	s.say(fmt.Sprintf(failedMessage, reason), nil, "")
}

func (s *Session) AnalysisTimedOut(orchestrator.Job) {
	s.say(timeoutMessage, nil, "")
}

func (s *Session) AnalysisCancelled(orchestrator.Job) {
	s.say(cancelledMessage, nil, "")
}

func (s *Session) ResultUnavailable(job orchestrator.Job, err error) {
	telemetry.Warn("conversation.result_unavailable", map[string]any{"generation": job.Generation, "error": err})
	s.say(resultUnavailableMessage, nil, "")
}

func (s *Session) say(content string, suggestions []string, action string) ChatMessage {
	m := ChatMessage{
		Origin:      OriginAssistant,
		Content:     content,
		Timestamp:   s.now(),
		Suggestions: suggestions,
		Action:      action,
	}
	s.Log.Append(m)
	return m
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func skillList(skills []string) string {
	if len(skills) == 0 {
		return intent.DefaultSkill
	}
	return strings.Join(skills, ", ")
}
