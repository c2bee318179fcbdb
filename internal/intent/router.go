// Package intent turns free-text chat into a structured reply and decides
// which skills an analysis should start with.
package intent

import (
	"context"
	"errors"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/remote"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

// Chatter is the remote chat capability.
type Chatter interface {
	Chat(ctx context.Context, message string) (remote.ChatResponse, error)
}

// Reply is the routed answer to one user message.
type Reply struct {
	Message      string
	Suggestions  []string
	Action       string
	Skills       []string
	RemoteSkills []string
	Failed       bool
}

// StartsAnalysis reports whether the reply asks for an analysis.
func (r Reply) StartsAnalysis() bool {
	return r.Action == ActionStartAnalysis
}

const (
	unreachableReply = "Sorry, I'm having trouble connecting to the server right now. Please try again in a moment."
	badReplyReply    = "Sorry, I received a response I couldn't understand. Please try again."
)

// Router routes chat text through the remote assistant.
type Router struct {
	Remote Chatter
}

// Route never returns an error. Remote failures produce a locally written
// apology so the conversation stays usable.
func (r Router) Route(ctx context.Context, text string) Reply {
	var local []string
	if skill, ok := ExtractSkill(text); ok {
		local = []string{skill}
	}

	if r.Remote == nil {
		return Reply{Message: unreachableReply, Skills: local, Failed: true}
	}
	resp, err := r.Remote.Chat(ctx, text)
	if err != nil {
		telemetry.Warn("intent.chat_failed", map[string]any{"error": err})
		msg := unreachableReply
		var vErr *remote.ValidationError
		if errors.As(err, &vErr) {
			msg = badReplyReply
		}
		return Reply{Message: msg, Skills: local, Failed: true}
	}
	return Reply{
		Message:      resp.Message,
		Suggestions:  resp.Suggestions,
		Action:       resp.Action,
		Skills:       local,
		RemoteSkills: resp.Skills,
	}
}

// ResolveSkills picks the skills to analyse: the backend's, else the ones
// found in the message, else DefaultSkill.
func ResolveSkills(reply Reply) []string {
	if len(reply.RemoteSkills) > 0 {
		return append([]string(nil), reply.RemoteSkills...)
	}
	if len(reply.Skills) > 0 {
		return append([]string(nil), reply.Skills...)
	}
	return []string{DefaultSkill}
}
