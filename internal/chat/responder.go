// Package chat answers the assistant's chat endpoint with keyword-driven
// replies.
package chat

import (
	"fmt"
	"strings"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/intent"
)

// Response is the body returned by POST /chat.
type Response struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Action      string   `json:"action,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

var (
	startKeywords    = []string{"start", "begin", "go", "yes", "do it"}
	analysisKeywords = []string{"analyze", "analysis", "career", "course", "skill", "job", "recommendation"}
	helpKeywords     = []string{"help", "what", "how"}

	careerSuggestions = []string{"Data Analyst", "Software Developer", "Digital Marketing Specialist", "UX/UI Designer"}
	helpSuggestions   = []string{"Analyze Data Analyst career", "Find courses for Python programming", "What jobs are in demand?"}
)

const (
	skillReply = "Great! I'll start a comprehensive analysis for %s. This will include web scraping for courses, " +
		"YouTube content analysis, and personalized recommendations. Please wait while I process this for you..."
	startReply = "Great! I'll start a comprehensive analysis that includes web scraping for courses, " +
		"YouTube content analysis, and personalized career insights. This may take a few minutes."
	clarifyReply = "I can help you with a comprehensive career analysis! " +
		"What specific career or skill would you like me to analyze?"
	helpReply = "I'm your Smart Career SG assistant! I can help you with:\n\n" +
		"• Comprehensive career analysis\n" +
		"• Course recommendations from Coursera, edX, and Udemy\n" +
		"• YouTube learning content analysis\n" +
		"• Job market insights and salary information\n" +
		"• Skill development recommendations\n\n" +
		"Just tell me what career or skill you're interested in!"
	genericReply = "I understand you're interested in career guidance. I can provide comprehensive analysis " +
		"including course recommendations, job market insights, and learning paths. " +
		"What specific career or skill would you like me to analyze?"
)

// Respond picks a reply for message. A recognised career wins over start
// keywords, which win over analysis and help keywords.
func Respond(message string) Response {
	lower := strings.ToLower(message)

	if skill, ok := intent.ExtractSkill(lower); ok {
		return Response{
			Message: fmt.Sprintf(skillReply, strings.ToLower(skill)),
			Action:  intent.ActionStartAnalysis,
			Skills:  []string{skill},
		}
	}
	switch {
	case containsAny(lower, startKeywords):
		return Response{
			Message: startReply,
			Action:  intent.ActionStartAnalysis,
			Skills:  []string{intent.DefaultSkill},
		}
	case containsAny(lower, analysisKeywords):
		return Response{Message: clarifyReply, Suggestions: careerSuggestions}
	case containsAny(lower, helpKeywords):
		return Response{Message: helpReply, Suggestions: helpSuggestions}
	default:
		return Response{Message: genericReply, Suggestions: careerSuggestions}
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
