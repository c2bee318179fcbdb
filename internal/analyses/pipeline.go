package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/roles"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/util"
)

const payloadVersion = "1.0"

// Stages reported by CatalogPipeline, in order.
var pipelineStages = []struct {
	progress int
	message  string
}{
	{0, "Initializing analysis."},
	{20, "Running web scraper."},
	{50, "Updating skills from modules."},
	{80, "Running YouTube agent..."},
	{95, "Finding results..."},
}

// RoleLookup resolves a role slug.
type RoleLookup interface {
	Resolve(ctx context.Context, slug string) (roles.RoleContent, roles.Provenance, error)
}

// CatalogPipeline assembles a result from the role catalog for the first
// requested skill.
type CatalogPipeline struct {
	Roles RoleLookup
	// StageDelay pauses between stages so pollers can observe progress.
	StageDelay time.Duration
	Now        func() time.Time
}

type payloadMetadata struct {
	AnalysisDate   time.Time `json:"analysis_date"`
	SkillsAnalyzed []string  `json:"skills_analyzed"`
	Version        string    `json:"analysis_version"`
	RoleSource     string    `json:"role_source,omitempty"`
}

type skillEntry struct {
	Skill string `json:"skill"`
	Rank  int    `json:"rank"`
}

type payload struct {
	Metadata        payloadMetadata    `json:"analysis_metadata"`
	Role            *roles.RoleContent `json:"role,omitempty"`
	SkillsBreakdown []skillEntry       `json:"skills_breakdown"`
}

func (p *CatalogPipeline) Run(ctx context.Context, skills []string, report ProgressFunc) (json.RawMessage, error) {
	for i, stage := range pipelineStages {
		if i > 0 && p.StageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.StageDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report(stage.progress, stage.message)
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	out := payload{
		Metadata: payloadMetadata{
			AnalysisDate:   now().UTC(),
			SkillsAnalyzed: skills,
			Version:        payloadVersion,
		},
		SkillsBreakdown: []skillEntry{},
	}

	if p.Roles != nil && len(skills) > 0 {
		slug := util.Slugify(skills[0])
		content, prov, err := p.Roles.Resolve(ctx, slug)
		switch {
		case err == nil:
			presented := content.Present()
			out.Role = &presented
			out.Metadata.RoleSource = prov.Source
			for i, skill := range presented.Skills {
				out.SkillsBreakdown = append(out.SkillsBreakdown, skillEntry{Skill: skill, Rank: i + 1})
			}
		case errors.Is(err, roles.ErrNotFound):
			telemetry.Info("analysis.role_not_in_catalog", map[string]any{"slug": slug})
		default:
			return nil, err
		}
	}
	if len(out.SkillsBreakdown) == 0 {
		for i, skill := range skills {
			out.SkillsBreakdown = append(out.SkillsBreakdown, skillEntry{Skill: skill, Rank: i + 1})
		}
	}
	return json.Marshal(out)
}
