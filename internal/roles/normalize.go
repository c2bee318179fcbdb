package roles

import (
	"fmt"
	"strings"
)

var (
	roleNameKeys = []string{"role", "title", "job_title", "name"}
	summaryKeys  = []string{"description", "summary", "overview"}
	imageRefKeys = []string{"imageRef", "imageUrl", "image_url", "image"}
	flatSkillKey = []string{"skills", "key_skills", "top_skills", "required_skills", "competencies", "tags"}
)

// Normalize maps a loosely typed record onto RoleContent. Flat skill lists
// win; otherwise skills come from the "skill" field of each skills_breakdown
// item. No display caps are applied here.
func Normalize(rec Record) RoleContent {
	out := RoleContent{
		Role:       firstString(rec, roleNameKeys),
		Summary:    firstString(rec, summaryKeys),
		Facts:      stringList(rec["facts"]),
		PDFURL:     firstString(rec, []string{"pdfUrl", "pdf_url"}),
		ImageQuery: firstString(rec, []string{"imageQuery", "image_query"}),
		ImageRef:   firstString(rec, imageRefKeys),
	}

	var flat []string
	for _, key := range flatSkillKey {
		flat = append(flat, skillValues(rec[key])...)
	}
	if len(flat) > 0 {
		out.Skills = dedupeFold(flat)
	} else {
		out.Skills = dedupeFold(breakdownSkills(rec["skills_breakdown"]))
	}
	if out.Facts == nil {
		out.Facts = []string{}
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	return out
}

// RoleName returns the display name of a record, or "" when it has none.
func RoleName(rec Record) string {
	return firstString(rec, roleNameKeys)
}

func firstString(rec Record, keys []string) string {
	for _, k := range keys {
		if s, ok := rec[k].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]string); ok {
			items = make([]any, len(typed))
			for i, s := range typed {
				items[i] = s
			}
		} else {
			return nil
		}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func skillValues(v any) []string {
	if s, ok := v.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return stringList(v)
}

func breakdownSkills(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m["skill"].(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func dedupeFold(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
