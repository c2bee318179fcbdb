package roles

import (
	"strings"
	"testing"
)

func TestNormalizeFlatSkills(t *testing.T) {
	rec := Record{
		"title":      "Data Engineer",
		"overview":   "  Builds pipelines.  ",
		"skills":     []any{"SQL", "Python", " "},
		"key_skills": "python, Spark ,Airflow",
		"facts":      []any{"one", "two"},
		"skills_breakdown": []any{
			map[string]any{"skill": "Ignored"},
		},
	}
	got := Normalize(rec)
	if got.Role != "Data Engineer" || got.Summary != "Builds pipelines." {
		t.Fatalf("unexpected role/summary: %+v", got)
	}
	want := []string{"SQL", "Python", "Spark", "Airflow"}
	if strings.Join(got.Skills, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got.Skills)
	}
	if len(got.Facts) != 2 {
		t.Fatalf("expected two facts, got %v", got.Facts)
	}
}

func TestNormalizeBreakdownSkills(t *testing.T) {
	rec := Record{
		"role": "Data Analyst",
		"skills_breakdown": []any{
			map[string]any{"skill": "Excel", "demand": 10},
			map[string]any{"name": "no skill field"},
			"not an object",
			map[string]any{"skill": "Tableau"},
		},
	}
	got := Normalize(rec)
	if strings.Join(got.Skills, "|") != "Excel|Tableau" {
		t.Fatalf("unexpected skills %v", got.Skills)
	}
	if got.Facts == nil || len(got.Facts) != 0 {
		t.Fatalf("expected empty facts slice, got %#v", got.Facts)
	}
}

func TestNormalizeDoesNotCap(t *testing.T) {
	skills := make([]any, 20)
	for i := range skills {
		skills[i] = string(rune('a' + i))
	}
	got := Normalize(Record{"role": "X", "skills": skills})
	if len(got.Skills) != 20 {
		t.Fatalf("expected all 20 skills before presentation, got %d", len(got.Skills))
	}
	if len(got.Present().Skills) != MaxSkills {
		t.Fatalf("expected %d after Present, got %d", MaxSkills, len(got.Present().Skills))
	}
}

func TestPresentCaps(t *testing.T) {
	rc := RoleContent{
		Summary: strings.Repeat("é", 900),
		Facts:   []string{"1", "2", "3", "4", "5"},
	}
	p := rc.Present()
	if len([]rune(p.Summary)) != MaxSummaryRunes {
		t.Fatalf("expected summary capped at %d runes", MaxSummaryRunes)
	}
	if len(p.Facts) != MaxFacts {
		t.Fatalf("expected %d facts, got %d", MaxFacts, len(p.Facts))
	}
	if len(rc.Facts) != 5 {
		t.Fatalf("Present must not mutate the receiver")
	}
}

func TestValidateRejectsShapes(t *testing.T) {
	if err := Validate("local", Record{"summary": "no name"}); err == nil {
		t.Fatalf("expected missing role name to fail")
	}
	if err := Validate("remote", Record{"role": "X", "skills_breakdown": "oops"}); err == nil {
		t.Fatalf("expected non-array breakdown to fail")
	}
	if err := Validate("remote", nil); err == nil {
		t.Fatalf("expected nil record to fail")
	}
	if err := Validate("local", Record{"job_title": "Nurse", "skills": "a, b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
