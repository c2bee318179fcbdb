package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"UX/UI Designer":        "ux-ui-designer",
		"  Data Scientist  ":    "data-scientist",
		"C++ / .NET Developer!": "c-net-developer",
		"***":                   "role",
		"":                      "role",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if _, err := SanitizeFileName("../etc/passwd"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	got, err := SanitizeFileName("runs/abc.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "runs_abc.json" {
		t.Fatalf("expected separators replaced, got %q", got)
	}
}
