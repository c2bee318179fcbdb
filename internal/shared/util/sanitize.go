package util

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidFileName is returned for names that escape their directory.
var ErrInvalidFileName = errors.New("invalid file name")

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// Slugify lower-cases input and collapses every run of non-alphanumerics to a
// single dash. Empty results fall back to "role".
func Slugify(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	slug := strings.Trim(nonSlugChars.ReplaceAllString(lower, "-"), "-")
	if slug == "" {
		return "role"
	}
	return slug
}
