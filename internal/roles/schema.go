package roles

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const recordSchema = `{
  "type": "object",
  "anyOf": [
    {"required": ["role"]},
    {"required": ["title"]},
    {"required": ["job_title"]},
    {"required": ["name"]}
  ],
  "properties": {
    "role":        {"type": "string", "minLength": 1},
    "title":       {"type": "string", "minLength": 1},
    "job_title":   {"type": "string", "minLength": 1},
    "name":        {"type": "string", "minLength": 1},
    "summary":     {"type": "string"},
    "description": {"type": "string"},
    "overview":    {"type": "string"},
    "facts":       {"type": "array"},
    "skills":      {"type": ["array", "string"]},
    "key_skills":  {"type": ["array", "string"]},
    "top_skills":  {"type": ["array", "string"]},
    "required_skills": {"type": ["array", "string"]},
    "competencies":    {"type": ["array", "string"]},
    "tags":            {"type": ["array", "string"]},
    "skills_breakdown": {
      "type": "array",
      "items": {"type": "object"}
    },
    "pdfUrl":     {"type": ["string", "null"]},
    "imageQuery": {"type": ["string", "null"]},
    "imageRef":   {"type": ["string", "null"]},
    "imageUrl":   {"type": ["string", "null"]},
    "image_url":  {"type": ["string", "null"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(recordSchema)

// Validate checks that rec looks like a role record.
func Validate(source string, rec Record) error {
	if rec == nil {
		return &SchemaError{Source: source, Issues: []string{"record is empty"}}
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(rec))
	if err != nil {
		return &SchemaError{Source: source, Issues: []string{fmt.Sprintf("validate: %v", err)}}
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		issues[i] = desc.String()
	}
	return &SchemaError{Source: source, Issues: issues}
}
