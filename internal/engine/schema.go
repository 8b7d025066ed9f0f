// Package engine implements the placeholder template engine: scanning a
// document for {{name}} fields, classifying them into a form schema, and
// substituting submitted values back into the document without disturbing
// run-level formatting.
package engine

import "regexp"

// placeholderPattern matches a {{name}} token. Identity is the captured name;
// matching always runs against a paragraph's full reconstructed text, never
// against individual runs.
var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Field describes one form input derived from a placeholder.
type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder"`
}

// Section is a named group of related fields.
type Section struct {
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Schema is the derived, read-only description of a template's fields.
type Schema struct {
	Sections []Section `json:"sections"`
}

// ParseResult is the outcome of parsing a template. A template with zero
// placeholders is a success with an empty schema; Success is false only when
// the document itself cannot be read.
type ParseResult struct {
	Success      bool     `json:"success"`
	Error        string   `json:"error,omitempty"`
	Placeholders []string `json:"placeholders"`
	Schema       Schema   `json:"schema"`
	FieldCount   int      `json:"field_count"`
}

// Replacement records one paragraph's before/after text for preview.
type Replacement struct {
	Location string `json:"location"`
	Original string `json:"original"`
	Replaced string `json:"replaced"`
}

// PreviewResult reports the substitutions a generate call would perform,
// without mutating the source document.
type PreviewResult struct {
	Success           bool          `json:"success"`
	Error             string        `json:"error,omitempty"`
	Replacements      []Replacement `json:"replacements"`
	TotalReplacements int           `json:"total_replacements"`
}
