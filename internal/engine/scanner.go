package engine

import (
	"sort"

	"github.com/azeruya/auto-letter/internal/docx"
)

// Scanner extracts placeholder names from a document and derives the form
// schema. Stateless apart from its classifier configuration.
type Scanner struct {
	classifier *Classifier
}

// NewScanner returns a scanner using the default classifier.
func NewScanner() *Scanner {
	return &Scanner{classifier: NewClassifier()}
}

// NewScannerWithClassifier returns a scanner with a custom rule set.
func NewScannerWithClassifier(c *Classifier) *Scanner {
	return &Scanner{classifier: c}
}

// Extract returns the deduplicated, lexicographically sorted placeholder
// names present anywhere in the document: body paragraphs, table cells at any
// nesting depth, and every header and footer including their tables.
func (s *Scanner) Extract(doc *docx.Document) []string {
	seen := make(map[string]bool)
	doc.EachParagraph(func(_ string, p *docx.Paragraph) {
		for _, m := range placeholderPattern.FindAllStringSubmatch(p.Text(), -1) {
			seen[m[1]] = true
		}
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTemplate opens a template file, extracts its placeholders and builds
// the schema. A document that cannot be opened yields a structured failure;
// a document with no placeholders yields success with an empty schema.
func (s *Scanner) ParseTemplate(path string) ParseResult {
	doc, err := docx.Open(path)
	if err != nil {
		return ParseResult{
			Success:      false,
			Error:        err.Error(),
			Placeholders: []string{},
			Schema:       Schema{Sections: []Section{}},
		}
	}
	return s.Parse(doc)
}

// Parse extracts placeholders and builds the schema from an already-open
// document.
func (s *Scanner) Parse(doc *docx.Document) ParseResult {
	placeholders := s.Extract(doc)
	return ParseResult{
		Success:      true,
		Placeholders: placeholders,
		Schema:       s.classifier.Classify(placeholders),
		FieldCount:   len(placeholders),
	}
}
