package engine

import (
	"bytes"
	"fmt"

	"github.com/azeruya/auto-letter/internal/docx"
)

// Generate opens a template, substitutes values into every placeholder and
// returns the serialized document. Failures are terminal for the whole
// operation; a partial document is never returned. A name missing from values
// leaves its {{name}} token in place.
func Generate(templatePath string, values map[string]string) ([]byte, error) {
	doc, err := docx.Open(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	Apply(doc, values)

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return buf.Bytes(), nil
}

// Apply substitutes values into the document in place and returns the number
// of replacements performed. The document must be exclusively owned by the
// caller: run rewriting is destructive.
func Apply(doc *docx.Document, values map[string]string) int {
	total := 0
	doc.EachParagraph(func(_ string, p *docx.Paragraph) {
		total += applyToParagraph(p, values)
	})
	return total
}

func applyToParagraph(p *docx.Paragraph, values map[string]string) int {
	full := p.Text()
	matches := placeholderPattern.FindAllStringSubmatchIndex(full, -1)
	if len(matches) == 0 {
		return 0
	}

	// Right-to-left: replacing a match changes run texts after its start
	// offset, so matches at earlier offsets stay addressable in the original
	// coordinate space.
	count := 0
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		name := full[m[2]:m[3]]
		value, ok := values[name]
		if !ok {
			// Identity substitution: the token stays verbatim and remains
			// editable in the output document.
			continue
		}
		replaceSpan(p, m[0], m[1], value)
		count++
	}
	return count
}

// replaceSpan rewrites the runs overlapping [start,end) in the paragraph's
// reconstructed-text coordinate space. The first affected run absorbs the
// replacement, so its styling carries over to the inserted value; runs fully
// inside the span are emptied but never removed.
func replaceSpan(p *docx.Paragraph, start, end int, replacement string) {
	type span struct {
		run        *docx.Run
		start, end int
	}

	var affected []span
	offset := 0
	for _, r := range p.Runs() {
		text := r.Text()
		rs, re := offset, offset+len(text)
		offset = re
		if rs < end && re > start {
			affected = append(affected, span{run: r, start: rs, end: re})
		}
	}
	if len(affected) == 0 {
		return
	}

	first := affected[0]
	if len(affected) == 1 {
		text := first.run.Text()
		first.run.SetText(text[:start-first.start] + replacement + text[end-first.start:])
		return
	}

	last := affected[len(affected)-1]
	for _, mid := range affected[1 : len(affected)-1] {
		mid.run.SetText("")
	}
	first.run.SetText(first.run.Text()[:start-first.start] + replacement)
	last.run.SetText(last.run.Text()[end-last.start:])
}

// Preview reports what Apply would change, paragraph by paragraph, without
// mutating the document. Best-effort diagnostics: problems are reported in
// the result, never raised.
func Preview(doc *docx.Document, values map[string]string) PreviewResult {
	result := PreviewResult{Success: true, Replacements: []Replacement{}}
	doc.EachParagraph(func(loc string, p *docx.Paragraph) {
		original := p.Text()
		if !placeholderPattern.MatchString(original) {
			return
		}
		replaced := placeholderPattern.ReplaceAllStringFunc(original, func(token string) string {
			name := placeholderPattern.FindStringSubmatch(token)[1]
			if value, ok := values[name]; ok {
				return value
			}
			return token
		})
		result.Replacements = append(result.Replacements, Replacement{
			Location: loc,
			Original: original,
			Replaced: replaced,
		})
	})
	result.TotalReplacements = len(result.Replacements)
	return result
}

// PreviewTemplate opens a template and previews substitutions against it.
// Open failures come back as a structured result.
func PreviewTemplate(templatePath string, values map[string]string) PreviewResult {
	doc, err := docx.Open(templatePath)
	if err != nil {
		return PreviewResult{
			Success:      false,
			Error:        err.Error(),
			Replacements: []Replacement{},
		}
	}
	return Preview(doc, values)
}
