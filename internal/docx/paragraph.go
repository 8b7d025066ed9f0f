package docx

import (
	"encoding/xml"
	"strings"
)

// Paragraph is an ordered block of runs. Non-run children (paragraph
// properties, bookmarks, proofing marks, hyperlinks) are preserved as raw
// markup in their original positions.
type Paragraph struct {
	start    xml.StartElement
	children []node
}

// Runs returns the paragraph's text runs in document order.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, c := range p.children {
		if r, ok := c.(*Run); ok {
			runs = append(runs, r)
		}
	}
	return runs
}

// Text reconstructs the paragraph's full text by concatenating run texts in
// order. This is the coordinate space placeholder matching operates in.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, c := range p.children {
		if r, ok := c.(*Run); ok {
			b.WriteString(r.Text())
		}
	}
	return b.String()
}

func (p *Paragraph) writeXML(b *strings.Builder) {
	writeStartTag(b, p.start)
	for _, c := range p.children {
		c.writeXML(b)
	}
	writeEndTag(b, p.start.Name)
}

func parseParagraph(d *xml.Decoder, start xml.StartElement) (*Paragraph, error) {
	p := &Paragraph{start: start}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				run, err := parseRun(d, t)
				if err != nil {
					return nil, err
				}
				p.children = append(p.children, run)
			default:
				r, err := captureElement(d, t)
				if err != nil {
					return nil, err
				}
				p.children = append(p.children, r)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return p, nil
			}
		}
	}
}

// Run is the atomic styling unit: one styling definition (opaque rPr markup)
// plus text. Runs are mutated in place, never reordered or removed.
type Run struct {
	start    xml.StartElement
	children []node
}

// Text returns the run's text content.
func (r *Run) Text() string {
	var b strings.Builder
	for _, c := range r.children {
		if t, ok := c.(*textNode); ok {
			b.WriteString(t.content)
		}
	}
	return b.String()
}

// SetText replaces the run's text while leaving its formatting and any
// non-text children (breaks, drawings) untouched. A run that never carried
// text stays textless when s is empty.
func (r *Run) SetText(s string) {
	first := true
	for _, c := range r.children {
		if t, ok := c.(*textNode); ok {
			if first {
				t.content = s
				first = false
			} else {
				t.content = ""
			}
		}
	}
	if first && s != "" {
		r.children = append(r.children, &textNode{content: s})
	}
}

func (r *Run) writeXML(b *strings.Builder) {
	writeStartTag(b, r.start)
	for _, c := range r.children {
		c.writeXML(b)
	}
	writeEndTag(b, r.start.Name)
}

func parseRun(d *xml.Decoder, start xml.StartElement) (*Run, error) {
	r := &Run{start: start}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				tn := &textNode{}
				if err := d.DecodeElement(&tn.content, &t); err != nil {
					return nil, err
				}
				r.children = append(r.children, tn)
			default:
				rawEl, err := captureElement(d, t)
				if err != nil {
					return nil, err
				}
				r.children = append(r.children, rawEl)
			}
		case xml.EndElement:
			if t.Name.Local == "r" {
				return r, nil
			}
		}
	}
}

// textNode is a w:t element. xml:space="preserve" is emitted whenever the
// text carries leading or trailing whitespace, which Word would otherwise
// strip on load.
type textNode struct {
	content string
}

func (t *textNode) writeXML(b *strings.Builder) {
	if t.content != strings.TrimSpace(t.content) {
		b.WriteString(`<w:t xml:space="preserve">`)
	} else {
		b.WriteString("<w:t>")
	}
	writeEscaped(b, t.content)
	b.WriteString("</w:t>")
}
