package docx

import (
	"encoding/xml"
	"strings"
)

// raw is a verbatim chunk of WordprocessingML markup captured during parsing
// and spliced back unchanged when the part is serialized. Anything the text
// model does not understand (drawings, bookmarks, proofing marks, properties)
// survives a round trip this way.
type raw []byte

func (r raw) writeXML(b *strings.Builder) {
	b.Write(r)
}

// node is a serializable fragment of a document part.
type node interface {
	writeXML(b *strings.Builder)
}

// nsPrefix maps a namespace URI back to its conventional prefix. Go's XML
// decoder resolves prefixes to URIs, so serialization has to reverse that.
var nsPrefix = map[string]string{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main":           "w",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships":    "r",
	"http://schemas.openxmlformats.org/officeDocument/2006/math":             "m",
	"http://www.w3.org/XML/1998/namespace":                                   "xml",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
	"http://schemas.openxmlformats.org/markup-compatibility/2006":            "mc",
	"urn:schemas-microsoft-com:vml":                                          "v",
	"urn:schemas-microsoft-com:office:office":                                "o",
	"urn:schemas-microsoft-com:office:word":                                  "w10",
	"http://schemas.microsoft.com/office/word/2010/wordml":                   "w14",
	"http://schemas.microsoft.com/office/word/2012/wordml":                   "w15",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing":    "wp14",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingShape":      "wps",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingCanvas":     "wpc",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingGroup":      "wpg",
	"http://schemas.microsoft.com/office/word/2006/wordml":                   "wne",
}

func prefixedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	if p, ok := nsPrefix[n.Space]; ok {
		return p + ":" + n.Local
	}
	// Unknown namespace: fall back to the URI. Word never emits these on
	// elements we re-serialize, but losing the name entirely would be worse.
	return n.Space + ":" + n.Local
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func writeStartTag(b *strings.Builder, se xml.StartElement) {
	b.WriteString("<")
	b.WriteString(prefixedName(se.Name))
	for _, attr := range se.Attr {
		b.WriteString(" ")
		if attr.Name.Space == "xmlns" {
			b.WriteString("xmlns:")
			b.WriteString(attr.Name.Local)
		} else if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
			b.WriteString("xmlns")
		} else {
			b.WriteString(prefixedName(attr.Name))
		}
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(attr.Value))
		b.WriteString(`"`)
	}
	b.WriteString(">")
}

func writeEndTag(b *strings.Builder, name xml.Name) {
	b.WriteString("</")
	b.WriteString(prefixedName(name))
	b.WriteString(">")
}

func writeEscaped(b *strings.Builder, s string) {
	// xml.EscapeText also escapes newlines and tabs, which is safe inside w:t.
	_ = xml.EscapeText(b, []byte(s))
}

// captureElement consumes the element opened by start, reproducing its full
// markup (start tag included) with conventional namespace prefixes.
func captureElement(d *xml.Decoder, start xml.StartElement) (raw, error) {
	var b strings.Builder
	writeStartTag(&b, start)
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			writeStartTag(&b, t)
		case xml.EndElement:
			depth--
			writeEndTag(&b, t.Name)
		case xml.CharData:
			writeEscaped(&b, string(t))
		}
	}
	return raw(b.String()), nil
}
