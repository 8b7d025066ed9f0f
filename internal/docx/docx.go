// Package docx reads and writes Word documents as a mutable tree of
// paragraphs, styled runs, tables and header/footer parts. Only the text
// model is interpreted; every other piece of the package (styles, media,
// relationships, drawings) is carried through a load/save cycle untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

var headerFooterName = regexp.MustCompile(`^word/(header|footer)\d*\.xml$`)

// Body is the block content of word/document.xml.
type Body struct {
	children []node
}

// Paragraphs returns the body's top-level paragraphs.
func (b *Body) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, c := range b.children {
		if p, ok := c.(*Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// Tables returns the body's top-level tables.
func (b *Body) Tables() []*Table {
	var tables []*Table
	for _, c := range b.children {
		if t, ok := c.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// HeaderFooter is a header or footer part: block content with its own root
// element, serialized back to its original part name.
type HeaderFooter struct {
	PartName string
	rootTag  string
	rootName string
	children []node
}

// Paragraphs returns the part's top-level paragraphs.
func (h *HeaderFooter) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, c := range h.children {
		if p, ok := c.(*Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// Tables returns the part's top-level tables.
func (h *HeaderFooter) Tables() []*Table {
	var tables []*Table
	for _, c := range h.children {
		if t, ok := c.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

type zipEntry struct {
	name string
	data []byte
}

// Document is an exclusively-owned in-memory document tree. Mutation through
// run rewriting is destructive, so a Document must never be shared across
// concurrent operations; each request loads its own instance.
type Document struct {
	entries []zipEntry
	Body    *Body
	Headers []*HeaderFooter
	Footers []*HeaderFooter

	docRootTag  string
	docRootName string
}

// Open reads a document from a file on disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

// OpenReader reads a document from an io.ReaderAt.
func OpenReader(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip container: %w", err)
	}

	doc := &Document{}
	hasDocument := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", f.Name, err)
		}
		doc.entries = append(doc.entries, zipEntry{name: f.Name, data: data})
		if f.Name == "word/document.xml" {
			hasDocument = true
		}
	}
	if !hasDocument {
		return nil, fmt.Errorf("not a valid DOCX file: missing word/document.xml")
	}

	for _, e := range doc.entries {
		switch {
		case e.name == "word/document.xml":
			if err := doc.parseDocumentPart(e.data); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", e.name, err)
			}
		case headerFooterName.MatchString(e.name):
			hf, err := parseHeaderFooterPart(e.name, e.data)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", e.name, err)
			}
			if strings.HasPrefix(e.name, "word/header") {
				doc.Headers = append(doc.Headers, hf)
			} else {
				doc.Footers = append(doc.Footers, hf)
			}
		}
	}
	sort.Slice(doc.Headers, func(i, j int) bool { return doc.Headers[i].PartName < doc.Headers[j].PartName })
	sort.Slice(doc.Footers, func(i, j int) bool { return doc.Footers[i].PartName < doc.Footers[j].PartName })

	return doc, nil
}

func (doc *Document) parseDocumentPart(data []byte) error {
	rootTag, rootName, err := scanRootTag(data)
	if err != nil {
		return err
	}
	doc.docRootTag = rootTag
	doc.docRootName = rootName

	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "body" {
			children, err := parseBlockChildren(d, "body")
			if err != nil {
				return err
			}
			doc.Body = &Body{children: children}
			return nil
		}
	}
	return fmt.Errorf("document has no body element")
}

func parseHeaderFooterPart(name string, data []byte) (*HeaderFooter, error) {
	rootTag, rootName, err := scanRootTag(data)
	if err != nil {
		return nil, err
	}
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if el, ok := tok.(xml.StartElement); ok && (el.Name.Local == "hdr" || el.Name.Local == "ftr") {
			children, err := parseBlockChildren(d, el.Name.Local)
			if err != nil {
				return nil, err
			}
			return &HeaderFooter{
				PartName: name,
				rootTag:  rootTag,
				rootName: rootName,
				children: children,
			}, nil
		}
	}
	return nil, fmt.Errorf("part has no hdr or ftr root element")
}

// scanRootTag extracts the root element's verbatim start tag from part bytes,
// skipping the XML declaration and comments. Keeping the original tag avoids
// reconstructing Word's namespace declarations.
func scanRootTag(data []byte) (tag string, name string, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] != '<' {
			continue
		}
		if i+1 >= len(data) {
			break
		}
		switch data[i+1] {
		case '?', '!':
			continue
		}
		inQuote := byte(0)
		for j := i + 1; j < len(data); j++ {
			c := data[j]
			if inQuote != 0 {
				if c == inQuote {
					inQuote = 0
				}
				continue
			}
			switch c {
			case '"', '\'':
				inQuote = c
			case '>':
				tag = string(data[i : j+1])
				end := strings.IndexAny(tag[1:], " \t\r\n>/")
				if end == -1 {
					end = len(tag) - 2
				}
				return tag, tag[1 : 1+end], nil
			}
		}
		break
	}
	return "", "", fmt.Errorf("no root element found")
}

// EachParagraph visits every text-bearing paragraph reachable from the
// document: body paragraphs, table cell paragraphs at any nesting depth, and
// header/footer paragraphs including their tables. loc is a stable
// human-readable position descriptor.
func (doc *Document) EachParagraph(fn func(loc string, p *Paragraph)) {
	walkBlocks("body", doc.Body.children, fn)
	for i, h := range doc.Headers {
		walkBlocks(fmt.Sprintf("header[%d]", i), h.children, fn)
	}
	for i, f := range doc.Footers {
		walkBlocks(fmt.Sprintf("footer[%d]", i), f.children, fn)
	}
}

func walkBlocks(prefix string, children []node, fn func(loc string, p *Paragraph)) {
	pi, ti := 0, 0
	for _, c := range children {
		switch el := c.(type) {
		case *Paragraph:
			fn(fmt.Sprintf("%s/paragraph[%d]", prefix, pi), el)
			pi++
		case *Table:
			walkTable(fmt.Sprintf("%s/table[%d]", prefix, ti), el, fn)
			ti++
		}
	}
}

func walkTable(prefix string, t *Table, fn func(loc string, p *Paragraph)) {
	for ri, row := range t.Rows() {
		for ci, cell := range row.Cells() {
			walkBlocks(fmt.Sprintf("%s/row[%d]/cell[%d]", prefix, ri, ci), cell.children, fn)
		}
	}
}

// Text returns the concatenated text of every paragraph in the document, one
// line per paragraph. Intended for tests and diagnostics.
func (doc *Document) Text() string {
	var lines []string
	doc.EachParagraph(func(_ string, p *Paragraph) {
		lines = append(lines, p.Text())
	})
	return strings.Join(lines, "\n")
}

// Save writes the document as a fresh zip archive. Parsed parts are
// re-serialized; all other parts are copied verbatim in their original order.
func (doc *Document) Save(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, e := range doc.entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("failed to create zip entry %s: %w", e.name, err)
		}
		data := e.data
		switch {
		case e.name == "word/document.xml":
			data = doc.serializeDocumentPart()
		case headerFooterName.MatchString(e.name):
			if hf := doc.findHeaderFooter(e.name); hf != nil {
				data = hf.serialize()
			}
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("failed to write zip entry %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip: %w", err)
	}
	return nil
}

func (doc *Document) findHeaderFooter(name string) *HeaderFooter {
	for _, h := range doc.Headers {
		if h.PartName == name {
			return h
		}
	}
	for _, f := range doc.Footers {
		if f.PartName == name {
			return f
		}
	}
	return nil
}

func (doc *Document) serializeDocumentPart() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(doc.docRootTag)
	b.WriteString("<w:body>")
	for _, c := range doc.Body.children {
		c.writeXML(&b)
	}
	b.WriteString("</w:body>")
	b.WriteString("</" + doc.docRootName + ">")
	return []byte(b.String())
}

func (h *HeaderFooter) serialize() []byte {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(h.rootTag)
	for _, c := range h.children {
		c.writeXML(&b)
	}
	b.WriteString("</" + h.rootName + ">")
	return []byte(b.String())
}
