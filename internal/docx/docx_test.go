package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

const documentXMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const wNamespace = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func wrapBody(body string) string {
	return documentXMLHeader +
		`<w:document ` + wNamespace + `><w:body>` + body + `</w:body></w:document>`
}

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func openFixture(t *testing.T, parts map[string]string) *Document {
	t.Helper()
	data := buildZip(t, parts)
	doc, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	return doc
}

func TestOpenRejectsMissingDocumentPart(t *testing.T) {
	data := buildZip(t, map[string]string{
		"word/styles.xml": documentXMLHeader + `<w:styles ` + wNamespace + `/>`,
	})
	if _, err := OpenReader(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected error for archive without word/document.xml")
	}
}

func TestOpenRejectsNonZipInput(t *testing.T) {
	data := []byte("this is not a zip archive")
	if _, err := OpenReader(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestParagraphText(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": wrapBody(
			`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Second</w:t></w:r></w:p>`),
	})

	paras := doc.Body.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("got %d paragraphs, want 2", len(paras))
	}
	if got := paras[0].Text(); got != "Hello World" {
		t.Errorf("paragraph text = %q, want %q", got, "Hello World")
	}
	if got := len(paras[0].Runs()); got != 2 {
		t.Errorf("got %d runs, want 2", got)
	}
}

func TestTableParagraphs(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": wrapBody(
			`<w:tbl><w:tr>` +
				`<w:tc><w:p><w:r><w:t>outer</w:t></w:r></w:p></w:tc>` +
				`<w:tc><w:tbl><w:tr><w:tc><w:p><w:r><w:t>nested</w:t></w:r></w:p></w:tc></w:tr></w:tbl></w:tc>` +
				`</w:tr></w:tbl>`),
	})

	tables := doc.Body.Tables()
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	cells := tables[0].Rows()[0].Cells()
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	if got := cells[0].Paragraphs()[0].Text(); got != "outer" {
		t.Errorf("cell text = %q, want %q", got, "outer")
	}
	nested := cells[1].Tables()
	if len(nested) != 1 {
		t.Fatalf("got %d nested tables, want 1", len(nested))
	}
	if got := nested[0].Rows()[0].Cells()[0].Paragraphs()[0].Text(); got != "nested" {
		t.Errorf("nested cell text = %q, want %q", got, "nested")
	}
}

func TestHeaderFooterParts(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": wrapBody(`<w:p><w:r><w:t>body</w:t></w:r></w:p>`),
		"word/header1.xml": documentXMLHeader +
			`<w:hdr ` + wNamespace + `><w:p><w:r><w:t>top</w:t></w:r></w:p></w:hdr>`,
		"word/footer1.xml": documentXMLHeader +
			`<w:ftr ` + wNamespace + `><w:p><w:r><w:t>bottom</w:t></w:r></w:p></w:ftr>`,
	})

	if len(doc.Headers) != 1 || len(doc.Footers) != 1 {
		t.Fatalf("got %d headers and %d footers, want 1 and 1", len(doc.Headers), len(doc.Footers))
	}
	if got := doc.Headers[0].Paragraphs()[0].Text(); got != "top" {
		t.Errorf("header text = %q, want %q", got, "top")
	}
	if got := doc.Footers[0].Paragraphs()[0].Text(); got != "bottom" {
		t.Errorf("footer text = %q, want %q", got, "bottom")
	}
}

func TestEachParagraphLocations(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": wrapBody(
			`<w:p><w:r><w:t>first</w:t></w:r></w:p>` +
				`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`),
		"word/header1.xml": documentXMLHeader +
			`<w:hdr ` + wNamespace + `><w:p><w:r><w:t>top</w:t></w:r></w:p></w:hdr>`,
	})

	locs := map[string]string{}
	doc.EachParagraph(func(loc string, p *Paragraph) {
		locs[loc] = p.Text()
	})

	want := map[string]string{
		"body/paragraph[0]":                         "first",
		"body/table[0]/row[0]/cell[0]/paragraph[0]": "cell",
		"header[0]/paragraph[0]":                    "top",
	}
	for loc, text := range want {
		if locs[loc] != text {
			t.Errorf("location %s = %q, want %q", loc, locs[loc], text)
		}
	}
	if len(locs) != len(want) {
		t.Errorf("visited %d paragraphs, want %d", len(locs), len(want))
	}
}

func TestSaveRoundTripPreservesText(t *testing.T) {
	parts := map[string]string{
		"word/document.xml": wrapBody(
			`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
				`<w:r><w:rPr><w:b/></w:rPr><w:t>Hello </w:t></w:r>` +
				`<w:r><w:t>World</w:t></w:r>` +
				`<w:bookmarkStart w:id="0" w:name="_mark"/><w:bookmarkEnd w:id="0"/>` +
				`</w:p>` +
				`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`),
		"word/styles.xml": documentXMLHeader + `<w:styles ` + wNamespace + `/>`,
		"word/footer1.xml": documentXMLHeader +
			`<w:ftr ` + wNamespace + `><w:p><w:r><w:t>bottom</w:t></w:r></w:p></w:ftr>`,
	}
	doc := openFixture(t, parts)

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen saved document: %v", err)
	}
	if got, want := reopened.Text(), doc.Text(); got != want {
		t.Errorf("round-trip text = %q, want %q", got, want)
	}
}

func TestSavePreservesUnknownMarkup(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": wrapBody(
			`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
				`<w:bookmarkStart w:id="0" w:name="_mark"/>` +
				`<w:r><w:t>text</w:t></w:r>` +
				`<w:bookmarkEnd w:id="0"/></w:p>`),
	})

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen zip: %v", err)
	}
	var serialized string
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open part: %v", err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("read part: %v", err)
			}
			serialized = string(data)
		}
	}

	for _, want := range []string{"bookmarkStart", "bookmarkEnd", `w:jc`, `w:val="center"`} {
		if !strings.Contains(serialized, want) {
			t.Errorf("serialized document missing %q", want)
		}
	}
}

func TestSetTextKeepsWhitespace(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": wrapBody(`<w:p><w:r><w:t>old</w:t></w:r></w:p>`),
	})

	doc.Body.Paragraphs()[0].Runs()[0].SetText("new value ")

	var b strings.Builder
	doc.Body.Paragraphs()[0].writeXML(&b)
	if !strings.Contains(b.String(), `xml:space="preserve"`) {
		t.Errorf("trailing whitespace not marked for preservation: %s", b.String())
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	reopened, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.Body.Paragraphs()[0].Text(); got != "new value " {
		t.Errorf("round-trip text = %q, want %q", got, "new value ")
	}
}

func TestSetTextOnTextlessRun(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": wrapBody(`<w:p><w:r><w:br/></w:r></w:p>`),
	})

	run := doc.Body.Paragraphs()[0].Runs()[0]
	run.SetText("")
	if got := run.Text(); got != "" {
		t.Errorf("textless run text = %q, want empty", got)
	}

	var b strings.Builder
	run.writeXML(&b)
	if !strings.Contains(b.String(), "w:br") {
		t.Errorf("break element lost: %s", b.String())
	}
	if strings.Contains(b.String(), "<w:t>") {
		t.Errorf("empty SetText added a text element: %s", b.String())
	}
}
