package engine

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/azeruya/auto-letter/internal/docx"
)

const fixtureXMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const fixtureWNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func para(runs ...string) string {
	body := ""
	for _, r := range runs {
		body += r
	}
	return `<w:p>` + body + `</w:p>`
}

func buildFixture(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	if _, ok := parts["word/document.xml"]; !ok {
		t.Fatal("fixture needs word/document.xml")
	}
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

func documentPart(body string) string {
	return fixtureXMLHeader +
		`<w:document ` + fixtureWNS + `><w:body>` + body + `</w:body></w:document>`
}

func openFixture(t *testing.T, parts map[string]string) *docx.Document {
	t.Helper()
	data := buildFixture(t, parts)
	doc, err := docx.OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	return doc
}

func writeFixtureFile(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.docx")
	if err := os.WriteFile(path, buildFixture(t, parts), 0644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}
	return path
}
