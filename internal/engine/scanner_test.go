package engine

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractCoversAllDocumentParts(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": documentPart(
			para(run("Nomor: {{nomor}}")) +
				`<w:tbl><w:tr><w:tc>` + para(run("Nama: {{nama}}")) +
				`</w:tc><w:tc><w:tbl><w:tr><w:tc>` + para(run("{{nim}}")) +
				`</w:tc></w:tr></w:tbl></w:tc></w:tr></w:tbl>`),
		"word/header1.xml": fixtureXMLHeader +
			`<w:hdr ` + fixtureWNS + `>` + para(run("{{kop_instansi}}")) + `</w:hdr>`,
		"word/footer1.xml": fixtureXMLHeader +
			`<w:ftr ` + fixtureWNS + `>` + para(run("Hal {{hal}} dan lagi {{hal}}")) + `</w:ftr>`,
	})

	scanner := NewScanner()
	got := scanner.Extract(doc)
	want := []string{"hal", "kop_instansi", "nama", "nim", "nomor"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("extracted placeholders mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFindsSplitRunPlaceholder(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": documentPart(
			para(run("{{na"), run("ma"), run("}}"))),
	})

	got := NewScanner().Extract(doc)
	want := []string{"nama"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("split-run extraction mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIsReadOnly(t *testing.T) {
	doc := openFixture(t, map[string]string{
		"word/document.xml": documentPart(para(run("{{nama}} {{tanggal}}"))),
	})

	scanner := NewScanner()
	first := scanner.Extract(doc)
	second := scanner.Extract(doc)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated extraction differs (-first +second):\n%s", diff)
	}
	if got := doc.Text(); got != "{{nama}} {{tanggal}}" {
		t.Errorf("document mutated by extraction: %q", got)
	}
}

func TestParseTemplateNoPlaceholders(t *testing.T) {
	path := writeFixtureFile(t, map[string]string{
		"word/document.xml": documentPart(para(run("Plain letter body."))),
	})

	result := NewScanner().ParseTemplate(path)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	if len(result.Placeholders) != 0 {
		t.Errorf("got placeholders %v, want none", result.Placeholders)
	}
	if len(result.Schema.Sections) != 0 {
		t.Errorf("got %d sections, want 0", len(result.Schema.Sections))
	}
	if result.FieldCount != 0 {
		t.Errorf("field count = %d, want 0", result.FieldCount)
	}
}

func TestParseTemplateUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.docx")

	result := NewScanner().ParseTemplate(path)
	if result.Success {
		t.Fatal("expected failure for missing file")
	}
	if result.Error == "" {
		t.Error("failure carries no error message")
	}
	if result.Placeholders == nil || len(result.Placeholders) != 0 {
		t.Errorf("failure placeholders = %v, want empty slice", result.Placeholders)
	}
	if result.Schema.Sections == nil || len(result.Schema.Sections) != 0 {
		t.Errorf("failure schema sections = %v, want empty slice", result.Schema.Sections)
	}
}

func TestParseTemplateBuildsSchema(t *testing.T) {
	path := writeFixtureFile(t, map[string]string{
		"word/document.xml": documentPart(
			para(run("Nomor: {{nomor}} Tanggal: {{tanggal}}")) +
				para(run("Nama: {{nama}} NIM: {{nim}}")) +
				para(run("{{catatan_khusus}}"))),
	})

	result := NewScanner().ParseTemplate(path)
	if !result.Success {
		t.Fatalf("parse failed: %s", result.Error)
	}
	if result.FieldCount != 5 {
		t.Errorf("field count = %d, want 5", result.FieldCount)
	}

	var sectionNames []string
	for _, s := range result.Schema.Sections {
		sectionNames = append(sectionNames, s.Name)
	}
	want := []string{"header", "personal", "other"}
	if diff := cmp.Diff(want, sectionNames); diff != "" {
		t.Errorf("section order mismatch (-want +got):\n%s", diff)
	}
}
