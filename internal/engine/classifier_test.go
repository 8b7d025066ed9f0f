package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifySections(t *testing.T) {
	tests := []struct {
		name        string
		placeholder string
		section     string
		inputType   string
	}{
		{"letter number", "nomor", "header", "text"},
		{"letter date", "tanggal", "header", "date"},
		{"subject", "hal", "header", "text"},
		{"recipient", "kepada", "recipient", "text"},
		{"address", "alamat", "recipient", "text"},
		{"student name", "nama", "personal", "text"},
		{"student id", "nim", "personal", "text"},
		{"study program", "prodi", "personal", "text"},
		{"research title", "judul_penelitian", "content", "textarea"},
		{"activity", "kegiatan", "content", "textarea"},
		{"signer id", "nip", "signature", "text"},
		{"signer position", "jabatan", "signature", "text"},
		{"unmatched", "custom_field", "other", "text"},
		{"email", "email_kontak", "other", "email"},
		{"phone", "no_telepon", "other", "tel"},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := c.Classify([]string{tt.placeholder})
			if len(schema.Sections) != 1 {
				t.Fatalf("got %d sections, want 1", len(schema.Sections))
			}
			section := schema.Sections[0]
			if section.Name != tt.section {
				t.Errorf("section = %q, want %q", section.Name, tt.section)
			}
			if len(section.Fields) != 1 {
				t.Fatalf("got %d fields, want 1", len(section.Fields))
			}
			if got := section.Fields[0].Type; got != tt.inputType {
				t.Errorf("input type = %q, want %q", got, tt.inputType)
			}
		})
	}
}

func TestClassifyEachNameClaimedOnce(t *testing.T) {
	// "tanggal_penelitian" matches both the header group (tanggal) and the
	// content group (penelitian); the first group in order wins.
	schema := NewClassifier().Classify([]string{"tanggal_penelitian", "nama", "nomor"})

	total := 0
	for _, s := range schema.Sections {
		total += len(s.Fields)
		for _, f := range s.Fields {
			if f.Name == "tanggal_penelitian" && s.Name != "header" {
				t.Errorf("tanggal_penelitian landed in %q, want header", s.Name)
			}
		}
	}
	if total != 3 {
		t.Errorf("total fields = %d, want 3", total)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier()
	names := []string{"nama", "tanggal", "custom_field"}

	first := c.Classify(names)
	second := c.Classify(names)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated classification differs (-first +second):\n%s", diff)
	}

	seen := map[string]int{}
	for _, s := range first.Sections {
		for _, f := range s.Fields {
			seen[f.Name]++
		}
	}
	for _, name := range names {
		if seen[name] != 1 {
			t.Errorf("%q appears in %d sections, want 1", name, seen[name])
		}
	}
}

func TestClassifyFieldAttributes(t *testing.T) {
	schema := NewClassifier().Classify([]string{"nim"})

	got := schema.Sections[0].Fields[0]
	want := Field{
		Name:        "nim",
		Label:       "NIM",
		Type:        "text",
		Required:    true,
		Placeholder: "Masukkan nim...",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field mismatch (-want +got):\n%s", diff)
	}
}

func TestHumanizeSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"nama", "Nama"},
		{"prodi", "Program Studi"},
		{"judul_penelitian", "Judul Penelitian"},
		{"custom_field", "Custom Field"},
		{"x", "X"},
	}

	c := NewClassifier()
	for _, tt := range tests {
		if got := c.humanize(tt.in); got != tt.want {
			t.Errorf("humanize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	schema := NewClassifier().Classify(nil)
	if len(schema.Sections) != 0 {
		t.Errorf("got %d sections for empty input, want 0", len(schema.Sections))
	}
}

func TestClassifyCustomRules(t *testing.T) {
	c := &Classifier{
		groups: []fieldGroup{
			{Name: "invoice", Title: "Invoice", Keywords: []string{"total", "amount"}},
		},
		catchAll: fieldGroup{Name: "misc", Title: "Misc"},
		labels:   map[string]string{},
	}

	schema := c.Classify([]string{"total_amount", "remark"})

	var names []string
	for _, s := range schema.Sections {
		names = append(names, s.Name)
	}
	want := []string{"invoice", "misc"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("section names mismatch (-want +got):\n%s", diff)
	}
}
