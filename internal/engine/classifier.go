package engine

import (
	"strings"
	"unicode"
)

// fieldGroup is one classification rule: placeholders whose name contains any
// of the keywords (case-insensitive) belong to the named section. Groups are
// checked in declaration order and the first match wins.
type fieldGroup struct {
	Name     string
	Title    string
	Keywords []string
}

// Classifier groups placeholder names into form sections using keyword
// heuristics. It is stateless configuration data: construct once, reuse
// freely. The default rule set targets Indonesian administrative letters;
// swap the groups to retarget another domain.
type Classifier struct {
	groups   []fieldGroup
	catchAll fieldGroup
	labels   map[string]string
}

// NewClassifier returns a classifier with the default rule set.
func NewClassifier() *Classifier {
	return &Classifier{
		groups: []fieldGroup{
			{
				Name:     "header",
				Title:    "Kop Surat",
				Keywords: []string{"nomor", "number", "tanggal", "date", "lampiran", "attachment", "hal", "subject", "perihal"},
			},
			{
				Name:     "recipient",
				Title:    "Penerima",
				Keywords: []string{"kepada", "recipient", "yth", "alamat", "address", "kota", "location", "tempat"},
			},
			{
				Name:     "personal",
				Title:    "Data Pribadi",
				Keywords: []string{"nama", "name", "nim", "id", "program", "student", "mahasiswa", "prodi"},
			},
			{
				Name:     "content",
				Title:    "Isi Surat",
				Keywords: []string{"judul", "title", "kegiatan", "activity", "penelitian", "research", "lama", "duration", "waktu", "period", "lokasi", "isi"},
			},
			{
				Name:     "signature",
				Title:    "Penandatangan",
				Keywords: []string{"penandatangan", "signer", "nip", "jabatan", "position", "direktur", "kepala"},
			},
		},
		catchAll: fieldGroup{Name: "other", Title: "Lainnya"},
		labels: map[string]string{
			"nim":     "NIM",
			"nip":     "NIP",
			"nama":    "Nama",
			"tanggal": "Tanggal",
			"nomor":   "Nomor",
			"hal":     "Hal",
			"prodi":   "Program Studi",
		},
	}
}

// Classify builds a form schema from a list of placeholder names. Each name
// is claimed by exactly one section; names matched by no group fall into the
// trailing catch-all section. Deterministic for a given input order.
func (c *Classifier) Classify(names []string) Schema {
	schema := Schema{Sections: []Section{}}
	used := make(map[string]bool)

	for _, g := range c.groups {
		var fields []Field
		for _, name := range names {
			if used[name] {
				continue
			}
			if matchesAny(name, g.Keywords) {
				fields = append(fields, c.buildField(name))
				used[name] = true
			}
		}
		if len(fields) > 0 {
			schema.Sections = append(schema.Sections, Section{Name: g.Name, Title: g.Title, Fields: fields})
		}
	}

	var rest []Field
	for _, name := range names {
		if !used[name] {
			rest = append(rest, c.buildField(name))
		}
	}
	if len(rest) > 0 {
		schema.Sections = append(schema.Sections, Section{Name: c.catchAll.Name, Title: c.catchAll.Title, Fields: rest})
	}

	return schema
}

func (c *Classifier) buildField(name string) Field {
	label := c.humanize(name)
	return Field{
		Name:        name,
		Label:       label,
		Type:        inferInputType(name),
		Required:    true,
		Placeholder: "Masukkan " + strings.ToLower(label) + "...",
	}
}

// humanize turns a placeholder name into a display label: known abbreviations
// from the label dictionary, otherwise snake_case to Title Case.
func (c *Classifier) humanize(name string) string {
	if label, ok := c.labels[strings.ToLower(name)]; ok {
		return label
	}
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// inferInputType picks an HTML input type from keywords in the name.
func inferInputType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, "tanggal", "date"):
		return "date"
	case containsAny(lower, "email", "surel"):
		return "email"
	case containsAny(lower, "nomor", "number", "nim", "nip"):
		return "text"
	case containsAny(lower, "judul", "title", "kegiatan", "activity", "deskripsi", "description"):
		return "textarea"
	case containsAny(lower, "telepon", "phone", "hp"):
		return "tel"
	default:
		return "text"
	}
}

func matchesAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
