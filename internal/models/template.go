package models

import (
	"time"

	"gorm.io/gorm"
)

// Template is the persisted metadata for an uploaded letter template. The
// extracted placeholder list and the derived form schema are stored as JSON
// blobs alongside the storage path; the schema is generated once at upload
// time and never mutated afterward.
type Template struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Filename     string         `gorm:"not null" json:"filename"`
	OriginalName string         `json:"original_name"`
	DisplayName  string         `json:"display_name"`
	Description  string         `json:"description"`
	Author       string         `json:"author"`
	StoragePath  string         `json:"storage_path"`
	FileSize     int64          `json:"file_size"`
	MimeType     string         `json:"mime_type"`
	Placeholders string         `gorm:"type:jsonb" json:"placeholders"` // JSON array of placeholder names
	Schema       string         `gorm:"type:jsonb" json:"schema"`       // JSON form schema (sections/fields)
	FieldCount   int            `json:"field_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Documents []Document `gorm:"foreignKey:TemplateID" json:"documents,omitempty"`
}

func (Template) TableName() string {
	return "letter_templates"
}

// Document is one generated letter: the template it came from, the submitted
// values, and where the rendered artifacts live.
type Document struct {
	ID              string         `gorm:"primaryKey" json:"id"`
	TemplateID      string         `gorm:"not null;index" json:"template_id"`
	Filename        string         `gorm:"not null" json:"filename"`
	StoragePathDocx string         `json:"storage_path_docx"`
	StoragePathPdf  string         `json:"storage_path_pdf,omitempty"`
	FileSize        int64          `json:"file_size"`
	MimeType        string         `json:"mime_type"`
	Data            string         `gorm:"type:jsonb" json:"data"` // JSON object of submitted values
	Status          string         `gorm:"default:'completed'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Template Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}

func (Document) TableName() string {
	return "letter_documents"
}
