package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/azeruya/auto-letter/internal"
	"github.com/azeruya/auto-letter/internal/engine"
	"github.com/azeruya/auto-letter/internal/models"
	"github.com/azeruya/auto-letter/internal/storage"

	"github.com/google/uuid"
)

// TemplateService owns the template lifecycle: upload-time parsing and schema
// generation, metadata persistence, and deletion.
type TemplateService struct {
	storageClient storage.Client
	scanner       *engine.Scanner
}

func NewTemplateService(storageClient storage.Client) *TemplateService {
	return &TemplateService{
		storageClient: storageClient,
		scanner:       engine.NewScanner(),
	}
}

// Upload stores the template file, extracts its placeholders, derives the
// form schema and persists the metadata. Parse failure is the upload-time
// validation path: the stored object is removed and the parse error returned.
func (s *TemplateService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, displayName, description, author string) (*models.Template, error) {
	templateID := uuid.New().String()
	objectName := storage.TemplateObjectName(templateID, header.Filename)

	result, err := s.storageClient.UploadFile(ctx, file, objectName, header.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to upload template: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		s.storageClient.DeleteFile(ctx, objectName)
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}
	tempFile, err := createTempFile(file)
	if err != nil {
		s.storageClient.DeleteFile(ctx, objectName)
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile)

	parsed := s.scanner.ParseTemplate(tempFile)
	if !parsed.Success {
		s.storageClient.DeleteFile(ctx, objectName)
		return nil, fmt.Errorf("failed to parse template: %s", parsed.Error)
	}

	placeholdersJSON, err := json.Marshal(parsed.Placeholders)
	if err != nil {
		s.storageClient.DeleteFile(ctx, objectName)
		return nil, fmt.Errorf("failed to marshal placeholders: %w", err)
	}
	schemaJSON, err := json.Marshal(parsed.Schema)
	if err != nil {
		s.storageClient.DeleteFile(ctx, objectName)
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	template := &models.Template{
		ID:           templateID,
		Filename:     header.Filename,
		OriginalName: header.Filename,
		DisplayName:  displayName,
		Description:  description,
		Author:       author,
		StoragePath:  objectName,
		FileSize:     result.Size,
		MimeType:     header.Header.Get("Content-Type"),
		Placeholders: string(placeholdersJSON),
		Schema:       string(schemaJSON),
		FieldCount:   parsed.FieldCount,
	}

	if err := internal.DB.Create(template).Error; err != nil {
		s.storageClient.DeleteFile(ctx, objectName)
		return nil, fmt.Errorf("failed to save template metadata: %w", err)
	}

	return template, nil
}

func (s *TemplateService) GetTemplate(templateID string) (*models.Template, error) {
	var template models.Template
	if err := internal.DB.First(&template, "id = ?", templateID).Error; err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) GetAllTemplates() ([]models.Template, error) {
	var templates []models.Template
	if err := internal.DB.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	return templates, nil
}

// GetParseResult reassembles the scan output for a stored template from its
// persisted placeholder list and schema blob.
func (s *TemplateService) GetParseResult(templateID string) (*engine.ParseResult, error) {
	template, err := s.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}

	result := &engine.ParseResult{Success: true, FieldCount: template.FieldCount}
	if err := json.Unmarshal([]byte(template.Placeholders), &result.Placeholders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal placeholders: %w", err)
	}
	if err := json.Unmarshal([]byte(template.Schema), &result.Schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return result, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID string) error {
	template, err := s.GetTemplate(templateID)
	if err != nil {
		return err
	}

	if err := s.storageClient.DeleteFile(ctx, template.StoragePath); err != nil {
		// Keep going: a missing storage object must not orphan the record.
		fmt.Printf("Warning: failed to delete stored template %s: %v\n", template.StoragePath, err)
	}

	return internal.DB.Delete(template).Error
}

// fetchToTempFile downloads a stored object into a temp file and returns its
// path. The caller removes the file.
func (s *TemplateService) fetchToTempFile(ctx context.Context, objectName string) (string, error) {
	reader, err := s.storageClient.ReadFile(ctx, objectName)
	if err != nil {
		return "", fmt.Errorf("failed to read stored template: %w", err)
	}
	defer reader.Close()
	return createTempFile(reader)
}

func createTempFile(reader io.Reader) (string, error) {
	tempFile, err := os.CreateTemp("", "*.docx")
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, reader); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}
	return tempFile.Name(), nil
}
