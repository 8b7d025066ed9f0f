package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/azeruya/auto-letter/internal"
	"github.com/azeruya/auto-letter/internal/engine"
	"github.com/azeruya/auto-letter/internal/models"
	"github.com/azeruya/auto-letter/internal/storage"

	"github.com/google/uuid"
)

const docxMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocumentService generates filled documents from stored templates.
type DocumentService struct {
	storageClient   storage.Client
	templateService *TemplateService
	pdfService      *PDFService
}

// NewDocumentService creates a document service. pdfService may be nil; PDF
// renditions are then skipped.
func NewDocumentService(storageClient storage.Client, templateService *TemplateService, pdfService *PDFService) *DocumentService {
	return &DocumentService{
		storageClient:   storageClient,
		templateService: templateService,
		pdfService:      pdfService,
	}
}

// ProcessDocument fills a template with the submitted values and stores the
// result under a fresh document ID. Keys missing from data are left as-is in
// the output.
func (s *DocumentService) ProcessDocument(ctx context.Context, templateID string, data map[string]string) (*models.Document, error) {
	template, err := s.templateService.GetTemplate(templateID)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	tempInputFile, err := s.templateService.fetchToTempFile(ctx, template.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	defer os.Remove(tempInputFile)

	output, err := engine.Generate(tempInputFile, data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate document: %w", err)
	}

	documentID := uuid.New().String()
	objectName := storage.DocumentObjectName(documentID, template.Filename)

	result, err := s.storageClient.UploadFile(ctx, bytes.NewReader(output), objectName, docxMimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload generated document: %w", err)
	}

	// PDF rendition is best effort: a conversion failure never fails the
	// DOCX generation.
	var pdfObjectName string
	if s.pdfService != nil {
		pdfObjectName = s.generatePDF(ctx, documentID, template.Filename, output)
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.cleanupObjects(ctx, objectName, pdfObjectName)
		return nil, fmt.Errorf("failed to marshal data: %w", err)
	}

	document := &models.Document{
		ID:              documentID,
		TemplateID:      templateID,
		Filename:        template.Filename,
		StoragePathDocx: objectName,
		StoragePathPdf:  pdfObjectName,
		FileSize:        result.Size,
		MimeType:        docxMimeType,
		Data:            string(dataJSON),
		Status:          "completed",
	}

	if err := internal.DB.Create(document).Error; err != nil {
		s.cleanupObjects(ctx, objectName, pdfObjectName)
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}

	return document, nil
}

// generatePDF converts the generated DOCX bytes and uploads the PDF. Returns
// the PDF object name, or "" when conversion or upload failed.
func (s *DocumentService) generatePDF(ctx context.Context, documentID, filename string, docxBytes []byte) string {
	tempPDFPath := filepath.Join(os.TempDir(), documentID+".pdf")

	err := s.pdfService.ConvertDocxToPDFToFile(ctx, bytes.NewReader(docxBytes), filename, tempPDFPath)
	if err != nil {
		fmt.Printf("Warning: failed to convert document %s to PDF: %v\n", documentID, err)
		return ""
	}
	defer os.Remove(tempPDFPath)

	pdfFile, err := os.Open(tempPDFPath)
	if err != nil {
		fmt.Printf("Warning: failed to open converted PDF for %s: %v\n", documentID, err)
		return ""
	}
	defer pdfFile.Close()

	pdfObjectName := storage.DocumentPDFObjectName(documentID, filename)
	if _, err := s.storageClient.UploadFile(ctx, pdfFile, pdfObjectName, "application/pdf"); err != nil {
		fmt.Printf("Warning: failed to upload PDF for %s: %v\n", documentID, err)
		return ""
	}
	return pdfObjectName
}

func (s *DocumentService) cleanupObjects(ctx context.Context, objectNames ...string) {
	for _, name := range objectNames {
		if name != "" {
			s.storageClient.DeleteFile(ctx, name)
		}
	}
}

// PreviewDocument reports what a generation run would replace, without
// producing an artifact.
func (s *DocumentService) PreviewDocument(ctx context.Context, templateID string, data map[string]string) (*engine.PreviewResult, error) {
	template, err := s.templateService.GetTemplate(templateID)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	tempInputFile, err := s.templateService.fetchToTempFile(ctx, template.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	defer os.Remove(tempInputFile)

	result := engine.PreviewTemplate(tempInputFile, data)
	return &result, nil
}

func (s *DocumentService) GetDocument(documentID string) (*models.Document, error) {
	var document models.Document
	if err := internal.DB.First(&document, "id = ?", documentID).Error; err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}
	return &document, nil
}

// GetDocumentReader opens the stored artifact for download in the requested
// format and returns the reader, download filename and MIME type.
func (s *DocumentService) GetDocumentReader(ctx context.Context, documentID string, format string) (io.ReadCloser, string, string, error) {
	document, err := s.GetDocument(documentID)
	if err != nil {
		return nil, "", "", err
	}

	var objectName, filename, mimeType string

	switch format {
	case "pdf":
		if document.StoragePathPdf == "" {
			return nil, "", "", fmt.Errorf("PDF version not available")
		}
		objectName = document.StoragePathPdf
		filename = replaceExtName(document.Filename, ".pdf")
		mimeType = "application/pdf"
	case "docx":
		fallthrough
	default:
		objectName = document.StoragePathDocx
		filename = document.Filename
		mimeType = docxMimeType
	}

	reader, err := s.storageClient.ReadFile(ctx, objectName)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to read document: %w", err)
	}

	return reader, filename, mimeType, nil
}

// DeleteProcessedFile removes the stored artifact for one format after
// download, keeping the document record and its submitted data.
func (s *DocumentService) DeleteProcessedFile(ctx context.Context, documentID string, format string) error {
	document, err := s.GetDocument(documentID)
	if err != nil {
		return err
	}

	var objectName string
	switch format {
	case "pdf":
		objectName = document.StoragePathPdf
	default:
		objectName = document.StoragePathDocx
	}

	if objectName == "" {
		return fmt.Errorf("file path not found for format %s", format)
	}

	if err := s.storageClient.DeleteFile(ctx, objectName); err != nil {
		return fmt.Errorf("failed to delete processed file: %w", err)
	}

	if err := internal.DB.Model(document).Update("status", "downloaded").Error; err != nil {
		fmt.Printf("Warning: failed to update document status: %v\n", err)
	}

	return nil
}

func (s *DocumentService) DeleteDocument(ctx context.Context, documentID string) error {
	document, err := s.GetDocument(documentID)
	if err != nil {
		return err
	}

	if err := s.storageClient.DeleteFile(ctx, document.StoragePathDocx); err != nil {
		fmt.Printf("Warning: failed to delete stored document %s: %v\n", document.StoragePathDocx, err)
	}
	if document.StoragePathPdf != "" {
		if err := s.storageClient.DeleteFile(ctx, document.StoragePathPdf); err != nil {
			fmt.Printf("Warning: failed to delete stored PDF %s: %v\n", document.StoragePathPdf, err)
		}
	}

	return internal.DB.Delete(document).Error
}

func replaceExtName(filename, ext string) string {
	old := filepath.Ext(filename)
	if old == "" {
		return filename + ext
	}
	return filename[:len(filename)-len(old)] + ext
}
