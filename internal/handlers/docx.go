package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/azeruya/auto-letter/internal/engine"
	"github.com/azeruya/auto-letter/internal/models"
	"github.com/azeruya/auto-letter/internal/services"

	"github.com/gin-gonic/gin"
)

type DocxHandler struct {
	templateService *services.TemplateService
	documentService *services.DocumentService
}

func NewDocxHandler(templateService *services.TemplateService, documentService *services.DocumentService) *DocxHandler {
	return &DocxHandler{
		templateService: templateService,
		documentService: documentService,
	}
}

type TemplatesResponse struct {
	Templates []models.Template `json:"templates"`
}

type PlaceholderResponse struct {
	Placeholders []string      `json:"placeholders"`
	Schema       engine.Schema `json:"schema"`
	FieldCount   int           `json:"field_count"`
}

type UploadResponse struct {
	TemplateID   string        `json:"template_id"`
	FileName     string        `json:"file_name"`
	Description  string        `json:"description"`
	Author       string        `json:"author"`
	Placeholders []string      `json:"placeholders"`
	Schema       engine.Schema `json:"schema"`
	FieldCount   int           `json:"field_count"`
	Message      string        `json:"message"`
}

type ProcessRequest struct {
	Data map[string]string `json:"data"`
}

type ProcessResponse struct {
	DocumentID     string `json:"document_id"`
	DownloadURL    string `json:"download_url"`
	DownloadPDFURL string `json:"download_pdf_url,omitempty"`
	ExpiresAt      string `json:"expires_at"`
	Message        string `json:"message"`
}

func (h *DocxHandler) UploadTemplate(c *gin.Context) {
	file, header, err := c.Request.FormFile("template")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if filepath.Ext(header.Filename) != ".docx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .docx files are supported"})
		return
	}

	fileName := c.PostForm("fileName")
	description := c.PostForm("description")
	author := c.PostForm("author")

	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName is required"})
		return
	}
	if author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "author is required"})
		return
	}

	template, err := h.templateService.Upload(c.Request.Context(), file, header, fileName, description, author)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to upload template: %v", err)})
		return
	}

	parsed, err := h.templateService.GetParseResult(template.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load parsed template"})
		return
	}

	response := UploadResponse{
		TemplateID:   template.ID,
		FileName:     template.DisplayName,
		Description:  template.Description,
		Author:       template.Author,
		Placeholders: parsed.Placeholders,
		Schema:       parsed.Schema,
		FieldCount:   parsed.FieldCount,
		Message:      "Template uploaded successfully",
	}

	c.JSON(http.StatusOK, response)
}

func (h *DocxHandler) GetAllTemplates(c *gin.Context) {
	templates, err := h.templateService.GetAllTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to get templates: %v", err)})
		return
	}

	c.JSON(http.StatusOK, TemplatesResponse{Templates: templates})
}

func (h *DocxHandler) GetTemplate(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	template, err := h.templateService.GetTemplate(templateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

// GetPlaceholders returns the extracted placeholders together with the
// generated form schema.
func (h *DocxHandler) GetPlaceholders(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	parsed, err := h.templateService.GetParseResult(templateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	response := PlaceholderResponse{
		Placeholders: parsed.Placeholders,
		Schema:       parsed.Schema,
		FieldCount:   parsed.FieldCount,
	}

	c.JSON(http.StatusOK, response)
}

func (h *DocxHandler) ProcessDocument(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	document, err := h.documentService.ProcessDocument(c.Request.Context(), templateID, req.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to process document: %v", err)})
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	response := ProcessResponse{
		DocumentID:  document.ID,
		DownloadURL: fmt.Sprintf("/api/v1/documents/%s/download", document.ID),
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		Message:     "Document processed successfully",
	}

	if document.StoragePathPdf != "" {
		response.DownloadPDFURL = fmt.Sprintf("/api/v1/documents/%s/download?format=pdf", document.ID)
	}

	c.JSON(http.StatusOK, response)
}

// PreviewDocument reports what a generation run would substitute without
// storing an artifact.
func (h *DocxHandler) PreviewDocument(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	preview, err := h.documentService.PreviewDocument(c.Request.Context(), templateID, req.Data)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Failed to preview document: %v", err)})
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *DocxHandler) DownloadDocument(c *gin.Context) {
	documentID := c.Param("documentId")
	if documentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document ID is required"})
		return
	}

	format := c.DefaultQuery("format", "docx")

	reader, filename, mimeType, err := h.documentService.GetDocumentReader(c.Request.Context(), documentID, format)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	defer reader.Close()

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", mimeType)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Streaming failed partway; keep the artifact so the client can retry.
		fmt.Printf("Error streaming file: %v\n", err)
		return
	}

	// The artifact is single-use: remove it after a successful download,
	// keeping the record and its submitted data.
	go func() {
		if err := h.documentService.DeleteProcessedFile(c.Request.Context(), documentID, format); err != nil {
			fmt.Printf("Warning: failed to delete processed file for document %s: %v\n", documentID, err)
		}
	}()
}

func (h *DocxHandler) DeleteTemplate(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template ID is required"})
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), templateID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to delete template: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}
