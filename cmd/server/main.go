package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/azeruya/auto-letter/internal"
	"github.com/azeruya/auto-letter/internal/config"
	"github.com/azeruya/auto-letter/internal/handlers"
	"github.com/azeruya/auto-letter/internal/services"
	"github.com/azeruya/auto-letter/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := internal.InitDB(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx := context.Background()
	var storageClient storage.Client
	var localClient *storage.LocalClient

	switch cfg.Storage.Type {
	case "gcs":
		log.Printf("Initializing GCS storage with bucket: %s", cfg.GCS.BucketName)
		client, err := storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.ProjectID, cfg.GCS.CredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize GCS client: %v", err)
		}
		storageClient = client
	case "local":
		fallthrough
	default:
		log.Printf("Initializing local storage at: %s", cfg.Storage.LocalPath)
		client, err := storage.NewLocalClient(cfg.Storage.LocalPath, cfg.Storage.LocalURL, cfg.Storage.SecretKey)
		if err != nil {
			log.Fatalf("Failed to initialize local storage client: %v", err)
		}
		storageClient = client
		localClient = client
	}
	defer storageClient.Close()

	templateService := services.NewTemplateService(storageClient)

	// PDF rendering is optional: without a Gotenberg URL the service runs
	// DOCX-only.
	var pdfService *services.PDFService
	if cfg.Gotenberg.URL != "" {
		pdfService, err = services.NewPDFService(cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)
		if err != nil {
			log.Printf("Warning: failed to initialize PDF service: %v", err)
			pdfService = nil
		} else {
			log.Printf("PDF service initialized with URL: %s, timeout: %s", cfg.Gotenberg.URL, cfg.Gotenberg.Timeout)
		}
	}

	documentService := services.NewDocumentService(storageClient, templateService, pdfService)
	docxHandler := handlers.NewDocxHandler(templateService, documentService)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"storage":   cfg.Storage.Type,
		})
	})

	if localClient != nil && cfg.Storage.LocalURL != "" && cfg.Storage.LocalURL != "internal://storage" {
		registerLocalFileServer(r, localClient)
		log.Printf("Local file server enabled at /files/*")
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/upload", docxHandler.UploadTemplate)
		v1.GET("/templates", docxHandler.GetAllTemplates)
		v1.GET("/templates/:templateId", docxHandler.GetTemplate)
		v1.DELETE("/templates/:templateId", docxHandler.DeleteTemplate)
		v1.GET("/templates/:templateId/placeholders", docxHandler.GetPlaceholders)
		v1.POST("/templates/:templateId/generate", docxHandler.ProcessDocument)
		v1.POST("/templates/:templateId/preview", docxHandler.PreviewDocument)
		v1.GET("/documents/:documentId/download", docxHandler.DownloadDocument)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 150 * time.Second, // generation plus PDF conversion can be slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s (environment: %s)", cfg.Server.Port, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := internal.CloseDB(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	if pdfService != nil {
		if err := pdfService.Close(); err != nil {
			log.Printf("Error closing PDF service: %v", err)
		}
	}

	log.Println("Server exited")
}

// registerLocalFileServer serves stored files over signed URLs when local
// storage has a public base URL configured.
func registerLocalFileServer(r *gin.Engine, localClient *storage.LocalClient) {
	r.GET("/files/*filepath", func(c *gin.Context) {
		filePath := strings.TrimPrefix(c.Param("filepath"), "/")
		if filePath == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file path required"})
			return
		}

		cleanPath := filepath.Clean(filePath)
		if strings.Contains(cleanPath, "..") || strings.HasPrefix(cleanPath, "/") || strings.HasPrefix(cleanPath, "\\") {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid file path"})
			return
		}

		expiresStr := c.Query("expires")
		signature := c.Query("signature")
		if signature == "" || expiresStr == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "signed URL required"})
			return
		}

		var expiresAt int64
		if _, err := fmt.Sscanf(expiresStr, "%d", &expiresAt); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expires parameter"})
			return
		}

		if !localClient.VerifySignedURL(cleanPath, expiresAt, signature) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired signature"})
			return
		}

		fullPath := localClient.GetFilePath(cleanPath)
		absPath, err := filepath.Abs(fullPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve path"})
			return
		}
		basePath, err := filepath.Abs(localClient.GetBasePath())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve base path"})
			return
		}
		if !strings.HasPrefix(absPath, basePath+string(filepath.Separator)) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		c.File(fullPath)
	})
}
