package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Client is the interface for file storage operations. Both the GCS and
// local-disk implementations satisfy it.
type Client interface {
	UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error)
	DeleteFile(ctx context.Context, objectName string) error
	ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
	GetSignedURL(objectName string, expiry time.Duration) (string, error)
	Close() error
}

// UploadResult contains the result of an upload operation.
type UploadResult struct {
	ObjectName string `json:"object_name"`
	PublicURL  string `json:"public_url"`
	Size       int64  `json:"size"`
}

// TemplateObjectName builds the storage path for an uploaded template. The
// timestamp keeps re-uploads from colliding with older objects.
func TemplateObjectName(templateID, filename string) string {
	return fmt.Sprintf("templates/%s/%d_%s", templateID, time.Now().Unix(), filename)
}

// DocumentObjectName builds the storage path for a generated document. Each
// generation gets a fresh path; an existing artifact is never reused or
// appended to.
func DocumentObjectName(documentID, filename string) string {
	return fmt.Sprintf("documents/%s/%d_%s", documentID, time.Now().Unix(), filename)
}

// DocumentPDFObjectName builds the storage path for the PDF rendition of a
// generated document.
func DocumentPDFObjectName(documentID, filename string) string {
	pdfFilename := replaceExt(filename, ".pdf")
	return fmt.Sprintf("documents/%s/%d_%s", documentID, time.Now().Unix(), pdfFilename)
}

func replaceExt(filename, ext string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i] + ext
		}
	}
	return filename + ext
}
