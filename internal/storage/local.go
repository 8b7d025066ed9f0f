package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalClient implements Client on the local filesystem. Download URLs are
// HMAC-signed with an expiry so files can be served without exposing the
// storage directory.
type LocalClient struct {
	basePath  string
	baseURL   string
	secretKey string
}

// NewLocalClient creates a local storage client rooted at basePath. For
// internal-only deployments baseURL can be empty; files are then streamed
// through the download endpoint instead.
func NewLocalClient(basePath, baseURL, secretKey string) (*LocalClient, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if secretKey == "" {
		secretKey = "auto-letter-local-storage-key"
	}
	if baseURL == "" {
		baseURL = "internal://storage"
	}
	return &LocalClient{
		basePath:  basePath,
		baseURL:   baseURL,
		secretKey: secretKey,
	}, nil
}

func (l *LocalClient) UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error) {
	fullPath := filepath.Join(l.basePath, objectName)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(fullPath), err)
	}

	// O_EXCL: a generated artifact path must never be reused.
	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to write data to file: %w", err)
	}

	return &UploadResult{
		ObjectName: objectName,
		PublicURL:  fmt.Sprintf("%s/%s", l.baseURL, objectName),
		Size:       size,
	}, nil
}

func (l *LocalClient) DeleteFile(ctx context.Context, objectName string) error {
	fullPath := filepath.Join(l.basePath, objectName)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	l.cleanEmptyDirs(filepath.Dir(fullPath))
	return nil
}

// cleanEmptyDirs removes empty parent directories up to basePath.
func (l *LocalClient) cleanEmptyDirs(dir string) {
	for dir != l.basePath && dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}

func (l *LocalClient) ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	fullPath := filepath.Join(l.basePath, objectName)
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fullPath, err)
	}
	return file, nil
}

func (l *LocalClient) GetSignedURL(objectName string, expiry time.Duration) (string, error) {
	expiresAt := time.Now().Add(expiry).Unix()
	signature := l.sign(fmt.Sprintf("%s:%d", objectName, expiresAt))
	return fmt.Sprintf("%s/%s?expires=%d&signature=%s",
		l.baseURL, objectName, expiresAt, signature), nil
}

func (l *LocalClient) sign(message string) string {
	h := hmac.New(sha256.New, []byte(l.secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignedURL checks that a signed URL is valid and not expired.
func (l *LocalClient) VerifySignedURL(objectName string, expiresAt int64, signature string) bool {
	if time.Now().Unix() > expiresAt {
		return false
	}
	expected := l.sign(fmt.Sprintf("%s:%d", objectName, expiresAt))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// GetFilePath returns the full filesystem path for an object.
func (l *LocalClient) GetFilePath(objectName string) string {
	return filepath.Join(l.basePath, objectName)
}

// GetBasePath returns the base storage directory path.
func (l *LocalClient) GetBasePath() string {
	return l.basePath
}

func (l *LocalClient) Close() error {
	return nil
}

var _ Client = (*LocalClient)(nil)
