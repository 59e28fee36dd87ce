package services

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Upload limits enforced at the handler boundary; the core never
// inspects file bytes.
const MaxUploadSize = 5 << 20 // 5MB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	ErrInvalidImageType = errors.New("invalid image type (allowed: jpg, jpeg, png, gif, webp)")
	ErrImageTooLarge    = errors.New("file size exceeds 5MB limit")
)

// ValidateImageUpload checks extension and size of a multipart upload.
func ValidateImageUpload(fh *multipart.FileHeader) error {
	if fh == nil {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExts[ext] {
		return ErrInvalidImageType
	}
	if fh.Size > MaxUploadSize {
		return ErrImageTooLarge
	}
	return nil
}

// SaveUploadedImage stores a validated multipart upload under
// uploads/<subdir> and returns the relative path kept in the DB.
func SaveUploadedImage(fh *multipart.FileHeader, subdir string) (string, error) {
	if err := ValidateImageUpload(fh); err != nil {
		return "", err
	}

	dir := filepath.Join("uploads", subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	fullpath := filepath.Join(dir, filename)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullpath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(subdir, filename)), nil
}

// SaveBase64Image stores a base64 payload (JSON document upload API) and
// returns the relative path kept in the DB.
func SaveBase64Image(b64 string, subdir string) (string, error) {
	if idx := strings.Index(b64, "base64,"); idx >= 0 {
		b64 = b64[idx+7:]
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", ErrImageTooLarge
	}

	dir := filepath.Join("uploads", subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir uploads dir: %w", err)
	}

	filename := fmt.Sprintf("%d.jpg", time.Now().UnixNano())
	fullpath := filepath.Join(dir, filename)

	if err := os.WriteFile(fullpath, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(subdir, filename)), nil
}
