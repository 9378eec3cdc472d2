// Package models holds the stored-file types shared by the files module.
package models

import (
	"time"

	id "onboard/pkg/domain"
)

// Content types accepted for onboarding documents.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
)

// StoredFile describes one uploaded file. Key is "<owner>/<name>", where name
// is a generated UUID plus an extension derived from the sniffed content.
type StoredFile struct {
	Key         string
	Owner       id.UserID
	FileName    string // original, sanitized name shown to users
	ContentType string
	Size        int64
	URL         string
	UploadDate  time.Time
}

// BlobInfo is what a blob store knows about one stored blob.
type BlobInfo struct {
	Size    int64
	ModTime time.Time
}

// Extension returns the file extension stored files of contentType carry.
func Extension(contentType string) (string, bool) {
	switch contentType {
	case ContentTypePDF:
		return ".pdf", true
	case ContentTypePNG:
		return ".png", true
	case ContentTypeJPEG:
		return ".jpg", true
	default:
		return "", false
	}
}

// ContentTypeOf maps a stored extension back to its content type.
func ContentTypeOf(ext string) (string, bool) {
	switch ext {
	case ".pdf":
		return ContentTypePDF, true
	case ".png":
		return ContentTypePNG, true
	case ".jpg":
		return ContentTypeJPEG, true
	default:
		return "", false
	}
}
