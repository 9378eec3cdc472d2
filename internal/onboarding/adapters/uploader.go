// Package adapters connects the onboarding service to other modules.
package adapters

import (
	"context"
	"io"

	filemodels "onboard/internal/files/models"
	"onboard/internal/onboarding/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

// FileStore is the slice of the files service the onboarding workflow needs.
type FileStore interface {
	Upload(ctx context.Context, owner id.UserID, fileName string, content io.Reader) (*filemodels.StoredFile, error)
	Stat(ctx context.Context, owner id.UserID, fileURL string) (*filemodels.StoredFile, error)
}

// Uploader stores staged onboarding documents through the files module.
type Uploader struct {
	files FileStore
}

func NewUploader(files FileStore) *Uploader {
	return &Uploader{files: files}
}

func (u *Uploader) Upload(ctx context.Context, owner id.UserID, doc models.StagedDocument) (models.Document, error) {
	stored, err := u.files.Upload(ctx, owner, doc.FileName, doc.Content)
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{
		Type:       doc.Type,
		FileName:   stored.FileName,
		FileURL:    stored.URL,
		UploadDate: stored.UploadDate,
	}, nil
}

// Lookup resolves a listed file URL to a file owner uploaded earlier. Unknown
// URLs and other owners' files return sentinel.ErrNotFound.
func (u *Uploader) Lookup(ctx context.Context, owner id.UserID, fileURL string) (models.Document, error) {
	stored, err := u.files.Stat(ctx, owner, fileURL)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return models.Document{}, sentinel.ErrNotFound
		}
		return models.Document{}, err
	}
	return models.Document{
		FileURL:    stored.URL,
		UploadDate: stored.UploadDate,
	}, nil
}
