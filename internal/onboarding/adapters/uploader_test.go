package adapters

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/files/service"
	"onboard/internal/files/store"
	"onboard/internal/onboarding/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/requestcontext"
)

func TestUploaderStoresStagedDocument(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	owner := id.NewUserID()
	up := NewUploader(service.New(store.NewInMemory()))

	doc, err := up.Upload(ctx, owner, models.StagedDocument{
		Type:     models.DocumentOPTReceipt,
		FileName: "opt.pdf",
		Content:  strings.NewReader("%PDF-1.4 receipt"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentOPTReceipt, doc.Type)
	assert.Equal(t, "opt.pdf", doc.FileName)
	assert.True(t, strings.HasPrefix(doc.FileURL, "/files/"+owner.String()+"/"))
	assert.Equal(t, now, doc.UploadDate)
}

func TestUploaderPassesErrorsThrough(t *testing.T) {
	up := NewUploader(service.New(store.NewInMemory()))

	_, err := up.Upload(context.Background(), id.NewUserID(), models.StagedDocument{
		Type:     models.DocumentDriverLicense,
		FileName: "dl.txt",
		Content:  strings.NewReader("not a document"),
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestUploaderLookup(t *testing.T) {
	ctx := context.Background()
	owner := id.NewUserID()
	up := NewUploader(service.New(store.NewInMemory()))
	uploaded, err := up.Upload(ctx, owner, onboardingStaged("dl.pdf"))
	require.NoError(t, err)

	t.Run("own upload resolves with its stored date", func(t *testing.T) {
		doc, err := up.Lookup(ctx, owner, uploaded.FileURL)
		require.NoError(t, err)
		assert.Equal(t, uploaded.FileURL, doc.FileURL)
		assert.False(t, doc.UploadDate.IsZero())
	})

	t.Run("other owners and invented urls are not found", func(t *testing.T) {
		_, err := up.Lookup(ctx, id.NewUserID(), uploaded.FileURL)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))

		_, err = up.Lookup(ctx, owner, "https://attacker.example/not-a-file.pdf")
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})
}

func onboardingStaged(name string) models.StagedDocument {
	return models.StagedDocument{
		Type:     models.DocumentDriverLicense,
		FileName: name,
		Content:  strings.NewReader("%PDF-1.4 " + name),
	}
}
