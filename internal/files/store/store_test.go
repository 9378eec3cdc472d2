package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"onboard/internal/files/models"
	"onboard/internal/sentinel"
)

type blobStore interface {
	Put(ctx context.Context, key string, r io.Reader, limit int64) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (models.BlobInfo, error)
	Delete(ctx context.Context, key string) error
}

// BlobStoreSuite runs the same behaviour checks against every backend.
type BlobStoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) blobStore
	store    blobStore
	ctx      context.Context
}

func TestDiskStore(t *testing.T) {
	suite.Run(t, &BlobStoreSuite{newStore: func(t *testing.T) blobStore {
		d, err := NewDisk(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = d.Close() })
		return d
	}})
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &BlobStoreSuite{newStore: func(*testing.T) blobStore { return NewInMemory() }})
}

func (s *BlobStoreSuite) SetupTest() {
	s.store = s.newStore(s.T())
	s.ctx = context.Background()
}

func (s *BlobStoreSuite) read(key string) string {
	rc, err := s.store.Open(s.ctx, key)
	s.Require().NoError(err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	s.Require().NoError(err)
	return string(b)
}

func (s *BlobStoreSuite) TestPutAndOpen() {
	n, err := s.store.Put(s.ctx, "owner/a.pdf", strings.NewReader("%PDF-1.4 hello"), 1024)
	s.Require().NoError(err)
	s.Equal(int64(14), n)
	s.Equal("%PDF-1.4 hello", s.read("owner/a.pdf"))
}

func (s *BlobStoreSuite) TestExactLimitIsAccepted() {
	_, err := s.store.Put(s.ctx, "owner/exact.pdf", strings.NewReader("12345"), 5)
	s.NoError(err)
}

func (s *BlobStoreSuite) TestOversizedIsRejectedAndNotKept() {
	_, err := s.store.Put(s.ctx, "owner/big.pdf", strings.NewReader("123456"), 5)
	s.True(errors.Is(err, sentinel.ErrTooLarge))

	_, err = s.store.Open(s.ctx, "owner/big.pdf")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *BlobStoreSuite) TestExistingKeyIsNotOverwritten() {
	_, err := s.store.Put(s.ctx, "owner/a.pdf", strings.NewReader("first"), 1024)
	s.Require().NoError(err)

	_, err = s.store.Put(s.ctx, "owner/a.pdf", strings.NewReader("second"), 1024)
	s.True(errors.Is(err, sentinel.ErrAlreadyUsed))
	s.Equal("first", s.read("owner/a.pdf"))
}

func (s *BlobStoreSuite) TestDelete() {
	_, err := s.store.Put(s.ctx, "owner/a.pdf", strings.NewReader("x"), 1024)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, "owner/a.pdf"))
	s.True(errors.Is(s.store.Delete(s.ctx, "owner/a.pdf"), sentinel.ErrNotFound))
}

func (s *BlobStoreSuite) TestMissingKey() {
	_, err := s.store.Open(s.ctx, "owner/missing.pdf")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *BlobStoreSuite) TestStat() {
	before := time.Now().Add(-time.Minute)
	_, err := s.store.Put(s.ctx, "owner/a.pdf", strings.NewReader("%PDF-1.4"), 1024)
	s.Require().NoError(err)

	info, err := s.store.Stat(s.ctx, "owner/a.pdf")
	s.Require().NoError(err)
	s.Equal(int64(8), info.Size)
	s.True(info.ModTime.After(before))
	s.Equal(time.UTC, info.ModTime.Location())

	_, err = s.store.Stat(s.ctx, "owner/missing.pdf")
	s.True(errors.Is(err, sentinel.ErrNotFound))

	_, err = s.store.Stat(s.ctx, "owner")
	s.True(errors.Is(err, sentinel.ErrNotFound), "directories are not blobs")
}

func TestDiskRejectsEscapingKeys(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if _, err := d.Put(context.Background(), "../escape.pdf", strings.NewReader("x"), 10); err == nil {
		t.Fatal("expected key outside the root to fail")
	}
}
