// Package service stores onboarding documents and serves them back to their
// owners and to HR.
package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"onboard/internal/files/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	limits "onboard/pkg/platform/validation"
	"onboard/pkg/requestcontext"
)

const sniffLen = 512

// storedName matches the generated part of a key: a UUID and a known extension.
var storedName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(pdf|png|jpg)$`)

type Service struct {
	blobs    BlobStore
	maxBytes int64
	baseURL  string
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxBytes caps a single file. Non-positive values keep the default.
func WithMaxBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithPublicBaseURL prefixes returned file URLs, e.g. "https://hr.example.com".
func WithPublicBaseURL(base string) Option {
	return func(s *Service) {
		s.baseURL = strings.TrimRight(base, "/")
	}
}

func New(blobs BlobStore, opts ...Option) *Service {
	s := &Service{blobs: blobs, maxBytes: limits.DefaultMaxUploadSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// MaxBytes is the per-file limit in effect.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores content for owner. The content type is sniffed from the bytes,
// never taken from the client, and only PDF, PNG and JPEG are accepted.
func (s *Service) Upload(ctx context.Context, owner id.UserID, fileName string, content io.Reader) (*models.StoredFile, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "owner required")
	}
	if content == nil {
		return nil, fileError("file is empty")
	}
	name := SanitizeFileName(fileName)

	br := bufio.NewReaderSize(content, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read file")
	}
	if len(head) == 0 {
		return nil, fileError("file is empty")
	}
	contentType, _, _ := strings.Cut(http.DetectContentType(head), ";")
	ext, ok := models.Extension(contentType)
	if !ok {
		return nil, fileError("only PDF, PNG and JPEG files are accepted")
	}

	key := owner.String() + "/" + uuid.NewString() + ext
	size, err := s.blobs.Put(ctx, key, br, s.maxBytes)
	if err != nil {
		if errors.Is(err, sentinel.ErrTooLarge) {
			return nil, fileError(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
		}
		s.logger.ErrorContext(ctx, "failed to store file",
			"owner", owner,
			"key", key,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUploadFailed, "failed to store file")
	}

	stored := &models.StoredFile{
		Key:         key,
		Owner:       owner,
		FileName:    name,
		ContentType: contentType,
		Size:        size,
		URL:         s.baseURL + "/files/" + key,
		UploadDate:  requestcontext.Now(ctx),
	}
	s.logger.InfoContext(ctx, "file stored",
		"owner", owner,
		"key", key,
		"content_type", contentType,
		"size", size,
	)
	return stored, nil
}

// Open returns the file stored under ownerParam/name. Only the owner and HR
// may read it.
func (s *Service) Open(ctx context.Context, callerID id.UserID, isHR bool, ownerParam, name string) (io.ReadCloser, string, error) {
	owner, err := id.ParseUserID(ownerParam)
	if err != nil || !storedName.MatchString(name) {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "file not found")
	}
	if owner != callerID && !isHR {
		return nil, "", dErrors.New(dErrors.CodeForbidden, "file belongs to another user")
	}
	contentType, _ := models.ContentTypeOf(path.Ext(name))

	rc, err := s.blobs.Open(ctx, owner.String()+"/"+name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", dErrors.New(dErrors.CodeNotFound, "file not found")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to open file")
	}
	return rc, contentType, nil
}

// Stat returns the file behind fileURL when owner uploaded it. URLs on
// another host, files of other owners and missing files are all not_found.
// The returned file has no FileName; blobs do not keep the client's name.
func (s *Service) Stat(ctx context.Context, owner id.UserID, fileURL string) (*models.StoredFile, error) {
	notFound := dErrors.New(dErrors.CodeNotFound, "file not found")
	rest, ok := strings.CutPrefix(fileURL, s.baseURL+"/files/")
	if !ok {
		return nil, notFound
	}
	ownerParam, name, ok := strings.Cut(rest, "/")
	if !ok || !storedName.MatchString(name) {
		return nil, notFound
	}
	if fileOwner, err := id.ParseUserID(ownerParam); err != nil || fileOwner != owner {
		return nil, notFound
	}

	key := owner.String() + "/" + name
	info, err := s.blobs.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, notFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to stat file")
	}
	contentType, _ := models.ContentTypeOf(path.Ext(name))
	return &models.StoredFile{
		Key:         key,
		Owner:       owner,
		ContentType: contentType,
		Size:        info.Size,
		URL:         s.baseURL + "/files/" + key,
		UploadDate:  info.ModTime,
	}, nil
}

// SanitizeFileName reduces a client file name to a printable base name of
// bounded length. Unusable names become "document".
func SanitizeFileName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	for len(name) > limits.MaxFileNameLength {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	if name == "" || name == "." || name == ".." {
		return "document"
	}
	return name
}

func fileError(msg string) error {
	return dErrors.NewValidation(msg, dErrors.FieldError{Field: "file", Message: msg})
}
