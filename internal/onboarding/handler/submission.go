package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"onboard/internal/onboarding/models"
	dErrors "onboard/pkg/domain-errors"
	limits "onboard/pkg/platform/validation"
)

// applicationPart is the multipart field carrying the JSON form.
const applicationPart = "application"

// partOverhead allows for headers and boundaries of each multipart part.
const partOverhead = 16 << 10

// readSubmission decodes the form and stages any attached files. Files are
// buffered because uploading starts only after the whole form validates.
func (h *Handler) readSubmission(w http.ResponseWriter, r *http.Request) (*models.ApplicationForm, models.StagedDocuments, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, limits.MaxBodySize)
		form := new(models.ApplicationForm)
		if err := json.NewDecoder(r.Body).Decode(form); err != nil {
			return nil, nil, bodyError(err)
		}
		return form, nil, nil
	}

	maxBody := limits.MaxBodySize + int64(limits.MaxStagedDocuments)*(h.maxFileBytes+partOverhead)
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed multipart body")
	}

	var (
		form   *models.ApplicationForm
		staged models.StagedDocuments
	)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, bodyError(err)
		}
		switch {
		case part.FormName() == applicationPart:
			form = new(models.ApplicationForm)
			err = json.NewDecoder(io.LimitReader(part, limits.MaxBodySize)).Decode(form)
		case part.FileName() != "":
			var doc models.StagedDocument
			if doc, err = h.bufferFile(part); err == nil {
				staged = staged.Stage(doc)
			}
		}
		_ = part.Close()
		if err != nil {
			return nil, nil, bodyError(err)
		}
	}
	if form == nil {
		return nil, nil, dErrors.NewValidation("application part required",
			dErrors.FieldError{Field: applicationPart, Message: "is required"})
	}
	return form, staged, nil
}

// bufferFile reads one file part. The part's field name is its document type;
// unknown types are rejected by the workflow along with the rest of the form.
func (h *Handler) bufferFile(part *multipart.Part) (models.StagedDocument, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(part, h.maxFileBytes+1))
	if err != nil {
		return models.StagedDocument{}, err
	}
	if n > h.maxFileBytes {
		msg := fmt.Sprintf("%s file exceeds %d bytes", part.FormName(), h.maxFileBytes)
		return models.StagedDocument{}, dErrors.NewValidation(msg, dErrors.FieldError{Field: "documents", Message: msg})
	}
	return models.StagedDocument{
		Type:     models.DocumentType(part.FormName()),
		FileName: part.FileName(),
		Content:  bytes.NewReader(buf.Bytes()),
	}, nil
}

func bodyError(err error) error {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return dErrors.NewValidation("request body too large",
			dErrors.FieldError{Field: "documents", Message: "request body is too large"})
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
}
