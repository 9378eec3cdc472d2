package models

import (
	"io"
	"time"
)

type DocumentType string

const (
	DocumentDriverLicense     DocumentType = "driver_license"
	DocumentWorkAuthorization DocumentType = "work_authorization"
	DocumentOPTReceipt        DocumentType = "opt_receipt"
	DocumentOther             DocumentType = "other"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentDriverLicense, DocumentWorkAuthorization, DocumentOPTReceipt, DocumentOther:
		return true
	}
	return false
}

// Document is a stored file attached to an application. FileURL identifies it.
type Document struct {
	Type       DocumentType
	FileName   string
	FileURL    string
	UploadDate time.Time
}

// StagedDocument is a file received with a submission that has not been
// uploaded yet.
type StagedDocument struct {
	Type     DocumentType
	FileName string
	Content  io.Reader
}

// StagedDocuments keeps at most one staged file per type, in staging order.
type StagedDocuments []StagedDocument

// Stage adds doc, replacing any earlier staged file of the same type. The
// replacement moves to the end so upload order follows the latest selection.
func (s StagedDocuments) Stage(doc StagedDocument) StagedDocuments {
	out := make(StagedDocuments, 0, len(s)+1)
	for _, existing := range s {
		if existing.Type != doc.Type {
			out = append(out, existing)
		}
	}
	return append(out, doc)
}

// MergeDocuments concatenates the given sets in order and drops later
// entries whose FileURL was already seen. The result is never nil.
func MergeDocuments(sets ...[]Document) []Document {
	seen := make(map[string]struct{})
	merged := make([]Document, 0)
	for _, set := range sets {
		for _, doc := range set {
			if _, dup := seen[doc.FileURL]; dup {
				continue
			}
			seen[doc.FileURL] = struct{}{}
			merged = append(merged, doc)
		}
	}
	return merged
}

// DocumentRequirement is one document a submission must carry.
type DocumentRequirement struct {
	Type    DocumentType
	Message string
}

// RequiredDocuments lists the documents a citizenship selection demands:
// a driver's license always, an OPT receipt for F1, and a work authorization
// document for H1-B, H4, L2 and other.
func RequiredDocuments(c Citizenship) []DocumentRequirement {
	reqs := []DocumentRequirement{{Type: DocumentDriverLicense, Message: "Driver's license is required"}}

	switch v := c.(type) {
	case ResidentStatus:
	case WorkAuthorization:
		switch v.Type {
		case WorkAuthF1:
			reqs = append(reqs, DocumentRequirement{Type: DocumentOPTReceipt, Message: "OPT Receipt is required for F1 visa holders"})
		case WorkAuthH1B, WorkAuthH4, WorkAuthL2, WorkAuthOther:
			reqs = append(reqs, DocumentRequirement{Type: DocumentWorkAuthorization, Message: "Work authorization file is required"})
		}
	}
	return reqs
}

// VisaDocuments filters docs to the ones tracked on the visa status screen.
func VisaDocuments(docs []Document) []Document {
	out := make([]Document, 0)
	for _, d := range docs {
		if d.Type == DocumentWorkAuthorization || d.Type == DocumentOPTReceipt {
			out = append(out, d)
		}
	}
	return out
}
