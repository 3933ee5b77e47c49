package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/reportai/constants"
)

// Document is one uploaded file and its extracted text.
type Document struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	SizeBytes     int64                    `json:"size_bytes"`
	MediaType     string                   `json:"media_type"`
	Checksum      string                   `json:"checksum,omitempty"` // sha256 hex of the raw bytes
	Status        constants.DocumentStatus `json:"status"`
	UploadedAt    time.Time                `json:"uploaded_at"`
	ExtractedText *string                  `json:"extracted_text,omitempty"`
	Content       *string                  `json:"content,omitempty"`
	ErrorMessage  string                   `json:"error_message,omitempty"`
}

// DocumentUpdate is a partial update; nil fields are left untouched.
// Identity fields (id, name, size, media type, upload time) have no slot here.
type DocumentUpdate struct {
	Status        *constants.DocumentStatus
	ExtractedText *string
	Content       *string
	Checksum      *string
	ErrorMessage  *string
}

func (u DocumentUpdate) IsZero() bool {
	return u.Status == nil && u.ExtractedText == nil && u.Content == nil && u.Checksum == nil && u.ErrorMessage == nil
}

// NewDocumentID returns a time-ordered id with a random suffix.
func NewDocumentID() string {
	return newID("doc")
}

func newID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return fmt.Sprintf("%s_%s", prefix, id.String())
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	d.ExtractedText = cloneString(d.ExtractedText)
	d.Content = cloneString(d.Content)
	return d
}

// Ready reports whether the document can feed a report.
func (d Document) Ready() bool {
	return d.Status == constants.DocumentCompleted
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a small helper for building partial updates.
func Ptr[T any](v T) *T {
	return &v
}
