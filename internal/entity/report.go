package entity

import (
	"slices"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
)

// Report is one generated artifact derived from ready documents.
type Report struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Kind           constants.ReportKind   `json:"kind"`
	Status         constants.ReportStatus `json:"status"`
	Content        string                 `json:"content"`
	DocumentIDs    []string               `json:"document_ids"`
	DocumentSource string                 `json:"document_source,omitempty"`
	PageEstimate   int                    `json:"page_estimate,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ReportUpdate is a partial update. DocumentIDs and CreatedAt are fixed at
// creation and cannot be updated. A non-nil Expect makes the update
// conditional on the stored status.
type ReportUpdate struct {
	Expect       *constants.ReportStatus
	Title        *string
	Kind         *constants.ReportKind
	Status       *constants.ReportStatus
	Content      *string
	PageEstimate *int
	ErrorMessage *string
}

func (u ReportUpdate) IsZero() bool {
	return u.Title == nil && u.Kind == nil && u.Status == nil && u.Content == nil && u.PageEstimate == nil && u.ErrorMessage == nil
}

func NewReportID() string {
	return newID("report")
}

func (r Report) Clone() Report {
	r.DocumentIDs = slices.Clone(r.DocumentIDs)
	return r
}
