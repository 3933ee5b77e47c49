package entity

import (
	"slices"

	"github.com/joseph-ayodele/reportai/constants"
)

// Overview is the dashboard view of a snapshot.
type Overview struct {
	Documents          int
	CompletedDocuments int
	PendingDocuments   int // uploading or processing
	TotalBytes         int64

	Reports           int
	CompletedReports  int
	ProcessingReports int

	// Recent holds up to the requested number of reports, newest first.
	Recent []Report
}

func (s *Snapshot) Overview(recent int) Overview {
	o := Overview{Documents: len(s.Documents), Reports: len(s.Reports)}
	for _, d := range s.Documents {
		o.TotalBytes += d.SizeBytes
		switch d.Status {
		case constants.DocumentCompleted:
			o.CompletedDocuments++
		case constants.DocumentUploading, constants.DocumentProcessing:
			o.PendingDocuments++
		}
	}
	for _, r := range s.Reports {
		switch r.Status {
		case constants.ReportCompleted:
			o.CompletedReports++
		case constants.ReportProcessing:
			o.ProcessingReports++
		}
	}

	sorted := slices.Clone(s.Reports)
	slices.SortStableFunc(sorted, func(a, b Report) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	n := min(max(recent, 0), len(sorted))
	o.Recent = make([]Report, n)
	for i := range n {
		o.Recent[i] = sorted[i].Clone()
	}
	return o
}

// CompletedPercent is the share of completed documents, rounded; 0 when empty.
func (o Overview) CompletedPercent() int {
	if o.Documents == 0 {
		return 0
	}
	return (o.CompletedDocuments*100 + o.Documents/2) / o.Documents
}
