package constants

// DocumentStatus is the lifecycle state of an ingested document.
type DocumentStatus string

// Stable values (persisted as-is).
const (
	DocumentUploading  DocumentStatus = "uploading"
	DocumentProcessing DocumentStatus = "processing"
	DocumentCompleted  DocumentStatus = "completed" // ready for report input
	DocumentError      DocumentStatus = "error"     // terminal failure
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentUploading, DocumentProcessing, DocumentCompleted, DocumentError:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentCompleted || s == DocumentError
}

// CanTransition reports whether a document may move from s to next.
// Staying in the same non-terminal state is allowed.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	switch s {
	case DocumentUploading:
		return next == DocumentUploading || next == DocumentProcessing
	case DocumentProcessing:
		return next == DocumentProcessing || next == DocumentCompleted || next == DocumentError
	default:
		return false
	}
}

// ReportStatus is the lifecycle state of a report.
type ReportStatus string

const (
	ReportDraft      ReportStatus = "draft"
	ReportProcessing ReportStatus = "processing"
	ReportCompleted  ReportStatus = "completed"
	ReportError      ReportStatus = "error"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportDraft, ReportProcessing, ReportCompleted, ReportError:
		return true
	}
	return false
}

// CanTransition reports whether a report may move from s to next.
// Completed reports can be reopened as drafts by an editor; error is final.
func (s ReportStatus) CanTransition(next ReportStatus) bool {
	switch s {
	case ReportDraft:
		return next == ReportDraft || next == ReportProcessing || next == ReportCompleted
	case ReportProcessing:
		return next == ReportProcessing || next == ReportCompleted || next == ReportError
	case ReportCompleted:
		return next == ReportCompleted || next == ReportDraft
	default:
		return false
	}
}
