package entity

// Snapshot is the full set of documents, reports and settings at one instant.
// Documents and Reports keep insertion order.
type Snapshot struct {
	Documents []Document `json:"documents"`
	Reports   []Report   `json:"reports"`
	Settings  Settings   `json:"settings"`
}

// EmptySnapshot has no entities and default settings.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Documents: []Document{},
		Reports:   []Report{},
		Settings:  DefaultSettings(),
	}
}

// Clone returns a deep copy that shares no mutable state with s.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Documents: make([]Document, len(s.Documents)),
		Reports:   make([]Report, len(s.Reports)),
		Settings:  s.Settings,
	}
	for i, d := range s.Documents {
		out.Documents[i] = d.Clone()
	}
	for i, r := range s.Reports {
		out.Reports[i] = r.Clone()
	}
	return out
}

func (s *Snapshot) Document(id string) (Document, bool) {
	if i := s.DocumentIndex(id); i >= 0 {
		return s.Documents[i].Clone(), true
	}
	return Document{}, false
}

func (s *Snapshot) Report(id string) (Report, bool) {
	if i := s.ReportIndex(id); i >= 0 {
		return s.Reports[i].Clone(), true
	}
	return Report{}, false
}

// DocumentIndex returns the position of id or -1.
func (s *Snapshot) DocumentIndex(id string) int {
	for i := range s.Documents {
		if s.Documents[i].ID == id {
			return i
		}
	}
	return -1
}

// ReportIndex returns the position of id or -1.
func (s *Snapshot) ReportIndex(id string) int {
	for i := range s.Reports {
		if s.Reports[i].ID == id {
			return i
		}
	}
	return -1
}
