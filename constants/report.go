package constants

import "strings"

// ReportKind selects the section template used for generation.
type ReportKind string

const (
	KindTechnical ReportKind = "technical"
	KindAnalysis  ReportKind = "analysis"
	KindSummary   ReportKind = "summary"
	KindCustom    ReportKind = "custom"
)

var allKinds = []ReportKind{KindTechnical, KindAnalysis, KindSummary, KindCustom}

// ReportKinds returns every known kind in display order.
func ReportKinds() []ReportKind {
	out := make([]ReportKind, len(allKinds))
	copy(out, allKinds)
	return out
}

func (k ReportKind) Valid() bool {
	for _, v := range allKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Title is the capitalized form used in default report titles.
func (k ReportKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// ParseReportKind accepts any casing of a known kind.
func ParseReportKind(s string) (ReportKind, bool) {
	k := ReportKind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}
