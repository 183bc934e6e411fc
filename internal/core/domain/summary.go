package domain

// SummaryMode selects the structured summary schema.
type SummaryMode string

// Summary modes. Single covers one document; Multi synthesises across the
// whole session's documents.
const (
	SummarySingle SummaryMode = "single"
	SummaryMulti  SummaryMode = "multi"
)

// Summary is a structured document summary. The populated fields depend on
// the mode: single mode fills MainTopic/KeyPoints/SupportingDetails/
// AdditionalInfo, multi mode fills Overview/KeyFindings/CriticalDetails/
// Conclusions. Summaries are all-or-nothing: a partially generated summary
// is never returned.
type Summary struct {
	Mode SummaryMode

	// Single-document fields.
	MainTopic         string
	KeyPoints         []string
	SupportingDetails []string
	AdditionalInfo    []string

	// Multi-document fields.
	Overview        string
	KeyFindings     []string
	CriticalDetails []string
	Conclusions     []string
}
