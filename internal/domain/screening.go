package domain

// Decision represents the automated outcome of a screening
type Decision string

const (
	DecisionClear  Decision = "clear"
	DecisionReview Decision = "review"
	DecisionBlock  Decision = "block"
)

// ReviewPriority splits review decisions using the medium risk threshold
type ReviewPriority string

const (
	ReviewPriorityNone ReviewPriority = ""
	ReviewPriorityLow  ReviewPriority = "low"
	ReviewPriorityHigh ReviewPriority = "high"
)

// MatchType represents the strategy that produced a match
type MatchType string

const (
	MatchTypeExact    MatchType = "exact"
	MatchTypeFuzzy    MatchType = "fuzzy"
	MatchTypeSemantic MatchType = "semantic"
)

// Rank orders match types for tie-breaking: exact beats semantic beats fuzzy
func (m MatchType) Rank() int {
	switch m {
	case MatchTypeExact:
		return 3
	case MatchTypeSemantic:
		return 2
	case MatchTypeFuzzy:
		return 1
	default:
		return 0
	}
}

// Auxiliary field names reported in MatchCandidate.MatchedFields
const (
	FieldDateOfBirth    = "date_of_birth"
	FieldNationality    = "nationality"
	FieldPassportNumber = "passport_number"
)

// MatchCandidate represents one sanctions entry matched against a screened entity
type MatchCandidate struct {
	SanctionsEntryID string    `json:"sanctions_entry_id"`
	MatchScore       float64   `json:"match_score"` // 0.0 - 1.0
	MatchType        MatchType `json:"match_type"`
	MatchedFields    []string  `json:"matched_fields"` // sorted, auxiliary fields only

	// Listing details
	ListedName string `json:"listed_name,omitempty"`
	ListName   string `json:"list_name,omitempty"`
	Source     string `json:"source,omitempty"`
}

// ScreeningResult represents the outcome of screening a single entity
type ScreeningResult struct {
	EntityName       string           `json:"entity_name"`
	Matches          []MatchCandidate `json:"matches"`
	OverallRiskScore float64          `json:"overall_risk_score"` // 0.0 - 1.0
	Decision         Decision         `json:"decision"`
	ReviewPriority   ReviewPriority   `json:"review_priority,omitempty"`
	ConfidenceScore  float64          `json:"confidence_score"`

	// Degraded is set when semantic matching could not run
	Degraded bool `json:"degraded"`

	// Observability only; never used in decision logic
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// TopMatch returns the highest ranked candidate, if any
func (r *ScreeningResult) TopMatch() (MatchCandidate, bool) {
	if len(r.Matches) == 0 {
		return MatchCandidate{}, false
	}
	return r.Matches[0], true
}

// IsBlocked returns true if the entity must not be transacted with
func (r *ScreeningResult) IsBlocked() bool {
	return r.Decision == DecisionBlock
}

// StatsSnapshot is a consistent read of the running screening counters
type StatsSnapshot struct {
	TotalProcessed      int64   `json:"total_processed"`
	Approved            int64   `json:"approved"`
	Reviewed            int64   `json:"reviewed"`
	Blocked             int64   `json:"blocked"`
	Errors              int64   `json:"errors"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
}
