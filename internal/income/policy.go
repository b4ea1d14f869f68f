package income

// Policy carries the tunable thresholds and penalty factors used by employer
// matching and reconciliation. Keeping them in one value (instead of literals
// scattered through the algorithm) lets tests and callers tune a single knob.
type Policy struct {
	// SimilarityThreshold is the minimum employer-name similarity for two
	// documents to be grouped as the same employer.
	SimilarityThreshold float64

	// MatchVariance and ReviewVariance bound the verified and needs-review
	// bands when figures from multiple documents are compared. Above
	// ReviewVariance the group is a conflict.
	MatchVariance  float64
	ReviewVariance float64

	// GenericVariance is the point past which the only safe suggestion is to
	// verify the documents describe the same employer and period.
	GenericVariance float64

	// CorroborationBoost scales confidence up when independent documents
	// agree. The result is always capped at 1.0.
	CorroborationBoost float64

	// VerifiedConfidence is the minimum confidence for a source to be marked
	// verified without corroboration.
	VerifiedConfidence float64

	// PartialYearPenalty scales confidence down when a lone periodic document
	// covers fewer than MinQuarterCoverage distinct calendar quarters.
	PartialYearPenalty float64
	MinQuarterCoverage int

	// AveragedPenalty applies when periodic documents agree only loosely;
	// ConflictPenalty when they disagree outright; AnnualConflictPenalty when
	// periodic documents contradict an annual one.
	AveragedPenalty       float64
	ConflictPenalty       float64
	AnnualConflictPenalty float64

	// LatestYearOnly keeps only the most recent income year per employer in
	// case totals, so an employer with both 2023 and 2024 income counts once.
	// Older years stay reconciled and visible; they just do not add to CMI.
	// Set false for a multi-year view.
	LatestYearOnly bool
}

// DefaultPolicy returns the documented verification thresholds.
func DefaultPolicy() Policy {
	return Policy{
		SimilarityThreshold:   0.75,
		MatchVariance:         0.10,
		ReviewVariance:        0.20,
		GenericVariance:       0.25,
		CorroborationBoost:    1.15,
		VerifiedConfidence:    0.70,
		PartialYearPenalty:    0.85,
		MinQuarterCoverage:    3,
		AveragedPenalty:       0.85,
		ConflictPenalty:       0.60,
		AnnualConflictPenalty: 0.70,
		LatestYearOnly:        true,
	}
}

// sourcePriority ranks document types for "use this one" tie-breaks during
// periodic reconciliation. Pay stubs and bank statements outrank annual
// official documents here because they are timelier evidence of current
// income, which is what the downstream eligibility test needs.
var sourcePriority = map[DocumentType]int{
	DocPayStub:       1,
	DocBankStatement: 2,
	DocW2:            3,
	DocTaxReturn:     4,
	Doc1099:          5,
}

// namePriority ranks document types by how trustworthy their employer name
// is. Pay stubs and W-2s print full legal names; bank statements truncate.
var namePriority = map[DocumentType]int{
	DocPayStub:       1,
	DocW2:            2,
	DocTaxReturn:     3,
	Doc1099:          4,
	DocBankStatement: 5,
}

func priorityOf(table map[DocumentType]int, d DocumentType) int {
	if p, ok := table[d]; ok {
		return p
	}

	return len(table) + 1
}
