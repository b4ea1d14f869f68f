package income

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested extraction or source does not exist.
var ErrNotFound = errors.New("not found")

// DocumentType identifies the kind of document an extraction came from.
type DocumentType string

const (
	DocW2            DocumentType = "w2"
	DocPayStub       DocumentType = "pay_stub"
	DocBankStatement DocumentType = "bank_statement"
	DocTaxReturn     DocumentType = "tax_return"
	Doc1099          DocumentType = "1099"
)

// IsAnnual reports whether the document states a full-year figure on its face.
func (d DocumentType) IsAnnual() bool {
	switch d {
	case DocW2, DocTaxReturn, Doc1099:
		return true
	}

	return false
}

// Frequency is the payment cadence a document claims for its raw amount.
type Frequency string

const (
	FreqAnnual      Frequency = "annual"
	FreqMonthly     Frequency = "monthly"
	FreqSemiMonthly Frequency = "semi_monthly"
	FreqBiweekly    Frequency = "biweekly"
	FreqWeekly      Frequency = "weekly"
	FreqOneTime     Frequency = "one_time"
)

// Multiplier returns the number of payments per year. One-time amounts are
// never annualized by multiplication, so their multiplier is 1. The second
// return value is false for frequencies outside the fixed enumeration.
func (f Frequency) Multiplier() (float64, bool) {
	switch f {
	case FreqAnnual, FreqOneTime:
		return 1, true
	case FreqMonthly:
		return 12, true
	case FreqSemiMonthly:
		return 24, true
	case FreqBiweekly:
		return 26, true
	case FreqWeekly:
		return 52, true
	}

	return 1, false
}

// AmountType says whether a document's raw amount is gross or net pay.
type AmountType string

const (
	AmountGross   AmountType = "gross"
	AmountNet     AmountType = "net"
	AmountUnknown AmountType = "unknown"
)

// RawExtraction is one document's income claim as produced by the upstream
// extraction step. It is immutable once recorded; re-running reconciliation
// always starts from the full set of extractions for a case.
type RawExtraction struct {
	ID             uuid.UUID
	CaseID         uuid.UUID
	DocumentID     uuid.UUID
	DocumentType   DocumentType
	DocumentDate   *time.Time
	RawAmount      float64
	Frequency      Frequency
	AmountType     AmountType
	PayerName      string
	PayerTaxID     string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	TaxYear        *int
	YTDGross       *float64
	YTDNet         *float64
	YTDWithholding *float64
	HoursPerPeriod *float64
	HourlyRate     *float64
	Confidence     float64
	CreatedAt      time.Time
}

// NormalizationMethod tags how an annual figure was derived from a document.
type NormalizationMethod string

const (
	MethodDirect          NormalizationMethod = "direct"
	MethodMultiplied      NormalizationMethod = "multiplied"
	MethodYTDExtrapolated NormalizationMethod = "ytd_extrapolated"
	MethodDepositPattern  NormalizationMethod = "deposit_pattern"
)

// NormalizedIncome is the standardized view of one extraction: annual and
// monthly figures, the method used to derive them, and year/quarter metadata.
// MonthlyGross is always AnnualGross/12.
type NormalizedIncome struct {
	Source       RawExtraction
	EmployerName string // normalized for matching; display names come from Source.PayerName
	AnnualGross  float64
	MonthlyGross float64
	AnnualNet    *float64
	MonthlyNet   *float64
	Method       NormalizationMethod
	Confidence   float64
	Notes        string
	Year         int
	IsAnnualDoc  bool
	Quarter      int // 1-4 from the period end; 0 for annual documents or unknown periods
}

func (n *NormalizedIncome) setGross(annual float64) {
	n.AnnualGross = annual
	n.MonthlyGross = annual / 12
}

func (n *NormalizedIncome) setNet(annual float64) {
	monthly := annual / 12
	n.AnnualNet = &annual
	n.MonthlyNet = &monthly
}

func (n *NormalizedIncome) scaleConfidence(factor float64) {
	n.Confidence = clamp01(n.Confidence * factor)
}

func (n *NormalizedIncome) addNote(note string) {
	if n.Notes != "" {
		n.Notes += "; "
	}

	n.Notes += note
}

// Determination records how a verified figure was derived.
type Determination string

const (
	DeterminationSingleSource  Determination = "single_source"
	DeterminationMultiMatch    Determination = "multi_source_match"
	DeterminationMultiAveraged Determination = "multi_source_averaged"
	DeterminationManual        Determination = "manual_override"
)

// Status is the verification state of a reconciled source.
type Status string

const (
	StatusVerified    Status = "verified"
	StatusNeedsReview Status = "needs_review"
	StatusConflict    Status = "conflict"
	StatusManual      Status = "manual"
)

// NeedsAttention reports whether a human reviewer should look at the source.
func (s Status) NeedsAttention() bool {
	return s == StatusNeedsReview || s == StatusConflict
}

// Evidence is one contributing document's claim inside a reconciled source.
type Evidence struct {
	DocumentID   uuid.UUID    `json:"document_id"`
	DocumentType DocumentType `json:"document_type"`
	RawAmount    float64      `json:"raw_amount"`
	Frequency    Frequency    `json:"frequency"`
	AnnualAmount float64      `json:"annual_amount"`
	Confidence   float64      `json:"confidence"`
	Period       string       `json:"period"`
}

// Discrepancy explains why a source needs review: the largest relative
// variance observed, the documents involved, and a suggested next step.
type Discrepancy struct {
	MaxVariance         float64     `json:"max_variance"`
	DocumentIDs         []uuid.UUID `json:"document_ids"`
	SuggestedResolution string      `json:"suggested_resolution"`
}

// ReconciledSource is the single defensible income figure for one employer in
// one income year, with the evidence that produced it. Discrepancy is non-nil
// exactly when Status is needs_review or conflict.
type ReconciledSource struct {
	ID            uuid.UUID
	CaseID        uuid.UUID
	EmployerName  string
	EmployerEIN   string
	IncomeYear    int
	AnnualGross   float64
	MonthlyGross  float64
	AnnualNet     *float64
	MonthlyNet    *float64
	Determination Determination
	Evidence      []Evidence
	Confidence    float64
	Status        Status
	Discrepancy   *Discrepancy
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func (s *ReconciledSource) setGross(annual float64) {
	s.AnnualGross = annual
	s.MonthlyGross = annual / 12
}

func (s *ReconciledSource) setNet(annual float64) {
	monthly := annual / 12
	s.AnnualNet = &annual
	s.MonthlyNet = &monthly
}

func (s *ReconciledSource) addNote(note string) {
	if s.Notes != "" {
		s.Notes += "; "
	}

	s.Notes += note
}

// CaseSummary aggregates a case's reconciled sources. Totals count each
// employer once, using only its most recent income year (see
// Policy.LatestYearOnly). TotalMonthlyGross is the CMI figure the downstream
// eligibility calculation consumes.
type CaseSummary struct {
	CaseID               uuid.UUID
	TotalAnnualGross     float64
	TotalMonthlyGross    float64
	TotalAnnualNet       float64
	TotalMonthlyNet      float64
	EmployerCount        int
	AllSourcesReconciled bool
	NeedsReview          []uuid.UUID
}
