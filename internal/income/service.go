package income

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=income
type Repository interface {
	CreateExtraction(ctx context.Context, x *RawExtraction) error
	ListExtractions(ctx context.Context, caseID uuid.UUID) ([]RawExtraction, error)

	ReplaceSources(ctx context.Context, caseID uuid.UUID, sources []*ReconciledSource, summary CaseSummary) error
	ListSources(ctx context.Context, caseID uuid.UUID) ([]*ReconciledSource, error)
	GetSource(ctx context.Context, id uuid.UUID) (*ReconciledSource, error)
	UpdateSource(ctx context.Context, src *ReconciledSource) error

	SaveSummary(ctx context.Context, summary CaseSummary) error
	GetSummary(ctx context.Context, caseID uuid.UUID) (*CaseSummary, error)
}

// Service runs the normalize → match → reconcile pipeline over a case's
// stored extractions and persists the outcome.
type Service struct {
	repo   Repository
	policy Policy
}

func NewService(repo Repository, policy Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

// ExtractionParams is the caller-supplied part of a raw extraction.
type ExtractionParams struct {
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
}

func (p ExtractionParams) toExtraction() *RawExtraction {
	return &RawExtraction{
		CaseID:         p.CaseID,
		DocumentID:     p.DocumentID,
		DocumentType:   p.DocumentType,
		DocumentDate:   p.DocumentDate,
		RawAmount:      p.RawAmount,
		Frequency:      p.Frequency,
		AmountType:     p.AmountType,
		PayerName:      p.PayerName,
		PayerTaxID:     p.PayerTaxID,
		PeriodStart:    p.PeriodStart,
		PeriodEnd:      p.PeriodEnd,
		TaxYear:        p.TaxYear,
		YTDGross:       p.YTDGross,
		YTDNet:         p.YTDNet,
		YTDWithholding: p.YTDWithholding,
		HoursPerPeriod: p.HoursPerPeriod,
		HourlyRate:     p.HourlyRate,
		Confidence:     clamp01(p.Confidence),
	}
}

// AddExtraction records one raw extraction for a case.
func (s *Service) AddExtraction(ctx context.Context, params ExtractionParams) (*RawExtraction, error) {
	x := params.toExtraction()
	if err := s.repo.CreateExtraction(ctx, x); err != nil {
		return nil, fmt.Errorf("create extraction: %w", err)
	}

	return x, nil
}

// AddBatch records a batch of raw extractions, typically from a CSV import.
func (s *Service) AddBatch(ctx context.Context, params []ExtractionParams) ([]*RawExtraction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	out := make([]*RawExtraction, 0, len(params))

	for _, p := range params {
		x, err := s.AddExtraction(ctx, p)
		if err != nil {
			return nil, err
		}

		out = append(out, x)
	}

	return out, nil
}

// Extractions lists a case's raw extractions.
func (s *Service) Extractions(ctx context.Context, caseID uuid.UUID) ([]RawExtraction, error) {
	return s.repo.ListExtractions(ctx, caseID)
}

// Reconcile runs the full pipeline for a case and replaces any previously
// stored result. New documents arriving mid-run are picked up by running
// again with the superset; the pipeline itself is not incremental.
func (s *Service) Reconcile(ctx context.Context, caseID uuid.UUID) (*Result, error) {
	raw, err := s.repo.ListExtractions(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("list extractions: %w", err)
	}

	normalized := make([]NormalizedIncome, len(raw))
	for i, x := range raw {
		normalized[i] = Normalize(x)
	}

	result := Reconcile(caseID, normalized, s.policy)

	if err := s.repo.ReplaceSources(ctx, caseID, result.Sources, result.Summary); err != nil {
		return nil, fmt.Errorf("replace sources: %w", err)
	}

	return &result, nil
}

// Sources lists a case's stored reconciled sources.
func (s *Service) Sources(ctx context.Context, caseID uuid.UUID) ([]*ReconciledSource, error) {
	return s.repo.ListSources(ctx, caseID)
}

// Summary returns a case's stored summary.
func (s *Service) Summary(ctx context.Context, caseID uuid.UUID) (*CaseSummary, error) {
	return s.repo.GetSummary(ctx, caseID)
}

// Override replaces a source's figure with a reviewer-supplied one, marks it
// manual, and recomputes the stored case summary. The discrepancy is cleared:
// a human has resolved it.
func (s *Service) Override(ctx context.Context, id uuid.UUID, annualGross float64, note string) (*ReconciledSource, error) {
	src, err := s.repo.GetSource(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	now := time.Now().UTC()

	src.setGross(annualGross)
	src.Determination = DeterminationManual
	src.Status = StatusManual
	src.Confidence = 1
	src.Discrepancy = nil
	src.UpdatedAt = &now

	if note != "" {
		src.addNote("manual override: " + note)
	}

	if err := s.repo.UpdateSource(ctx, src); err != nil {
		return nil, fmt.Errorf("update source: %w", err)
	}

	all, err := s.repo.ListSources(ctx, src.CaseID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	if err := s.repo.SaveSummary(ctx, Summarize(src.CaseID, all, s.policy)); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}

	return src, nil
}
