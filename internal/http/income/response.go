package income

import (
	"time"

	"github.com/google/uuid"

	"github.com/pcaldeira/attest/internal/income"
)

type extractionResponse struct {
	ID           uuid.UUID           `json:"id"`
	CaseID       uuid.UUID           `json:"case_id"`
	DocumentID   uuid.UUID           `json:"document_id"`
	DocumentType income.DocumentType `json:"document_type"`
	RawAmount    float64             `json:"raw_amount"`
	Frequency    income.Frequency    `json:"frequency"`
	AmountType   income.AmountType   `json:"amount_type,omitempty"`
	PayerName    string              `json:"payer_name,omitempty"`
	PayerTaxID   string              `json:"payer_tax_id,omitempty"`
	PeriodStart  *time.Time          `json:"period_start,omitempty"`
	PeriodEnd    *time.Time          `json:"period_end,omitempty"`
	TaxYear      *int                `json:"tax_year,omitempty"`
	YTDGross     *float64            `json:"ytd_gross,omitempty"`
	Confidence   float64             `json:"confidence"`
	CreatedAt    time.Time           `json:"created_at"`
}

func toExtractionResponse(x *income.RawExtraction) extractionResponse {
	return extractionResponse{
		ID:           x.ID,
		CaseID:       x.CaseID,
		DocumentID:   x.DocumentID,
		DocumentType: x.DocumentType,
		RawAmount:    x.RawAmount,
		Frequency:    x.Frequency,
		AmountType:   x.AmountType,
		PayerName:    x.PayerName,
		PayerTaxID:   x.PayerTaxID,
		PeriodStart:  x.PeriodStart,
		PeriodEnd:    x.PeriodEnd,
		TaxYear:      x.TaxYear,
		YTDGross:     x.YTDGross,
		Confidence:   x.Confidence,
		CreatedAt:    x.CreatedAt,
	}
}

func toExtractionResponseList(xs []income.RawExtraction) []extractionResponse {
	resp := make([]extractionResponse, len(xs))
	for i := range xs {
		resp[i] = toExtractionResponse(&xs[i])
	}

	return resp
}

type sourceResponse struct {
	ID            uuid.UUID            `json:"id"`
	CaseID        uuid.UUID            `json:"case_id"`
	EmployerName  string               `json:"employer_name"`
	EmployerEIN   string               `json:"employer_ein,omitempty"`
	IncomeYear    int                  `json:"income_year"`
	AnnualGross   float64              `json:"annual_gross"`
	MonthlyGross  float64              `json:"monthly_gross"`
	AnnualNet     *float64             `json:"annual_net,omitempty"`
	MonthlyNet    *float64             `json:"monthly_net,omitempty"`
	Determination income.Determination `json:"determination"`
	Evidence      []income.Evidence    `json:"evidence"`
	Confidence    float64              `json:"confidence"`
	Status        income.Status        `json:"status"`
	Discrepancy   *income.Discrepancy  `json:"discrepancy,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`
}

func toSourceResponse(src *income.ReconciledSource) sourceResponse {
	return sourceResponse{
		ID:            src.ID,
		CaseID:        src.CaseID,
		EmployerName:  src.EmployerName,
		EmployerEIN:   src.EmployerEIN,
		IncomeYear:    src.IncomeYear,
		AnnualGross:   src.AnnualGross,
		MonthlyGross:  src.MonthlyGross,
		AnnualNet:     src.AnnualNet,
		MonthlyNet:    src.MonthlyNet,
		Determination: src.Determination,
		Evidence:      src.Evidence,
		Confidence:    src.Confidence,
		Status:        src.Status,
		Discrepancy:   src.Discrepancy,
		Notes:         src.Notes,
		CreatedAt:     src.CreatedAt,
		UpdatedAt:     src.UpdatedAt,
	}
}

func toSourceResponseList(sources []*income.ReconciledSource) []sourceResponse {
	resp := make([]sourceResponse, len(sources))
	for i, src := range sources {
		resp[i] = toSourceResponse(src)
	}

	return resp
}

type summaryResponse struct {
	CaseID               uuid.UUID   `json:"case_id"`
	TotalAnnualGross     float64     `json:"total_annual_gross"`
	TotalMonthlyGross    float64     `json:"total_monthly_gross"`
	TotalAnnualNet       float64     `json:"total_annual_net"`
	TotalMonthlyNet      float64     `json:"total_monthly_net"`
	EmployerCount        int         `json:"employer_count"`
	AllSourcesReconciled bool        `json:"all_sources_reconciled"`
	NeedsReview          []uuid.UUID `json:"needs_review,omitempty"`
}

func toSummaryResponse(s *income.CaseSummary) summaryResponse {
	return summaryResponse{
		CaseID:               s.CaseID,
		TotalAnnualGross:     s.TotalAnnualGross,
		TotalMonthlyGross:    s.TotalMonthlyGross,
		TotalAnnualNet:       s.TotalAnnualNet,
		TotalMonthlyNet:      s.TotalMonthlyNet,
		EmployerCount:        s.EmployerCount,
		AllSourcesReconciled: s.AllSourcesReconciled,
		NeedsReview:          s.NeedsReview,
	}
}

type reconcileResponse struct {
	Sources []sourceResponse `json:"sources"`
	Summary summaryResponse  `json:"summary"`
}

func toReconcileResponse(result *income.Result) reconcileResponse {
	return reconcileResponse{
		Sources: toSourceResponseList(result.Sources),
		Summary: toSummaryResponse(&result.Summary),
	}
}
