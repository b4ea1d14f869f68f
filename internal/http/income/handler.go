package income

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pcaldeira/attest/internal/income"
)

type Handler struct {
	svc *income.Service
}

func NewHandler(svc *income.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CaseRoutes(r chi.Router) {
	r.Route("/{caseID}", func(r chi.Router) {
		r.Post("/extractions", h.addExtraction)
		r.Get("/extractions", h.listExtractions)
		r.Post("/reconcile", h.reconcile)
		r.Get("/income", h.caseIncome)
	})
}

func (h *Handler) SourceRoutes(r chi.Router) {
	r.Post("/{id}/override", h.override)
}

type addExtractionRequest struct {
	DocumentID     uuid.UUID           `json:"document_id"`
	DocumentType   income.DocumentType `json:"document_type"`
	DocumentDate   *time.Time          `json:"document_date,omitempty"`
	RawAmount      float64             `json:"raw_amount"`
	Frequency      income.Frequency    `json:"frequency"`
	AmountType     income.AmountType   `json:"amount_type,omitempty"`
	PayerName      string              `json:"payer_name,omitempty"`
	PayerTaxID     string              `json:"payer_tax_id,omitempty"`
	PeriodStart    *time.Time          `json:"period_start,omitempty"`
	PeriodEnd      *time.Time          `json:"period_end,omitempty"`
	TaxYear        *int                `json:"tax_year,omitempty"`
	YTDGross       *float64            `json:"ytd_gross,omitempty"`
	YTDNet         *float64            `json:"ytd_net,omitempty"`
	YTDWithholding *float64            `json:"ytd_withholding,omitempty"`
	HoursPerPeriod *float64            `json:"hours_per_period,omitempty"`
	HourlyRate     *float64            `json:"hourly_rate,omitempty"`
	Confidence     float64             `json:"confidence"`
}

func (h *Handler) addExtraction(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(chi.URLParam(r, "caseID"))
	if err != nil {
		http.Error(w, "invalid case id", http.StatusBadRequest)
		return
	}

	var req addExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	x, err := h.svc.AddExtraction(r.Context(), income.ExtractionParams{
		CaseID:         caseID,
		DocumentID:     req.DocumentID,
		DocumentType:   req.DocumentType,
		DocumentDate:   req.DocumentDate,
		RawAmount:      req.RawAmount,
		Frequency:      req.Frequency,
		AmountType:     req.AmountType,
		PayerName:      req.PayerName,
		PayerTaxID:     req.PayerTaxID,
		PeriodStart:    req.PeriodStart,
		PeriodEnd:      req.PeriodEnd,
		TaxYear:        req.TaxYear,
		YTDGross:       req.YTDGross,
		YTDNet:         req.YTDNet,
		YTDWithholding: req.YTDWithholding,
		HoursPerPeriod: req.HoursPerPeriod,
		HourlyRate:     req.HourlyRate,
		Confidence:     req.Confidence,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toExtractionResponse(x)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listExtractions(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(chi.URLParam(r, "caseID"))
	if err != nil {
		http.Error(w, "invalid case id", http.StatusBadRequest)
		return
	}

	xs, err := h.svc.Extractions(r.Context(), caseID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toExtractionResponseList(xs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(chi.URLParam(r, "caseID"))
	if err != nil {
		http.Error(w, "invalid case id", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Reconcile(r.Context(), caseID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toReconcileResponse(result)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) caseIncome(w http.ResponseWriter, r *http.Request) {
	caseID, err := uuid.Parse(chi.URLParam(r, "caseID"))
	if err != nil {
		http.Error(w, "invalid case id", http.StatusBadRequest)
		return
	}

	sources, err := h.svc.Sources(r.Context(), caseID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary, err := h.svc.Summary(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, income.ErrNotFound) {
			http.Error(w, "case has not been reconciled", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := reconcileResponse{
		Sources: toSourceResponseList(sources),
		Summary: toSummaryResponse(summary),
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type overrideRequest struct {
	AnnualGross float64 `json:"annual_gross"`
	Note        string  `json:"note,omitempty"`
}

func (h *Handler) override(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AnnualGross <= 0 {
		http.Error(w, "annual_gross must be positive", http.StatusBadRequest)
		return
	}

	src, err := h.svc.Override(r.Context(), id, req.AnnualGross, req.Note)
	if err != nil {
		if errors.Is(err, income.ErrNotFound) {
			http.Error(w, "source not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSourceResponse(src)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
