package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pcaldeira/attest/internal/importer"
	"github.com/pcaldeira/attest/internal/income"
)

type Handler struct {
	importSvc *importer.Service
	incomeSvc *income.Service
}

func NewHandler(importSvc *importer.Service, incomeSvc *income.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		incomeSvc: incomeSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/deposits", h.importDeposits)
}

type importSuccessResponse struct {
	Imported    int                  `json:"imported"`
	Extractions []extractionResponse `json:"extractions"`
}

type extractionResponse struct {
	ID         uuid.UUID        `json:"id"`
	DocumentID uuid.UUID        `json:"document_id"`
	RawAmount  float64          `json:"raw_amount"`
	Frequency  income.Frequency `json:"frequency"`
	PayerName  string           `json:"payer_name"`
}

// importDeposits accepts a multipart upload of a bank statement CSV and
// records each deposit as a bank-statement extraction for the case. The rows
// only become income figures once the case is reconciled.
func (h *Handler) importDeposits(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	caseID, err := uuid.Parse(r.FormValue("case_id"))
	if err != nil {
		http.Error(w, "case_id field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts := importer.Options{
		CaseID:    caseID,
		Frequency: income.Frequency(r.FormValue("frequency")),
	}

	params, err := h.importSvc.Import(importer.FormatDeposits, file, opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	xs, err := h.incomeSvc.AddBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(xs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toSuccessResponse(xs []*income.RawExtraction) importSuccessResponse {
	responses := make([]extractionResponse, 0, len(xs))
	for _, x := range xs {
		responses = append(responses, extractionResponse{
			ID:         x.ID,
			DocumentID: x.DocumentID,
			RawAmount:  x.RawAmount,
			Frequency:  x.Frequency,
			PayerName:  x.PayerName,
		})
	}

	return importSuccessResponse{
		Imported:    len(responses),
		Extractions: responses,
	}
}
