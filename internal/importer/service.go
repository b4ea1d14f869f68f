package importer

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pcaldeira/attest/internal/importer/deposits"
	"github.com/pcaldeira/attest/internal/income"
)

// depositConfidence is the extraction confidence for CSV-imported deposits.
// The rows themselves are machine-read and reliable; the uncertainty of
// treating a deposit as income is priced in later by normalization.
const depositConfidence = 0.9

// Options carries the caller-supplied context for one statement import.
type Options struct {
	CaseID uuid.UUID

	// DocumentID identifies the statement the rows came from. Zero means a
	// fresh ID is minted for the import.
	DocumentID uuid.UUID

	// Frequency is the deposit cadence claimed for this statement. Defaults
	// to monthly.
	Frequency income.Frequency
}

type Service struct {
	depositsParser Parser
}

func NewService() *Service {
	return &Service{
		depositsParser: deposits.NewParser(),
	}
}

// Import parses a bank statement export and converts each deposit into
// extraction params for the income pipeline. The deposit description stands
// in for the payer name; employer matching cleans it up downstream.
func (s *Service) Import(format Format, r io.Reader, opts Options) ([]income.ExtractionParams, error) {
	var parser Parser

	switch format {
	case FormatDeposits:
		parser = s.depositsParser
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	if opts.DocumentID == uuid.Nil {
		opts.DocumentID = uuid.New()
	}

	if opts.Frequency == "" {
		opts.Frequency = income.FreqMonthly
	}

	params := make([]income.ExtractionParams, len(rows))

	for i, d := range rows {
		date := d.Date

		params[i] = income.ExtractionParams{
			CaseID:       opts.CaseID,
			DocumentID:   opts.DocumentID,
			DocumentType: income.DocBankStatement,
			RawAmount:    d.Amount,
			Frequency:    opts.Frequency,
			AmountType:   income.AmountNet,
			PayerName:    d.Description,
			PeriodEnd:    &date,
			Confidence:   depositConfidence,
		}
	}

	return params, nil
}
