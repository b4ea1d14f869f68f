package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/pcaldeira/attest/internal/income"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectExtractionColumns = `
	id, case_id, document_id, document_type, document_date, raw_amount, frequency,
	amount_type, payer_name, payer_tax_id, period_start, period_end, tax_year,
	ytd_gross, ytd_net, ytd_withholding, hours_per_period, hourly_rate, confidence, created_at
`

func scanExtraction(s scanner) (*income.RawExtraction, error) {
	var x income.RawExtraction

	var docType, freq, amountType string

	var payerTaxID sql.NullString

	if err := s.Scan(
		&x.ID, &x.CaseID, &x.DocumentID, &docType, &x.DocumentDate, &x.RawAmount, &freq,
		&amountType, &x.PayerName, &payerTaxID, &x.PeriodStart, &x.PeriodEnd, &x.TaxYear,
		&x.YTDGross, &x.YTDNet, &x.YTDWithholding, &x.HoursPerPeriod, &x.HourlyRate,
		&x.Confidence, &x.CreatedAt,
	); err != nil {
		return nil, err
	}

	x.DocumentType = income.DocumentType(docType)
	x.Frequency = income.Frequency(freq)
	x.AmountType = income.AmountType(amountType)
	x.PayerTaxID = payerTaxID.String

	return &x, nil
}

func (s *Store) CreateExtraction(ctx context.Context, x *income.RawExtraction) error {
	query := `
		INSERT INTO income_extractions (
			case_id, document_id, document_type, document_date, raw_amount, frequency,
			amount_type, payer_name, payer_tax_id, period_start, period_end, tax_year,
			ytd_gross, ytd_net, ytd_withholding, hours_per_period, hourly_rate, confidence, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		x.CaseID,
		x.DocumentID,
		x.DocumentType,
		x.DocumentDate,
		x.RawAmount,
		x.Frequency,
		x.AmountType,
		x.PayerName,
		nullString(x.PayerTaxID),
		x.PeriodStart,
		x.PeriodEnd,
		x.TaxYear,
		x.YTDGross,
		x.YTDNet,
		x.YTDWithholding,
		x.HoursPerPeriod,
		x.HourlyRate,
		x.Confidence,
	).Scan(&x.ID, &x.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating extraction: %w", err)
	}

	return nil
}

func (s *Store) ListExtractions(ctx context.Context, caseID uuid.UUID) ([]income.RawExtraction, error) {
	query := `SELECT ` + selectExtractionColumns + `
		FROM income_extractions
		WHERE case_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing extractions: %w", err)
	}
	defer rows.Close()

	var xs []income.RawExtraction

	for rows.Next() {
		x, err := scanExtraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}

		xs = append(xs, *x)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extraction rows: %w", err)
	}

	return xs, nil
}

const selectSourceColumns = `
	id, case_id, employer_name, employer_ein, income_year, annual_gross, monthly_gross,
	annual_net, monthly_net, determination, evidence, confidence, status, discrepancy,
	notes, created_at, updated_at
`

func scanSource(s scanner) (*income.ReconciledSource, error) {
	var src income.ReconciledSource

	var determination, status string

	var ein, notes sql.NullString

	var evidenceJSON []byte

	var discrepancyJSON []byte

	if err := s.Scan(
		&src.ID, &src.CaseID, &src.EmployerName, &ein, &src.IncomeYear,
		&src.AnnualGross, &src.MonthlyGross, &src.AnnualNet, &src.MonthlyNet,
		&determination, &evidenceJSON, &src.Confidence, &status, &discrepancyJSON,
		&notes, &src.CreatedAt, &src.UpdatedAt,
	); err != nil {
		return nil, err
	}

	src.Determination = income.Determination(determination)
	src.Status = income.Status(status)
	src.EmployerEIN = ein.String
	src.Notes = notes.String

	if len(evidenceJSON) > 0 {
		if err := json.Unmarshal(evidenceJSON, &src.Evidence); err != nil {
			return nil, fmt.Errorf("decoding evidence: %w", err)
		}
	}

	if len(discrepancyJSON) > 0 {
		if err := json.Unmarshal(discrepancyJSON, &src.Discrepancy); err != nil {
			return nil, fmt.Errorf("decoding discrepancy: %w", err)
		}
	}

	return &src, nil
}

const insertSourceQuery = `
	INSERT INTO income_sources (
		id, case_id, employer_name, employer_ein, income_year, annual_gross, monthly_gross,
		annual_net, monthly_net, determination, evidence, confidence, status, discrepancy,
		notes, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

func insertSource(ctx context.Context, tx *sql.Tx, src *income.ReconciledSource) error {
	evidenceJSON, discrepancyJSON, err := encodeSourceJSON(src)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, insertSourceQuery,
		src.ID,
		src.CaseID,
		src.EmployerName,
		nullString(src.EmployerEIN),
		src.IncomeYear,
		src.AnnualGross,
		src.MonthlyGross,
		src.AnnualNet,
		src.MonthlyNet,
		src.Determination,
		evidenceJSON,
		src.Confidence,
		src.Status,
		discrepancyJSON,
		nullString(src.Notes),
		src.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting source: %w", err)
	}

	return nil
}

// ReplaceSources swaps out a case's reconciliation result atomically. An
// advisory lock keyed on the case keeps two concurrent runs from interleaving
// their deletes and inserts.
func (s *Store) ReplaceSources(ctx context.Context, caseID uuid.UUID, sources []*income.ReconciledSource, summary income.CaseSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", caseLockKey(caseID)); err != nil {
		return fmt.Errorf("acquiring case lock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM income_sources WHERE case_id = $1", caseID); err != nil {
		return fmt.Errorf("clearing previous sources: %w", err)
	}

	for _, src := range sources {
		if err := insertSource(ctx, tx, src); err != nil {
			return err
		}
	}

	if err := upsertSummary(ctx, tx, summary); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing replace tx: %w", err)
	}

	return nil
}

func (s *Store) ListSources(ctx context.Context, caseID uuid.UUID) ([]*income.ReconciledSource, error) {
	query := `SELECT ` + selectSourceColumns + `
		FROM income_sources
		WHERE case_id = $1
		ORDER BY income_year DESC, LOWER(employer_name) ASC`

	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []*income.ReconciledSource

	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source rows: %w", err)
	}

	return sources, nil
}

func (s *Store) GetSource(ctx context.Context, id uuid.UUID) (*income.ReconciledSource, error) {
	query := `SELECT ` + selectSourceColumns + `
		FROM income_sources
		WHERE id = $1`

	src, err := scanSource(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, income.ErrNotFound
		}

		return nil, fmt.Errorf("getting source: %w", err)
	}

	return src, nil
}

func (s *Store) UpdateSource(ctx context.Context, src *income.ReconciledSource) error {
	evidenceJSON, discrepancyJSON, err := encodeSourceJSON(src)
	if err != nil {
		return err
	}

	query := `
		UPDATE income_sources
		SET annual_gross = $1, monthly_gross = $2, annual_net = $3, monthly_net = $4,
			determination = $5, evidence = $6, confidence = $7, status = $8,
			discrepancy = $9, notes = $10, updated_at = NOW()
		WHERE id = $11
	`

	res, err := s.db.ExecContext(ctx, query,
		src.AnnualGross,
		src.MonthlyGross,
		src.AnnualNet,
		src.MonthlyNet,
		src.Determination,
		evidenceJSON,
		src.Confidence,
		src.Status,
		discrepancyJSON,
		nullString(src.Notes),
		src.ID,
	)
	if err != nil {
		return fmt.Errorf("updating source: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return income.ErrNotFound
	}

	return nil
}

func (s *Store) SaveSummary(ctx context.Context, summary income.CaseSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning summary tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSummary(ctx, tx, summary); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing summary tx: %w", err)
	}

	return nil
}

func upsertSummary(ctx context.Context, tx *sql.Tx, summary income.CaseSummary) error {
	needsReviewJSON, err := json.Marshal(summary.NeedsReview)
	if err != nil {
		return fmt.Errorf("encoding needs-review list: %w", err)
	}

	query := `
		INSERT INTO case_income_summaries (
			case_id, total_annual_gross, total_monthly_gross, total_annual_net,
			total_monthly_net, employer_count, all_sources_reconciled, needs_review, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (case_id) DO UPDATE SET
			total_annual_gross = EXCLUDED.total_annual_gross,
			total_monthly_gross = EXCLUDED.total_monthly_gross,
			total_annual_net = EXCLUDED.total_annual_net,
			total_monthly_net = EXCLUDED.total_monthly_net,
			employer_count = EXCLUDED.employer_count,
			all_sources_reconciled = EXCLUDED.all_sources_reconciled,
			needs_review = EXCLUDED.needs_review,
			updated_at = NOW()
	`

	_, err = tx.ExecContext(ctx, query,
		summary.CaseID,
		summary.TotalAnnualGross,
		summary.TotalMonthlyGross,
		summary.TotalAnnualNet,
		summary.TotalMonthlyNet,
		summary.EmployerCount,
		summary.AllSourcesReconciled,
		needsReviewJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting summary: %w", err)
	}

	return nil
}

func (s *Store) GetSummary(ctx context.Context, caseID uuid.UUID) (*income.CaseSummary, error) {
	query := `
		SELECT case_id, total_annual_gross, total_monthly_gross, total_annual_net,
			total_monthly_net, employer_count, all_sources_reconciled, needs_review
		FROM case_income_summaries
		WHERE case_id = $1
	`

	var summary income.CaseSummary

	var needsReviewJSON []byte

	err := s.db.QueryRowContext(ctx, query, caseID).Scan(
		&summary.CaseID, &summary.TotalAnnualGross, &summary.TotalMonthlyGross,
		&summary.TotalAnnualNet, &summary.TotalMonthlyNet, &summary.EmployerCount,
		&summary.AllSourcesReconciled, &needsReviewJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, income.ErrNotFound
		}

		return nil, fmt.Errorf("getting summary: %w", err)
	}

	if len(needsReviewJSON) > 0 {
		if err := json.Unmarshal(needsReviewJSON, &summary.NeedsReview); err != nil {
			return nil, fmt.Errorf("decoding needs-review list: %w", err)
		}
	}

	return &summary, nil
}

func encodeSourceJSON(src *income.ReconciledSource) ([]byte, []byte, error) {
	evidenceJSON, err := json.Marshal(src.Evidence)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding evidence: %w", err)
	}

	var discrepancyJSON []byte

	if src.Discrepancy != nil {
		discrepancyJSON, err = json.Marshal(src.Discrepancy)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding discrepancy: %w", err)
		}
	}

	return evidenceJSON, discrepancyJSON, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func caseLockKey(caseID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(caseID[:])

	return int64(h.Sum64())
}
