package income_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcaldeira/attest/internal/income"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func TestNormalize_AnnualDocuments(t *testing.T) {
	taxYear := 2023

	for _, docType := range []income.DocumentType{income.DocW2, income.DocTaxReturn, income.Doc1099} {
		t.Run(string(docType), func(t *testing.T) {
			n := income.Normalize(income.RawExtraction{
				DocumentType: docType,
				RawAmount:    48000,
				Frequency:    income.FreqAnnual,
				AmountType:   income.AmountGross,
				PayerName:    "Acme Corporation",
				TaxYear:      &taxYear,
				Confidence:   0.9,
			})

			assert.Equal(t, 48000.0, n.AnnualGross)
			assert.Equal(t, 4000.0, n.MonthlyGross)
			assert.Equal(t, income.MethodDirect, n.Method)
			assert.InDelta(t, 0.855, n.Confidence, 1e-9)
			assert.True(t, n.IsAnnualDoc)
			assert.Equal(t, 2023, n.Year)
			assert.Zero(t, n.Quarter)
			assert.Nil(t, n.AnnualNet)
		})
	}
}

func TestNormalize_PayStubDirectMultiplication(t *testing.T) {
	tests := []struct {
		name       string
		frequency  income.Frequency
		rawAmount  float64
		wantAnnual float64
	}{
		{"Biweekly", income.FreqBiweekly, 2000, 52000},
		{"Weekly", income.FreqWeekly, 1000, 52000},
		{"SemiMonthly", income.FreqSemiMonthly, 2500, 60000},
		{"Monthly", income.FreqMonthly, 4000, 48000},
		{"Annual", income.FreqAnnual, 52000, 52000},
		{"OneTimeNotAnnualized", income.FreqOneTime, 5000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := income.Normalize(income.RawExtraction{
				DocumentType: income.DocPayStub,
				RawAmount:    tt.rawAmount,
				Frequency:    tt.frequency,
				AmountType:   income.AmountGross,
				PeriodEnd:    ptr(date(2023, 6, 15)),
				Confidence:   1.0,
			})

			assert.InDelta(t, tt.wantAnnual, n.AnnualGross, 1e-9)
			assert.InDelta(t, tt.wantAnnual/12, n.MonthlyGross, 1e-9)
			assert.Equal(t, income.MethodMultiplied, n.Method)
			assert.InDelta(t, 0.85, n.Confidence, 1e-9)
			assert.Equal(t, 2023, n.Year)
			assert.Equal(t, 2, n.Quarter)
		})
	}
}

func TestNormalize_PayStubYTDExtrapolation(t *testing.T) {
	// Day of year for 2023-12-31 is 365, so the extrapolation is exactly the
	// YTD figure.
	t.Run("CloseAgreement", func(t *testing.T) {
		n := income.Normalize(income.RawExtraction{
			DocumentType: income.DocPayStub,
			RawAmount:    2000,
			Frequency:    income.FreqBiweekly,
			AmountType:   income.AmountGross,
			YTDGross:     ptr(51000.0),
			PeriodEnd:    ptr(date(2023, 12, 31)),
			Confidence:   0.9,
		})

		// direct = 52000, extrapolated = 51000: ~2% apart.
		require.Equal(t, income.MethodYTDExtrapolated, n.Method)
		assert.InDelta(t, 51000, n.AnnualGross, 1e-6)
		assert.InDelta(t, 0.9*0.95, n.Confidence, 1e-9)
		assert.Empty(t, n.Notes)
	})

	t.Run("ModerateGap", func(t *testing.T) {
		n := income.Normalize(income.RawExtraction{
			DocumentType: income.DocPayStub,
			RawAmount:    2000,
			Frequency:    income.FreqBiweekly,
			AmountType:   income.AmountGross,
			YTDGross:     ptr(44200.0),
			PeriodEnd:    ptr(date(2023, 12, 31)),
			Confidence:   0.9,
		})

		// direct = 52000, extrapolated = 44200: 15% apart. Extrapolation
		// still wins, at reduced confidence with an explanation.
		require.Equal(t, income.MethodYTDExtrapolated, n.Method)
		assert.InDelta(t, 44200, n.AnnualGross, 1e-6)
		assert.InDelta(t, 0.9*0.85, n.Confidence, 1e-9)
		assert.Contains(t, n.Notes, "raise")
	})

	t.Run("LargeGapFallsBackToDirect", func(t *testing.T) {
		n := income.Normalize(income.RawExtraction{
			DocumentType: income.DocPayStub,
			RawAmount:    2000,
			Frequency:    income.FreqBiweekly,
			AmountType:   income.AmountGross,
			YTDGross:     ptr(20000.0),
			PeriodEnd:    ptr(date(2023, 12, 31)),
			Confidence:   0.9,
		})

		// direct = 52000, extrapolated = 20000: way past the 25% bound.
		require.Equal(t, income.MethodMultiplied, n.Method)
		assert.InDelta(t, 52000, n.AnnualGross, 1e-6)
		assert.InDelta(t, 0.9*0.70, n.Confidence, 1e-9)
		assert.Contains(t, n.Notes, "flagged for review")
	})
}

func TestNormalize_PayStubNetAmount(t *testing.T) {
	n := income.Normalize(income.RawExtraction{
		DocumentType: income.DocPayStub,
		RawAmount:    1500,
		Frequency:    income.FreqBiweekly,
		AmountType:   income.AmountNet,
		PeriodEnd:    ptr(date(2023, 3, 10)),
		Confidence:   0.9,
	})

	assert.InDelta(t, 1500*1.35*26, n.AnnualGross, 1e-6)
	require.NotNil(t, n.AnnualNet)
	assert.InDelta(t, 1500*26, *n.AnnualNet, 1e-6)
	assert.InDelta(t, 0.9*0.70*0.85, n.Confidence, 1e-9)
	assert.Contains(t, n.Notes, "26% deduction")
	assert.Equal(t, 1, n.Quarter)
}

func TestNormalize_BankDeposit(t *testing.T) {
	n := income.Normalize(income.RawExtraction{
		DocumentType: income.DocBankStatement,
		RawAmount:    3000,
		Frequency:    income.FreqMonthly,
		AmountType:   income.AmountNet,
		PeriodEnd:    ptr(date(2023, 8, 31)),
		Confidence:   0.8,
	})

	require.NotNil(t, n.AnnualNet)
	assert.InDelta(t, 36000, *n.AnnualNet, 1e-6)
	assert.InDelta(t, 36000*1.30, n.AnnualGross, 1e-6)
	assert.Equal(t, income.MethodDepositPattern, n.Method)
	assert.InDelta(t, 0.8*0.70, n.Confidence, 1e-9)
	assert.Contains(t, n.Notes, "net pay")
	assert.Equal(t, 3, n.Quarter)
}

func TestNormalize_UnknownDocumentType(t *testing.T) {
	n := income.Normalize(income.RawExtraction{
		DocumentType: "settlement_letter",
		RawAmount:    1000,
		Frequency:    income.FreqMonthly,
		Confidence:   1.0,
	})

	assert.InDelta(t, 12000, n.AnnualGross, 1e-6)
	assert.Equal(t, income.MethodMultiplied, n.Method)
	assert.InDelta(t, 0.60, n.Confidence, 1e-9)
	assert.Contains(t, n.Notes, "unrecognized document type")
}

func TestNormalize_UnknownFrequency(t *testing.T) {
	n := income.Normalize(income.RawExtraction{
		DocumentType: income.DocPayStub,
		RawAmount:    5000,
		Frequency:    "quarterly",
		AmountType:   income.AmountGross,
		Confidence:   1.0,
	})

	// Degrades to a one-time amount instead of failing.
	assert.InDelta(t, 5000, n.AnnualGross, 1e-6)
	assert.InDelta(t, 0.60*0.85, n.Confidence, 1e-9)
	assert.Contains(t, n.Notes, "unrecognized payment frequency")
}

func TestNormalize_IncomeYearPriority(t *testing.T) {
	base := income.RawExtraction{
		DocumentType: income.DocPayStub,
		RawAmount:    2000,
		Frequency:    income.FreqBiweekly,
		AmountType:   income.AmountGross,
		Confidence:   0.9,
	}

	withTaxYear := base
	withTaxYear.TaxYear = ptr(2022)
	withTaxYear.PeriodEnd = ptr(date(2023, 6, 1))
	assert.Equal(t, 2022, income.Normalize(withTaxYear).Year)

	withPeriodEnd := base
	withPeriodEnd.PeriodEnd = ptr(date(2023, 6, 1))
	withPeriodEnd.PeriodStart = ptr(date(2022, 12, 25))
	assert.Equal(t, 2023, income.Normalize(withPeriodEnd).Year)

	withPeriodStart := base
	withPeriodStart.PeriodStart = ptr(date(2022, 12, 25))
	assert.Equal(t, 2022, income.Normalize(withPeriodStart).Year)

	withDocDate := base
	withDocDate.DocumentDate = ptr(date(2024, 1, 15))
	assert.Equal(t, 2024, income.Normalize(withDocDate).Year)

	assert.Equal(t, time.Now().Year(), income.Normalize(base).Year)
}

func TestNormalize_MonthlyIsAlwaysTwelfthOfAnnual(t *testing.T) {
	extractions := []income.RawExtraction{
		{DocumentType: income.DocW2, RawAmount: 48000, Frequency: income.FreqAnnual, Confidence: 0.9},
		{DocumentType: income.DocPayStub, RawAmount: 1234.56, Frequency: income.FreqWeekly, AmountType: income.AmountGross, Confidence: 0.8},
		{DocumentType: income.DocBankStatement, RawAmount: 2517.33, Frequency: income.FreqSemiMonthly, Confidence: 0.7},
	}

	for _, x := range extractions {
		n := income.Normalize(x)
		assert.Equal(t, n.AnnualGross/12, n.MonthlyGross)
	}
}

func TestNormalize_ConfidenceNeverExceedsSource(t *testing.T) {
	for _, docType := range []income.DocumentType{
		income.DocW2, income.DocPayStub, income.DocBankStatement, income.DocTaxReturn, "mystery",
	} {
		n := income.Normalize(income.RawExtraction{
			DocumentType: docType,
			RawAmount:    1000,
			Frequency:    income.FreqMonthly,
			AmountType:   income.AmountGross,
			Confidence:   0.75,
		})

		assert.LessOrEqual(t, n.Confidence, 0.75, "doc type %s", docType)
	}
}
