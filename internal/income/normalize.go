package income

import (
	"fmt"
	"math"
	"time"
)

// Trust factors and estimation constants for normalization. The net-to-gross
// factors are fixed heuristics (≈26% assumed deductions on pay stubs, ≈23% on
// bank deposits), not a tax-withholding model.
const (
	annualDocTrust   = 0.95
	ytdCloseTrust    = 0.95
	ytdLooseTrust    = 0.85
	directTrust      = 0.85
	ytdMismatchTrust = 0.70
	netEstimateTrust = 0.70
	depositTrust     = 0.70
	unknownTrust     = 0.60

	payStubNetToGross = 1.35
	depositNetToGross = 1.30

	ytdCloseVariance = 0.10
	ytdLooseVariance = 0.25
)

// Normalize converts one raw extraction into a NormalizedIncome. It is a
// total function: unknown document types or frequencies degrade confidence
// and add a note instead of failing.
func Normalize(x RawExtraction) NormalizedIncome {
	n := NormalizedIncome{
		Source:       x,
		EmployerName: NormalizeEmployerName(x.PayerName),
		Confidence:   clamp01(x.Confidence),
		Year:         incomeYear(x),
	}

	switch {
	case x.DocumentType.IsAnnual():
		normalizeAnnual(&n, x)
	case x.DocumentType == DocPayStub:
		normalizePayStub(&n, x)
	case x.DocumentType == DocBankStatement:
		normalizeDeposit(&n, x)
	default:
		mult := frequencyMultiplier(&n, x)
		n.Method = MethodMultiplied
		n.setGross(x.RawAmount * mult)
		n.scaleConfidence(unknownTrust)
		n.addNote(fmt.Sprintf("unrecognized document type %q; used direct multiplication", x.DocumentType))
	}

	if !n.IsAnnualDoc {
		n.Quarter = quarterOf(x.PeriodEnd)
	}

	return n
}

// normalizeAnnual handles W-2s, tax returns, and 1099s: the raw amount is the
// annual gross as stated, with high trust in the official figure.
func normalizeAnnual(n *NormalizedIncome, x RawExtraction) {
	n.IsAnnualDoc = true
	n.Method = MethodDirect
	n.setGross(x.RawAmount)
	n.scaleConfidence(annualDocTrust)
}

// normalizePayStub prefers year-to-date extrapolation when YTD gross and a
// period end are available, cross-checked against direct multiplication of
// the per-period amount. Large disagreement between the two falls back to
// direct multiplication and flags the record for review.
func normalizePayStub(n *NormalizedIncome, x RawExtraction) {
	gross := x.RawAmount
	if x.AmountType == AmountNet {
		gross = x.RawAmount * payStubNetToGross
		n.scaleConfidence(netEstimateTrust)
		n.addNote("gross estimated from net pay at an assumed 26% deduction rate")
	}

	mult := frequencyMultiplier(n, x)
	direct := gross * mult

	if x.YTDGross != nil && *x.YTDGross > 0 && x.PeriodEnd != nil {
		extrapolated := *x.YTDGross / float64(x.PeriodEnd.YearDay()) * 365

		switch v := relVariance(extrapolated, direct); {
		case v < ytdCloseVariance:
			n.Method = MethodYTDExtrapolated
			n.setGross(extrapolated)
			n.scaleConfidence(ytdCloseTrust)
		case v < ytdLooseVariance:
			n.Method = MethodYTDExtrapolated
			n.setGross(extrapolated)
			n.scaleConfidence(ytdLooseTrust)
			n.addNote(fmt.Sprintf("YTD extrapolation differs from the per-period amount by %.0f%%; possible raise, bonus, or variable hours", v*100))
		default:
			n.Method = MethodMultiplied
			n.setGross(direct)
			n.scaleConfidence(ytdMismatchTrust)
			n.addNote(fmt.Sprintf("YTD and per-period figures diverge by %.0f%%; flagged for review", v*100))
		}
	} else {
		n.Method = MethodMultiplied
		n.setGross(direct)
		n.scaleConfidence(directTrust)
	}

	if x.AmountType == AmountNet {
		n.setNet(x.RawAmount * mult)
	}
}

// normalizeDeposit handles bank statements. Deposits are always net pay, the
// least direct evidence of gross income, so confidence is capped accordingly.
func normalizeDeposit(n *NormalizedIncome, x RawExtraction) {
	mult := frequencyMultiplier(n, x)
	annualNet := x.RawAmount * mult

	n.Method = MethodDepositPattern
	n.setNet(annualNet)
	n.setGross(annualNet * depositNetToGross)
	n.scaleConfidence(depositTrust)
	n.addNote("bank deposits show net pay; gross estimated at an assumed 23% deduction rate")
}

// frequencyMultiplier resolves the payments-per-year multiplier, degrading
// unknown frequencies to 1 with a note rather than failing.
func frequencyMultiplier(n *NormalizedIncome, x RawExtraction) float64 {
	mult, known := x.Frequency.Multiplier()
	if !known {
		n.scaleConfidence(unknownTrust)
		n.addNote(fmt.Sprintf("unrecognized payment frequency %q; amount treated as one-time", x.Frequency))
	}

	return mult
}

// incomeYear derives the year this extraction's income belongs to:
// explicit tax year, then period end, period start, document date, and
// finally the current year.
func incomeYear(x RawExtraction) int {
	switch {
	case x.TaxYear != nil:
		return *x.TaxYear
	case x.PeriodEnd != nil:
		return x.PeriodEnd.Year()
	case x.PeriodStart != nil:
		return x.PeriodStart.Year()
	case x.DocumentDate != nil:
		return x.DocumentDate.Year()
	}

	return time.Now().Year()
}

// quarterOf returns the calendar quarter of a period end, or 0 when unknown.
func quarterOf(end *time.Time) int {
	if end == nil {
		return 0
	}

	return (int(end.Month()) + 2) / 3
}

// relVariance is the relative difference between two amounts, using the
// larger magnitude as the baseline so the measure is symmetric and bounded.
func relVariance(a, b float64) float64 {
	base := math.Max(math.Abs(a), math.Abs(b))
	if base == 0 {
		return 0
	}

	return math.Abs(a-b) / base
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}

	return v
}
