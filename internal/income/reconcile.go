package income

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Result is the full outcome of one reconciliation run for a case.
type Result struct {
	Sources []*ReconciledSource
	Summary CaseSummary
}

// Reconcile turns a case's normalized incomes into one verified income source
// per matched employer and year, plus a case-level summary. A later run with
// more documents replaces the previous result wholesale; there is no
// incremental merge.
func Reconcile(caseID uuid.UUID, incomes []NormalizedIncome, p Policy) Result {
	groups := GroupByEmployerAndYear(incomes, p.SimilarityThreshold)

	sources := make([]*ReconciledSource, 0, len(groups))
	for _, g := range groups {
		sources = append(sources, reconcileGroup(caseID, g, p))
	}

	SortSources(sources)

	return Result{
		Sources: sources,
		Summary: Summarize(caseID, sources, p),
	}
}

// reconcileGroup resolves one employer-year group into a single source.
// Annual documents (W-2, tax return, 1099) are legally authoritative for
// their year; periodic documents corroborate or contest them.
func reconcileGroup(caseID uuid.UUID, g EmployerYearGroup, p Policy) *ReconciledSource {
	src := &ReconciledSource{
		ID:           uuid.New(),
		CaseID:       caseID,
		EmployerName: bestEmployerName(g.Incomes),
		EmployerEIN:  employerEIN(g.Incomes),
		IncomeYear:   g.Year,
		Evidence:     buildEvidence(g.Incomes),
		CreatedAt:    time.Now().UTC(),
	}

	var annual, periodic []NormalizedIncome

	for _, n := range g.Incomes {
		if n.IsAnnualDoc {
			annual = append(annual, n)
		} else {
			periodic = append(periodic, n)
		}
	}

	var maxVariance float64

	if len(annual) > 0 {
		maxVariance = reconcileWithAnnual(src, annual, periodic, p)
	} else {
		maxVariance = reconcilePeriodic(src, periodic, p)
	}

	if src.Status.NeedsAttention() {
		src.Discrepancy = &Discrepancy{
			MaxVariance:         maxVariance,
			DocumentIDs:         documentIDs(g.Incomes),
			SuggestedResolution: suggestResolution(annual, periodic, maxVariance, p),
		}
	}

	return src
}

// reconcileWithAnnual anchors the verified figure on the best annual
// document and grades it against the mean of any annualized periodic
// documents. Returns the observed variance.
func reconcileWithAnnual(src *ReconciledSource, annual, periodic []NormalizedIncome, p Policy) float64 {
	anchor := annual[0]
	for _, n := range annual[1:] {
		if n.Confidence > anchor.Confidence {
			anchor = n
		}
	}

	src.setGross(anchor.AnnualGross)
	src.Confidence = anchor.Confidence

	if len(periodic) == 0 {
		src.Determination = DeterminationSingleSource
		src.Status = statusFor(src.Confidence, p)

		return 0
	}

	carryNet(src, periodic)

	mean := meanGross(periodic)
	v := relVariance(anchor.AnnualGross, mean)

	switch {
	case v <= p.MatchVariance:
		src.Status = StatusVerified
		src.Determination = DeterminationMultiMatch
		src.Confidence = boost(anchor.Confidence, p.CorroborationBoost)
	case v <= p.ReviewVariance:
		src.Status = StatusNeedsReview
		src.Determination = DeterminationMultiAveraged
		src.addNote(fmt.Sprintf("annual document differs from annualized periodic documents by %.0f%%", v*100))
	default:
		src.Status = StatusConflict
		src.Determination = DeterminationMultiAveraged
		src.Confidence = clamp01(src.Confidence * p.AnnualConflictPenalty)
		src.addNote(fmt.Sprintf("annual document contradicts annualized periodic documents (%.0f%% apart)", v*100))
	}

	return v
}

// reconcilePeriodic resolves a group with no annual document, grading the
// spread of the periodic documents' annualized figures. Returns the maximum
// relative deviation from the mean.
func reconcilePeriodic(src *ReconciledSource, periodic []NormalizedIncome, p Policy) float64 {
	if len(periodic) == 1 {
		n := periodic[0]

		src.setGross(n.AnnualGross)
		copyNet(src, &n)

		src.Determination = DeterminationSingleSource
		src.Confidence = n.Confidence

		if distinctQuarters(periodic) < p.MinQuarterCoverage {
			src.Confidence = clamp01(src.Confidence * p.PartialYearPenalty)
			src.addNote("periodic evidence covers only part of the year")
		}

		src.Status = statusFor(src.Confidence, p)

		return 0
	}

	mean := meanGross(periodic)
	maxDev, sigma := spread(periodic, mean)
	primary := primarySource(periodic)
	maxConf := maxConfidence(periodic)

	switch {
	case maxDev <= p.MatchVariance:
		src.setGross(primary.AnnualGross)
		copyNet(src, primary)

		src.Status = StatusVerified
		src.Determination = DeterminationMultiMatch
		src.Confidence = boost(maxConf, p.CorroborationBoost)
	case netsCorroborate(periodic, p):
		// Apparent gross conflict that is really pay-stub gross vs bank net:
		// when the two net figures agree, the pay stub's gross stands.
		payStub := highestPriority(periodic, DocPayStub)

		src.setGross(payStub.AnnualGross)
		copyNet(src, payStub)

		src.Status = StatusVerified
		src.Determination = DeterminationMultiMatch
		src.Confidence = boost(maxConf, p.CorroborationBoost)
		src.addNote("net figures from pay stub and bank deposits agree; gross taken from the pay stub")
	case maxDev <= p.ReviewVariance:
		src.setGross(primary.AnnualGross)
		copyNet(src, primary)

		src.Status = StatusNeedsReview
		src.Determination = DeterminationMultiAveraged
		src.Confidence = clamp01(primary.Confidence * p.AveragedPenalty)
		src.addNote(fmt.Sprintf("periodic documents disagree by up to %.0f%%", maxDev*100))
	default:
		src.setGross(mean)
		carryNet(src, periodic)

		src.Status = StatusConflict
		src.Determination = DeterminationMultiAveraged
		src.Confidence = clamp01(maxConf * p.ConflictPenalty)
		src.addNote(fmt.Sprintf("periodic documents conflict (up to %.0f%% apart, σ=%.0f); averaged gross used", maxDev*100, sigma))
	}

	return maxDev
}

// netsCorroborate detects the pay-stub-vs-bank-deposit case where gross
// figures disagree but both documents' net figures agree within the match
// band, which corroborates the pay stub.
func netsCorroborate(periodic []NormalizedIncome, p Policy) bool {
	payStub := highestPriority(periodic, DocPayStub)
	deposit := highestPriority(periodic, DocBankStatement)

	if payStub == nil || deposit == nil || payStub.AnnualNet == nil || deposit.AnnualNet == nil {
		return false
	}

	return relVariance(*payStub.AnnualNet, *deposit.AnnualNet) <= p.MatchVariance
}

// suggestResolution picks the reviewer guidance for a discrepancy. Past the
// generic-variance bound the amounts are too far apart for any specific
// hypothesis to be safe.
func suggestResolution(annual, periodic []NormalizedIncome, maxVariance float64, p Policy) string {
	switch {
	case maxVariance > p.GenericVariance:
		return "Amounts differ by more than 25%. Verify the documents describe the same employer and pay period before relying on this figure."
	case len(annual) > 0 && len(periodic) > 0:
		return "The annual document differs from the annualized pay stubs. This may reflect a raise, bonus, or variable hours; confirm which figure represents current income."
	case len(annual) == 0 && allDeposits(periodic):
		return "Bank deposits show net pay only. Request pay stubs or a W-2 to clarify gross income."
	case len(annual) == 0 && distinctQuarters(periodic) < p.MinQuarterCoverage:
		return "Only partial-year data is available. Request a W-2 or additional pay stubs covering the rest of the year."
	}

	return "Request an additional document for this employer to corroborate the reported amount."
}

func buildEvidence(incomes []NormalizedIncome) []Evidence {
	ev := make([]Evidence, len(incomes))

	for i, n := range incomes {
		ev[i] = Evidence{
			DocumentID:   n.Source.DocumentID,
			DocumentType: n.Source.DocumentType,
			RawAmount:    n.Source.RawAmount,
			Frequency:    n.Source.Frequency,
			AnnualAmount: n.AnnualGross,
			Confidence:   n.Confidence,
			Period:       periodLabel(n),
		}
	}

	return ev
}

func periodLabel(n NormalizedIncome) string {
	x := n.Source

	switch {
	case x.PeriodStart != nil && x.PeriodEnd != nil:
		return fmt.Sprintf("%s to %s", x.PeriodStart.Format(time.DateOnly), x.PeriodEnd.Format(time.DateOnly))
	case x.PeriodEnd != nil:
		return fmt.Sprintf("through %s", x.PeriodEnd.Format(time.DateOnly))
	}

	return fmt.Sprintf("tax year %d", n.Year)
}

func documentIDs(incomes []NormalizedIncome) []uuid.UUID {
	ids := make([]uuid.UUID, len(incomes))
	for i, n := range incomes {
		ids[i] = n.Source.DocumentID
	}

	return ids
}

// primarySource returns the highest-priority periodic document, breaking
// ties by confidence.
func primarySource(periodic []NormalizedIncome) *NormalizedIncome {
	best := &periodic[0]

	for i := range periodic[1:] {
		n := &periodic[i+1]

		br := priorityOf(sourcePriority, best.Source.DocumentType)
		nr := priorityOf(sourcePriority, n.Source.DocumentType)

		if nr < br || (nr == br && n.Confidence > best.Confidence) {
			best = n
		}
	}

	return best
}

// highestPriority returns the best-confidence income of the given document
// type, or nil if none is present.
func highestPriority(incomes []NormalizedIncome, d DocumentType) *NormalizedIncome {
	var best *NormalizedIncome

	for i := range incomes {
		n := &incomes[i]
		if n.Source.DocumentType != d {
			continue
		}

		if best == nil || n.Confidence > best.Confidence {
			best = n
		}
	}

	return best
}

func distinctQuarters(incomes []NormalizedIncome) int {
	var seen [5]bool

	count := 0

	for _, n := range incomes {
		if n.Quarter >= 1 && n.Quarter <= 4 && !seen[n.Quarter] {
			seen[n.Quarter] = true
			count++
		}
	}

	return count
}

func allDeposits(incomes []NormalizedIncome) bool {
	for _, n := range incomes {
		if n.Source.DocumentType != DocBankStatement {
			return false
		}
	}

	return len(incomes) > 0
}

func meanGross(incomes []NormalizedIncome) float64 {
	if len(incomes) == 0 {
		return 0
	}

	var sum float64
	for _, n := range incomes {
		sum += n.AnnualGross
	}

	return sum / float64(len(incomes))
}

// spread returns the maximum relative deviation from the mean and the
// standard deviation of the annualized gross figures.
func spread(incomes []NormalizedIncome, mean float64) (float64, float64) {
	var maxDev, sumSq float64

	for _, n := range incomes {
		sumSq += (n.AnnualGross - mean) * (n.AnnualGross - mean)

		if mean != 0 {
			maxDev = math.Max(maxDev, math.Abs(n.AnnualGross-mean)/mean)
		}
	}

	return maxDev, math.Sqrt(sumSq / float64(len(incomes)))
}

func maxConfidence(incomes []NormalizedIncome) float64 {
	var best float64
	for _, n := range incomes {
		best = math.Max(best, n.Confidence)
	}

	return best
}

// carryNet attaches the net figure from the highest-priority periodic
// document that has one.
func carryNet(src *ReconciledSource, periodic []NormalizedIncome) {
	var best *NormalizedIncome

	for i := range periodic {
		n := &periodic[i]
		if n.AnnualNet == nil {
			continue
		}

		if best == nil || priorityOf(sourcePriority, n.Source.DocumentType) < priorityOf(sourcePriority, best.Source.DocumentType) {
			best = n
		}
	}

	if best != nil {
		copyNet(src, best)
	}
}

func copyNet(src *ReconciledSource, n *NormalizedIncome) {
	if n.AnnualNet != nil {
		src.setNet(*n.AnnualNet)
	}
}

func statusFor(confidence float64, p Policy) Status {
	if confidence >= p.VerifiedConfidence {
		return StatusVerified
	}

	return StatusNeedsReview
}

func boost(confidence, factor float64) float64 {
	return math.Min(1, confidence*factor)
}

// SortSources orders sources by income year descending, then employer name
// ascending: most recent, most relevant income first.
func SortSources(sources []*ReconciledSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].IncomeYear != sources[j].IncomeYear {
			return sources[i].IncomeYear > sources[j].IncomeYear
		}

		return strings.ToLower(sources[i].EmployerName) < strings.ToLower(sources[j].EmployerName)
	})
}

// Summarize aggregates reconciled sources into case totals. Each employer
// counts once: only its most recent income year contributes (unless the
// policy asks for a multi-year view). The reconciled flag reflects every
// source, kept or not.
func Summarize(caseID uuid.UUID, sources []*ReconciledSource, p Policy) CaseSummary {
	summary := CaseSummary{
		CaseID:               caseID,
		AllSourcesReconciled: true,
	}

	latest := make(map[string]int)

	for _, src := range sources {
		key := employerKey(src)
		if y, ok := latest[key]; !ok || src.IncomeYear > y {
			latest[key] = src.IncomeYear
		}
	}

	summary.EmployerCount = len(latest)

	for _, src := range sources {
		if src.Status.NeedsAttention() {
			summary.AllSourcesReconciled = false
			summary.NeedsReview = append(summary.NeedsReview, src.ID)
		}

		if p.LatestYearOnly && src.IncomeYear != latest[employerKey(src)] {
			continue
		}

		summary.TotalAnnualGross += src.AnnualGross

		if src.AnnualNet != nil {
			summary.TotalAnnualNet += *src.AnnualNet
		}
	}

	summary.TotalMonthlyGross = summary.TotalAnnualGross / 12
	summary.TotalMonthlyNet = summary.TotalAnnualNet / 12

	return summary
}

// employerKey identifies an employer across year groups. Display names vary
// between a year's documents ("Acme Corporation" on a W-2, "ACME CORP" on pay
// stubs), so without an EIN the normalized form is the identity. It is also
// derivable from stored sources, which keeps summary recomputation after an
// override consistent with reconciliation.
func employerKey(src *ReconciledSource) string {
	if src.EmployerEIN != "" {
		return src.EmployerEIN
	}

	return NormalizeEmployerName(src.EmployerName)
}
