package income

import (
	"math"
	"sort"
	"strings"
)

// entitySuffixes are trailing business-entity designators stripped during
// employer-name normalization, so "Acme Corporation" and "ACME CORP" compare
// equal.
var entitySuffixes = map[string]bool{
	"INC":          true,
	"INCORPORATED": true,
	"LLC":          true,
	"CORP":         true,
	"CORPORATION":  true,
	"CO":           true,
	"COMPANY":      true,
	"LTD":          true,
	"LIMITED":      true,
	"LP":           true,
	"LLP":          true,
	"PC":           true,
	"PLLC":         true,
	"NA":           true,
	"FSB":          true,
}

// NormalizeEmployerName upper-cases a payer name, strips punctuation and
// trailing entity suffixes, and collapses whitespace.
func NormalizeEmployerName(name string) string {
	var b strings.Builder

	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	for len(words) > 1 && entitySuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}

	return strings.Join(words, " ")
}

// EmployerSimilarity scores how likely two payer names refer to the same
// employer, in [0,1]. It is symmetric. Containment and truncation (the way
// bank statements abbreviate names) score at least 0.85; otherwise a blend of
// word-set overlap and edit distance decides.
func EmployerSimilarity(a, b string) float64 {
	a, b = NormalizeEmployerName(a), NormalizeEmployerName(b)

	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return 1
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if containsTruncated(longer, shorter) {
		return math.Max(0.85, float64(len(shorter))/float64(len(longer)))
	}

	jac := jaccardWords(a, b)
	edit := 1 - float64(levenshtein(a, b))/float64(max(len(a), len(b)))

	if strings.ContainsRune(a, ' ') || strings.ContainsRune(b, ' ') {
		return math.Max(jac*0.8+edit*0.2, edit)
	}

	return math.Max(jac, edit)
}

// containsTruncated reports whether the shorter name is the longer one cut
// down: a plain substring, or a word-by-word abbreviation where each word of
// the shorter name drops interior letters ("SPRNGFLD" from "SPRINGFIELD").
func containsTruncated(longer, shorter string) bool {
	if strings.Contains(longer, shorter) {
		return true
	}

	longWords := strings.Fields(longer)
	shortWords := strings.Fields(shorter)

	if len(shortWords) == 0 || len(shortWords) > len(longWords) {
		return false
	}

	for i, w := range shortWords {
		if len(w) < 3 || !isSubsequence(longWords[i], w) {
			return false
		}
	}

	return true
}

// isSubsequence reports whether sub's characters appear in s in order.
func isSubsequence(s, sub string) bool {
	j := 0
	for i := 0; i < len(s) && j < len(sub); i++ {
		if s[i] == sub[j] {
			j++
		}
	}

	return j == len(sub)
}

// jaccardWords computes word-set Jaccard similarity over words longer than
// two characters.
func jaccardWords(a, b string) float64 {
	setOf := func(s string) map[string]bool {
		set := make(map[string]bool)

		for _, w := range strings.Fields(s) {
			if len(w) > 2 {
				set[w] = true
			}
		}

		return set
	}

	sa, sb := setOf(a), setOf(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	var common int

	for w := range sa {
		if sb[w] {
			common++
		}
	}

	return float64(common) / float64(len(sa)+len(sb)-common)
}

// levenshtein computes the edit distance between two strings using two
// rolling rows.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i

		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// EmployerGroup collects the normalized incomes attributed to one employer.
type EmployerGroup struct {
	TaxID   string // digits-only EIN when any member carried one
	Name    string // normalized representative name
	Incomes []NormalizedIncome
}

// EmployerYearGroup is the unit of reconciliation: one matched employer
// within one income year.
type EmployerYearGroup struct {
	TaxID   string
	Name    string
	Year    int
	Incomes []NormalizedIncome
}

// GroupByEmployer partitions incomes into employer groups. Incomes carrying a
// payer tax ID are grouped by the digits-only ID first; those groups are
// authoritative. Everything else joins the first existing group whose
// representative name scores at or above the similarity threshold, or starts
// a new group. Group order follows first appearance, so the partition is
// deterministic for a given input order.
func GroupByEmployer(incomes []NormalizedIncome, threshold float64) []*EmployerGroup {
	var groups []*EmployerGroup

	byTaxID := make(map[string]*EmployerGroup)

	var unmatched []NormalizedIncome

	for _, n := range incomes {
		ein := digitsOnly(n.Source.PayerTaxID)
		if ein == "" {
			unmatched = append(unmatched, n)
			continue
		}

		g, ok := byTaxID[ein]
		if !ok {
			g = &EmployerGroup{TaxID: ein}
			byTaxID[ein] = g
			groups = append(groups, g)
		}

		g.Incomes = append(g.Incomes, n)
		if g.Name == "" {
			g.Name = n.EmployerName
		}
	}

	for _, n := range unmatched {
		var joined *EmployerGroup

		for _, g := range groups {
			if EmployerSimilarity(g.Name, n.EmployerName) >= threshold {
				joined = g
				break
			}
		}

		if joined == nil {
			joined = &EmployerGroup{Name: n.EmployerName}
			groups = append(groups, joined)
		}

		joined.Incomes = append(joined.Incomes, n)
		if joined.Name == "" {
			joined.Name = n.EmployerName
		}
	}

	return groups
}

// GroupByEmployerAndYear partitions incomes by matched employer and then by
// income year. Groups come back ordered by first appearance of the employer,
// then descending year.
func GroupByEmployerAndYear(incomes []NormalizedIncome, threshold float64) []EmployerYearGroup {
	var out []EmployerYearGroup

	for _, g := range GroupByEmployer(incomes, threshold) {
		var years []int

		byYear := make(map[int][]NormalizedIncome)

		for _, n := range g.Incomes {
			if _, ok := byYear[n.Year]; !ok {
				years = append(years, n.Year)
			}

			byYear[n.Year] = append(byYear[n.Year], n)
		}

		sortDesc(years)

		for _, y := range years {
			out = append(out, EmployerYearGroup{
				TaxID:   g.TaxID,
				Name:    g.Name,
				Year:    y,
				Incomes: byYear[y],
			})
		}
	}

	return out
}

// bestEmployerName returns the display name from the highest-trust document
// type present in the group.
func bestEmployerName(incomes []NormalizedIncome) string {
	best := ""
	bestRank := 0

	for _, n := range incomes {
		if n.Source.PayerName == "" {
			continue
		}

		rank := priorityOf(namePriority, n.Source.DocumentType)
		if best == "" || rank < bestRank {
			best = n.Source.PayerName
			bestRank = rank
		}
	}

	return best
}

// employerEIN returns the first payer tax ID found in the group, digits only.
func employerEIN(incomes []NormalizedIncome) string {
	for _, n := range incomes {
		if ein := digitsOnly(n.Source.PayerTaxID); ein != "" {
			return ein
		}
	}

	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func sortDesc(years []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
}
