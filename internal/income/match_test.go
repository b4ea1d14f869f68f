package income_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcaldeira/attest/internal/income"
)

func TestNormalizeEmployerName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"UppercasesAndStripsPunctuation", "Acme, Inc.", "ACME"},
		{"StripsCorporation", "Acme Corporation", "ACME"},
		{"StripsLLC", "Springfield Nuclear Power Plant LLC", "SPRINGFIELD NUCLEAR POWER PLANT"},
		{"StripsStackedSuffixes", "Globex Holdings Co LLC", "GLOBEX HOLDINGS"},
		{"CollapsesWhitespace", "  First   National \t Bank ", "FIRST NATIONAL BANK"},
		{"KeepsLoneSuffixWord", "Co", "CO"},
		{"KeepsDigits", "7-Eleven", "7 ELEVEN"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, income.NormalizeEmployerName(tt.in))
		})
	}
}

func TestEmployerSimilarity(t *testing.T) {
	t.Run("ExactAfterNormalization", func(t *testing.T) {
		assert.Equal(t, 1.0, income.EmployerSimilarity("Acme Corporation", "ACME CORP"))
		assert.Equal(t, 1.0, income.EmployerSimilarity("acme, inc.", "Acme Inc"))
	})

	t.Run("EmptyScoresZero", func(t *testing.T) {
		assert.Zero(t, income.EmployerSimilarity("", "Acme Corp"))
		assert.Zero(t, income.EmployerSimilarity("Acme Corp", ""))
		assert.Zero(t, income.EmployerSimilarity("...", "Acme Corp"))
	})

	t.Run("SubstringContainment", func(t *testing.T) {
		got := income.EmployerSimilarity("ACME STAFFING", "Acme Staffing Group")
		assert.GreaterOrEqual(t, got, 0.85)
	})

	t.Run("BankStatementTruncation", func(t *testing.T) {
		// The abbreviated form drops interior letters word by word, which is
		// how deposit descriptors shorten employer names.
		got := income.EmployerSimilarity("Springfield Nuclear Power Plant", "SPRNGFLD NUCLEAR")
		assert.GreaterOrEqual(t, got, 0.85)
	})

	t.Run("UnrelatedNamesScoreLow", func(t *testing.T) {
		assert.Less(t, income.EmployerSimilarity("Acme Corp", "Bank of Springfield"), 0.5)
		assert.Less(t, income.EmployerSimilarity("Globex", "Initech"), 0.5)
	})

	t.Run("Symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"Springfield Nuclear Power Plant", "SPRNGFLD NUCLEAR"},
			{"Acme Corp", "Acme Staffing Group"},
			{"Globex", "Globox"},
		}

		for _, p := range pairs {
			assert.Equal(t,
				income.EmployerSimilarity(p[0], p[1]),
				income.EmployerSimilarity(p[1], p[0]),
				"%q vs %q", p[0], p[1])
		}
	})

	t.Run("SingleWordTypo", func(t *testing.T) {
		got := income.EmployerSimilarity("Globex", "Globox")
		assert.Greater(t, got, 0.75)
		assert.Less(t, got, 1.0)
	})
}

func stubIncome(payer, taxID string, year int, docType income.DocumentType, annual float64) income.NormalizedIncome {
	n := income.Normalize(income.RawExtraction{
		DocumentType: docType,
		RawAmount:    annual,
		Frequency:    income.FreqAnnual,
		AmountType:   income.AmountGross,
		PayerName:    payer,
		PayerTaxID:   taxID,
		TaxYear:      &year,
		Confidence:   0.9,
	})

	return n
}

func TestGroupByEmployer_TaxIDIsAuthoritative(t *testing.T) {
	incomes := []income.NormalizedIncome{
		stubIncome("Acme Corporation", "12-3456789", 2023, income.DocW2, 48000),
		stubIncome("Completely Different Name", "123456789", 2023, income.Doc1099, 5000),
	}

	groups := income.GroupByEmployer(incomes, 0.75)

	require.Len(t, groups, 1)
	assert.Equal(t, "123456789", groups[0].TaxID)
	assert.Len(t, groups[0].Incomes, 2)
}

func TestGroupByEmployer_FuzzyNameJoin(t *testing.T) {
	incomes := []income.NormalizedIncome{
		stubIncome("Acme Corporation", "", 2023, income.DocW2, 48000),
		stubIncome("ACME CORP", "", 2023, income.DocPayStub, 2000),
		stubIncome("Globex", "", 2023, income.DocW2, 30000),
	}

	groups := income.GroupByEmployer(incomes, 0.75)

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Incomes, 2)
	assert.Len(t, groups[1].Incomes, 1)
}

func TestGroupByEmployer_DeterministicOrder(t *testing.T) {
	incomes := []income.NormalizedIncome{
		stubIncome("Initech", "", 2023, income.DocW2, 40000),
		stubIncome("Globex", "", 2023, income.DocW2, 30000),
		stubIncome("INITECH INC", "", 2023, income.DocPayStub, 1500),
	}

	first := income.GroupByEmployer(incomes, 0.75)
	second := income.GroupByEmployer(incomes, 0.75)

	require.Len(t, first, 2)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, first[1].Name, second[1].Name)
	assert.Equal(t, income.NormalizeEmployerName("Initech"), income.NormalizeEmployerName(first[0].Name))
}

func TestGroupByEmployerAndYear(t *testing.T) {
	incomes := []income.NormalizedIncome{
		stubIncome("Acme Corporation", "", 2022, income.DocW2, 45000),
		stubIncome("ACME CORP", "", 2023, income.DocW2, 48000),
		stubIncome("Globex", "", 2023, income.DocW2, 30000),
	}

	groups := income.GroupByEmployerAndYear(incomes, 0.75)

	require.Len(t, groups, 3)

	// Same employer split per year, latest year first.
	assert.Equal(t, 2023, groups[0].Year)
	assert.Equal(t, 2022, groups[1].Year)
	assert.Equal(t, income.NormalizeEmployerName(groups[0].Name), income.NormalizeEmployerName(groups[1].Name))

	assert.Equal(t, 2023, groups[2].Year)
	assert.Equal(t, "GLOBEX", groups[2].Name, "group names are normalized")
}
