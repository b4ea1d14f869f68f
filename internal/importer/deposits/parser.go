package deposits

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/pcaldeira/attest/internal/encoding"
)

// Deposit is one credit row from a bank statement export: money arriving in
// the account. Debits never represent income and are dropped during parsing.
type Deposit struct {
	Date        time.Time
	Description string
	Amount      float64 // dollars, always positive
}

// Parser reads bank CSV exports and produces deposits. It auto-detects which
// export format is being used by matching column headers against known
// profiles, so preamble rows above the header are tolerated.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Deposit, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching statement format found: expected date, description, and amount (or debit/credit) columns")
	}

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts deposits from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]Deposit, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var deposits []Deposit

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		amount, ok := parseCredit(p, cols, row)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		deposits = append(deposits, Deposit{
			Date:        date,
			Description: desc,
			Amount:      amount,
		})
	}

	return deposits, nil
}

var dateLayouts = []string{"01/02/2006", "2006-01-02", "1/2/2006"}

// parseDate tries to parse a date from the given cell index.
// Returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseCredit extracts a deposit amount from a row based on the profile's
// amount mode. Debits and zero amounts report false.
func parseCredit(p *Profile, cols colIndex, row []string) (float64, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleCredit(row, cols[p.AmountCol])
	case amountSplit:
		return parseSplitCredit(row, cols[p.CreditCol])
	}

	return 0, false
}

// parseSingleCredit handles a single signed amount column: positive values
// are deposits, negative ones withdrawals.
func parseSingleCredit(row []string, idx int) (float64, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, false
	}

	amount, err := parseUSAmount(s)
	if err != nil || amount <= 0 {
		return 0, false
	}

	return amount, true
}

// parseSplitCredit handles a dedicated credit column.
func parseSplitCredit(row []string, creditIdx int) (float64, bool) {
	s := cellValue(row, creditIdx)
	if s == "" {
		return 0, false
	}

	amount, err := parseUSAmount(s)
	if err != nil || amount <= 0 {
		return 0, false
	}

	return amount, true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
