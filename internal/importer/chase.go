package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChaseParser parses Chase checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV.
func (p *ChaseParser) Parse(r io.Reader) ([]StatementLine, error) {
	records, err := readStatement(r, chaseNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	var lines []StatementLine
	for i, rec := range records {
		date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[chaseColDate], err)
		}
		amount, err := parseStatementAmount(rec[chaseColAmount])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		desc := rec[chaseColDesc]
		lines = append(lines, StatementLine{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Reference:   makeRef("chase", date, desc),
		})
	}
	return lines, nil
}

// SimpleParser parses three-column date,description,amount statements. Dates
// may be YYYY-MM-DD, DD.MM.YYYY, or MM/DD/YYYY.
type SimpleParser struct{}

const simpleNumFields = 3

func (p *SimpleParser) Format() string { return "simple" }

func (p *SimpleParser) Parse(r io.Reader) ([]StatementLine, error) {
	records, err := readStatement(r, simpleNumFields)
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	var lines []StatementLine
	for i, rec := range records {
		date, err := ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date: %w", i+2, err)
		}
		amount, err := parseStatementAmount(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, StatementLine{
			Date:        date,
			Description: strings.TrimSpace(rec[1]),
			Amount:      amount,
			Reference:   makeRef("stmt", date, rec[1]),
		})
	}
	return lines, nil
}

// readStatement returns the records after the header row.
func readStatement(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

func parseStatementAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(cleanNumber(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if amount.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("zero amount")
	}
	return amount.Round(2), nil
}

// makeRef creates a reference like chase_20250103_GITHUB.
func makeRef(prefix string, date time.Time, desc string) string {
	word := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(word) > 10 {
		word = word[:10]
	}
	return fmt.Sprintf("%s_%s_%s", prefix, date.Format("20060102"), word)
}
