package ledgerfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

const (
	accountFields   = 5
	colAcctID       = 0
	colAcctName     = 1
	colAcctType     = 2
	colAcctOpening  = 3
	colAcctArchived = 4

	categoryFields = 6
	colCatID       = 0
	colCatCode     = 1
	colCatName     = 2
	colCatType     = 3
	colCatReport   = 4
	colCatArchived = 5

	taxRateFields  = 4
	colRateID      = 0
	colRateName    = 1
	colRateValue   = 2
	colRateDefault = 3
)

var (
	accountHeader  = []string{"account_id", "name", "type", "opening_balance", "archived"}
	categoryHeader = []string{"category_id", "code", "name", "type", "report", "archived"}
	taxRateHeader  = []string{"tax_rate_id", "name", "rate", "default"}
)

// readRecords reads a CSV file with a header row and returns the data rows.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func writeRecords(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

func parseID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return id, nil
}

func parseBool(field, s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return b, nil
}

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader, businessID int64) ([]model.Account, error) {
	records, err := readRecords(r, accountFields)
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	var accounts []model.Account
	for i, rec := range records {
		a, err := unmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("accounts row %d: %w", i+2, err)
		}
		a.BusinessID = businessID
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func unmarshalAccount(rec []string) (model.Account, error) {
	id, err := parseID("account_id", rec[colAcctID])
	if err != nil {
		return model.Account{}, err
	}
	typ := model.AccountType(rec[colAcctType])
	if !typ.Valid() {
		return model.Account{}, fmt.Errorf("unknown account type %q", rec[colAcctType])
	}
	opening := money.Zero()
	if rec[colAcctOpening] != "" {
		opening, err = money.Parse(rec[colAcctOpening])
		if err != nil {
			return model.Account{}, fmt.Errorf("opening_balance: %w", err)
		}
	}
	archived, err := parseBool("archived", rec[colAcctArchived])
	if err != nil {
		return model.Account{}, err
	}
	return model.Account{
		ID:             id,
		Name:           rec[colAcctName],
		Type:           typ,
		OpeningBalance: opening,
		Archived:       archived,
	}, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		row := make([]string, accountFields)
		row[colAcctID] = strconv.FormatInt(a.ID, 10)
		row[colAcctName] = a.Name
		row[colAcctType] = string(a.Type)
		row[colAcctOpening] = money.Format(a.OpeningBalance)
		row[colAcctArchived] = strconv.FormatBool(a.Archived)
		rows = append(rows, row)
	}
	return writeRecords(w, accountHeader, rows)
}

// ReadCategories reads categories.csv.
func ReadCategories(r io.Reader, businessID int64) ([]model.Category, error) {
	records, err := readRecords(r, categoryFields)
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}
	seen := make(map[string]bool)
	var cats []model.Category
	for i, rec := range records {
		id, err := parseID("category_id", rec[colCatID])
		if err != nil {
			return nil, fmt.Errorf("categories row %d: %w", i+2, err)
		}
		code := rec[colCatCode]
		if seen[code] {
			return nil, fmt.Errorf("categories row %d: duplicate code %q", i+2, code)
		}
		seen[code] = true
		typ := model.CategoryType(rec[colCatType])
		switch typ {
		case model.CategoryTypeIncome, model.CategoryTypeCOGS, model.CategoryTypeExpense:
		default:
			return nil, fmt.Errorf("categories row %d: unknown category type %q", i+2, rec[colCatType])
		}
		archived, err := parseBool("archived", rec[colCatArchived])
		if err != nil {
			return nil, fmt.Errorf("categories row %d: %w", i+2, err)
		}
		cats = append(cats, model.Category{
			ID:         id,
			BusinessID: businessID,
			Code:       code,
			Name:       rec[colCatName],
			Type:       typ,
			Report:     model.ReportType(rec[colCatReport]),
			Archived:   archived,
		})
	}
	return cats, nil
}

// WriteCategories writes categories.csv.
func WriteCategories(w io.Writer, cats []model.Category) error {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		row := make([]string, categoryFields)
		row[colCatID] = strconv.FormatInt(c.ID, 10)
		row[colCatCode] = c.Code
		row[colCatName] = c.Name
		row[colCatType] = string(c.Type)
		row[colCatReport] = string(c.Report)
		row[colCatArchived] = strconv.FormatBool(c.Archived)
		rows = append(rows, row)
	}
	return writeRecords(w, categoryHeader, rows)
}

// ReadTaxRates reads tax-rates.csv. Rates must lie in [0, 1).
func ReadTaxRates(r io.Reader, businessID int64) ([]model.TaxRate, error) {
	records, err := readRecords(r, taxRateFields)
	if err != nil {
		return nil, fmt.Errorf("reading tax rates CSV: %w", err)
	}
	var rates []model.TaxRate
	for i, rec := range records {
		id, err := parseID("tax_rate_id", rec[colRateID])
		if err != nil {
			return nil, fmt.Errorf("tax rates row %d: %w", i+2, err)
		}
		rate, err := decimal.NewFromString(rec[colRateValue])
		if err != nil {
			return nil, fmt.Errorf("tax rates row %d: parsing rate %q: %w", i+2, rec[colRateValue], err)
		}
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("tax rates row %d: %w", i+2, model.ErrRateOutOfRange)
		}
		def, err := parseBool("default", rec[colRateDefault])
		if err != nil {
			return nil, fmt.Errorf("tax rates row %d: %w", i+2, err)
		}
		rates = append(rates, model.TaxRate{
			ID:         id,
			BusinessID: businessID,
			Name:       rec[colRateName],
			Rate:       rate,
			Default:    def,
		})
	}
	return rates, nil
}

// WriteTaxRates writes tax-rates.csv.
func WriteTaxRates(w io.Writer, rates []model.TaxRate) error {
	rows := make([][]string, 0, len(rates))
	for _, r := range rates {
		row := make([]string, taxRateFields)
		row[colRateID] = strconv.FormatInt(r.ID, 10)
		row[colRateName] = r.Name
		row[colRateValue] = r.Rate.String()
		row[colRateDefault] = strconv.FormatBool(r.Default)
		rows = append(rows, row)
	}
	return writeRecords(w, taxRateHeader, rows)
}

func appendRecords(w io.Writer, rows [][]string) error {
	return csv.NewWriter(w).WriteAll(rows)
}
