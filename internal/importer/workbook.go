package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// Sheet names of the workbook template.
const (
	SheetBusiness   = "Business Config"
	SheetAccounts   = "Accounts"
	SheetCategories = "Categories"
	SheetTaxRates   = "Tax Rates"
)

// Rows 1-3 of every sheet hold the title and column headers.
const firstDataRow = 4

const (
	maxConfigRow  = 19
	maxEntityRows = 1000
	maxMonthRows  = 10000
)

// Transaction sheet columns, zero-based.
const (
	colDate = iota
	colAccount
	colPayee
	colDescription
	colReference
	colDirection
	colGross
	colTaxRate
	colCategories
	colSpecial
	colAmounts
	colReconciled
)

// ErrMissingSheet is returned when a required sheet is absent.
var ErrMissingSheet = errors.New("missing sheet")

// MonthSheet returns the transaction sheet name of month m.
func MonthSheet(m int) string {
	return "Month" + strconv.Itoa(m)
}

// Workbook is the content of an imported template. Entity slices are nil
// when their sheet is missing; transactions then resolve against the base
// ledger passed to ReadWorkbook.
type Workbook struct {
	BusinessName string
	Currency     string
	Accounts     []model.Account
	Categories   []model.Category
	TaxRates     []model.TaxRate
	Transactions []model.NewTransactionParams
	Warnings     []string
}

func (w *Workbook) warnf(format string, args ...any) {
	w.Warnings = append(w.Warnings, fmt.Sprintf(format, args...))
}

// ReadWorkbook parses an Excel template. Bad rows are skipped with a warning;
// only an unreadable file or a missing Business Config sheet is an error.
func ReadWorkbook(r io.Reader, base *model.Ledger) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		sheets[name] = true
	}
	if !sheets[SheetBusiness] {
		return nil, fmt.Errorf("%w %q", ErrMissingSheet, SheetBusiness)
	}

	rows := func(sheet string) ([][]string, error) {
		rs, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if len(rs) < firstDataRow-1 {
			return nil, nil
		}
		return rs[firstDataRow-1:], nil
	}

	w := &Workbook{}
	data, err := rows(SheetBusiness)
	if err != nil {
		return nil, err
	}
	w.readBusiness(data)

	for _, s := range []struct {
		name string
		read func([][]string)
	}{
		{SheetAccounts, w.readAccounts},
		{SheetCategories, w.readCategories},
		{SheetTaxRates, w.readTaxRates},
	} {
		if !sheets[s.name] {
			w.warnf("missing %q sheet, keeping existing entries", s.name)
			continue
		}
		data, err := rows(s.name)
		if err != nil {
			return nil, err
		}
		s.read(data)
	}

	ix := w.newResolver(base)
	for m := 1; m <= 12; m++ {
		name := MonthSheet(m)
		if !sheets[name] {
			continue
		}
		data, err := rows(name)
		if err != nil {
			return nil, err
		}
		w.readTransactions(name, data, ix)
	}
	return w, nil
}

func (w *Workbook) readBusiness(rows [][]string) {
	w.BusinessName = "Imported Business"
	w.Currency = model.DefaultCurrency
	for i, row := range rows {
		if i+firstDataRow > maxConfigRow {
			break
		}
		field, value := cell(row, 0), cell(row, 1)
		if field == "" || value == "" {
			continue
		}
		switch field {
		case "Business Name":
			w.BusinessName = value
		case "Currency":
			w.Currency = strings.ToUpper(value)
		case "Fiscal Year Start Month":
			if m, err := strconv.Atoi(value); err != nil || m != 1 {
				w.warnf("fiscal year start month %q ignored, reports use calendar years", value)
			}
		}
	}
}

func (w *Workbook) readAccounts(rows [][]string) {
	w.Accounts = []model.Account{}
	seen := make(map[string]bool)
	for i, row := range rows {
		n := i + firstDataRow
		name := cell(row, 0)
		if name == "" {
			break
		}
		if len(w.Accounts) == maxEntityRows {
			w.warnf("%s: import stopped at %d rows", SheetAccounts, maxEntityRows)
			break
		}
		if seen[name] {
			w.warnf("%s row %d: duplicate account %q, skipping", SheetAccounts, n, name)
			continue
		}
		typ := model.AccountType(cell(row, 1))
		if typ == "" {
			typ = model.AccountTypeBank
		}
		if !typ.Valid() {
			w.warnf("%s row %d: invalid account type %q, using bank", SheetAccounts, n, typ)
			typ = model.AccountTypeBank
		}
		opening, err := parseAmount(cell(row, 2))
		if err != nil {
			w.warnf("%s row %d: %v, using 0.00", SheetAccounts, n, err)
			opening = money.Zero()
		}
		seen[name] = true
		w.Accounts = append(w.Accounts, model.Account{
			ID:             int64(len(w.Accounts) + 1),
			Name:           name,
			Type:           typ,
			OpeningBalance: opening,
		})
	}
}

func (w *Workbook) readCategories(rows [][]string) {
	w.Categories = []model.Category{}
	seen := make(map[string]bool)
	for i, row := range rows {
		n := i + firstDataRow
		code := cell(row, 0)
		if code == "" {
			break
		}
		if len(w.Categories) == maxEntityRows {
			w.warnf("%s: import stopped at %d rows", SheetCategories, maxEntityRows)
			break
		}
		if seen[code] {
			w.warnf("%s row %d: duplicate code %q, skipping", SheetCategories, n, code)
			continue
		}
		name := cell(row, 1)
		if name == "" {
			name = "Category " + code
		}
		typ := model.CategoryType(cell(row, 2))
		switch typ {
		case model.CategoryTypeIncome, model.CategoryTypeCOGS, model.CategoryTypeExpense:
		case "":
			typ = model.CategoryTypeExpense
		default:
			w.warnf("%s row %d: invalid category type %q, using expense", SheetCategories, n, typ)
			typ = model.CategoryTypeExpense
		}
		report := model.ReportType(cell(row, 3))
		if report != model.ReportBS {
			report = model.ReportPL
		}
		seen[code] = true
		w.Categories = append(w.Categories, model.Category{
			ID:     int64(len(w.Categories) + 1),
			Code:   code,
			Name:   name,
			Type:   typ,
			Report: report,
		})
	}
}

func (w *Workbook) readTaxRates(rows [][]string) {
	w.TaxRates = []model.TaxRate{}
	for i, row := range rows {
		n := i + firstDataRow
		name := cell(row, 0)
		if name == "" {
			break
		}
		if len(w.TaxRates) == maxEntityRows {
			w.warnf("%s: import stopped at %d rows", SheetTaxRates, maxEntityRows)
			break
		}
		rate, err := decimal.NewFromString(cleanNumber(cell(row, 1)))
		if err != nil || rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			w.warnf("%s row %d: invalid tax rate %q, using 0", SheetTaxRates, n, cell(row, 1))
			rate = decimal.Zero
		}
		w.TaxRates = append(w.TaxRates, model.TaxRate{
			ID:   int64(len(w.TaxRates) + 1),
			Name: name,
			Rate: rate,
		})
	}
}

// resolver maps template names and codes to the entities transactions use.
type resolver struct {
	accounts   map[string]model.Account
	categories map[string]model.Category
	rates      map[string]model.TaxRate
}

func (w *Workbook) newResolver(base *model.Ledger) *resolver {
	accounts, cats, rates := w.Accounts, w.Categories, w.TaxRates
	if base != nil {
		if accounts == nil {
			accounts = base.Accounts
		}
		if cats == nil {
			cats = base.Categories
		}
		if rates == nil {
			rates = base.TaxRates
		}
	}
	ix := &resolver{
		accounts:   make(map[string]model.Account, len(accounts)),
		categories: make(map[string]model.Category, len(cats)),
		rates:      make(map[string]model.TaxRate, len(rates)),
	}
	for _, a := range accounts {
		ix.accounts[a.Name] = a
	}
	for _, c := range cats {
		ix.categories[c.Code] = c
	}
	for _, r := range rates {
		ix.rates[r.Name] = r
	}
	return ix
}

func (w *Workbook) readTransactions(sheet string, rows [][]string, ix *resolver) {
	for i, row := range rows {
		n := i + firstDataRow
		if blank(row, colDate, colCategories) {
			break
		}
		if i == maxMonthRows {
			w.warnf("%s: import stopped at %d rows", sheet, maxMonthRows)
			break
		}
		p, err := ix.params(row)
		if err != nil {
			w.warnf("%s row %d: %v, skipping", sheet, n, err)
			continue
		}
		for _, msg := range p.warnings {
			w.warnf("%s row %d: %s", sheet, n, msg)
		}
		w.Transactions = append(w.Transactions, p.NewTransactionParams)
	}
}

type rowParams struct {
	model.NewTransactionParams
	warnings []string
}

func (ix *resolver) params(row []string) (rowParams, error) {
	var p rowParams

	date, err := ParseDate(cell(row, colDate))
	if err != nil {
		return p, err
	}
	acct, ok := ix.accounts[cell(row, colAccount)]
	if !ok {
		return p, fmt.Errorf("unknown account %q", cell(row, colAccount))
	}
	dir := model.Direction(strings.ToLower(cell(row, colDirection)))
	if dir == "" {
		dir = model.DirectionOut
	}
	gross, err := parseAmount(cell(row, colGross))
	if err != nil {
		return p, err
	}
	if !gross.IsPositive() {
		return p, errors.New("amount must be positive")
	}

	rateValue := money.NoRate
	if name := cell(row, colTaxRate); name != "" {
		r, ok := ix.rates[name]
		if ok {
			p.TaxRate = &r
			rateValue = money.Rate(r.Rate)
		} else {
			p.warnings = append(p.warnings, fmt.Sprintf("unknown tax rate %q, importing without tax", name))
		}
	}
	_, net := money.Split(gross, rateValue)

	lines, warnings, err := ix.lines(row, net)
	if err != nil {
		return p, err
	}
	p.warnings = append(p.warnings, warnings...)
	if len(lines) == 0 {
		p.warnings = append(p.warnings, "no allocation, left unallocated")
	}

	p.AccountID = acct.ID
	p.Date = date
	p.Direction = dir
	p.Gross = gross
	p.Reconciled = parseYes(cell(row, colReconciled))
	p.Payee = cell(row, colPayee)
	p.Description = joinNonEmpty(cell(row, colDescription), cell(row, colReference))
	p.Lines = lines

	if _, err := model.NewTransaction(p.NewTransactionParams); err != nil {
		return p, err
	}
	return p, nil
}

// lines builds the allocation of one row. Category lines take the listed
// amounts, or split net evenly when none are given. A special type takes
// whatever net the category lines leave.
func (ix *resolver) lines(row []string, net decimal.Decimal) ([]model.TransactionLine, []string, error) {
	var (
		lines    []model.TransactionLine
		warnings []string
	)
	codes := splitList(cell(row, colCategories))
	var amounts []decimal.Decimal
	for _, s := range splitList(cell(row, colAmounts)) {
		a, err := parseAmount(s)
		if err != nil {
			return nil, nil, err
		}
		amounts = append(amounts, a)
	}
	if len(codes) > 0 && len(amounts) == 0 {
		amounts = money.Distribute(net, len(codes))
	}

	allocated := money.Zero()
	for i, code := range codes {
		cat, ok := ix.categories[code]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown category %q", code))
			continue
		}
		amount := amounts[min(i, len(amounts)-1)]
		allocated = allocated.Add(amount)
		lines = append(lines, model.TransactionLine{CategoryID: cat.ID, Amount: amount})
	}

	if s := cell(row, colSpecial); s != "" {
		special := model.SpecialType(strings.ToLower(s))
		rest := net.Sub(allocated)
		switch {
		case !special.Valid():
			warnings = append(warnings, fmt.Sprintf("unknown special type %q", s))
		case !rest.IsPositive():
			warnings = append(warnings, fmt.Sprintf("nothing left to allocate to %s", special))
		default:
			lines = append(lines, model.TransactionLine{SpecialType: special, Amount: rest})
		}
	}
	return lines, warnings, nil
}

// dateLayouts are tried in order after Excel serial numbers.
var dateLayouts = []string{time.DateOnly, "02.01.2006", "01/02/2006"}

// ParseDate accepts an Excel date serial, YYYY-MM-DD, DD.MM.YYYY, or
// MM/DD/YYYY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing date")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return model.Day(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = cleanNumber(s)
	if s == "" {
		return money.Zero(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", s)
	}
	return d.Round(2), nil
}

// cleanNumber strips thousands separators such as 1,234.50 and 1'234.50.
func cleanNumber(s string) string {
	return strings.NewReplacer(",", "", "'", "").Replace(strings.TrimSpace(s))
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// blank reports whether columns from..to of row are all empty.
func blank(row []string, from, to int) bool {
	for i := from; i <= to; i++ {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}
