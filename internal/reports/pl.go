package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// Section is a category-grouped total. ByCategory is sparse: a category with
// no activity in the period is absent.
type Section struct {
	Total      decimal.Decimal            `json:"total"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
}

func newSection() Section {
	return Section{Total: money.Zero(), ByCategory: make(map[string]decimal.Decimal)}
}

func (s *Section) add(code string, amount decimal.Decimal) {
	s.Total = s.Total.Add(amount)
	if cur, ok := s.ByCategory[code]; ok {
		s.ByCategory[code] = cur.Add(amount)
		return
	}
	s.ByCategory[code] = amount
}

func (s *Section) merge(o Section) {
	s.Total = s.Total.Add(o.Total)
	for code, amount := range o.ByCategory {
		if cur, ok := s.ByCategory[code]; ok {
			s.ByCategory[code] = cur.Add(amount)
		} else {
			s.ByCategory[code] = amount
		}
	}
}

// Codes returns the category codes present in the section, sorted.
func (s Section) Codes() []string {
	codes := make([]string, 0, len(s.ByCategory))
	for code := range s.ByCategory {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Amount returns the amount for code, or 0.00 when absent.
func (s Section) Amount(code string) decimal.Decimal {
	if a, ok := s.ByCategory[code]; ok {
		return a
	}
	return money.Zero()
}

// COGSSection adds the inventory adjustment, which is always zero until
// inventory is tracked.
type COGSSection struct {
	Section
	InventoryAdjustment decimal.Decimal `json:"inventory_adjustment"`
}

// PLPeriod is the P&L of one month or of the year to date.
type PLPeriod struct {
	Income      Section         `json:"income"`
	COGS        COGSSection     `json:"cogs"`
	Expenses    Section         `json:"expenses"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}

func newPLPeriod() PLPeriod {
	return PLPeriod{
		Income:      newSection(),
		COGS:        COGSSection{Section: newSection(), InventoryAdjustment: money.Zero()},
		Expenses:    newSection(),
		GrossProfit: money.Zero(),
		NetProfit:   money.Zero(),
	}
}

func (p *PLPeriod) merge(o PLPeriod) {
	p.Income.merge(o.Income)
	p.COGS.merge(o.COGS.Section)
	p.COGS.InventoryAdjustment = p.COGS.InventoryAdjustment.Add(o.COGS.InventoryAdjustment)
	p.Expenses.merge(o.Expenses)
	p.GrossProfit = p.GrossProfit.Add(o.GrossProfit)
	p.NetProfit = p.NetProfit.Add(o.NetProfit)
}

// PLReport is the Profit & Loss statement of one calendar year.
type PLReport struct {
	BusinessID int64        `json:"business_id"`
	Year       int          `json:"year"`
	Currency   string       `json:"currency"`
	Months     [12]PLPeriod `json:"months"`
	YTD        PLPeriod     `json:"ytd"`
}

// Month returns the P&L of month m (1..12).
func (r *PLReport) Month(m int) PLPeriod {
	return r.Months[m-1]
}

// ProfitAndLoss aggregates income, COGS, and expenses per month of year and
// for the year to date.
func ProfitAndLoss(l *model.Ledger, year int) *PLReport {
	ix := newIndex(l)
	r := &PLReport{
		BusinessID: l.Business.ID,
		Year:       year,
		Currency:   l.Business.CurrencyOrDefault(),
		YTD:        newPLPeriod(),
	}
	for m := 1; m <= 12; m++ {
		p := ix.profitAndLoss(model.MonthPeriod(year, m))
		r.Months[m-1] = p
		r.YTD.merge(p)
	}
	return r
}

// NetProfit returns income - COGS - expenses for lines dated inside p.
func NetProfit(l *model.Ledger, p model.Period) decimal.Decimal {
	return newIndex(l).profitAndLoss(p).NetProfit
}

func (ix *index) profitAndLoss(p model.Period) PLPeriod {
	out := newPLPeriod()
	for _, ps := range ix.postings {
		if !p.Contains(ps.txn.Date) {
			continue
		}
		typ, code, ok := ix.chart.TypeOf(*ps.line)
		if !ok {
			continue
		}
		switch typ {
		case model.CategoryTypeIncome:
			out.Income.add(code, ps.line.Amount)
		case model.CategoryTypeCOGS:
			out.COGS.add(code, ps.line.Amount)
		case model.CategoryTypeExpense:
			out.Expenses.add(code, ps.line.Amount)
		}
	}
	out.COGS.Total = out.COGS.Total.Add(out.COGS.InventoryAdjustment)
	out.GrossProfit = out.Income.Total.Sub(out.COGS.Total)
	out.NetProfit = out.GrossProfit.Sub(out.Expenses.Total)
	return out
}
