package reports

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/model"
	"github.com/cleared-dev/cashbook/internal/money"
)

// TaxPeriod is the sales tax position of one month. NetPayable is positive
// when tax is owed and negative when refundable.
type TaxPeriod struct {
	Collected  decimal.Decimal `json:"tax_collected"`
	Paid       decimal.Decimal `json:"tax_paid"`
	Payments   decimal.Decimal `json:"tax_payments"`
	NetPayable decimal.Decimal `json:"net_tax_payable"`
}

func (p *TaxPeriod) merge(o TaxPeriod) {
	p.Collected = p.Collected.Add(o.Collected)
	p.Paid = p.Paid.Add(o.Paid)
	p.Payments = p.Payments.Add(o.Payments)
	p.NetPayable = p.NetPayable.Add(o.NetPayable)
}

type TaxReport struct {
	BusinessID int64         `json:"business_id"`
	Year       int           `json:"year"`
	Currency   string        `json:"currency"`
	Months     [12]TaxPeriod `json:"months"`
	Summary    TaxPeriod     `json:"summary"`
}

// Month returns the tax position of month m (1..12).
func (r *TaxReport) Month(m int) TaxPeriod {
	return r.Months[m-1]
}

// SalesTax computes tax collected, tax paid, and remittances per month.
//
// This formula is independent of the balance sheet's VAT payable, which
// counts tax on every OUT transaction and floors the result at zero.
func SalesTax(l *model.Ledger, year int) *TaxReport {
	ix := newIndex(l)
	r := &TaxReport{
		BusinessID: l.Business.ID,
		Year:       year,
		Currency:   l.Business.CurrencyOrDefault(),
		Summary:    zeroTaxPeriod(),
	}
	for m := 1; m <= 12; m++ {
		p := ix.salesTax(model.MonthPeriod(year, m))
		r.Months[m-1] = p
		r.Summary.merge(p)
	}
	return r
}

func zeroTaxPeriod() TaxPeriod {
	return TaxPeriod{Collected: money.Zero(), Paid: money.Zero(), Payments: money.Zero(), NetPayable: money.Zero()}
}

func (ix *index) salesTax(p model.Period) TaxPeriod {
	out := zeroTaxPeriod()
	ix.transactions(p, func(txn *model.Transaction) {
		switch {
		case txn.Direction == model.DirectionIn:
			out.Collected = out.Collected.Add(txn.Tax)
		case txn.Tax.IsPositive():
			out.Paid = out.Paid.Add(txn.Tax)
		}
	})
	out.Payments = ix.specialTotal(model.SpecialTaxPayment, p)
	out.NetPayable = out.Collected.Sub(out.Paid).Sub(out.Payments)
	return out
}
