package export

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbook/internal/reports"
)

// PLTable lays out a P&L with one row per category code seen in the year.
func PLTable(r *reports.PLReport) Table {
	t := Table{Name: "P&L"}
	t.row(titleRow("P&L Report", r.Year, r.Currency)...)
	t.blank()
	t.row(monthHeader("Category", "YTD")...)

	section := func(title, total string, pick func(p reports.PLPeriod) reports.Section, extra func()) {
		t.row(title)
		for _, code := range pick(r.YTD).Codes() {
			t.amounts(code, func(m int) decimal.Decimal { return pick(r.Month(m)).Amount(code) }, pick(r.YTD).Amount(code))
		}
		if extra != nil {
			extra()
		}
		t.amounts(total, func(m int) decimal.Decimal { return pick(r.Month(m)).Total }, pick(r.YTD).Total)
		t.blank()
	}

	section("INCOME", "Total Income", func(p reports.PLPeriod) reports.Section { return p.Income }, nil)
	section("COGS", "Total COGS", func(p reports.PLPeriod) reports.Section { return p.COGS.Section }, func() {
		t.amounts("Inventory Adjustment", func(m int) decimal.Decimal { return r.Month(m).COGS.InventoryAdjustment }, r.YTD.COGS.InventoryAdjustment)
	})
	t.amounts("Gross Profit", func(m int) decimal.Decimal { return r.Month(m).GrossProfit }, r.YTD.GrossProfit)
	t.blank()
	section("EXPENSES", "Total Expenses", func(p reports.PLPeriod) reports.Section { return p.Expenses }, nil)
	t.amounts("Net Profit", func(m int) decimal.Decimal { return r.Month(m).NetProfit }, r.YTD.NetProfit)
	return t
}

// BalanceSheetTable lays out the twelve month-end snapshots and their checks.
func BalanceSheetTable(r *reports.BSReport) Table {
	t := Table{Name: "Balance Sheet"}
	t.row(titleRow("Balance Sheet Report", r.Year, r.Currency)...)
	t.blank()
	t.row(monthHeader("Item")...)

	snap := func(label string, pick func(s reports.BSSnapshot) decimal.Decimal) {
		t.amounts(label, func(m int) decimal.Decimal { return pick(r.Month(m)) })
	}

	t.row("ASSETS")
	snap("Bank Accounts", func(s reports.BSSnapshot) decimal.Decimal { return s.Assets.BankAccounts.Total })
	snap("Inventory", func(s reports.BSSnapshot) decimal.Decimal { return s.Assets.Inventory })
	snap("Asset Purchases", func(s reports.BSSnapshot) decimal.Decimal { return s.Assets.AssetPurchases })
	snap("Total Assets", func(s reports.BSSnapshot) decimal.Decimal { return s.Assets.Total })
	t.blank()

	t.row("LIABILITIES")
	snap("Credit Cards", func(s reports.BSSnapshot) decimal.Decimal { return s.Liabilities.CreditCards.Total })
	snap("Loans (Net)", func(s reports.BSSnapshot) decimal.Decimal { return s.Liabilities.Loans.Net })
	snap("Tax Payable", func(s reports.BSSnapshot) decimal.Decimal { return s.Liabilities.TaxPayable.Total })
	snap("Total Liabilities", func(s reports.BSSnapshot) decimal.Decimal { return s.Liabilities.Total })
	t.blank()

	t.row("EQUITY")
	snap("Capital", func(s reports.BSSnapshot) decimal.Decimal { return s.Equity.Capital })
	snap("Retained Earnings", func(s reports.BSSnapshot) decimal.Decimal { return s.Equity.RetainedEarnings })
	snap("Current Year Profit", func(s reports.BSSnapshot) decimal.Decimal { return s.Equity.CurrentYearProfit })
	snap("Drawings", func(s reports.BSSnapshot) decimal.Decimal { return s.Equity.Drawings })
	snap("Total Equity", func(s reports.BSSnapshot) decimal.Decimal { return s.Equity.Total })
	t.blank()

	t.row("VALIDATION")
	t.amounts("Net Assets (A - L)", func(m int) decimal.Decimal { return r.Validation[m-1].NetAssets })
	t.amounts("Equity", func(m int) decimal.Decimal { return r.Validation[m-1].Equity })
	balanced := []string{"Balanced?"}
	for _, c := range r.Validation {
		balanced = append(balanced, yesNo(c.Balanced))
	}
	t.row(balanced...)
	return t
}

// TaxTable lays out the monthly sales tax position with an annual total.
func TaxTable(r *reports.TaxReport) Table {
	t := Table{Name: "Sales Tax"}
	t.row(titleRow("Sales Tax Report", r.Year, r.Currency)...)
	t.blank()
	t.row(monthHeader("Item", "Annual Total")...)

	t.amounts("Tax Collected (from income)", func(m int) decimal.Decimal { return r.Month(m).Collected }, r.Summary.Collected)
	t.amounts("Tax Paid (from expenses)", func(m int) decimal.Decimal { return r.Month(m).Paid }, r.Summary.Paid)
	t.amounts("Tax Payments to Authorities", func(m int) decimal.Decimal { return r.Month(m).Payments }, r.Summary.Payments)
	t.blank()
	t.amounts("Net Tax Payable/(Refundable)", func(m int) decimal.Decimal { return r.Month(m).NetPayable }, r.Summary.NetPayable)
	t.blank()
	t.row("Note: Positive values = payable to authorities")
	t.row("       Negative values = refundable from authorities")
	return t
}

// BalancesTable lists running balances per account.
func BalancesTable(balances []reports.AccountBalance) Table {
	t := Table{Name: "Balances"}
	t.row("Account Balances")
	t.blank()
	t.row("Account", "Type", "Opening", "In", "Out", "Current")
	for _, b := range balances {
		t.row(b.Name, string(b.Type), fmtAmount(b.Opening), fmtAmount(b.TotalIn), fmtAmount(b.TotalOut), fmtAmount(b.Current))
	}
	return t
}
