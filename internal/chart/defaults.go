package chart

import (
	"fmt"

	"github.com/cleared-dev/cashbook/internal/model"
)

// DefaultChart returns the reference chart for a new business: head_1..head_5
// income, head_6..head_11 COGS, head_12..head_26 expenses, all on the P&L.
func DefaultChart(businessID int64) []model.Category {
	var cats []model.Category
	add := func(n int, t model.CategoryType, name string) {
		cats = append(cats, model.Category{
			ID:         int64(n),
			BusinessID: businessID,
			Code:       fmt.Sprintf("head_%d", n),
			Name:       name,
			Type:       t,
			Report:     model.ReportPL,
		})
	}
	for i := 1; i <= 5; i++ {
		add(i, model.CategoryTypeIncome, fmt.Sprintf("Income Category %d", i))
	}
	for i := 6; i <= 11; i++ {
		add(i, model.CategoryTypeCOGS, fmt.Sprintf("COGS Category %d", i-5))
	}
	for i := 12; i <= 26; i++ {
		add(i, model.CategoryTypeExpense, fmt.Sprintf("Expense Category %d", i-11))
	}
	return cats
}
