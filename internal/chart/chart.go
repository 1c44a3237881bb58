// Package chart classifies a business's categories by report affiliation and
// P&L type.
package chart

import (
	"sort"

	"github.com/cleared-dev/cashbook/internal/model"
)

// Chart provides in-memory lookup over a business's categories.
type Chart struct {
	categories []model.Category
	byID       map[int64]model.Category
	byCode     map[string]model.Category
	byType     map[model.CategoryType][]model.Category
}

// New creates a Chart from a slice of categories. The category set is taken
// as given; no counts are assumed.
func New(categories []model.Category) *Chart {
	c := &Chart{
		categories: categories,
		byID:       make(map[int64]model.Category, len(categories)),
		byCode:     make(map[string]model.Category, len(categories)),
		byType:     make(map[model.CategoryType][]model.Category),
	}
	for _, cat := range categories {
		c.byID[cat.ID] = cat
		c.byCode[cat.Code] = cat
		c.byType[cat.Type] = append(c.byType[cat.Type], cat)
	}
	return c
}

// All returns all categories.
func (c *Chart) All() []model.Category {
	return c.categories
}

// Get returns a category by ID.
func (c *Chart) Get(id int64) (model.Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// ByCode returns a category by its head code.
func (c *Chart) ByCode(code string) (model.Category, bool) {
	cat, ok := c.byCode[code]
	return cat, ok
}

// Exists reports whether a category ID exists.
func (c *Chart) Exists(id int64) bool {
	_, ok := c.byID[id]
	return ok
}

// ByType returns all categories of the given type.
func (c *Chart) ByType(t model.CategoryType) []model.Category {
	return c.byType[t]
}

// ByReport returns all categories reported on the given statement.
func (c *Chart) ByReport(r model.ReportType) []model.Category {
	var result []model.Category
	for _, cat := range c.categories {
		if cat.Report == r {
			result = append(result, cat)
		}
	}
	return result
}

// TypeOf returns the P&L type of the category referenced by a line. ok is
// false for special-type lines and for unknown categories.
func (c *Chart) TypeOf(line model.TransactionLine) (model.CategoryType, string, bool) {
	if line.CategoryID == 0 {
		return "", "", false
	}
	cat, ok := c.byID[line.CategoryID]
	if !ok {
		return "", "", false
	}
	return cat.Type, cat.Code, true
}

// Codes returns the category codes of the given type, sorted.
func (c *Chart) Codes(t model.CategoryType) []string {
	codes := make([]string, 0, len(c.byType[t]))
	for _, cat := range c.byType[t] {
		codes = append(codes, cat.Code)
	}
	sort.Strings(codes)
	return codes
}
