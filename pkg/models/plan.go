package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryUnlimited    Category = "unlimited"
	CategoryDataOnly     Category = "data_only"
	CategoryLongValidity Category = "long_validity"
)

// PrepaidCategories is the enumeration order used whenever prepaid plans are flattened.
var PrepaidCategories = []Category{CategoryUnlimited, CategoryDataOnly, CategoryLongValidity}

type Plan struct {
	PlanID      string          `json:"plan_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Validity    string          `json:"validity,omitempty"` // Prepaid only; postpaid plans renew monthly
	Data        string          `json:"data"`
	Unlimited5G bool            `json:"unlimited_5g,omitempty"`
	Calls       string          `json:"calls"`
	SMS         string          `json:"sms"`
	OTT         []string        `json:"ott"`
	Popular     bool            `json:"popular"`
	Rollover    bool            `json:"rollover,omitempty"`
	Connections int             `json:"connections,omitempty"`
}

// Catalog is the persisted plan tree.
type Catalog struct {
	Prepaid  map[Category][]Plan `json:"prepaid"`
	Postpaid []Plan              `json:"postpaid"`
}

// Categories returns the prepaid categories present in c: the known ones in
// enumeration order, then any others sorted by name.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.Prepaid))
	known := make(map[Category]bool, len(PrepaidCategories))
	for _, cat := range PrepaidCategories {
		known[cat] = true
		if _, ok := c.Prepaid[cat]; ok {
			out = append(out, cat)
		}
	}
	var extra []Category
	for cat := range c.Prepaid {
		if !known[cat] {
			extra = append(extra, cat)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
