package forecast

import (
	"time"

	"github.com/shopspring/decimal"

	"retailforecast/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sale(id, date, amount string, items ...string) models.SaleRecord {
	refs := make([]models.ProductRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, models.ProductRef{InventoryItemID: it, QuantitySold: 1})
	}
	return models.SaleRecord{
		ID:          id,
		SaleDate:    day(date),
		TotalAmount: decimal.RequireFromString(amount),
		Items:       refs,
	}
}
