// Package importer reads sales exports for offline forecasting.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"retailforecast/models"
	"retailforecast/utils"
)

var expectedHeader = []string{"sale_id", "sale_date", "total_amount", "item_ids"}

// LoadSalesFile reads a sales CSV export from disk.
func LoadSalesFile(filename string) ([]models.SaleRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open sales file %s: %w", filename, err)
	}
	defer file.Close()

	return LoadSales(file)
}

// LoadSales parses rows of sale_id,sale_date,total_amount,item_ids where
// item_ids is a '|' separated list.
func LoadSales(r io.Reader) ([]models.SaleRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read sales CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("sales CSV must have a header row")
	}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("sales CSV header mismatch. Expected: %v, Got: %v", expectedHeader, records[0])
	}

	sales := make([]models.SaleRecord, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("sales CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}
		sale, err := parseSale(record)
		if err != nil {
			return nil, fmt.Errorf("sales CSV row %d: %w", i+2, err)
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func parseSale(record []string) (models.SaleRecord, error) {
	date, err := utils.ParseDate(strings.TrimSpace(record[1]))
	if err != nil {
		return models.SaleRecord{}, fmt.Errorf("invalid sale_date %q: %w", record[1], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return models.SaleRecord{}, fmt.Errorf("invalid total_amount %q: %w", record[2], err)
	}
	if amount.IsNegative() {
		return models.SaleRecord{}, fmt.Errorf("total_amount cannot be negative: %s", amount)
	}

	items := make([]models.ProductRef, 0)
	for _, id := range strings.Split(record[3], "|") {
		if id = strings.TrimSpace(id); id != "" {
			items = append(items, models.ProductRef{InventoryItemID: id, QuantitySold: 1})
		}
	}

	return models.SaleRecord{
		ID:          strings.TrimSpace(record[0]),
		SaleDate:    date,
		TotalAmount: amount,
		Items:       items,
	}, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.TrimSpace(strings.ToLower(actual[i])) != col {
			return false
		}
	}
	return true
}
