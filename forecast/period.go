// Package forecast aggregates sales history by calendar period and estimates
// a seasonal, per-sale revenue forecast. All functions are pure.
package forecast

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retailforecast/models"
)

// Granularity is the calendar period used to bucket sales.
type Granularity string

const (
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// ParseGranularity accepts "month", "quarter" or "year" in any case.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Month, Quarter, Year:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// PeriodLabel returns the bucket key for t. Labels sort lexicographically
// in chronological order: "2024-01", "2024-Q1", "2024".
func PeriodLabel(t time.Time, g Granularity) (string, error) {
	t = t.UTC()
	switch g {
	case Month:
		return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())), nil
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1), nil
	case Year:
		return fmt.Sprintf("%04d", t.Year()), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, string(g))
	}
}

// AggregateByPeriod sums sale revenue per calendar period and returns one
// bucket per period present in records, sorted by label.
func AggregateByPeriod(records []models.SaleRecord, g Granularity) ([]models.PeriodBucket, error) {
	if _, err := PeriodLabel(time.Time{}, g); err != nil {
		return nil, err
	}
	if err := validate(records); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(records))
	buckets := make([]models.PeriodBucket, 0)
	for _, r := range records {
		label, _ := PeriodLabel(r.SaleDate, g)
		if i, ok := index[label]; ok {
			buckets[i].TotalSales = buckets[i].TotalSales.Add(r.TotalAmount)
			continue
		}
		index[label] = len(buckets)
		buckets = append(buckets, models.PeriodBucket{Period: label, TotalSales: r.TotalAmount})
	}

	sortBuckets(buckets)
	return buckets, nil
}

// MergeBuckets combines two aggregation results of the same granularity,
// adding revenue where labels match. Inputs are not modified.
func MergeBuckets(a, b []models.PeriodBucket) []models.PeriodBucket {
	index := make(map[string]int, len(a)+len(b))
	merged := make([]models.PeriodBucket, 0, len(a)+len(b))
	for _, src := range [][]models.PeriodBucket{a, b} {
		for _, bk := range src {
			if i, ok := index[bk.Period]; ok {
				merged[i].TotalSales = merged[i].TotalSales.Add(bk.TotalSales)
				continue
			}
			index[bk.Period] = len(merged)
			merged = append(merged, bk)
		}
	}
	sortBuckets(merged)
	return merged
}

// TotalOf sums the revenue of all buckets.
func TotalOf(buckets []models.PeriodBucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.TotalSales)
	}
	return total
}

func sortBuckets(buckets []models.PeriodBucket) {
	slices.SortFunc(buckets, func(x, y models.PeriodBucket) int {
		return strings.Compare(x.Period, y.Period)
	})
}
