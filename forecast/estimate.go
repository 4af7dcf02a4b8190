package forecast

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"retailforecast/models"
)

// Clock supplies the current time to callers that need a forecast "now".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the instant c was built from.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// EstimateForecast computes level, seasonality and confidence over a
// historical subset of sales. now selects the month used for the seasonal
// factor; calendar months are compared in UTC.
func EstimateForecast(records []models.SaleRecord, now time.Time) (models.ForecastResult, error) {
	if len(records) == 0 {
		return models.ForecastResult{}, ErrInsufficientData
	}
	if err := validate(records); err != nil {
		return models.ForecastResult{}, err
	}

	avg := meanRevenue(records)
	if avg.IsZero() {
		return models.ForecastResult{}, ErrZeroAverage
	}

	factor, sameMonth := seasonalFactor(records, avg, now.UTC().Month())

	return models.ForecastResult{
		AverageRevenue:   avg,
		SeasonalFactor:   factor,
		PredictedRevenue: avg.Mul(factor).Round(2),
		Confidence:       confidence(records, avg),
		SampleSize:       len(records),
		SameMonthSamples: sameMonth,
	}, nil
}

func meanRevenue(records []models.SaleRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.TotalAmount)
	}
	return sum.Div(decimal.NewFromInt(int64(len(records))))
}

// seasonalFactor is the ratio of the mean revenue of sales made in month
// (any year) to the overall mean. It is exactly 1 when no sale falls in month.
func seasonalFactor(records []models.SaleRecord, avg decimal.Decimal, month time.Month) (decimal.Decimal, int) {
	same := make([]models.SaleRecord, 0, len(records))
	for _, r := range records {
		if r.SaleDate.UTC().Month() == month {
			same = append(same, r)
		}
	}
	if len(same) == 0 {
		return decimal.NewFromInt(1), 0
	}
	return meanRevenue(same).Div(avg), len(same)
}

// confidence maps the coefficient of variation to a 0-100 score using the
// sample standard deviation. Fewer than two sales give 0.
func confidence(records []models.SaleRecord, avg decimal.Decimal) float64 {
	n := len(records)
	if n < 2 {
		return 0
	}
	sq := decimal.Zero
	for _, r := range records {
		d := r.TotalAmount.Sub(avg)
		sq = sq.Add(d.Mul(d))
	}
	variance := sq.Div(decimal.NewFromInt(int64(n - 1)))
	stdDev := math.Sqrt(variance.InexactFloat64())

	score := 100 * (1 - stdDev/avg.InexactFloat64())
	return math.Max(0, math.Min(100, score))
}
