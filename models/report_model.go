package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodBucket holds aggregated sales for one calendar period.
type PeriodBucket struct {
	Period     string          `json:"period"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

// ForecastResult is the output of one forecast estimation.
type ForecastResult struct {
	AverageRevenue   decimal.Decimal `json:"averageRevenue"`
	SeasonalFactor   decimal.Decimal `json:"seasonalFactor"`
	PredictedRevenue decimal.Decimal `json:"predictedRevenue"`
	Confidence       float64         `json:"confidence"`
	SampleSize       int             `json:"sampleSize"`
	SameMonthSamples int             `json:"sameMonthSamples"`
}

// SalesReportResponse is returned by the period sales report endpoint.
type SalesReportResponse struct {
	GroupBy    string          `json:"groupBy"`
	StartDate  time.Time       `json:"startDate"`
	EndDate    time.Time       `json:"endDate"`
	Buckets    []PeriodBucket  `json:"buckets"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	SaleCount  int             `json:"saleCount"`
}

// AiAnalysis contains the qualitative insights from the Gemini model.
type AiAnalysis struct {
	Summary         string   `json:"summary"`
	PositiveFactors []string `json:"positive_factors"`
	NegativeFactors []string `json:"negative_factors"`
}

// SalesForecastResponse is the complete structure for the sales forecast API response.
type SalesForecastResponse struct {
	ReportName     string         `json:"reportName"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	ItemID         string         `json:"itemId"`
	ShopID         string         `json:"shopId,omitempty"`
	LookbackDays   int            `json:"lookbackDays"`
	Forecast       ForecastResult `json:"forecast"`
	MonthlyHistory []PeriodBucket `json:"monthlyHistory"`
	AiAnalysis     *AiAnalysis    `json:"aiAnalysis,omitempty"`
}
