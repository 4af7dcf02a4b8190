package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retailforecast/database"
	"retailforecast/forecast"
	"retailforecast/insights"
	"retailforecast/models"
	"retailforecast/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSales struct {
	records []models.SaleRecord
	err     error
	lastQ   database.SalesQuery
}

func (f *fakeSales) ListSales(_ context.Context, q database.SalesQuery) ([]models.SaleRecord, error) {
	f.lastQ = q
	return f.records, f.err
}

type fakeNarrator struct {
	analysis *models.AiAnalysis
	err      error
	calls    int
}

func (f *fakeNarrator) Narrate(_ context.Context, _ insights.ForecastContext) (*models.AiAnalysis, error) {
	f.calls++
	return f.analysis, f.err
}

var january = time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)

func saleOf(id, date, amount string, items ...string) models.SaleRecord {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	refs := make([]models.ProductRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, models.ProductRef{InventoryItemID: it, QuantitySold: 1})
	}
	return models.SaleRecord{ID: id, SaleDate: d, TotalAmount: decimal.RequireFromString(amount), Items: refs}
}

func reportApp(h *ReportHandler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "merchant-1")
		c.Locals("userRole", "merchant")
		return c.Next()
	})
	app.Get("/reports/sales", h.HandleGetSalesReport)
	app.Get("/reports/items/:itemId/history", h.HandleGetItemHistory)
	app.Get("/reports/forecast", h.HandleGetSalesForecast)
	return app
}

func doGet(t *testing.T, app *fiber.App, target string, out interface{}) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestSalesReport_GroupsByMonth(t *testing.T) {
	src := &fakeSales{records: []models.SaleRecord{
		saleOf("s1", "2024-01-05", "10", "a"),
		saleOf("s2", "2024-01-25", "20", "b"),
		saleOf("s3", "2023-12-24", "5.50", "a"),
	}}
	app := reportApp(NewReportHandler(src, nil, forecast.FixedClock(january), 365))

	var body struct {
		Success bool                       `json:"success"`
		Data    models.SalesReportResponse `json:"data"`
	}
	status := doGet(t, app, "/reports/sales?groupBy=month&startDate=2023-01-01&endDate=2024-01-31&shopId=shop-1", &body)

	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, body.Success)
	require.Len(t, body.Data.Buckets, 2)
	assert.Equal(t, "2023-12", body.Data.Buckets[0].Period)
	assert.Equal(t, "2024-01", body.Data.Buckets[1].Period)
	assert.True(t, body.Data.Buckets[1].TotalSales.Equal(decimal.NewFromInt(30)))
	assert.True(t, body.Data.GrandTotal.Equal(decimal.RequireFromString("35.5")))
	assert.Equal(t, 3, body.Data.SaleCount)

	assert.Equal(t, "merchant-1", src.lastQ.MerchantID)
	assert.Equal(t, "shop-1", src.lastQ.ShopID)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), src.lastQ.From)
}

func TestSalesReport_Defaults(t *testing.T) {
	src := &fakeSales{}
	app := reportApp(NewReportHandler(src, nil, forecast.FixedClock(january), 365))

	var body struct {
		Data models.SalesReportResponse `json:"data"`
	}
	status := doGet(t, app, "/reports/sales", &body)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "month", body.Data.GroupBy)
	assert.Empty(t, body.Data.Buckets)
	assert.Equal(t, january.AddDate(-1, 0, 0), src.lastQ.From)
	assert.Equal(t, january, src.lastQ.To)
}

func TestSalesReport_BadRequests(t *testing.T) {
	app := reportApp(NewReportHandler(&fakeSales{}, nil, forecast.FixedClock(january), 365))

	for _, target := range []string{
		"/reports/sales?groupBy=weekly",
		"/reports/sales?startDate=yesterday",
		"/reports/sales?endDate=31-01-2024",
		"/reports/sales?startDate=2024-02-01&endDate=2024-01-01",
	} {
		assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, target, nil), target)
	}
}

func TestSalesReport_RepositoryFailure(t *testing.T) {
	app := reportApp(NewReportHandler(&fakeSales{err: errors.New("db down")}, nil, forecast.FixedClock(january), 365))
	assert.Equal(t, fiber.StatusInternalServerError, doGet(t, app, "/reports/sales", nil))
}

func TestSalesReport_MalformedRecord(t *testing.T) {
	src := &fakeSales{records: []models.SaleRecord{saleOf("s1", "2024-01-05", "-10", "a")}}
	app := reportApp(NewReportHandler(src, nil, forecast.FixedClock(january), 365))
	assert.Equal(t, fiber.StatusInternalServerError, doGet(t, app, "/reports/sales", nil))
}

func TestItemHistory_Paginates(t *testing.T) {
	src := &fakeSales{records: []models.SaleRecord{
		saleOf("s1", "2024-01-01", "1", "apple"),
		saleOf("s2", "2024-01-02", "2", "pear"),
		saleOf("s3", "2024-01-03", "3", "apple"),
		saleOf("s4", "2024-01-04", "4", "apple", "pear"),
	}}
	app := reportApp(NewReportHandler(src, nil, forecast.FixedClock(january), 365))

	var body struct {
		Data struct {
			ItemID     string              `json:"itemId"`
			Sales      []models.SaleRecord `json:"sales"`
			Pagination utils.Pagination    `json:"pagination"`
		} `json:"data"`
	}
	status := doGet(t, app, "/reports/items/apple/history?page=2&pageSize=2", &body)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "apple", body.Data.ItemID)
	assert.Equal(t, "apple", src.lastQ.ItemID)
	assert.Equal(t, 3, body.Data.Pagination.TotalItems)
	assert.Equal(t, 2, body.Data.Pagination.TotalPages)
	require.Len(t, body.Data.Sales, 1)
	assert.Equal(t, "s4", body.Data.Sales[0].ID)
}

func TestItemHistory_OversizedPaging(t *testing.T) {
	src := &fakeSales{records: []models.SaleRecord{
		saleOf("s1", "2024-01-01", "1", "item-1"),
		saleOf("s2", "2024-01-02", "2", "item-1"),
	}}
	app := reportApp(NewReportHandler(src, nil, forecast.FixedClock(january), 365))

	var body struct {
		Data struct {
			Sales      []models.SaleRecord `json:"sales"`
			Pagination utils.Pagination    `json:"pagination"`
		} `json:"data"`
	}
	status := doGet(t, app, "/reports/items/item-1/history?page=2&pageSize=9223372036854775807", &body)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body.Data.Sales)
	assert.Equal(t, utils.MaxPageSize, body.Data.Pagination.PageSize)

	status = doGet(t, app, "/reports/items/item-1/history?page=9223372036854775807&pageSize=50", &body)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, body.Data.Sales)

	status = doGet(t, app, "/reports/items/item-1/history?page=1&pageSize=9223372036854775807", &body)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body.Data.Sales, 2)
}

type forecastBody struct {
	Success bool                         `json:"success"`
	Message string                       `json:"message"`
	Data    models.SalesForecastResponse `json:"data"`
}

func TestSalesForecast_JanuaryScenario(t *testing.T) {
	src := &fakeSales{records: []models.SaleRecord{
		saleOf("s1", "2024-01-15", "100", "item-1"),
		saleOf("s2", "2024-02-15", "200", "item-1"),
		saleOf("s3", "2024-01-20", "150", "item-1", "item-2"),
		saleOf("s4", "2024-01-21", "9999", "item-2"),
	}}
	app := reportApp(NewReportHandler(src, nil, forecast.FixedClock(january), 90))

	var body forecastBody
	status := doGet(t, app, "/reports/forecast?itemId=item-1", &body)

	require.Equal(t, fiber.StatusOK, status, body.Message)
	f := body.Data.Forecast
	assert.True(t, f.AverageRevenue.Equal(decimal.NewFromInt(150)))
	assert.True(t, f.PredictedRevenue.Equal(decimal.NewFromInt(125)))
	assert.InDelta(t, 66.67, f.Confidence, 0.01)
	assert.Equal(t, 3, f.SampleSize)
	assert.Len(t, body.Data.MonthlyHistory, 2)
	assert.Nil(t, body.Data.AiAnalysis)

	assert.Equal(t, january.AddDate(0, 0, -90), src.lastQ.From)
	assert.Equal(t, "item-1", src.lastQ.ItemID)
}

func TestSalesForecast_NoHistory(t *testing.T) {
	app := reportApp(NewReportHandler(&fakeSales{}, nil, forecast.FixedClock(january), 90))

	var body forecastBody
	status := doGet(t, app, "/reports/forecast?itemId=item-1", &body)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, body.Success)
}

func TestSalesForecast_RequiresItem(t *testing.T) {
	app := reportApp(NewReportHandler(&fakeSales{}, nil, forecast.FixedClock(january), 90))
	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/reports/forecast", nil))
}

func TestSalesForecast_WithInsights(t *testing.T) {
	src := &fakeSales{records: []models.SaleRecord{
		saleOf("s1", "2024-01-15", "100", "item-1"),
		saleOf("s2", "2024-01-16", "120", "item-1"),
	}}
	narrator := &fakeNarrator{analysis: &models.AiAnalysis{Summary: "Stable January demand"}}
	app := reportApp(NewReportHandler(src, narrator, forecast.FixedClock(january), 90))

	var body forecastBody
	require.Equal(t, fiber.StatusOK, doGet(t, app, "/reports/forecast?itemId=item-1&insights=true", &body))
	require.NotNil(t, body.Data.AiAnalysis)
	assert.Equal(t, "Stable January demand", body.Data.AiAnalysis.Summary)

	// Without the flag the narrator is not consulted.
	require.Equal(t, fiber.StatusOK, doGet(t, app, "/reports/forecast?itemId=item-1", nil))
	assert.Equal(t, 1, narrator.calls)
}

func TestSalesForecast_InsightsFailureKeepsForecast(t *testing.T) {
	src := &fakeSales{records: []models.SaleRecord{saleOf("s1", "2024-01-15", "100", "item-1")}}
	narrator := &fakeNarrator{err: errors.New("quota exceeded")}
	app := reportApp(NewReportHandler(src, narrator, forecast.FixedClock(january), 90))

	var body forecastBody
	require.Equal(t, fiber.StatusOK, doGet(t, app, "/reports/forecast?itemId=item-1&insights=true", &body))
	assert.Nil(t, body.Data.AiAnalysis)
	assert.Equal(t, 0.0, body.Data.Forecast.Confidence)
}

func TestReportHandlers_Unauthorized(t *testing.T) {
	h := NewReportHandler(&fakeSales{}, nil, nil, 90)
	app := fiber.New()
	app.Get("/reports/sales", h.HandleGetSalesReport)
	app.Get("/reports/forecast", h.HandleGetSalesForecast)

	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, "/reports/sales", nil))
	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, "/reports/forecast?itemId=x", nil))
}
