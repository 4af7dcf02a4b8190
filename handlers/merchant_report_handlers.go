package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"retailforecast/database"
	"retailforecast/forecast"
	"retailforecast/insights"
	"retailforecast/middleware"
	"retailforecast/models"
	"retailforecast/utils"

	"github.com/gofiber/fiber/v2"
)

// SalesSource supplies historical sale records to the report handlers.
type SalesSource interface {
	ListSales(ctx context.Context, q database.SalesQuery) ([]models.SaleRecord, error)
}

// ReportHandler serves the merchant sales report, item history and forecast endpoints.
type ReportHandler struct {
	Sales        SalesSource
	Narrator     insights.Narrator // optional
	Clock        forecast.Clock
	LookbackDays int
}

func NewReportHandler(sales SalesSource, narrator insights.Narrator, clock forecast.Clock, lookbackDays int) *ReportHandler {
	if clock == nil {
		clock = forecast.SystemClock{}
	}
	return &ReportHandler{Sales: sales, Narrator: narrator, Clock: clock, LookbackDays: lookbackDays}
}

// HandleGetSalesReport aggregates a merchant's sales by month, quarter or year.
// GET /api/v1/merchant/reports/sales?groupBy=month&startDate=...&endDate=...&shopId=...
func (h *ReportHandler) HandleGetSalesReport(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}
	merchantID := claims.UserID

	now := h.Clock.Now()
	groupBy := c.Query("groupBy", string(forecast.Month))
	shopID := c.Query("shopId")

	log.Printf("📊 [SALES REPORT] Request - Merchant: %s, StartDate: %s, EndDate: %s, ShopID: %s, GroupBy: %s",
		merchantID, c.Query("startDate"), c.Query("endDate"), shopID, groupBy)

	granularity, err := forecast.ParseGranularity(groupBy)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "groupBy must be month, quarter or year"})
	}

	startDate, err := queryDate(c, "startDate", now.AddDate(-1, 0, 0))
	if err != nil {
		log.Printf("❌ [SALES REPORT] Invalid startDate: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid startDate format"})
	}
	endDate, err := queryDate(c, "endDate", now)
	if err != nil {
		log.Printf("❌ [SALES REPORT] Invalid endDate: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid endDate format"})
	}
	if endDate.Before(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "endDate must not be before startDate"})
	}

	sales, err := h.Sales.ListSales(c.UserContext(), database.SalesQuery{
		MerchantID: merchantID,
		ShopID:     shopID,
		From:       startDate,
		To:         endDate,
	})
	if err != nil {
		log.Printf("❌ [SALES REPORT] Query error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to generate sales report"})
	}

	buckets, err := forecast.AggregateByPeriod(sales, granularity)
	if err != nil {
		return engineError(c, "SALES REPORT", err)
	}

	log.Printf("✅ [SALES REPORT] %d sales in %d %s buckets", len(sales), len(buckets), granularity)
	return c.JSON(fiber.Map{"success": true, "data": models.SalesReportResponse{
		GroupBy:    string(granularity),
		StartDate:  startDate,
		EndDate:    endDate,
		Buckets:    buckets,
		GrandTotal: forecast.TotalOf(buckets),
		SaleCount:  len(sales),
	}})
}

// HandleGetItemHistory lists, page by page, the sales that contain an item.
// GET /api/v1/merchant/reports/items/:itemId/history?shopId=...&page=1&pageSize=20
func (h *ReportHandler) HandleGetItemHistory(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	itemID := c.Params("itemId")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "itemId is required"})
	}

	sales, err := h.Sales.ListSales(c.UserContext(), database.SalesQuery{
		MerchantID: claims.UserID,
		ShopID:     c.Query("shopId"),
		ItemID:     itemID,
	})
	if err != nil {
		log.Printf("❌ [ITEM HISTORY] Query error for item %s: %v", itemID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to load item history"})
	}

	history := forecast.FilterByItem(sales, itemID)
	pagination := utils.CreatePagination(len(history), c.QueryInt("page", 1), c.QueryInt("pageSize", 20))
	start, end := pagination.Bounds()

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"itemId":     itemID,
		"sales":      history[start:end],
		"pagination": pagination,
	}})
}

// HandleGetSalesForecast forecasts an item's revenue per sale from its sales history.
// GET /api/v1/merchant/reports/forecast?itemId=...&shopId=...&insights=true
func (h *ReportHandler) HandleGetSalesForecast(c *fiber.Ctx) error {
	claims, err := middleware.ExtractClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
	}

	itemID := c.Query("itemId")
	shopID := c.Query("shopId")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "itemId is required"})
	}

	now := h.Clock.Now()
	sales, err := h.Sales.ListSales(c.UserContext(), database.SalesQuery{
		MerchantID: claims.UserID,
		ShopID:     shopID,
		ItemID:     itemID,
		From:       now.AddDate(0, 0, -h.LookbackDays),
		To:         now,
	})
	if err != nil {
		log.Printf("❌ [FORECAST] Failed to get historical data for item %s: %v", itemID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to get historical data"})
	}

	history := forecast.FilterByItem(sales, itemID)
	result, err := forecast.EstimateForecast(history, now)
	if err != nil {
		return engineError(c, "FORECAST", err)
	}
	monthly, err := forecast.AggregateByPeriod(history, forecast.Month)
	if err != nil {
		return engineError(c, "FORECAST", err)
	}

	resp := models.SalesForecastResponse{
		ReportName:     "Seasonal Sales Forecast",
		GeneratedAt:    now,
		ItemID:         itemID,
		ShopID:         shopID,
		LookbackDays:   h.LookbackDays,
		Forecast:       result,
		MonthlyHistory: monthly,
	}

	if h.Narrator != nil && c.QueryBool("insights", false) {
		analysis, err := h.Narrator.Narrate(c.UserContext(), insights.ForecastContext{
			ItemID:   itemID,
			ShopID:   shopID,
			Now:      now,
			Forecast: result,
			Monthly:  monthly,
		})
		if err != nil {
			log.Printf("⚠️  [FORECAST] AI analysis unavailable for item %s: %v", itemID, err)
		} else {
			resp.AiAnalysis = analysis
		}
	}

	log.Printf("✅ [FORECAST] item %s: %d sales, predicted %s, confidence %.1f",
		itemID, result.SampleSize, result.PredictedRevenue.StringFixed(2), result.Confidence)
	return c.JSON(fiber.Map{"success": true, "data": resp})
}

func queryDate(c *fiber.Ctx, key string, fallback time.Time) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return utils.ParseDate(raw)
}

// engineError maps forecasting engine errors onto HTTP responses.
func engineError(c *fiber.Ctx, tag string, err error) error {
	switch {
	case errors.Is(err, forecast.ErrInsufficientData), errors.Is(err, forecast.ErrZeroAverage):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"success": false, "message": "Not enough sales data to build a forecast"})
	case errors.Is(err, forecast.ErrUnknownGranularity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	default:
		log.Printf("❌ [%s] %v", tag, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Sales data is invalid"})
	}
}
