// Command forecastctl runs the sales forecasting engine over a CSV export,
// without a database or the HTTP API.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"retailforecast/forecast"
	"retailforecast/importer"
	"retailforecast/models"
	"retailforecast/utils"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "forecastctl",
		Short:         "Aggregate and forecast sales from a CSV export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newAggregateCmd(out), newForecastCmd(out))
	return root
}

func newAggregateCmd(out io.Writer) *cobra.Command {
	var file, by string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Sum revenue per month, quarter or year",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := forecast.ParseGranularity(by)
			if err != nil {
				return codeError(2, "%v", err)
			}
			sales, err := importer.LoadSalesFile(file)
			if err != nil {
				return codeError(3, "%v", err)
			}
			buckets, err := forecast.AggregateByPeriod(sales, g)
			if err != nil {
				return codeError(3, "%v", err)
			}
			for _, b := range buckets {
				fmt.Fprintf(out, "%s ; %s\n", b.Period, b.TotalSales.StringFixed(2))
			}
			fmt.Fprintf(out, "TOTAL ; %s\n", forecast.TotalOf(buckets).StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Sales CSV (sale_id,sale_date,total_amount,item_ids)")
	cmd.Flags().StringVar(&by, "by", "month", "Period granularity: month, quarter or year")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newForecastCmd(out io.Writer) *cobra.Command {
	var file, item, nowStr string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast revenue per sale for one item",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if nowStr != "" {
				t, err := utils.ParseDate(nowStr)
				if err != nil {
					return codeError(2, "invalid --now %q: %v", nowStr, err)
				}
				now = t
			}

			sales, err := importer.LoadSalesFile(file)
			if err != nil {
				return codeError(3, "%v", err)
			}
			history := sales
			if item != "" {
				history = forecast.FilterByItem(sales, item)
			}

			result, err := forecast.EstimateForecast(history, now)
			if errors.Is(err, forecast.ErrInsufficientData) || errors.Is(err, forecast.ErrZeroAverage) {
				return codeError(4, "not enough data to forecast: %v", err)
			}
			if err != nil {
				return codeError(3, "%v", err)
			}
			return printForecast(out, result, asJSON)
		},
	}
	f := cmd.Flags()
	f.StringVar(&file, "file", "", "Sales CSV (sale_id,sale_date,total_amount,item_ids)")
	f.StringVar(&item, "item", "", "Inventory item id; all sales when empty")
	f.StringVar(&nowStr, "now", "", "Reference date for the seasonal month (default: today)")
	f.BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printForecast(out io.Writer, r models.ForecastResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Fprintf(out, "sales=%d same_month=%d\n", r.SampleSize, r.SameMonthSamples)
	fmt.Fprintf(out, "average=%s seasonal_factor=%s\n", r.AverageRevenue.StringFixed(2), r.SeasonalFactor.StringFixed(4))
	fmt.Fprintf(out, "predicted=%s confidence=%.1f\n", r.PredictedRevenue.StringFixed(2), r.Confidence)
	return nil
}
