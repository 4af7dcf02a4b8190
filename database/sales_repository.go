package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"retailforecast/models"
)

// Querier is the subset of pgxpool.Pool used by the repositories.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// SalesQuery selects the sales history of one merchant.
type SalesQuery struct {
	MerchantID string
	ShopID     string
	ItemID     string
	From       time.Time
	To         time.Time
}

// SalesRepository loads sale records and their lines from PostgreSQL.
type SalesRepository struct {
	db Querier
}

func NewSalesRepository(db Querier) *SalesRepository {
	return &SalesRepository{db: db}
}

// ListSales returns the matching sales ordered by sale date, each with its items.
func (r *SalesRepository) ListSales(ctx context.Context, q SalesQuery) ([]models.SaleRecord, error) {
	query, args := buildSalesQuery(q)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales := make([]models.SaleRecord, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			sale   models.SaleRecord
			amount string
		)
		if err := rows.Scan(&sale.ID, &sale.ShopID, &sale.SaleDate, &amount); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sale.TotalAmount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("sale %s: total_amount %q: %w", sale.ID, amount, err)
		}
		sale.Items = []models.ProductRef{}
		index[sale.ID] = len(sales)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	if err := r.attachItems(ctx, sales, index); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *SalesRepository) attachItems(ctx context.Context, sales []models.SaleRecord, index map[string]int) error {
	ids := make([]string, 0, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
	}

	rows, err := r.db.Query(ctx, `
		SELECT sale_id, inventory_item_id, item_name, quantity_sold
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, created_at, id
	`, ids)
	if err != nil {
		return fmt.Errorf("query sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			saleID string
			item   models.ProductRef
		)
		if err := rows.Scan(&saleID, &item.InventoryItemID, &item.ItemName, &item.QuantitySold); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if i, ok := index[saleID]; ok {
			sales[i].Items = append(sales[i].Items, item)
		}
	}
	return rows.Err()
}

func buildSalesQuery(q SalesQuery) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT s.id, s.shop_id, s.sale_date, s.total_amount::text
		FROM sales s
		WHERE s.merchant_id = $1`)
	args := []interface{}{q.MerchantID}

	add := func(clause string, v interface{}) {
		args = append(args, v)
		fmt.Fprintf(&sb, clause, len(args))
	}
	if !q.From.IsZero() {
		add(" AND s.sale_date >= $%d", q.From)
	}
	if !q.To.IsZero() {
		add(" AND s.sale_date <= $%d", q.To)
	}
	if q.ShopID != "" {
		add(" AND s.shop_id = $%d", q.ShopID)
	}
	if q.ItemID != "" {
		add(" AND EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = s.id AND si.inventory_item_id = $%d)", q.ItemID)
	}
	sb.WriteString(" ORDER BY s.sale_date ASC, s.id ASC")
	return sb.String(), args
}
