package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/andresuchdata/retail-insights/internal/rows"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
)

// AnalyticsRepository fetches the pre-aggregated inputs of each analysis.
type AnalyticsRepository interface {
	CustomerMetrics(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CustomerMetric, error)
	CustomerActivity(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CustomerActivity, error)
	CustomerValues(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CustomerValueInput, error)
	CohortCustomers(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CohortCustomer, error)
	MonthlyActivity(ctx context.Context, filter domain.AnalysisFilter) ([]domain.MonthlyActivity, error)
	ProductRevenue(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ProductRevenue, error)
	TurnoverInputs(ctx context.Context, filter domain.AnalysisFilter) ([]domain.TurnoverInput, error)
	StockAgeInputs(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StockAgeInput, error)
	ReorderInputs(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ReorderInput, error)
	InventoryItems(ctx context.Context, filter domain.AnalysisFilter) ([]domain.InventoryItem, error)
	StockLevels(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StockLevelInput, error)
	SalesByPeriod(ctx context.Context, filter domain.AnalysisFilter) ([]domain.PeriodAggregate, error)
	SalesTotals(ctx context.Context, period domain.DateRange, filter domain.AnalysisFilter) (domain.SalesTotals, error)
	BrandRevenue(ctx context.Context, filter domain.AnalysisFilter) ([]domain.BrandRevenue, error)
	ProductSales(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ProductSales, error)
	StoreSales(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StoreSales, error)
	MonthlyRevenue(ctx context.Context, year int, filter domain.AnalysisFilter) ([]domain.MonthlyRevenue, error)
}

// RowQuerier runs a query and returns generic rows.
type RowQuerier interface {
	SelectMaps(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)
}

type analyticsRepository struct {
	db RowQuerier
}

func NewAnalyticsRepository(db RowQuerier) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) selectRows(ctx context.Context, name, query string, args []interface{}) ([]rows.Row, error) {
	raw, err := r.db.SelectMaps(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, fmt.Sprintf("query %s", name))
	}
	out := make([]rows.Row, len(raw))
	for i, m := range raw {
		out[i] = rows.Row(m)
	}
	return out, nil
}

const validOrder = "LOWER(so.status) <> 'cancelled'"

func (r *analyticsRepository) CustomerMetrics(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CustomerMetric, error) {
	w := &whereBuilder{}
	asOf := w.arg(analysisDate(filter))
	w.through("so.order_date", analysisDate(filter))
	if !filter.Start.IsZero() {
		w.add("so.order_date >= %s", filter.Start)
	}
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT
			c.id::text AS customer_id,
			CONCAT_WS(' ', c.first_name, c.last_name) AS name,
			(` + asOf + `::date - MAX(so.order_date)::date) AS recency_days,
			COUNT(so.id) AS frequency,
			COALESCE(SUM(so.total_amount), 0) AS monetary
		FROM customers c
		JOIN sales_orders so ON so.customer_id = c.id
		WHERE ` + validOrder + w.sql() + `
		GROUP BY c.id, c.first_name, c.last_name
		HAVING COUNT(so.id) > 0
	`

	rs, err := r.selectRows(ctx, "customer metrics", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.CustomerMetrics(rs), nil
}

func (r *analyticsRepository) CustomerActivity(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CustomerActivity, error) {
	w := &whereBuilder{}
	asOf := w.arg(analysisDate(filter))
	w.through("so.order_date", analysisDate(filter))
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT
			c.id::text AS customer_id,
			CONCAT_WS(' ', c.first_name, c.last_name) AS name,
			(` + asOf + `::date - MAX(so.order_date)::date) AS days_since_last_purchase,
			COUNT(so.id) AS total_orders,
			COALESCE(SUM(so.total_amount), 0) AS total_spent
		FROM customers c
		JOIN sales_orders so ON so.customer_id = c.id
		WHERE ` + validOrder + w.sql() + `
		GROUP BY c.id, c.first_name, c.last_name
	`

	rs, err := r.selectRows(ctx, "customer activity", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.CustomerActivities(rs), nil
}

func (r *analyticsRepository) CustomerValues(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CustomerValueInput, error) {
	w := &whereBuilder{}
	asOf := w.arg(analysisDate(filter))
	w.through("so.order_date", analysisDate(filter))
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT
			c.id::text AS customer_id,
			CONCAT_WS(' ', c.first_name, c.last_name) AS name,
			COUNT(so.id) AS total_orders,
			COALESCE(SUM(so.total_amount), 0) AS total_spent,
			(` + asOf + `::date - c.created_at::date) AS customer_age_days
		FROM customers c
		JOIN sales_orders so ON so.customer_id = c.id
		WHERE ` + validOrder + w.sql() + `
		GROUP BY c.id, c.first_name, c.last_name, c.created_at
	`

	rs, err := r.selectRows(ctx, "customer values", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.CustomerValueInputs(rs), nil
}

func (r *analyticsRepository) CohortCustomers(ctx context.Context, filter domain.AnalysisFilter) ([]domain.CohortCustomer, error) {
	w := &whereBuilder{}
	w.between("c.created_at", filter.Range())

	query := `
		SELECT c.id::text AS customer_id, c.created_at AS registered_at
		FROM customers c
		WHERE 1=1` + w.sql() + `
		ORDER BY c.created_at
	`

	rs, err := r.selectRows(ctx, "cohort customers", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.CohortCustomers(rs), nil
}

func (r *analyticsRepository) MonthlyActivity(ctx context.Context, filter domain.AnalysisFilter) ([]domain.MonthlyActivity, error) {
	w := &whereBuilder{}
	if !filter.Start.IsZero() {
		w.add("so.order_date >= %s", filter.Start)
	}
	if !filter.End.IsZero() {
		// leave room for the last cohort's twelve follow-up months
		w.add("so.order_date < %s", filter.End.AddDate(0, 13, 0))
	}
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT
			so.customer_id::text AS customer_id,
			TO_CHAR(DATE_TRUNC('month', so.order_date), 'YYYY-MM') AS month,
			COUNT(*) AS orders,
			COALESCE(SUM(so.total_amount), 0) AS revenue
		FROM sales_orders so
		WHERE ` + validOrder + w.sql() + `
		GROUP BY so.customer_id, DATE_TRUNC('month', so.order_date)
	`

	rs, err := r.selectRows(ctx, "monthly activity", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.MonthlyActivities(rs), nil
}

func (r *analyticsRepository) ProductRevenue(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ProductRevenue, error) {
	w := &whereBuilder{}
	w.between("so.order_date", filter.Range())
	w.scope(filter, columns{store: "so.store_id", brand: "p.brand_id", category: "p.category"})

	query := `
		SELECT
			p.id::text AS product_id,
			p.name,
			COALESCE(SUM(soi.total_price), 0) AS revenue
		FROM sales_order_items soi
		JOIN sales_orders so ON so.id = soi.order_id
		JOIN products p ON p.id = soi.product_id
		WHERE ` + validOrder + w.sql() + `
		GROUP BY p.id, p.name
		ORDER BY revenue DESC, p.id
	`

	rs, err := r.selectRows(ctx, "product revenue", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.ProductRevenues(rs), nil
}

// salesScope limits order subqueries to the stores of the filter. Brand and
// category are already fixed by the product the subquery is joined on.
var salesScope = columns{store: "so.store_id"}

// unitsSoldSince builds a per-product units subquery covering the days from..to.
func unitsSoldSince(w *whereBuilder, alias string, from, to time.Time, filter domain.AnalysisFilter) string {
	where := w.nested(func() {
		w.add("so.order_date >= %s", from)
		w.through("so.order_date", to)
		w.scope(filter, salesScope)
	})
	return `(
			SELECT soi.product_id, SUM(soi.quantity) AS units
			FROM sales_order_items soi
			JOIN sales_orders so ON so.id = soi.order_id
			WHERE ` + validOrder + where + `
			GROUP BY soi.product_id
		) ` + alias
}

func (r *analyticsRepository) TurnoverInputs(ctx context.Context, filter domain.AnalysisFilter) ([]domain.TurnoverInput, error) {
	w := &whereBuilder{}
	end := analysisDate(filter)
	if !filter.End.IsZero() {
		end = filter.End
	}
	start := filter.Start
	if start.IsZero() {
		start = end.AddDate(0, 0, -90)
	}
	sold := unitsSoldSince(w, "sold", start, end, filter)
	w.scope(filter, columns{store: "i.location_id", brand: "p.brand_id", category: "p.category"})

	query := `
		SELECT
			p.sku,
			p.name,
			COALESCE(MAX(sold.units), 0) AS units_sold,
			AVG(i.quantity_on_hand) AS avg_inventory
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN ` + sold + ` ON sold.product_id = p.id
		WHERE 1=1` + w.sql() + `
		GROUP BY p.sku, p.name
	`

	rs, err := r.selectRows(ctx, "turnover inputs", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.TurnoverInputs(rs), nil
}

func (r *analyticsRepository) StockAgeInputs(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StockAgeInput, error) {
	w := &whereBuilder{}
	lastSaleWhere := w.nested(func() {
		w.through("so.order_date", analysisDate(filter))
		w.scope(filter, salesScope)
	})
	w.scope(filter, columns{store: "i.location_id", brand: "p.brand_id", category: "p.category"})

	query := `
		SELECT
			p.sku,
			p.name,
			SUM(i.quantity_on_hand) AS on_hand,
			MAX(i.cost_per_unit) AS cost_per_unit,
			MAX(last_sale.sold_at) AS last_sale_at
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN (
			SELECT soi.product_id, MAX(so.order_date) AS sold_at
			FROM sales_order_items soi
			JOIN sales_orders so ON so.id = soi.order_id
			WHERE ` + validOrder + lastSaleWhere + `
			GROUP BY soi.product_id
		) last_sale ON last_sale.product_id = p.id
		WHERE i.quantity_on_hand > 0` + w.sql() + `
		GROUP BY p.sku, p.name
		ORDER BY p.sku
	`

	rs, err := r.selectRows(ctx, "stock age inputs", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.StockAgeInputs(rs), nil
}

func (r *analyticsRepository) ReorderInputs(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ReorderInput, error) {
	w := &whereBuilder{}
	asOf := analysisDate(filter)
	trailing := unitsSoldSince(w, "trailing", asOf.AddDate(0, 0, -trailingDays(filter)), asOf, filter)
	w.scope(filter, columns{store: "i.location_id", brand: "p.brand_id", category: "p.category"})

	query := `
		SELECT
			p.sku,
			p.name,
			i.quantity_on_hand AS on_hand,
			i.quantity_available AS available,
			i.reorder_level,
			i.max_stock_level,
			i.cost_per_unit,
			COALESCE(trailing.units, 0) AS units_sold_trailing
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN ` + trailing + ` ON trailing.product_id = p.id
		WHERE i.quantity_available <= i.reorder_level` + w.sql() + `
		ORDER BY i.quantity_available, p.sku
	`

	rs, err := r.selectRows(ctx, "reorder inputs", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.ReorderInputs(rs), nil
}

func (r *analyticsRepository) InventoryItems(ctx context.Context, filter domain.AnalysisFilter) ([]domain.InventoryItem, error) {
	w := &whereBuilder{}
	asOf := analysisDate(filter)
	start := filter.Start
	if start.IsZero() {
		start = asOf.AddDate(0, 0, -365)
	}
	period := unitsSoldSince(w, "period", start, asOf, filter)
	trailing := unitsSoldSince(w, "trailing", asOf.AddDate(0, 0, -trailingDays(filter)), asOf, filter)
	w.scope(filter, columns{store: "i.location_id", brand: "p.brand_id", category: "p.category"})

	query := `
		SELECT
			p.sku,
			p.name,
			SUM(i.quantity_on_hand) AS on_hand,
			SUM(i.quantity_available) AS available,
			MAX(i.cost_per_unit) AS cost_per_unit,
			SUM(i.reorder_level) AS reorder_level,
			SUM(i.max_stock_level) AS max_stock_level,
			COALESCE(MAX(period.units), 0) AS units_sold_period,
			AVG(i.quantity_on_hand) AS avg_inventory,
			COALESCE(MAX(trailing.units), 0) AS units_sold_trailing
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN ` + period + ` ON period.product_id = p.id
		LEFT JOIN ` + trailing + ` ON trailing.product_id = p.id
		WHERE 1=1` + w.sql() + `
		GROUP BY p.sku, p.name
		ORDER BY p.sku
	`

	rs, err := r.selectRows(ctx, "inventory items", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.InventoryItems(rs), nil
}

// StockLevels returns one row per inventory record, without aggregating locations.
func (r *analyticsRepository) StockLevels(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StockLevelInput, error) {
	w := &whereBuilder{}
	w.scope(filter, columns{store: "i.location_id", brand: "p.brand_id", category: "p.category"})

	query := `
		SELECT
			p.sku,
			p.name,
			COALESCE(b.name, '') AS brand,
			COALESCE(st.name, '') AS location,
			i.quantity_on_hand AS on_hand,
			i.quantity_available AS available,
			i.reorder_level,
			i.max_stock_level,
			i.cost_per_unit
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN stores st ON st.id = i.location_id
		WHERE 1=1` + w.sql() + `
		ORDER BY p.sku, i.location_id
	`

	rs, err := r.selectRows(ctx, "stock levels", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.StockLevelInputs(rs), nil
}

func (r *analyticsRepository) SalesByPeriod(ctx context.Context, filter domain.AnalysisFilter) ([]domain.PeriodAggregate, error) {
	granularity := filter.Granularity
	if granularity == "" {
		granularity = domain.GranularityDay
	}
	label, ok := periodLabels[granularity]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeValidation, "unknown granularity %q", granularity)
	}

	w := &whereBuilder{}
	unit := w.arg(string(granularity))
	w.between("so.order_date", filter.Range())
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT TO_CHAR(bucket, '` + label + `') AS period, revenue, orders
		FROM (
			SELECT
				DATE_TRUNC(` + unit + `, so.order_date) AS bucket,
				COALESCE(SUM(so.total_amount), 0) AS revenue,
				COUNT(*) AS orders
			FROM sales_orders so
			WHERE ` + validOrder + w.sql() + `
			GROUP BY 1
		) periods
		ORDER BY bucket
	`

	rs, err := r.selectRows(ctx, "sales by period", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.PeriodAggregates(rs), nil
}

func (r *analyticsRepository) SalesTotals(ctx context.Context, period domain.DateRange, filter domain.AnalysisFilter) (domain.SalesTotals, error) {
	w := &whereBuilder{}
	w.between("so.order_date", period)
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT
			COALESCE(SUM(so.total_amount), 0) AS revenue,
			COUNT(*) AS orders,
			COUNT(DISTINCT so.customer_id) AS customers
		FROM sales_orders so
		WHERE ` + validOrder + w.sql()

	rs, err := r.selectRows(ctx, "sales totals", query, w.args)
	if err != nil {
		return domain.SalesTotals{}, err
	}
	if len(rs) == 0 {
		return domain.SalesTotals{}, nil
	}
	return rows.SalesTotals(rs[0]), nil
}

func (r *analyticsRepository) BrandRevenue(ctx context.Context, filter domain.AnalysisFilter) ([]domain.BrandRevenue, error) {
	w := &whereBuilder{}
	w.between("so.order_date", filter.Range())
	w.scope(filter, columns{store: "so.store_id", brand: "b.id", category: "p.category"})

	query := `
		SELECT
			b.id::text AS brand_id,
			b.name,
			COALESCE(SUM(soi.total_price), 0) AS revenue,
			COALESCE(SUM(soi.quantity), 0) AS units
		FROM sales_order_items soi
		JOIN sales_orders so ON so.id = soi.order_id
		JOIN products p ON p.id = soi.product_id
		JOIN brands b ON b.id = p.brand_id
		WHERE ` + validOrder + w.sql() + `
		GROUP BY b.id, b.name
	`

	rs, err := r.selectRows(ctx, "brand revenue", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.BrandRevenues(rs), nil
}

func (r *analyticsRepository) ProductSales(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ProductSales, error) {
	w := &whereBuilder{}
	w.between("so.order_date", filter.Range())
	w.scope(filter, columns{store: "so.store_id", brand: "p.brand_id", category: "p.category"})

	query := `
		SELECT
			p.id::text AS product_id,
			p.sku,
			p.name,
			COALESCE(b.name, '') AS brand,
			COALESCE(SUM(soi.quantity), 0) AS units_sold,
			COALESCE(SUM(soi.total_price), 0) AS revenue
		FROM sales_order_items soi
		JOIN sales_orders so ON so.id = soi.order_id
		JOIN products p ON p.id = soi.product_id
		LEFT JOIN brands b ON b.id = p.brand_id
		WHERE ` + validOrder + w.sql() + `
		GROUP BY p.id, p.sku, p.name, b.name
		ORDER BY revenue DESC, p.id
	`

	rs, err := r.selectRows(ctx, "product sales", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.ProductSales(rs), nil
}

func (r *analyticsRepository) StoreSales(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StoreSales, error) {
	w := &whereBuilder{}
	w.between("so.order_date", filter.Range())
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT
			st.id::text AS store_id,
			st.name,
			COUNT(*) AS orders,
			COALESCE(SUM(so.total_amount), 0) AS revenue,
			COUNT(DISTINCT so.customer_id) AS customers
		FROM sales_orders so
		JOIN stores st ON st.id = so.store_id
		WHERE ` + validOrder + w.sql() + `
		GROUP BY st.id, st.name
		ORDER BY revenue DESC, st.id
	`

	rs, err := r.selectRows(ctx, "store sales", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.StoreSales(rs), nil
}

func (r *analyticsRepository) MonthlyRevenue(ctx context.Context, year int, filter domain.AnalysisFilter) ([]domain.MonthlyRevenue, error) {
	w := &whereBuilder{}
	w.add("EXTRACT(YEAR FROM so.order_date) = %s", year)
	w.scope(filter, columns{store: "so.store_id"})

	query := `
		SELECT
			EXTRACT(MONTH FROM so.order_date)::int AS month,
			COALESCE(SUM(so.total_amount), 0) AS revenue
		FROM sales_orders so
		WHERE ` + validOrder + w.sql() + `
		GROUP BY 1
		ORDER BY 1
	`

	rs, err := r.selectRows(ctx, "monthly revenue", query, w.args)
	if err != nil {
		return nil, err
	}
	return rows.MonthlyRevenues(rs), nil
}

func trailingDays(filter domain.AnalysisFilter) int {
	if filter.TrailingDays > 0 {
		return filter.TrailingDays
	}
	return 90
}
