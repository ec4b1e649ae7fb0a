package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/andresuchdata/retail-insights/internal/repository/postgres"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQuerier struct {
	query string
	args  []interface{}
	rows  []map[string]interface{}
	err   error
}

func (q *recordingQuerier) SelectMaps(_ context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	q.query = query
	q.args = args
	return q.rows, q.err
}

func TestProductRevenueAppliesScope(t *testing.T) {
	q := &recordingQuerier{rows: []map[string]interface{}{
		{"product_id": "1", "name": "Lipstick", "revenue": []byte("1500.50")},
	}}
	repo := NewAnalyticsRepository(q)

	filter := domain.AnalysisFilter{
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		StoreIDs:   []int64{3},
		Categories: []string{" skincare ", ""},
	}
	out, err := repo.ProductRevenue(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Lipstick", out[0].Name)
	assert.InDelta(t, 1500.50, out[0].Revenue, 1e-9)

	assert.Contains(t, q.query, "so.order_date >= $1")
	assert.Contains(t, q.query, "so.store_id = ANY($2::bigint[])")
	assert.Contains(t, q.query, "UPPER(p.category) = ANY($3::text[])")
	assert.NotContains(t, q.query, "p.brand_id = ANY")
	assert.Len(t, q.args, 3)
}

func TestSalesByPeriodRejectsUnknownGranularity(t *testing.T) {
	repo := NewAnalyticsRepository(&recordingQuerier{})
	_, err := repo.SalesByPeriod(context.Background(), domain.AnalysisFilter{Granularity: "fortnight"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestSalesByPeriodUsesGranularityLabel(t *testing.T) {
	q := &recordingQuerier{rows: []map[string]interface{}{
		{"period": "2024-01", "revenue": 100.0, "orders": int64(2)},
		{"period": "2024-02", "revenue": 150.0, "orders": int64(3)},
	}}
	repo := NewAnalyticsRepository(q)

	out, err := repo.SalesByPeriod(context.Background(), domain.AnalysisFilter{Granularity: domain.GranularityMonth})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-02", out[1].Period)
	assert.Equal(t, 3, out[1].Orders)
	assert.Contains(t, q.query, "'YYYY-MM'")
	assert.Equal(t, []interface{}{"month"}, q.args)
}

func TestQueryErrorsAreDependencyErrors(t *testing.T) {
	repo := NewAnalyticsRepository(&recordingQuerier{err: errors.New("connection refused")})
	_, err := repo.BrandRevenue(context.Background(), domain.AnalysisFilter{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDependency))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSalesTotalsEmptyResult(t *testing.T) {
	repo := NewAnalyticsRepository(&recordingQuerier{})
	totals, err := repo.SalesTotals(context.Background(), domain.DateRange{}, domain.AnalysisFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.SalesTotals{}, totals)
}

func TestStockAgeInputsThroughDatabase(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := postgres.Wrap(sqlx.NewDb(raw, "sqlmock"), 2)

	lastSale := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("so.order_date < $1")).
		WithArgs(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"sku", "name", "on_hand", "cost_per_unit", "last_sale_at"}).
			AddRow("SKU-1", "Serum", int64(10), 12.5, lastSale).
			AddRow("SKU-2", "Toner", int64(4), 8.0, nil))

	repo := NewAnalyticsRepository(db)
	out, err := repo.StockAgeInputs(context.Background(), domain.AnalysisFilter{AnalysisDate: asOf})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].LastSaleAt)
	assert.True(t, out[0].LastSaleAt.Equal(lastSale))
	assert.Nil(t, out[1].LastSaleAt)
	assert.Equal(t, 4.0, out[1].OnHand)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueriesIncludeTheWholeAnalysisDay(t *testing.T) {
	asOf := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	nextMidnight := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	filter := domain.AnalysisFilter{AnalysisDate: asOf}

	tests := []struct {
		name string
		run  func(AnalyticsRepository) error
	}{
		{"customer metrics", func(r AnalyticsRepository) error {
			_, err := r.CustomerMetrics(context.Background(), filter)
			return err
		}},
		{"stock age", func(r AnalyticsRepository) error {
			_, err := r.StockAgeInputs(context.Background(), filter)
			return err
		}},
		{"reorder", func(r AnalyticsRepository) error {
			_, err := r.ReorderInputs(context.Background(), filter)
			return err
		}},
		{"turnover", func(r AnalyticsRepository) error {
			_, err := r.TurnoverInputs(context.Background(), filter)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &recordingQuerier{}
			require.NoError(t, tt.run(NewAnalyticsRepository(q)))
			assert.NotRegexp(t, `order_date <= \$`, q.query)
			assert.Regexp(t, `so\.order_date < \$\d+`, q.query)
			assert.Contains(t, q.args, nextMidnight)
		})
	}
}

func TestRangeEndCoversItsDay(t *testing.T) {
	q := &recordingQuerier{}
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	_, err := NewAnalyticsRepository(q).BrandRevenue(context.Background(), domain.AnalysisFilter{End: end})
	require.NoError(t, err)
	assert.Contains(t, q.query, "so.order_date < $1")
	assert.Equal(t, []interface{}{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}, q.args)
}

func TestSalesSubqueriesFollowStoreScope(t *testing.T) {
	filter := domain.AnalysisFilter{
		AnalysisDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		StoreIDs:     []int64{7},
	}

	q := &recordingQuerier{}
	_, err := NewAnalyticsRepository(q).ReorderInputs(context.Background(), filter)
	require.NoError(t, err)

	// trailing subquery: $1 start, $2 end, $3 stores; outer query: $4 stores
	assert.Contains(t, q.query, "so.order_date >= $1 AND so.order_date < $2 AND so.store_id = ANY($3::bigint[])")
	assert.Contains(t, q.query, "i.location_id = ANY($4::bigint[])")
	assert.Len(t, q.args, 4)

	q = &recordingQuerier{}
	_, err = NewAnalyticsRepository(q).InventoryItems(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(q.query, "so.store_id = ANY("))

	q = &recordingQuerier{}
	_, err = NewAnalyticsRepository(q).StockAgeInputs(context.Background(), filter)
	require.NoError(t, err)
	assert.Contains(t, q.query, "so.order_date < $1 AND so.store_id = ANY($2::bigint[])")
}

func TestCancelledOrdersMatchAnyCase(t *testing.T) {
	q := &recordingQuerier{}
	_, err := NewAnalyticsRepository(q).SalesByPeriod(context.Background(), domain.AnalysisFilter{})
	require.NoError(t, err)
	assert.Contains(t, q.query, "LOWER(so.status) <> 'cancelled'")
}

func TestStockLevelsKeepsLocations(t *testing.T) {
	q := &recordingQuerier{rows: []map[string]interface{}{
		{"sku": "SKU-1", "name": "Serum", "brand": "Lumi", "location": "Jakarta", "on_hand": []byte("12.00"), "available": []byte("10.00"), "reorder_level": 5.0, "max_stock_level": 40.0, "cost_per_unit": 3.5},
		{"sku": "SKU-1", "name": "Serum", "brand": "Lumi", "location": "Bandung", "on_hand": 0.0, "available": 0.0, "reorder_level": 5.0, "max_stock_level": 40.0, "cost_per_unit": 3.5},
	}}
	out, err := NewAnalyticsRepository(q).StockLevels(context.Background(), domain.AnalysisFilter{StoreIDs: []int64{1, 2}, BrandIDs: []int64{4}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Jakarta", out[0].Location)
	assert.Equal(t, 10.0, out[0].Available)
	assert.Equal(t, "Lumi", out[1].Brand)

	assert.Contains(t, q.query, "i.location_id = ANY($1::bigint[])")
	assert.Contains(t, q.query, "p.brand_id = ANY($2::bigint[])")
	assert.NotContains(t, q.query, "GROUP BY")
}

func TestStoreSalesThroughDatabase(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := postgres.Wrap(sqlx.NewDb(raw, "sqlmock"), 2)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN stores st ON st.id = so.store_id")).
		WithArgs(start, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"store_id", "name", "orders", "revenue", "customers"}).
			AddRow("1", "Jakarta", int64(12), "1200.50", int64(9)))

	out, err := NewAnalyticsRepository(db).StoreSales(context.Background(), domain.AnalysisFilter{Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.StoreSales{StoreID: "1", Name: "Jakarta", Orders: 12, Revenue: 1200.50, Customers: 9}, out[0])
	require.NoError(t, mock.ExpectationsWereMet())
}
