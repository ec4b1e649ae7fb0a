package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/andresuchdata/retail-insights/internal/report"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalytics struct {
	filter domain.AnalysisFilter
	year   int
	limit  int
	err    error

	abc     domain.AbcAnalysis
	levels  domain.StockLevelAnalysis
	reorder []domain.ReorderRecommendation
	cleared bool
}

func (s *stubAnalytics) RFM(_ context.Context, f domain.AnalysisFilter) (domain.RFMAnalysis, error) {
	s.filter = f
	return domain.RFMAnalysis{}, s.err
}

func (s *stubAnalytics) Churn(_ context.Context, f domain.AnalysisFilter) (domain.ChurnAnalysis, error) {
	s.filter = f
	return domain.ChurnAnalysis{}, s.err
}

func (s *stubAnalytics) LifetimeValues(_ context.Context, f domain.AnalysisFilter) ([]domain.LifetimeValue, error) {
	s.filter = f
	return []domain.LifetimeValue{}, s.err
}

func (s *stubAnalytics) Cohorts(_ context.Context, f domain.AnalysisFilter) (domain.CohortAnalysis, error) {
	s.filter = f
	return domain.CohortAnalysis{}, s.err
}

func (s *stubAnalytics) ABC(_ context.Context, f domain.AnalysisFilter) (domain.AbcAnalysis, error) {
	s.filter = f
	return s.abc, s.err
}

func (s *stubAnalytics) Turnover(_ context.Context, f domain.AnalysisFilter) ([]domain.TurnoverRecord, error) {
	s.filter = f
	return []domain.TurnoverRecord{}, s.err
}

func (s *stubAnalytics) StockAge(_ context.Context, f domain.AnalysisFilter) (domain.StockAgeAnalysis, error) {
	s.filter = f
	return domain.StockAgeAnalysis{}, s.err
}

func (s *stubAnalytics) Reorder(_ context.Context, f domain.AnalysisFilter) ([]domain.ReorderRecommendation, error) {
	s.filter = f
	return s.reorder, s.err
}

func (s *stubAnalytics) InventoryHealth(_ context.Context, f domain.AnalysisFilter) ([]domain.InventoryHealthRecord, error) {
	s.filter = f
	return []domain.InventoryHealthRecord{}, s.err
}

func (s *stubAnalytics) StockLevels(_ context.Context, f domain.AnalysisFilter) (domain.StockLevelAnalysis, error) {
	s.filter = f
	return s.levels, s.err
}

func (s *stubAnalytics) SalesTrend(_ context.Context, f domain.AnalysisFilter) (domain.SalesTrend, error) {
	s.filter = f
	return domain.SalesTrend{}, s.err
}

func (s *stubAnalytics) SalesOverview(_ context.Context, f domain.AnalysisFilter) (domain.SalesOverview, error) {
	s.filter = f
	return domain.SalesOverview{}, s.err
}

func (s *stubAnalytics) BrandShares(_ context.Context, f domain.AnalysisFilter) ([]domain.BrandShare, error) {
	s.filter = f
	return []domain.BrandShare{}, s.err
}

func (s *stubAnalytics) TopProducts(_ context.Context, limit int, f domain.AnalysisFilter) ([]domain.ProductSales, error) {
	s.filter = f
	s.limit = limit
	return []domain.ProductSales{}, s.err
}

func (s *stubAnalytics) StoreSales(_ context.Context, f domain.AnalysisFilter) ([]domain.StorePerformance, error) {
	s.filter = f
	return []domain.StorePerformance{}, s.err
}

func (s *stubAnalytics) SeasonalIndex(_ context.Context, year int, f domain.AnalysisFilter) ([]domain.SeasonalIndex, error) {
	s.filter = f
	s.year = year
	return []domain.SeasonalIndex{}, s.err
}

func (s *stubAnalytics) Dashboard(_ context.Context, f domain.AnalysisFilter) (report.Dashboard, error) {
	s.filter = f
	return report.Dashboard{
		Title:    "Retail overview",
		Sections: []report.Section{report.Text{Header: report.Header{ID: "t"}, Content: "hi"}},
	}, s.err
}

func (s *stubAnalytics) Invalidate(context.Context) error {
	s.cleared = true
	return s.err
}

func newTestRouter(stub *stubAnalytics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAnalyticsHandler(stub)
	h.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	h.Register(r.Group("/api/v1/analytics"))
	return r
}

func do(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestFilterParsing(t *testing.T) {
	stub := &stubAnalytics{}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/sales/trend?start=2024-01-01&end=2024-03-31T00:00:00Z&store_ids=1,2,x&brand_ids=5&category=skincare&category=makeup,men&granularity=month&metric=orders&window=4&dead_stock_days=200")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	f := stub.filter
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), f.Start)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), f.End)
	assert.Equal(t, []int64{1, 2}, f.StoreIDs)
	assert.Equal(t, []int64{5}, f.BrandIDs)
	assert.Equal(t, []string{"skincare", "makeup", "men"}, f.Categories)
	assert.Equal(t, domain.GranularityMonth, f.Granularity)
	assert.Equal(t, domain.MetricOrders, f.Metric)
	assert.Equal(t, 4, f.Window)
	assert.Equal(t, 200, f.DeadStockDays)
}

func TestRangePreset(t *testing.T) {
	stub := &stubAnalytics{}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/sales/overview?range=7d")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), stub.filter.Start)

	w = do(r, http.MethodGet, "/api/v1/analytics/sales/overview?range=2w")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestInvalidParameters(t *testing.T) {
	r := newTestRouter(&stubAnalytics{})

	for _, target := range []string{
		"/api/v1/analytics/customers/rfm?start=yesterday",
		"/api/v1/analytics/customers/churn?churn_days=ten",
		"/api/v1/analytics/customers/cohorts?start=2024-05-01&end=2024-01-01",
		"/api/v1/analytics/products/abc?class=D",
		"/api/v1/analytics/inventory/reorder?priority=urgent",
		"/api/v1/analytics/inventory/levels?status=critical",
		"/api/v1/analytics/sales/seasonal?year=last",
		"/api/v1/analytics/sales/top_products?limit=many",
		"/api/v1/analytics/sales/trend?window=-2",
		"/api/v1/analytics/inventory/reorder?lead_time_days=-1",
	} {
		w := do(r, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	stub := &stubAnalytics{err: apperrors.Newf(apperrors.CodeValidation, "churn threshold days must be positive, got %d", -1)}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/customers/churn")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be positive")

	stub.err = apperrors.Wrap(apperrors.CodeDependency, errors.New("dial tcp"), "query customer activity")
	w = do(r, http.MethodGet, "/api/v1/analytics/customers/churn")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "dial tcp")

	stub.err = errors.New("secret internals")
	w = do(r, http.MethodGet, "/api/v1/analytics/inventory/health")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestABCClassFilter(t *testing.T) {
	stub := &stubAnalytics{abc: domain.AbcAnalysis{Products: []domain.AbcRecord{
		{ProductRevenue: domain.ProductRevenue{ProductID: "1"}, Category: domain.CategoryA},
		{ProductRevenue: domain.ProductRevenue{ProductID: "2"}, Category: domain.CategoryC},
	}}}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/products/abc?class=c")
	require.Equal(t, http.StatusOK, w.Code)

	var body domain.AbcAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "2", body.Products[0].ProductID)
}

func TestReorderPriorityFilter(t *testing.T) {
	stub := &stubAnalytics{reorder: []domain.ReorderRecommendation{
		{ReorderInput: domain.ReorderInput{SKU: "A"}, Priority: domain.PriorityCritical},
		{ReorderInput: domain.ReorderInput{SKU: "B"}, Priority: domain.PriorityLow},
		{ReorderInput: domain.ReorderInput{SKU: "C"}, Priority: domain.PriorityHigh},
	}}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/inventory/reorder?priority=critical,HIGH")
	require.Equal(t, http.StatusOK, w.Code)

	var body []domain.ReorderRecommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "A", body[0].SKU)
	assert.Equal(t, "C", body[1].SKU)
}

func TestSeasonalYear(t *testing.T) {
	stub := &stubAnalytics{}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/sales/seasonal?year=2023")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2023, stub.year)
}

func TestTopProductsLimit(t *testing.T) {
	stub := &stubAnalytics{}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/sales/top_products?limit=5&store_ids=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, stub.limit)
	assert.Equal(t, []int64{3}, stub.filter.StoreIDs)

	w = do(r, http.MethodGet, "/api/v1/analytics/sales/stores")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardJSON(t *testing.T) {
	r := newTestRouter(&stubAnalytics{})

	w := do(r, http.MethodGet, "/api/v1/analytics/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"text"`)
}

func TestInvalidateCache(t *testing.T) {
	stub := &stubAnalytics{}
	r := newTestRouter(stub)

	w := do(r, http.MethodPost, "/api/v1/analytics/cache/invalidate")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, stub.cleared)
}

func TestStockLevelsStatusFilter(t *testing.T) {
	stub := &stubAnalytics{levels: domain.StockLevelAnalysis{
		Items: []domain.StockLevel{
			{StockLevelInput: domain.StockLevelInput{SKU: "A"}, Status: domain.LowStock},
			{StockLevelInput: domain.StockLevelInput{SKU: "B"}, Status: domain.NormalStock},
		},
		Overview: domain.InventoryOverview{TotalProducts: 2, LowStockItems: 1},
	}}
	r := newTestRouter(stub)

	w := do(r, http.MethodGet, "/api/v1/analytics/inventory/levels?status=low_stock&store_ids=3")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int64{3}, stub.filter.StoreIDs)

	var got domain.StockLevelAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "A", got.Items[0].SKU)
	assert.Equal(t, 2, got.Overview.TotalProducts)
}
