package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/retail-insights/internal/analytics/abc"
	inv "github.com/andresuchdata/retail-insights/internal/analytics/inventory"
	"github.com/andresuchdata/retail-insights/internal/api/middleware"
	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/andresuchdata/retail-insights/internal/report"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Analytics is the set of analyses the handler exposes.
type Analytics interface {
	RFM(ctx context.Context, filter domain.AnalysisFilter) (domain.RFMAnalysis, error)
	Churn(ctx context.Context, filter domain.AnalysisFilter) (domain.ChurnAnalysis, error)
	LifetimeValues(ctx context.Context, filter domain.AnalysisFilter) ([]domain.LifetimeValue, error)
	Cohorts(ctx context.Context, filter domain.AnalysisFilter) (domain.CohortAnalysis, error)
	ABC(ctx context.Context, filter domain.AnalysisFilter) (domain.AbcAnalysis, error)
	Turnover(ctx context.Context, filter domain.AnalysisFilter) ([]domain.TurnoverRecord, error)
	StockAge(ctx context.Context, filter domain.AnalysisFilter) (domain.StockAgeAnalysis, error)
	Reorder(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ReorderRecommendation, error)
	InventoryHealth(ctx context.Context, filter domain.AnalysisFilter) ([]domain.InventoryHealthRecord, error)
	StockLevels(ctx context.Context, filter domain.AnalysisFilter) (domain.StockLevelAnalysis, error)
	SalesTrend(ctx context.Context, filter domain.AnalysisFilter) (domain.SalesTrend, error)
	SalesOverview(ctx context.Context, filter domain.AnalysisFilter) (domain.SalesOverview, error)
	BrandShares(ctx context.Context, filter domain.AnalysisFilter) ([]domain.BrandShare, error)
	TopProducts(ctx context.Context, limit int, filter domain.AnalysisFilter) ([]domain.ProductSales, error)
	StoreSales(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StorePerformance, error)
	SeasonalIndex(ctx context.Context, year int, filter domain.AnalysisFilter) ([]domain.SeasonalIndex, error)
	Dashboard(ctx context.Context, filter domain.AnalysisFilter) (report.Dashboard, error)
	Invalidate(ctx context.Context) error
}

type AnalyticsHandler struct {
	service Analytics
	now     func() time.Time
}

func NewAnalyticsHandler(service Analytics) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, now: time.Now}
}

// Register mounts the analytics routes on group.
func (h *AnalyticsHandler) Register(group *gin.RouterGroup) {
	customers := group.Group("/customers")
	{
		customers.GET("/rfm", h.GetRFM)
		customers.GET("/churn", h.GetChurn)
		customers.GET("/lifetime_value", h.GetLifetimeValue)
		customers.GET("/cohorts", h.GetCohorts)
	}

	group.GET("/products/abc", h.GetABC)

	inventory := group.Group("/inventory")
	{
		inventory.GET("/turnover", h.GetTurnover)
		inventory.GET("/stock_age", h.GetStockAge)
		inventory.GET("/reorder", h.GetReorder)
		inventory.GET("/health", h.GetInventoryHealth)
		inventory.GET("/levels", h.GetStockLevels)
	}

	salesGroup := group.Group("/sales")
	{
		salesGroup.GET("/trend", h.GetSalesTrend)
		salesGroup.GET("/overview", h.GetSalesOverview)
		salesGroup.GET("/brands", h.GetBrandShares)
		salesGroup.GET("/top_products", h.GetTopProducts)
		salesGroup.GET("/stores", h.GetStoreSales)
		salesGroup.GET("/seasonal", h.GetSeasonalIndex)
	}

	group.GET("/dashboard", h.GetDashboard)
	group.POST("/cache/invalidate", h.InvalidateCache)
}

// writeError maps typed errors to their HTTP status. Untyped errors are
// reported as internal without leaking their message.
func writeError(c *gin.Context, err error) {
	typed := apperrors.As(err)
	if typed == nil {
		typed = apperrors.Wrap(apperrors.CodeInternal, err, "unexpected error")
	}
	meta := apperrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.DetailsAllowed && typed.Message() != "" {
		msg = typed.Message()
	}

	event := log.Warn()
	if meta.HTTPStatus >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("code", string(typed.Code())).
		Msg("analytics request failed")

	c.JSON(meta.HTTPStatus, gin.H{"error": msg, "code": typed.Code()})
}

// serve parses the filter, runs fn and writes its result.
func serve[T any](h *AnalyticsHandler, c *gin.Context, fn func(context.Context, domain.AnalysisFilter) (T, error)) {
	filter, err := parseFilter(c, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := fn(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *AnalyticsHandler) GetRFM(c *gin.Context) {
	serve(h, c, h.service.RFM)
}

func (h *AnalyticsHandler) GetChurn(c *gin.Context) {
	serve(h, c, h.service.Churn)
}

func (h *AnalyticsHandler) GetCohorts(c *gin.Context) {
	serve(h, c, h.service.Cohorts)
}

func (h *AnalyticsHandler) GetLifetimeValue(c *gin.Context) {
	serve(h, c, h.service.LifetimeValues)
}

func (h *AnalyticsHandler) GetTurnover(c *gin.Context) {
	serve(h, c, h.service.Turnover)
}

func (h *AnalyticsHandler) GetStockAge(c *gin.Context) {
	serve(h, c, h.service.StockAge)
}

func (h *AnalyticsHandler) GetSalesTrend(c *gin.Context) {
	serve(h, c, h.service.SalesTrend)
}

func (h *AnalyticsHandler) GetInventoryHealth(c *gin.Context) {
	serve(h, c, h.service.InventoryHealth)
}

func (h *AnalyticsHandler) GetSalesOverview(c *gin.Context) {
	serve(h, c, h.service.SalesOverview)
}

func (h *AnalyticsHandler) GetBrandShares(c *gin.Context) {
	serve(h, c, h.service.BrandShares)
}

// GetABC optionally narrows the product list with ?class=A|B|C.
func (h *AnalyticsHandler) GetABC(c *gin.Context) {
	var class domain.AbcCategory
	if raw := strings.TrimSpace(c.Query("class")); raw != "" {
		parsed, err := domain.ParseAbcCategory(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		class = parsed
	}

	serve(h, c, func(ctx context.Context, filter domain.AnalysisFilter) (domain.AbcAnalysis, error) {
		analysis, err := h.service.ABC(ctx, filter)
		if err != nil || class == "" {
			return analysis, err
		}
		analysis.Products = abc.Filter(analysis.Products, class)
		return analysis, nil
	})
}

// GetStockLevels optionally narrows the records with ?status=. The overview
// always covers every record in scope.
func (h *AnalyticsHandler) GetStockLevels(c *gin.Context) {
	var status domain.StockStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, err := domain.ParseStockStatus(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		status = parsed
	}

	serve(h, c, func(ctx context.Context, filter domain.AnalysisFilter) (domain.StockLevelAnalysis, error) {
		levels, err := h.service.StockLevels(ctx, filter)
		if err != nil || status == "" {
			return levels, err
		}
		levels.Items = inv.FilterStockLevels(levels.Items, status)
		return levels, nil
	})
}

// GetReorder optionally keeps only the priorities listed in ?priority=.
func (h *AnalyticsHandler) GetReorder(c *gin.Context) {
	wanted := map[domain.ReorderPriority]struct{}{}
	for _, raw := range queryList(c, "priority") {
		p, err := domain.ParseReorderPriority(strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:]))
		if err != nil {
			writeError(c, err)
			return
		}
		wanted[p] = struct{}{}
	}

	serve(h, c, func(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ReorderRecommendation, error) {
		recs, err := h.service.Reorder(ctx, filter)
		if err != nil || len(wanted) == 0 {
			return recs, err
		}
		kept := make([]domain.ReorderRecommendation, 0, len(recs))
		for _, r := range recs {
			if _, ok := wanted[r.Priority]; ok {
				kept = append(kept, r)
			}
		}
		return kept, nil
	})
}

func (h *AnalyticsHandler) GetTopProducts(c *gin.Context) {
	limit, err := parseInt(c, "limit")
	if err != nil {
		writeError(c, err)
		return
	}
	serve(h, c, func(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ProductSales, error) {
		return h.service.TopProducts(ctx, limit, filter)
	})
}

func (h *AnalyticsHandler) GetStoreSales(c *gin.Context) {
	serve(h, c, h.service.StoreSales)
}

func (h *AnalyticsHandler) GetSeasonalIndex(c *gin.Context) {
	year, err := parseInt(c, "year")
	if err != nil {
		writeError(c, err)
		return
	}
	serve(h, c, func(ctx context.Context, filter domain.AnalysisFilter) ([]domain.SeasonalIndex, error) {
		return h.service.SeasonalIndex(ctx, year, filter)
	})
}

func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	serve(h, c, h.service.Dashboard)
}

func (h *AnalyticsHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		writeError(c, apperrors.Wrap(apperrors.CodeDependency, err, "cache invalidation failed"))
		return
	}
	c.Status(http.StatusNoContent)
}
