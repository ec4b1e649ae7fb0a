package service

import (
	"context"
	"time"

	"github.com/andresuchdata/retail-insights/internal/analytics/abc"
	"github.com/andresuchdata/retail-insights/internal/analytics/cohort"
	"github.com/andresuchdata/retail-insights/internal/analytics/customer"
	"github.com/andresuchdata/retail-insights/internal/analytics/inventory"
	"github.com/andresuchdata/retail-insights/internal/analytics/rfm"
	"github.com/andresuchdata/retail-insights/internal/analytics/sales"
	"github.com/andresuchdata/retail-insights/internal/analytics/trend"
	"github.com/andresuchdata/retail-insights/internal/cache"
	"github.com/andresuchdata/retail-insights/internal/config"
	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/andresuchdata/retail-insights/internal/repository"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/andresuchdata/retail-insights/pkg/metrics"
	"github.com/rs/zerolog/log"
)

type AnalyticsService struct {
	repo     repository.AnalyticsRepository
	cache    cache.ResultCache
	metrics  *metrics.AnalysisMetrics
	defaults config.AnalysisConfig
	now      func() time.Time
}

type Option func(*AnalyticsService)

func WithCache(c cache.ResultCache) Option {
	return func(s *AnalyticsService) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithMetrics(m *metrics.AnalysisMetrics) Option {
	return func(s *AnalyticsService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *AnalyticsService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewAnalyticsService(repo repository.AnalyticsRepository, defaults config.AnalysisConfig, opts ...Option) *AnalyticsService {
	s := &AnalyticsService{
		repo:     repo,
		cache:    cache.NewNoop(),
		metrics:  metrics.NewAnalysisMetrics(nil),
		defaults: defaults,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cached serves operation from the result cache or computes and stores it.
// Cache failures are logged and never fail the analysis.
func cached[T any](ctx context.Context, s *AnalyticsService, operation string, filter domain.AnalysisFilter, compute func(context.Context) (T, error)) (T, error) {
	started := time.Now()
	key := cache.Key(operation, filter)

	var out T
	if ok, err := s.cache.Get(ctx, key, &out); err == nil && ok {
		s.metrics.IncCacheHit(operation)
		return out, nil
	} else if err != nil {
		log.Warn().Err(err).Str("operation", operation).Msg("analytics: cache get failed")
	}
	s.metrics.IncCacheMiss(operation)

	out, err := compute(ctx)
	if err != nil {
		s.metrics.IncFailure(operation)
		var zero T
		return zero, err
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		log.Warn().Err(err).Str("operation", operation).Msg("analytics: cache set failed")
	}
	s.metrics.ObserveDuration(operation, time.Since(started))
	return out, nil
}

// withDefaults fills unset thresholds from configuration and pins the
// analysis date to the start of today. Queries cover that whole day.
func (s *AnalyticsService) withDefaults(filter domain.AnalysisFilter) (domain.AnalysisFilter, error) {
	if filter.AnalysisDate.IsZero() {
		now := s.now()
		filter.AnalysisDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	granularity, err := domain.ParseGranularity(string(filter.Granularity))
	if err != nil {
		return filter, err
	}
	filter.Granularity = granularity

	metric, err := domain.ParseTrendMetric(string(filter.Metric))
	if err != nil {
		return filter, err
	}
	filter.Metric = metric

	fill := func(v *int, configured, fallback int) {
		if *v != 0 {
			return
		}
		if configured > 0 {
			*v = configured
			return
		}
		*v = fallback
	}
	fill(&filter.ChurnThresholdDays, s.defaults.ChurnThresholdDays, customer.DefaultChurnThresholdDays)
	fill(&filter.SlowMovingDays, s.defaults.SlowMovingDays, inventory.DefaultSlowMovingDays)
	fill(&filter.DeadStockDays, s.defaults.DeadStockDays, inventory.DefaultDeadStockDays)
	fill(&filter.LeadTimeDays, s.defaults.LeadTimeDays, inventory.DefaultLeadTimeDays)
	fill(&filter.SafetyStockDays, s.defaults.SafetyStockDays, inventory.DefaultSafetyStockDays)
	fill(&filter.TrailingDays, s.defaults.TrailingSalesDays, inventory.DefaultTrailingDays)
	switch {
	case filter.Window < 0:
		return filter, apperrors.Newf(apperrors.CodeValidation, "moving average window must be positive, got %d", filter.Window)
	case filter.Window == 0:
		filter.Window = trend.DefaultWindow
	}
	return filter, nil
}

func (s *AnalyticsService) calculator(filter domain.AnalysisFilter) (*inventory.Calculator, error) {
	return inventory.NewCalculator(inventory.Options{
		SlowMovingDays:  filter.SlowMovingDays,
		DeadStockDays:   filter.DeadStockDays,
		LeadTimeDays:    filter.LeadTimeDays,
		SafetyStockDays: filter.SafetyStockDays,
		TrailingDays:    filter.TrailingDays,
	})
}

func (s *AnalyticsService) RFM(ctx context.Context, filter domain.AnalysisFilter) (domain.RFMAnalysis, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.RFMAnalysis{}, err
	}
	return cached(ctx, s, "rfm", filter, func(ctx context.Context) (domain.RFMAnalysis, error) {
		customers, err := s.repo.CustomerMetrics(ctx, filter)
		if err != nil {
			return domain.RFMAnalysis{}, err
		}
		return rfm.Analyze(customers), nil
	})
}

func (s *AnalyticsService) Churn(ctx context.Context, filter domain.AnalysisFilter) (domain.ChurnAnalysis, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.ChurnAnalysis{}, err
	}
	return cached(ctx, s, "churn", filter, func(ctx context.Context) (domain.ChurnAnalysis, error) {
		activity, err := s.repo.CustomerActivity(ctx, filter)
		if err != nil {
			return domain.ChurnAnalysis{}, err
		}
		return customer.Churn(activity, filter.ChurnThresholdDays)
	})
}

func (s *AnalyticsService) LifetimeValues(ctx context.Context, filter domain.AnalysisFilter) ([]domain.LifetimeValue, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "clv", filter, func(ctx context.Context) ([]domain.LifetimeValue, error) {
		values, err := s.repo.CustomerValues(ctx, filter)
		if err != nil {
			return nil, err
		}
		return customer.LifetimeValues(values), nil
	})
}

// Cohorts restricts registrations to the filter's range when one is set.
func (s *AnalyticsService) Cohorts(ctx context.Context, filter domain.AnalysisFilter) (domain.CohortAnalysis, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.CohortAnalysis{}, err
	}
	return cached(ctx, s, "cohorts", filter, func(ctx context.Context) (domain.CohortAnalysis, error) {
		customers, err := s.repo.CohortCustomers(ctx, filter)
		if err != nil {
			return domain.CohortAnalysis{}, err
		}
		activity, err := s.repo.MonthlyActivity(ctx, filter)
		if err != nil {
			return domain.CohortAnalysis{}, err
		}

		var window *domain.DateRange
		if !filter.Start.IsZero() || !filter.End.IsZero() {
			r := filter.Range()
			window = &r
		}
		return cohort.Build(customers, activity, window), nil
	})
}

func (s *AnalyticsService) ABC(ctx context.Context, filter domain.AnalysisFilter) (domain.AbcAnalysis, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.AbcAnalysis{}, err
	}
	return cached(ctx, s, "abc", filter, func(ctx context.Context) (domain.AbcAnalysis, error) {
		products, err := s.repo.ProductRevenue(ctx, filter)
		if err != nil {
			return domain.AbcAnalysis{}, err
		}
		return abc.Classify(products), nil
	})
}

func (s *AnalyticsService) Turnover(ctx context.Context, filter domain.AnalysisFilter) ([]domain.TurnoverRecord, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	calc, err := s.calculator(filter)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "turnover", filter, func(ctx context.Context) ([]domain.TurnoverRecord, error) {
		inputs, err := s.repo.TurnoverInputs(ctx, filter)
		if err != nil {
			return nil, err
		}
		return calc.TurnoverReport(inputs), nil
	})
}

func (s *AnalyticsService) StockAge(ctx context.Context, filter domain.AnalysisFilter) (domain.StockAgeAnalysis, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.StockAgeAnalysis{}, err
	}
	calc, err := s.calculator(filter)
	if err != nil {
		return domain.StockAgeAnalysis{}, err
	}
	return cached(ctx, s, "stock_age", filter, func(ctx context.Context) (domain.StockAgeAnalysis, error) {
		items, err := s.repo.StockAgeInputs(ctx, filter)
		if err != nil {
			return domain.StockAgeAnalysis{}, err
		}
		return calc.StockAge(items, filter.AnalysisDate), nil
	})
}

func (s *AnalyticsService) Reorder(ctx context.Context, filter domain.AnalysisFilter) ([]domain.ReorderRecommendation, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	calc, err := s.calculator(filter)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "reorder", filter, func(ctx context.Context) ([]domain.ReorderRecommendation, error) {
		inputs, err := s.repo.ReorderInputs(ctx, filter)
		if err != nil {
			return nil, err
		}
		return calc.ReorderReport(inputs), nil
	})
}

func (s *AnalyticsService) InventoryHealth(ctx context.Context, filter domain.AnalysisFilter) ([]domain.InventoryHealthRecord, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	calc, err := s.calculator(filter)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "inventory_health", filter, func(ctx context.Context) ([]domain.InventoryHealthRecord, error) {
		items, err := s.repo.InventoryItems(ctx, filter)
		if err != nil {
			return nil, err
		}
		return calc.Health(items), nil
	})
}

// StockLevels classifies every inventory record and summarizes the stock position.
func (s *AnalyticsService) StockLevels(ctx context.Context, filter domain.AnalysisFilter) (domain.StockLevelAnalysis, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.StockLevelAnalysis{}, err
	}
	calc, err := s.calculator(filter)
	if err != nil {
		return domain.StockLevelAnalysis{}, err
	}
	return cached(ctx, s, "stock_levels", filter, func(ctx context.Context) (domain.StockLevelAnalysis, error) {
		items, err := s.repo.StockLevels(ctx, filter)
		if err != nil {
			return domain.StockLevelAnalysis{}, err
		}
		return calc.StockLevels(items), nil
	})
}

func (s *AnalyticsService) SalesTrend(ctx context.Context, filter domain.AnalysisFilter) (domain.SalesTrend, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.SalesTrend{}, err
	}
	return cached(ctx, s, "sales_trend", filter, func(ctx context.Context) (domain.SalesTrend, error) {
		periods, err := s.repo.SalesByPeriod(ctx, filter)
		if err != nil {
			return domain.SalesTrend{}, err
		}
		return trend.Summarize(periods, filter.Metric, filter.Granularity, filter.Window)
	})
}

// SalesOverview compares the filter's range, or the default preset when no
// start is given, with the equally long range before it.
func (s *AnalyticsService) SalesOverview(ctx context.Context, filter domain.AnalysisFilter) (domain.SalesOverview, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return domain.SalesOverview{}, err
	}
	period := filter.Range()
	if period.Start.IsZero() {
		if period, err = sales.ResolvePreset(sales.DefaultPreset, filter.AnalysisDate); err != nil {
			return domain.SalesOverview{}, err
		}
	}
	if period.End.IsZero() {
		period.End = filter.AnalysisDate
	}
	filter.Start, filter.End = period.Start, period.End

	return cached(ctx, s, "sales_overview", filter, func(ctx context.Context) (domain.SalesOverview, error) {
		previous := sales.PreviousRange(period)
		current, err := s.repo.SalesTotals(ctx, period, filter)
		if err != nil {
			return domain.SalesOverview{}, err
		}
		before, err := s.repo.SalesTotals(ctx, previous, filter)
		if err != nil {
			return domain.SalesOverview{}, err
		}
		return sales.Overview(period, current, before), nil
	})
}

func (s *AnalyticsService) BrandShares(ctx context.Context, filter domain.AnalysisFilter) ([]domain.BrandShare, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "brand_share", filter, func(ctx context.Context) ([]domain.BrandShare, error) {
		brands, err := s.repo.BrandRevenue(ctx, filter)
		if err != nil {
			return nil, err
		}
		return sales.BrandShares(brands), nil
	})
}

// TopProducts returns the best sellers by revenue. The full ranking is
// cached once per filter and the limit applied afterwards.
func (s *AnalyticsService) TopProducts(ctx context.Context, limit int, filter domain.AnalysisFilter) ([]domain.ProductSales, error) {
	if limit < 0 {
		return nil, apperrors.Newf(apperrors.CodeValidation, "limit must not be negative, got %d", limit)
	}
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	ranked, err := cached(ctx, s, "top_products", filter, func(ctx context.Context) ([]domain.ProductSales, error) {
		products, err := s.repo.ProductSales(ctx, filter)
		if err != nil {
			return nil, err
		}
		return sales.RankProducts(products), nil
	})
	if err != nil {
		return nil, err
	}
	return sales.TopProducts(ranked, limit)
}

func (s *AnalyticsService) StoreSales(ctx context.Context, filter domain.AnalysisFilter) ([]domain.StorePerformance, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, "store_sales", filter, func(ctx context.Context) ([]domain.StorePerformance, error) {
		stores, err := s.repo.StoreSales(ctx, filter)
		if err != nil {
			return nil, err
		}
		return sales.StorePerformances(stores), nil
	})
}

// SeasonalIndex indexes each month of year against the year's monthly mean.
// A year of 0 uses the year of the analysis date.
func (s *AnalyticsService) SeasonalIndex(ctx context.Context, year int, filter domain.AnalysisFilter) ([]domain.SeasonalIndex, error) {
	filter, err := s.withDefaults(filter)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = filter.AnalysisDate.Year()
	}
	loc := filter.AnalysisDate.Location()
	filter.Start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	filter.End = time.Date(year, time.December, 31, 0, 0, 0, 0, loc)

	return cached(ctx, s, "seasonal", filter, func(ctx context.Context) ([]domain.SeasonalIndex, error) {
		monthly, err := s.repo.MonthlyRevenue(ctx, year, filter)
		if err != nil {
			return nil, err
		}
		return sales.SeasonalIndices(monthly), nil
	})
}

// Invalidate drops every cached analysis.
func (s *AnalyticsService) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
