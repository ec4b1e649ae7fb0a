package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/retail-insights/internal/analytics/inventory"
	"github.com/andresuchdata/retail-insights/internal/analytics/sales"
	"github.com/andresuchdata/retail-insights/internal/api/handlers"
	"github.com/andresuchdata/retail-insights/internal/cache"
	"github.com/andresuchdata/retail-insights/internal/config"
	"github.com/andresuchdata/retail-insights/internal/domain"
	"github.com/andresuchdata/retail-insights/internal/report"
	"github.com/andresuchdata/retail-insights/internal/repository"
	"github.com/andresuchdata/retail-insights/internal/repository/postgres"
	"github.com/andresuchdata/retail-insights/internal/service"
	"github.com/andresuchdata/retail-insights/pkg/logger"
	"github.com/urfave/cli/v2"
)

type contextKey string

const serviceKey contextKey = "analytics"

// opener builds the analytics service for a command and returns its cleanup.
type opener func(c *cli.Context) (handlers.Analytics, func() error, error)

func openService(c *cli.Context) (handlers.Analytics, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(cfg.Log.Level)

	if url := c.String("db-url"); url != "" {
		cfg.Database.URL = url
	}
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// one-shot runs never benefit from the in-process cache
	if cfg.Cache.Backend != "redis" {
		cfg.Cache.Enabled = false
	}
	resultCache, err := cache.New(cfg.Cache, cache.SystemClock)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	svc := service.NewAnalyticsService(repository.NewAnalyticsRepository(db), cfg.Analysis, service.WithCache(resultCache))
	return svc, db.Close, nil
}

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "start", Usage: "Period start (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "end", Usage: "Period end (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "range", Usage: "Period preset: 1d, 7d, 30d, 90d, 1y, mtd, ytd"},
		&cli.StringFlag{Name: "analysis-date", Usage: "Reference date for recency and stock age (YYYY-MM-DD)"},
		&cli.StringSliceFlag{Name: "store-id", Usage: "Restrict to store ids"},
		&cli.StringSliceFlag{Name: "brand-id", Usage: "Restrict to brand ids"},
		&cli.StringSliceFlag{Name: "category", Usage: "Restrict to product categories"},
		&cli.StringFlag{Name: "granularity", Usage: "Trend bucket: hour, day, week, month, year"},
		&cli.StringFlag{Name: "metric", Usage: "Trend metric: revenue or orders"},
		&cli.IntFlag{Name: "window", Usage: "Moving average window"},
		&cli.IntFlag{Name: "churn-days", Usage: "Churn threshold in days"},
		&cli.IntFlag{Name: "slow-moving-days", Usage: "Days without sales before stock is slow moving"},
		&cli.IntFlag{Name: "dead-stock-days", Usage: "Days without sales before stock is dead"},
		&cli.IntFlag{Name: "lead-time-days", Usage: "Supplier lead time in days"},
		&cli.IntFlag{Name: "safety-stock-days", Usage: "Safety stock cover in days"},
		&cli.IntFlag{Name: "trailing-days", Usage: "Sales window used for average daily sales"},
	}
}

func parseDay(name, raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return t, nil
}

func filterFromFlags(c *cli.Context, now time.Time) (domain.AnalysisFilter, error) {
	var filter domain.AnalysisFilter

	for name, dest := range map[string]*time.Time{
		"start":         &filter.Start,
		"end":           &filter.End,
		"analysis-date": &filter.AnalysisDate,
	} {
		if raw := c.String(name); raw != "" {
			t, err := parseDay(name, raw)
			if err != nil {
				return filter, err
			}
			*dest = t
		}
	}
	if preset := c.String("range"); preset != "" && filter.Start.IsZero() {
		r, err := sales.ResolvePreset(preset, now)
		if err != nil {
			return filter, err
		}
		filter.Start, filter.End = r.Start, r.End
	}

	ids := func(name string) ([]int64, error) {
		var out []int64
		for _, raw := range c.StringSlice(name) {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part == "" {
					continue
				}
				id, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid --%s %q: %w", name, part, err)
				}
				out = append(out, id)
			}
		}
		return out, nil
	}
	var err error
	if filter.StoreIDs, err = ids("store-id"); err != nil {
		return filter, err
	}
	if filter.BrandIDs, err = ids("brand-id"); err != nil {
		return filter, err
	}
	filter.Categories = c.StringSlice("category")

	filter.Granularity = domain.Granularity(c.String("granularity"))
	filter.Metric = domain.TrendMetric(c.String("metric"))
	filter.Window = c.Int("window")
	filter.ChurnThresholdDays = c.Int("churn-days")
	filter.SlowMovingDays = c.Int("slow-moving-days")
	filter.DeadStockDays = c.Int("dead-stock-days")
	filter.LeadTimeDays = c.Int("lead-time-days")
	filter.SafetyStockDays = c.Int("safety-stock-days")
	filter.TrailingDays = c.Int("trailing-days")
	return filter, nil
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// analysis adapts a service call into a command action that prints JSON.
func analysis[T any](call func(handlers.Analytics, context.Context, domain.AnalysisFilter) (T, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		svc, ok := c.Context.Value(serviceKey).(handlers.Analytics)
		if !ok {
			return fmt.Errorf("analytics service not initialized")
		}
		filter, err := filterFromFlags(c, time.Now())
		if err != nil {
			return err
		}
		out, err := call(svc, c.Context, filter)
		if err != nil {
			return err
		}
		return writeJSON(c, out)
	}
}

func newApp(open opener) *cli.App {
	var cleanup func() error

	command := func(name, usage string, action cli.ActionFunc, extra ...cli.Flag) *cli.Command {
		return &cli.Command{
			Name:   name,
			Usage:  usage,
			Flags:  append(filterFlags(), extra...),
			Action: action,
		}
	}

	return &cli.App{
		Name:  "analytics",
		Usage: "Run retail analyses against the sales and inventory database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Before: func(c *cli.Context) error {
			svc, closeFn, err := open(c)
			if err != nil {
				return err
			}
			cleanup = closeFn
			c.Context = context.WithValue(c.Context, serviceKey, svc)
			return nil
		},
		After: func(c *cli.Context) error {
			if cleanup != nil {
				return cleanup()
			}
			return nil
		},
		Commands: []*cli.Command{
			command("rfm", "Segment customers by recency, frequency and monetary value",
				analysis(handlers.Analytics.RFM)),
			command("churn", "Classify customers as active, at risk or churned",
				analysis(handlers.Analytics.Churn)),
			command("clv", "Estimate customer lifetime value",
				analysis(handlers.Analytics.LifetimeValues)),
			command("cohorts", "Monthly registration cohort retention",
				analysis(handlers.Analytics.Cohorts)),
			command("abc", "Pareto classification of products by revenue",
				analysis(handlers.Analytics.ABC)),
			command("turnover", "Inventory turnover per SKU",
				analysis(handlers.Analytics.Turnover)),
			command("stock-age", "Slow moving and dead stock",
				analysis(handlers.Analytics.StockAge)),
			command("reorder", "Reorder recommendations for low stock",
				analysis(handlers.Analytics.Reorder)),
			command("health", "Combined inventory health per SKU",
				analysis(handlers.Analytics.InventoryHealth)),
			command("levels", "Stock status per SKU and location with an overview",
				func(c *cli.Context) error {
					var status domain.StockStatus
					if raw := c.String("status"); raw != "" {
						parsed, err := domain.ParseStockStatus(raw)
						if err != nil {
							return err
						}
						status = parsed
					}
					return analysis(func(svc handlers.Analytics, ctx context.Context, f domain.AnalysisFilter) (domain.StockLevelAnalysis, error) {
						levels, err := svc.StockLevels(ctx, f)
						if err != nil || status == "" {
							return levels, err
						}
						levels.Items = inventory.FilterStockLevels(levels.Items, status)
						return levels, nil
					})(c)
				},
				&cli.StringFlag{Name: "status", Usage: "Keep one status: out_of_stock, low_stock, overstock or normal"}),
			command("trend", "Sales trend with moving average",
				analysis(handlers.Analytics.SalesTrend)),
			command("overview", "Sales KPIs against the previous period",
				analysis(handlers.Analytics.SalesOverview)),
			command("brands", "Brand revenue share",
				analysis(handlers.Analytics.BrandShares)),
			command("top-products", "Best selling products by revenue",
				func(c *cli.Context) error {
					limit := c.Int("limit")
					return analysis(func(svc handlers.Analytics, ctx context.Context, f domain.AnalysisFilter) ([]domain.ProductSales, error) {
						return svc.TopProducts(ctx, limit, f)
					})(c)
				},
				&cli.IntFlag{Name: "limit", Value: 10, Usage: "Number of products to return"}),
			command("stores", "Revenue, orders and share per store",
				analysis(handlers.Analytics.StoreSales)),
			command("seasonal", "Monthly seasonal index for a year",
				func(c *cli.Context) error {
					year := c.Int("year")
					return analysis(func(svc handlers.Analytics, ctx context.Context, f domain.AnalysisFilter) ([]domain.SeasonalIndex, error) {
						return svc.SeasonalIndex(ctx, year, f)
					})(c)
				},
				&cli.IntFlag{Name: "year", Usage: "Calendar year; defaults to the analysis date's year"}),
			command("dashboard", "Overview dashboard of KPI, trend, ABC and retention sections",
				func(c *cli.Context) error {
					if c.String("format") != "text" {
						return analysis(handlers.Analytics.Dashboard)(c)
					}
					svc, ok := c.Context.Value(serviceKey).(handlers.Analytics)
					if !ok {
						return fmt.Errorf("analytics service not initialized")
					}
					filter, err := filterFromFlags(c, time.Now())
					if err != nil {
						return err
					}
					d, err := svc.Dashboard(c.Context, filter)
					if err != nil {
						return err
					}
					return report.WriteText(c.App.Writer, d)
				},
				&cli.StringFlag{Name: "format", Value: "json", Usage: "Output format: json or text"}),
		},
	}
}
