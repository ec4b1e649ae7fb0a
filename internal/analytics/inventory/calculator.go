// Package inventory computes stock health: rate-based turnover, time-based
// slow and dead stock detection, and reorder recommendations.
package inventory

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/retail-insights/internal/domain"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultSlowMovingDays  = 90
	DefaultDeadStockDays   = 180
	DefaultLeadTimeDays    = 30
	DefaultSafetyStockDays = 7
	DefaultTrailingDays    = 90

	// daysOfSupplyCap is reported when nothing turns over.
	daysOfSupplyCap = 365
)

// Options are the thresholds the calculator works with.
type Options struct {
	SlowMovingDays  int
	DeadStockDays   int
	LeadTimeDays    int
	SafetyStockDays int
	TrailingDays    int
}

func DefaultOptions() Options {
	return Options{
		SlowMovingDays:  DefaultSlowMovingDays,
		DeadStockDays:   DefaultDeadStockDays,
		LeadTimeDays:    DefaultLeadTimeDays,
		SafetyStockDays: DefaultSafetyStockDays,
		TrailingDays:    DefaultTrailingDays,
	}
}

func (o Options) Validate() error {
	switch {
	case o.SlowMovingDays <= 0:
		return apperrors.Newf(apperrors.CodeValidation, "slow moving days must be positive, got %d", o.SlowMovingDays)
	case o.DeadStockDays < o.SlowMovingDays:
		return apperrors.Newf(apperrors.CodeValidation, "dead stock days (%d) must not be below slow moving days (%d)", o.DeadStockDays, o.SlowMovingDays)
	case o.LeadTimeDays < 0:
		return apperrors.Newf(apperrors.CodeValidation, "lead time days must not be negative, got %d", o.LeadTimeDays)
	case o.SafetyStockDays < 0:
		return apperrors.Newf(apperrors.CodeValidation, "safety stock days must not be negative, got %d", o.SafetyStockDays)
	case o.TrailingDays <= 0:
		return apperrors.Newf(apperrors.CodeValidation, "trailing sales days must be positive, got %d", o.TrailingDays)
	}
	return nil
}

// Calculator evaluates inventory rows against a fixed set of options.
type Calculator struct {
	opts Options
}

// NewCalculator rejects malformed options instead of silently defaulting them.
func NewCalculator(opts Options) (*Calculator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{opts: opts}, nil
}

func (c *Calculator) Options() Options {
	return c.opts
}

// ClassifyMovement buckets a turnover rate.
func ClassifyMovement(turnoverRate float64) domain.MovementStatus {
	switch {
	case turnoverRate >= 6:
		return domain.FastMoving
	case turnoverRate >= 2:
		return domain.MediumMoving
	case turnoverRate >= 0.5:
		return domain.SlowMoving
	default:
		return domain.DeadStock
	}
}

// Turnover computes the turnover rate and days of supply of one SKU.
func (c *Calculator) Turnover(in domain.TurnoverInput) domain.TurnoverRecord {
	rec := domain.TurnoverRecord{TurnoverInput: in, DaysOfSupply: daysOfSupplyCap}

	if in.AvgInventory > 0 {
		rec.TurnoverRate = in.UnitsSold / in.AvgInventory
	}
	if rec.TurnoverRate > 0 {
		rec.DaysOfSupply = daysOfSupplyCap / rec.TurnoverRate
	}
	rec.Status = ClassifyMovement(rec.TurnoverRate)
	return rec
}

// TurnoverReport returns turnover records sorted by rate, highest first.
func (c *Calculator) TurnoverReport(inputs []domain.TurnoverInput) []domain.TurnoverRecord {
	out := make([]domain.TurnoverRecord, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, c.Turnover(in))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TurnoverRate > out[j].TurnoverRate
	})
	return out
}

// DaysBetween is the absolute number of whole calendar days between two instants.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Round(da.Sub(db).Hours() / 24))
	if days < 0 {
		return -days
	}
	return days
}

// StockAge splits stocked items into slow-moving and dead-stock lists by the
// time since their latest sale. Items with recent sales appear in neither.
func (c *Calculator) StockAge(items []domain.StockAgeInput, analysisDate time.Time) domain.StockAgeAnalysis {
	result := domain.StockAgeAnalysis{
		SlowMoving: []domain.StockAgeRecord{},
		DeadStock:  []domain.StockAgeRecord{},
		Summary: domain.StockAgeSummary{
			SlowMovingDays: c.opts.SlowMovingDays,
			DeadStockDays:  c.opts.DeadStockDays,
		},
	}

	slowValue, deadValue := decimal.Zero, decimal.Zero
	for _, item := range items {
		value := decimal.NewFromFloat(item.OnHand).Mul(decimal.NewFromFloat(item.CostPerUnit))
		rec := domain.StockAgeRecord{StockAgeInput: item, StockValue: value.InexactFloat64()}

		if item.LastSaleAt == nil {
			result.DeadStock = append(result.DeadStock, rec)
			deadValue = deadValue.Add(value)
			continue
		}

		days := DaysBetween(analysisDate, *item.LastSaleAt)
		rec.DaysSinceLastSale = &days
		switch {
		case days >= c.opts.DeadStockDays:
			result.DeadStock = append(result.DeadStock, rec)
			deadValue = deadValue.Add(value)
		case days >= c.opts.SlowMovingDays:
			result.SlowMoving = append(result.SlowMoving, rec)
			slowValue = slowValue.Add(value)
		}
	}

	result.Summary.SlowMovingCount = len(result.SlowMoving)
	result.Summary.DeadStockCount = len(result.DeadStock)
	result.Summary.SlowMovingValue = slowValue.InexactFloat64()
	result.Summary.DeadStockValue = deadValue.InexactFloat64()
	return result
}

// Priority ranks how urgently a SKU needs replenishing.
func Priority(available, reorderLevel float64) domain.ReorderPriority {
	switch {
	case available <= 0:
		return domain.PriorityCritical
	case available <= reorderLevel*0.5:
		return domain.PriorityHigh
	case available <= reorderLevel:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// AvgDailySales spreads trailing-window sales over the window length.
func (c *Calculator) AvgDailySales(unitsSoldTrailing float64) float64 {
	if unitsSoldTrailing <= 0 {
		return 0
	}
	return unitsSoldTrailing / float64(c.opts.TrailingDays)
}

// Reorder computes the reorder point and order quantity of one SKU.
func (c *Calculator) Reorder(in domain.ReorderInput) domain.ReorderRecommendation {
	rec := domain.ReorderRecommendation{ReorderInput: in}

	// 1. Average daily sales over the trailing window
	rec.AvgDailySales = c.AvgDailySales(in.UnitsSoldTrailing)

	// 2. Demand expected while an order is in transit
	rec.DemandDuringLeadTime = rec.AvgDailySales * float64(c.opts.LeadTimeDays)

	// 3. Safety stock buffer
	rec.SafetyStock = rec.AvgDailySales * float64(c.opts.SafetyStockDays)

	// 4. Reorder point = lead time demand + safety stock
	rec.ReorderPoint = rec.DemandDuringLeadTime + rec.SafetyStock

	// 5. Order enough to refill to max stock or cover the reorder point, whichever is larger
	qty := math.Max(in.MaxStockLevel-in.OnHand, rec.ReorderPoint-in.Available)
	rec.RecommendedOrderQty = math.Max(0, qty)

	// 6. Cost of the recommended order
	rec.EstimatedCost = decimal.NewFromFloat(rec.RecommendedOrderQty).
		Mul(decimal.NewFromFloat(in.CostPerUnit)).
		InexactFloat64()

	// 7. Urgency from the available quantity
	rec.Priority = Priority(in.Available, in.ReorderLevel)
	return rec
}

// ReorderReport returns recommendations ordered Critical first. Items sharing a
// priority keep their input order.
func (c *Calculator) ReorderReport(inputs []domain.ReorderInput) []domain.ReorderRecommendation {
	out := make([]domain.ReorderRecommendation, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, c.Reorder(in))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// Health combines the turnover and reorder views of each item, ordered like ReorderReport.
func (c *Calculator) Health(items []domain.InventoryItem) []domain.InventoryHealthRecord {
	out := make([]domain.InventoryHealthRecord, 0, len(items))
	for _, item := range items {
		turnover := c.Turnover(domain.TurnoverInput{
			SKU:          item.SKU,
			Name:         item.Name,
			UnitsSold:    item.UnitsSoldPeriod,
			AvgInventory: item.AvgInventory,
		})
		reorder := c.Reorder(domain.ReorderInput{
			SKU:               item.SKU,
			Name:              item.Name,
			OnHand:            item.OnHand,
			Available:         item.Available,
			ReorderLevel:      item.ReorderLevel,
			MaxStockLevel:     item.MaxStockLevel,
			CostPerUnit:       item.CostPerUnit,
			UnitsSoldTrailing: item.UnitsSoldTrailing,
		})

		out = append(out, domain.InventoryHealthRecord{
			SKU:                 item.SKU,
			Name:                item.Name,
			OnHand:              item.OnHand,
			CostPerUnit:         item.CostPerUnit,
			AvgDailySales:       reorder.AvgDailySales,
			TurnoverRate:        turnover.TurnoverRate,
			DaysOfSupply:        turnover.DaysOfSupply,
			Status:              turnover.Status,
			ReorderPriority:     reorder.Priority,
			RecommendedOrderQty: reorder.RecommendedOrderQty,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReorderPriority.Rank() < out[j].ReorderPriority.Rank()
	})
	return out
}

// ClassifyStock places a record against its levels. A max stock level of 0
// means no ceiling was set, so such records are never Overstock.
func ClassifyStock(available, reorderLevel, maxStockLevel float64) domain.StockStatus {
	switch {
	case available <= 0:
		return domain.OutOfStock
	case available <= reorderLevel:
		return domain.LowStock
	case maxStockLevel > 0 && available >= maxStockLevel:
		return domain.Overstock
	default:
		return domain.NormalStock
	}
}

// StockLevels values and classifies every record, highest stock value first.
// The overview counts records per status and distinct SKUs for total products.
func (c *Calculator) StockLevels(items []domain.StockLevelInput) domain.StockLevelAnalysis {
	result := domain.StockLevelAnalysis{Items: make([]domain.StockLevel, 0, len(items))}

	total := decimal.Zero
	skus := make(map[string]struct{}, len(items))
	for _, item := range items {
		value := decimal.NewFromFloat(item.OnHand).Mul(decimal.NewFromFloat(item.CostPerUnit))
		total = total.Add(value)
		skus[item.SKU] = struct{}{}

		level := domain.StockLevel{
			StockLevelInput: item,
			StockValue:      value.InexactFloat64(),
			Status:          ClassifyStock(item.Available, item.ReorderLevel, item.MaxStockLevel),
		}
		switch level.Status {
		case domain.OutOfStock:
			result.Overview.OutOfStockItems++
		case domain.LowStock:
			result.Overview.LowStockItems++
		case domain.Overstock:
			result.Overview.OverstockItems++
		}
		result.Items = append(result.Items, level)
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].StockValue > result.Items[j].StockValue
	})
	result.Overview.TotalProducts = len(skus)
	result.Overview.TotalStockValue = total.InexactFloat64()
	return result
}

// FilterStockLevels keeps the records in the given status.
func FilterStockLevels(levels []domain.StockLevel, status domain.StockStatus) []domain.StockLevel {
	out := make([]domain.StockLevel, 0, len(levels))
	for _, l := range levels {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out
}
