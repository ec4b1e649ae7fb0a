package domain

import (
	"strings"
	"time"

	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
)

// MovementStatus is the rate-based movement class of a SKU.
type MovementStatus string

const (
	FastMoving   MovementStatus = "FastMoving"
	MediumMoving MovementStatus = "MediumMoving"
	SlowMoving   MovementStatus = "SlowMoving"
	DeadStock    MovementStatus = "DeadStock"
)

type ReorderPriority string

const (
	PriorityCritical ReorderPriority = "Critical"
	PriorityHigh     ReorderPriority = "High"
	PriorityMedium   ReorderPriority = "Medium"
	PriorityLow      ReorderPriority = "Low"
)

var priorityRank = map[ReorderPriority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank orders priorities with Critical first. Unknown values sort last.
func (p ReorderPriority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// ParseReorderPriority matches a priority label case-sensitively.
func ParseReorderPriority(raw string) (ReorderPriority, error) {
	p := ReorderPriority(raw)
	if _, ok := priorityRank[p]; !ok {
		return "", apperrors.Newf(apperrors.CodeValidation, "unknown reorder priority %q", raw)
	}
	return p, nil
}

// TurnoverInput is the per-SKU sales and stock aggregate for a period.
type TurnoverInput struct {
	SKU          string  `json:"sku" db:"sku"`
	Name         string  `json:"name,omitempty" db:"name"`
	UnitsSold    float64 `json:"units_sold" db:"units_sold"`
	AvgInventory float64 `json:"avg_inventory" db:"avg_inventory"`
}

type TurnoverRecord struct {
	TurnoverInput
	TurnoverRate float64        `json:"turnover_rate"`
	DaysOfSupply float64        `json:"days_of_supply"`
	Status       MovementStatus `json:"status"`
}

// StockAgeInput is a stocked SKU with the date of its latest sale, if any.
type StockAgeInput struct {
	SKU         string     `json:"sku" db:"sku"`
	Name        string     `json:"name,omitempty" db:"name"`
	OnHand      float64    `json:"on_hand" db:"on_hand"`
	CostPerUnit float64    `json:"cost_per_unit" db:"cost_per_unit"`
	LastSaleAt  *time.Time `json:"last_sale_at,omitempty" db:"last_sale_at"`
}

type StockAgeRecord struct {
	StockAgeInput
	DaysSinceLastSale *int    `json:"days_since_last_sale"`
	StockValue        float64 `json:"stock_value"`
}

type StockAgeSummary struct {
	SlowMovingCount int     `json:"slow_moving_count"`
	DeadStockCount  int     `json:"dead_stock_count"`
	SlowMovingValue float64 `json:"slow_moving_value"`
	DeadStockValue  float64 `json:"dead_stock_value"`
	SlowMovingDays  int     `json:"slow_moving_days"`
	DeadStockDays   int     `json:"dead_stock_days"`
}

type StockAgeAnalysis struct {
	SlowMoving []StockAgeRecord `json:"slow_moving"`
	DeadStock  []StockAgeRecord `json:"dead_stock"`
	Summary    StockAgeSummary  `json:"summary"`
}

// ReorderInput is a SKU's stock position plus its trailing-window sales.
type ReorderInput struct {
	SKU               string  `json:"sku" db:"sku"`
	Name              string  `json:"name,omitempty" db:"name"`
	OnHand            float64 `json:"on_hand" db:"on_hand"`
	Available         float64 `json:"available" db:"available"`
	ReorderLevel      float64 `json:"reorder_level" db:"reorder_level"`
	MaxStockLevel     float64 `json:"max_stock_level" db:"max_stock_level"`
	CostPerUnit       float64 `json:"cost_per_unit" db:"cost_per_unit"`
	UnitsSoldTrailing float64 `json:"units_sold_trailing" db:"units_sold_trailing"`
}

type ReorderRecommendation struct {
	ReorderInput
	AvgDailySales        float64         `json:"avg_daily_sales"`
	DemandDuringLeadTime float64         `json:"demand_during_lead_time"`
	SafetyStock          float64         `json:"safety_stock"`
	ReorderPoint         float64         `json:"reorder_point"`
	RecommendedOrderQty  float64         `json:"recommended_order_qty"`
	EstimatedCost        float64         `json:"estimated_cost"`
	Priority             ReorderPriority `json:"priority"`
}

// InventoryItem is the combined per-SKU input for a full health assessment.
type InventoryItem struct {
	SKU               string  `json:"sku" db:"sku"`
	Name              string  `json:"name,omitempty" db:"name"`
	OnHand            float64 `json:"on_hand" db:"on_hand"`
	Available         float64 `json:"available" db:"available"`
	CostPerUnit       float64 `json:"cost_per_unit" db:"cost_per_unit"`
	ReorderLevel      float64 `json:"reorder_level" db:"reorder_level"`
	MaxStockLevel     float64 `json:"max_stock_level" db:"max_stock_level"`
	UnitsSoldPeriod   float64 `json:"units_sold_period" db:"units_sold_period"`
	AvgInventory      float64 `json:"avg_inventory" db:"avg_inventory"`
	UnitsSoldTrailing float64 `json:"units_sold_trailing" db:"units_sold_trailing"`
}

type InventoryHealthRecord struct {
	SKU                 string          `json:"sku"`
	Name                string          `json:"name,omitempty"`
	OnHand              float64         `json:"on_hand"`
	CostPerUnit         float64         `json:"cost_per_unit"`
	AvgDailySales       float64         `json:"avg_daily_sales"`
	TurnoverRate        float64         `json:"turnover_rate"`
	DaysOfSupply        float64         `json:"days_of_supply"`
	Status              MovementStatus  `json:"status"`
	ReorderPriority     ReorderPriority `json:"reorder_priority"`
	RecommendedOrderQty float64         `json:"recommended_order_qty"`
}

// StockStatus is the position of a stock record against its reorder and max levels.
type StockStatus string

const (
	OutOfStock  StockStatus = "Out of Stock"
	LowStock    StockStatus = "Low Stock"
	Overstock   StockStatus = "Overstock"
	NormalStock StockStatus = "Normal"
)

var stockStatuses = []StockStatus{OutOfStock, LowStock, Overstock, NormalStock}

// ParseStockStatus matches a status label ignoring case, spaces and underscores,
// so "low_stock" and "Low Stock" are the same status.
func ParseStockStatus(raw string) (StockStatus, error) {
	key := normalizeLabel(raw)
	for _, s := range stockStatuses {
		if normalizeLabel(string(s)) == key {
			return s, nil
		}
	}
	return "", apperrors.Newf(apperrors.CodeValidation, "unknown stock status %q", raw)
}

func normalizeLabel(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// StockLevelInput is one inventory record: a SKU at a location.
type StockLevelInput struct {
	SKU           string  `json:"sku" db:"sku"`
	Name          string  `json:"name,omitempty" db:"name"`
	Brand         string  `json:"brand,omitempty" db:"brand"`
	Location      string  `json:"location,omitempty" db:"location"`
	OnHand        float64 `json:"on_hand" db:"on_hand"`
	Available     float64 `json:"available" db:"available"`
	ReorderLevel  float64 `json:"reorder_level" db:"reorder_level"`
	MaxStockLevel float64 `json:"max_stock_level" db:"max_stock_level"`
	CostPerUnit   float64 `json:"cost_per_unit" db:"cost_per_unit"`
}

type StockLevel struct {
	StockLevelInput
	StockValue float64     `json:"stock_value"`
	Status     StockStatus `json:"stock_status"`
}

type InventoryOverview struct {
	TotalProducts   int     `json:"total_products"`
	TotalStockValue float64 `json:"total_stock_value"`
	LowStockItems   int     `json:"low_stock_items"`
	OutOfStockItems int     `json:"out_of_stock_items"`
	OverstockItems  int     `json:"overstock_items"`
}

type StockLevelAnalysis struct {
	Items    []StockLevel      `json:"items"`
	Overview InventoryOverview `json:"overview"`
}
