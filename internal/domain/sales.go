package domain

import "time"

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SalesTotals is the aggregate of one period used by the overview.
type SalesTotals struct {
	Revenue   float64 `json:"revenue" db:"revenue"`
	Orders    int     `json:"orders" db:"orders"`
	Customers int     `json:"customers" db:"customers"`
	Units     float64 `json:"units" db:"units"`
}

type KPIComparison struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

type SalesOverview struct {
	Period         DateRange     `json:"period"`
	PreviousPeriod DateRange     `json:"previous_period"`
	Revenue        KPIComparison `json:"revenue"`
	Orders         KPIComparison `json:"orders"`
	Customers      KPIComparison `json:"customers"`
	AvgOrderValue  KPIComparison `json:"avg_order_value"`
}

type BrandRevenue struct {
	BrandID string  `json:"brand_id" db:"brand_id"`
	Name    string  `json:"name" db:"name"`
	Revenue float64 `json:"revenue" db:"revenue"`
	Units   float64 `json:"units" db:"units"`
}

type BrandShare struct {
	BrandRevenue
	MarketShare float64 `json:"market_share"`
}

// MonthlyRevenue is revenue for a calendar month number (1..12).
type MonthlyRevenue struct {
	Month   int     `json:"month" db:"month"`
	Revenue float64 `json:"revenue" db:"revenue"`
}

type SeasonalIndex struct {
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
	Index   float64 `json:"index"`
}

// ProductSales is a product's units and revenue over a period.
type ProductSales struct {
	ProductID string  `json:"product_id" db:"product_id"`
	SKU       string  `json:"sku" db:"sku"`
	Name      string  `json:"name" db:"name"`
	Brand     string  `json:"brand,omitempty" db:"brand"`
	UnitsSold float64 `json:"units_sold" db:"units_sold"`
	Revenue   float64 `json:"revenue" db:"revenue"`
	AvgPrice  float64 `json:"avg_price"`
}

// StoreSales is a store's order totals over a period.
type StoreSales struct {
	StoreID   string  `json:"store_id" db:"store_id"`
	Name      string  `json:"name" db:"name"`
	Orders    int     `json:"orders" db:"orders"`
	Revenue   float64 `json:"revenue" db:"revenue"`
	Customers int     `json:"unique_customers" db:"customers"`
}

type StorePerformance struct {
	StoreSales
	AvgOrderValue float64 `json:"avg_order_value"`
	RevenueShare  float64 `json:"revenue_share"`
}
