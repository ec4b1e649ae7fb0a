package rows

import (
	"github.com/andresuchdata/retail-insights/internal/domain"
)

func CustomerMetrics(rs []Row) []domain.CustomerMetric {
	out := make([]domain.CustomerMetric, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.CustomerMetric{
			CustomerID:  r.String("customer_id"),
			Name:        r.String("name"),
			RecencyDays: r.Int("recency_days"),
			Frequency:   r.Int("frequency"),
			Monetary:    r.Float("monetary"),
		})
	}
	return out
}

func CustomerActivities(rs []Row) []domain.CustomerActivity {
	out := make([]domain.CustomerActivity, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.CustomerActivity{
			CustomerID:            r.String("customer_id"),
			Name:                  r.String("name"),
			DaysSinceLastPurchase: r.Int("days_since_last_purchase"),
			TotalOrders:           r.Int("total_orders"),
			TotalSpent:            r.Float("total_spent"),
		})
	}
	return out
}

func CustomerValueInputs(rs []Row) []domain.CustomerValueInput {
	out := make([]domain.CustomerValueInput, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.CustomerValueInput{
			CustomerID:      r.String("customer_id"),
			Name:            r.String("name"),
			TotalOrders:     r.Int("total_orders"),
			TotalSpent:      r.Float("total_spent"),
			CustomerAgeDays: r.Int("customer_age_days"),
		})
	}
	return out
}

func CohortCustomers(rs []Row) []domain.CohortCustomer {
	out := make([]domain.CohortCustomer, 0, len(rs))
	for _, r := range rs {
		registered := r.Time("registered_at")
		if registered.IsZero() {
			continue
		}
		out = append(out, domain.CohortCustomer{
			CustomerID:   r.String("customer_id"),
			RegisteredAt: registered,
		})
	}
	return out
}

func MonthlyActivities(rs []Row) []domain.MonthlyActivity {
	out := make([]domain.MonthlyActivity, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.MonthlyActivity{
			CustomerID: r.String("customer_id"),
			Month:      r.String("month"),
			Orders:     r.Int("orders"),
			Revenue:    r.Float("revenue"),
		})
	}
	return out
}

func ProductRevenues(rs []Row) []domain.ProductRevenue {
	out := make([]domain.ProductRevenue, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.ProductRevenue{
			ProductID: r.String("product_id"),
			Name:      r.String("name"),
			Revenue:   r.Float("revenue"),
		})
	}
	return out
}

func TurnoverInputs(rs []Row) []domain.TurnoverInput {
	out := make([]domain.TurnoverInput, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.TurnoverInput{
			SKU:          r.String("sku"),
			Name:         r.String("name"),
			UnitsSold:    r.Float("units_sold"),
			AvgInventory: r.Float("avg_inventory"),
		})
	}
	return out
}

func StockAgeInputs(rs []Row) []domain.StockAgeInput {
	out := make([]domain.StockAgeInput, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.StockAgeInput{
			SKU:         r.String("sku"),
			Name:        r.String("name"),
			OnHand:      r.Float("on_hand"),
			CostPerUnit: r.Float("cost_per_unit"),
			LastSaleAt:  r.TimePtr("last_sale_at"),
		})
	}
	return out
}

func ReorderInputs(rs []Row) []domain.ReorderInput {
	out := make([]domain.ReorderInput, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.ReorderInput{
			SKU:               r.String("sku"),
			Name:              r.String("name"),
			OnHand:            r.Float("on_hand"),
			Available:         r.Float("available"),
			ReorderLevel:      r.Float("reorder_level"),
			MaxStockLevel:     r.Float("max_stock_level"),
			CostPerUnit:       r.Float("cost_per_unit"),
			UnitsSoldTrailing: r.Float("units_sold_trailing"),
		})
	}
	return out
}

func StockLevelInputs(rs []Row) []domain.StockLevelInput {
	out := make([]domain.StockLevelInput, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.StockLevelInput{
			SKU:           r.String("sku"),
			Name:          r.String("name"),
			Brand:         r.String("brand"),
			Location:      r.String("location"),
			OnHand:        r.Float("on_hand"),
			Available:     r.Float("available"),
			ReorderLevel:  r.Float("reorder_level"),
			MaxStockLevel: r.Float("max_stock_level"),
			CostPerUnit:   r.Float("cost_per_unit"),
		})
	}
	return out
}

func InventoryItems(rs []Row) []domain.InventoryItem {
	out := make([]domain.InventoryItem, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.InventoryItem{
			SKU:               r.String("sku"),
			Name:              r.String("name"),
			OnHand:            r.Float("on_hand"),
			Available:         r.Float("available"),
			CostPerUnit:       r.Float("cost_per_unit"),
			ReorderLevel:      r.Float("reorder_level"),
			MaxStockLevel:     r.Float("max_stock_level"),
			UnitsSoldPeriod:   r.Float("units_sold_period"),
			AvgInventory:      r.Float("avg_inventory"),
			UnitsSoldTrailing: r.Float("units_sold_trailing"),
		})
	}
	return out
}

func PeriodAggregates(rs []Row) []domain.PeriodAggregate {
	out := make([]domain.PeriodAggregate, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.PeriodAggregate{
			Period:  r.String("period"),
			Revenue: r.Float("revenue"),
			Orders:  r.Int("orders"),
		})
	}
	return out
}

func SalesTotals(r Row) domain.SalesTotals {
	return domain.SalesTotals{
		Revenue:   r.Float("revenue"),
		Orders:    r.Int("orders"),
		Customers: r.Int("customers"),
		Units:     r.Float("units"),
	}
}

func BrandRevenues(rs []Row) []domain.BrandRevenue {
	out := make([]domain.BrandRevenue, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.BrandRevenue{
			BrandID: r.String("brand_id"),
			Name:    r.String("name"),
			Revenue: r.Float("revenue"),
			Units:   r.Float("units"),
		})
	}
	return out
}

func MonthlyRevenues(rs []Row) []domain.MonthlyRevenue {
	out := make([]domain.MonthlyRevenue, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.MonthlyRevenue{
			Month:   r.Int("month"),
			Revenue: r.Float("revenue"),
		})
	}
	return out
}

func ProductSales(rs []Row) []domain.ProductSales {
	out := make([]domain.ProductSales, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.ProductSales{
			ProductID: r.String("product_id"),
			SKU:       r.String("sku"),
			Name:      r.String("name"),
			Brand:     r.String("brand"),
			UnitsSold: r.Float("units_sold"),
			Revenue:   r.Float("revenue"),
		})
	}
	return out
}

func StoreSales(rs []Row) []domain.StoreSales {
	out := make([]domain.StoreSales, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.StoreSales{
			StoreID:   r.String("store_id"),
			Name:      r.String("name"),
			Orders:    r.Int("orders"),
			Revenue:   r.Float("revenue"),
			Customers: r.Int("customers"),
		})
	}
	return out
}
