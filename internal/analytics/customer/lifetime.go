package customer

import (
	"math"

	"github.com/andresuchdata/retail-insights/internal/domain"
)

// ValueSegment buckets a predicted lifetime value.
func ValueSegment(clv float64) domain.ValueSegment {
	switch {
	case clv >= 500000:
		return domain.ValueHigh
	case clv >= 200000:
		return domain.ValueMediumHigh
	case clv >= 100000:
		return domain.ValueMedium
	case clv >= 50000:
		return domain.ValueLowMedium
	default:
		return domain.ValueLow
	}
}

// LifetimeValue estimates CLV as average order value x yearly purchase
// frequency x expected lifespan in years. Young accounts are floored so a few
// days of history cannot explode the frequency.
func LifetimeValue(in domain.CustomerValueInput) domain.LifetimeValue {
	ageYears := float64(in.CustomerAgeDays) / 365

	out := domain.LifetimeValue{CustomerValueInput: in}
	out.AvgOrderValue = in.TotalSpent / math.Max(float64(in.TotalOrders), 1)
	out.PurchaseFrequency = float64(in.TotalOrders) / math.Max(ageYears, 0.1)
	out.LifespanYears = math.Max(ageYears, 0.5)
	out.PredictedCLV = out.AvgOrderValue * out.PurchaseFrequency * out.LifespanYears
	out.Segment = ValueSegment(out.PredictedCLV)
	return out
}

// LifetimeValues scores every customer, preserving input order.
func LifetimeValues(customers []domain.CustomerValueInput) []domain.LifetimeValue {
	out := make([]domain.LifetimeValue, 0, len(customers))
	for _, c := range customers {
		out = append(out, LifetimeValue(c))
	}
	return out
}
