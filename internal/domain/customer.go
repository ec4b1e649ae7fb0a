package domain

// CustomerMetric is the per-customer RFM input row.
type CustomerMetric struct {
	CustomerID  string  `json:"customer_id" db:"customer_id"`
	Name        string  `json:"name,omitempty" db:"name"`
	RecencyDays int     `json:"recency_days" db:"recency_days"`
	Frequency   int     `json:"frequency" db:"frequency"`
	Monetary    float64 `json:"monetary" db:"monetary"`
}

// Segment is one of the eleven named RFM segments.
type Segment string

const (
	SegmentChampions          Segment = "Champions"
	SegmentLoyalCustomers     Segment = "Loyal Customers"
	SegmentPotentialLoyalists Segment = "Potential Loyalists"
	SegmentNewCustomers       Segment = "New Customers"
	SegmentPromising          Segment = "Promising"
	SegmentNeedAttention      Segment = "Need Attention"
	SegmentAboutToSleep       Segment = "About to Sleep"
	SegmentAtRisk             Segment = "At Risk"
	SegmentCannotLoseThem     Segment = "Cannot Lose Them"
	SegmentHibernating        Segment = "Hibernating"
	SegmentLost               Segment = "Lost"
)

// Segments lists every segment in rule evaluation order.
var Segments = []Segment{
	SegmentChampions,
	SegmentLoyalCustomers,
	SegmentPotentialLoyalists,
	SegmentNewCustomers,
	SegmentPromising,
	SegmentNeedAttention,
	SegmentAboutToSleep,
	SegmentAtRisk,
	SegmentCannotLoseThem,
	SegmentHibernating,
	SegmentLost,
}

// ScoredCustomer is a CustomerMetric with its quintile scores and segment.
type ScoredCustomer struct {
	CustomerMetric
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	RFMCode        string  `json:"rfm_code"`
	Segment        Segment `json:"segment"`
}

// RFMThresholds holds the 20/40/60/80th percentile cut points per dimension.
type RFMThresholds struct {
	Recency   [4]float64 `json:"recency"`
	Frequency [4]float64 `json:"frequency"`
	Monetary  [4]float64 `json:"monetary"`
}

type SegmentSummary struct {
	Segment       Segment `json:"segment"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
	TotalMonetary float64 `json:"total_monetary"`
	AvgMonetary   float64 `json:"avg_monetary"`
}

type RFMAnalysis struct {
	Customers  []ScoredCustomer             `json:"customers"`
	Segments   map[Segment][]ScoredCustomer `json:"segments"`
	Summary    []SegmentSummary             `json:"summary"`
	Thresholds RFMThresholds                `json:"thresholds"`
}

// CustomerActivity feeds churn analysis.
type CustomerActivity struct {
	CustomerID            string  `json:"customer_id" db:"customer_id"`
	Name                  string  `json:"name,omitempty" db:"name"`
	DaysSinceLastPurchase int     `json:"days_since_last_purchase" db:"days_since_last_purchase"`
	TotalOrders           int     `json:"total_orders" db:"total_orders"`
	TotalSpent            float64 `json:"total_spent" db:"total_spent"`
}

type ChurnStatus string

const (
	ChurnActive  ChurnStatus = "active"
	ChurnAtRisk  ChurnStatus = "at_risk"
	ChurnChurned ChurnStatus = "churned"
)

type ChurnRecord struct {
	CustomerActivity
	Status ChurnStatus `json:"status"`
}

type ChurnSummary struct {
	Total     int     `json:"total"`
	Active    int     `json:"active"`
	AtRisk    int     `json:"at_risk"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churn_rate"`
}

type ChurnAnalysis struct {
	Customers     []ChurnRecord `json:"customers"`
	Summary       ChurnSummary  `json:"summary"`
	ThresholdDays int           `json:"threshold_days"`
}

// CustomerValueInput feeds lifetime value estimation.
type CustomerValueInput struct {
	CustomerID      string  `json:"customer_id" db:"customer_id"`
	Name            string  `json:"name,omitempty" db:"name"`
	TotalOrders     int     `json:"total_orders" db:"total_orders"`
	TotalSpent      float64 `json:"total_spent" db:"total_spent"`
	CustomerAgeDays int     `json:"customer_age_days" db:"customer_age_days"`
}

type ValueSegment string

const (
	ValueHigh       ValueSegment = "High Value"
	ValueMediumHigh ValueSegment = "Medium-High Value"
	ValueMedium     ValueSegment = "Medium Value"
	ValueLowMedium  ValueSegment = "Low-Medium Value"
	ValueLow        ValueSegment = "Low Value"
)

type LifetimeValue struct {
	CustomerValueInput
	AvgOrderValue     float64      `json:"avg_order_value"`
	PurchaseFrequency float64      `json:"purchase_frequency"`
	LifespanYears     float64      `json:"lifespan_years"`
	PredictedCLV      float64      `json:"predicted_clv"`
	Segment           ValueSegment `json:"segment"`
}
