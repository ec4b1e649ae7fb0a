package domain

import "time"

// MonthLayout is the YYYY-MM label used for cohort and calendar months.
const MonthLayout = "2006-01"

// CohortCustomer is a customer tagged with the time they registered.
type CohortCustomer struct {
	CustomerID   string    `json:"customer_id" db:"customer_id"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// MonthlyActivity is one customer's purchase aggregate for a calendar month.
type MonthlyActivity struct {
	CustomerID string  `json:"customer_id" db:"customer_id"`
	Month      string  `json:"month" db:"month"`
	Orders     int     `json:"orders" db:"orders"`
	Revenue    float64 `json:"revenue" db:"revenue"`
}

type CohortPeriod struct {
	Offset          int     `json:"offset"`
	CalendarMonth   string  `json:"calendar_month"`
	ActiveCustomers int     `json:"active_customers"`
	RetentionRate   float64 `json:"retention_rate"`
}

type CohortRecord struct {
	CohortMonth string         `json:"cohort_month"`
	CohortSize  int            `json:"cohort_size"`
	Periods     []CohortPeriod `json:"periods"`
}

type CohortSummary struct {
	TotalCustomers   int       `json:"total_customers"`
	TotalCohorts     int       `json:"total_cohorts"`
	AvgRetention     []float64 `json:"avg_retention_rates"`
	Month1Retention  float64   `json:"month_1_retention"`
	Month6Retention  float64   `json:"month_6_retention"`
	Month12Retention float64   `json:"month_12_retention"`
}

type CohortAnalysis struct {
	Cohorts []CohortRecord `json:"cohorts"`
	Summary CohortSummary  `json:"summary"`
}
