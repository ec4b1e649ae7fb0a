// Package customer holds churn and lifetime value estimation.
package customer

import (
	"github.com/andresuchdata/retail-insights/internal/domain"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
)

const DefaultChurnThresholdDays = 180

// ChurnStatus classifies inactivity against a threshold T: up to T/3 days is
// active, up to T is at risk, anything longer has churned.
func ChurnStatus(daysSinceLastPurchase, thresholdDays int) domain.ChurnStatus {
	switch {
	case float64(daysSinceLastPurchase) <= float64(thresholdDays)/3:
		return domain.ChurnActive
	case daysSinceLastPurchase <= thresholdDays:
		return domain.ChurnAtRisk
	default:
		return domain.ChurnChurned
	}
}

// Churn labels each customer and reports the share that has churned.
func Churn(customers []domain.CustomerActivity, thresholdDays int) (domain.ChurnAnalysis, error) {
	if thresholdDays <= 0 {
		return domain.ChurnAnalysis{}, apperrors.Newf(apperrors.CodeValidation, "churn threshold days must be positive, got %d", thresholdDays)
	}

	result := domain.ChurnAnalysis{
		Customers:     make([]domain.ChurnRecord, 0, len(customers)),
		ThresholdDays: thresholdDays,
	}
	for _, c := range customers {
		status := ChurnStatus(c.DaysSinceLastPurchase, thresholdDays)
		result.Customers = append(result.Customers, domain.ChurnRecord{CustomerActivity: c, Status: status})

		switch status {
		case domain.ChurnActive:
			result.Summary.Active++
		case domain.ChurnAtRisk:
			result.Summary.AtRisk++
		case domain.ChurnChurned:
			result.Summary.Churned++
		}
	}

	result.Summary.Total = len(customers)
	if result.Summary.Total > 0 {
		result.Summary.ChurnRate = float64(result.Summary.Churned) / float64(result.Summary.Total) * 100
	}
	return result, nil
}
