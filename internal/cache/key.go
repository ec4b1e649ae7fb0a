package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/retail-insights/internal/domain"
)

const keyPrefix = "analysis:"

// Key derives a deterministic cache key from an operation name and its filter.
func Key(operation string, filter domain.AnalysisFilter) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, strings.ToLower(operation), filterHash(filter))
}

func filterHash(filter domain.AnalysisFilter) string {
	parts := []string{}

	addTime := func(name string, t time.Time) {
		if !t.IsZero() {
			parts = append(parts, name+"="+t.UTC().Format(time.RFC3339))
		}
	}
	addInt := func(name string, v int) {
		if v != 0 {
			parts = append(parts, name+"="+strconv.Itoa(v))
		}
	}

	addTime("start", filter.Start)
	addTime("end", filter.End)
	addTime("analysis_date", filter.AnalysisDate)

	if len(filter.StoreIDs) > 0 {
		parts = append(parts, "store_ids="+joinInt64s(filter.StoreIDs))
	}
	if len(filter.BrandIDs) > 0 {
		parts = append(parts, "brand_ids="+joinInt64s(filter.BrandIDs))
	}
	if len(filter.Categories) > 0 {
		normalized := make([]string, 0, len(filter.Categories))
		for _, v := range filter.Categories {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			normalized = append(normalized, strings.ToUpper(v))
		}
		if len(normalized) > 0 {
			sort.Strings(normalized)
			parts = append(parts, "categories="+strings.Join(normalized, ","))
		}
	}

	if filter.Granularity != "" {
		parts = append(parts, "granularity="+strings.ToLower(string(filter.Granularity)))
	}
	if filter.Metric != "" {
		parts = append(parts, "metric="+strings.ToLower(string(filter.Metric)))
	}
	addInt("window", filter.Window)
	addInt("churn_days", filter.ChurnThresholdDays)
	addInt("slow_days", filter.SlowMovingDays)
	addInt("dead_days", filter.DeadStockDays)
	addInt("lead_days", filter.LeadTimeDays)
	addInt("safety_days", filter.SafetyStockDays)
	addInt("trailing_days", filter.TrailingDays)

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinInt64s(values []int64) string {
	c := append([]int64(nil), values...)
	sort.Slice(c, func(i, j int) bool { return c[i] < c[j] })
	strs := make([]string, len(c))
	for i, v := range c {
		strs[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(strs, ",")
}
