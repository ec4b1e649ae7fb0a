package sales

import (
	"testing"
	"time"

	"github.com/andresuchdata/retail-insights/internal/domain"
	apperrors "github.com/andresuchdata/retail-insights/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 15, 13, 45, 0, 0, time.UTC)

func TestResolvePreset(t *testing.T) {
	tests := []struct {
		preset string
		start  time.Time
	}{
		{"1d", time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)},
		{"7d", time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)},
		{"", time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"30D", time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"90d", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"1y", time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)},
		{"mtd", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"ytd", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	wantEnd := time.Date(2024, 5, 15, 23, 59, 59, 0, time.UTC)
	for _, tt := range tests {
		r, err := ResolvePreset(tt.preset, now)
		require.NoError(t, err, tt.preset)
		assert.True(t, tt.start.Equal(r.Start), "preset %q start %v", tt.preset, r.Start)
		assert.True(t, wantEnd.Equal(r.End), "preset %q end %v", tt.preset, r.End)
	}

	_, err := ResolvePreset("2w", now)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestPreviousRange(t *testing.T) {
	cur := domain.DateRange{
		Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	prev := PreviousRange(cur)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), prev.End)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), prev.Start)
}

func TestOverview(t *testing.T) {
	period := domain.DateRange{Start: now.AddDate(0, 0, -7), End: now}
	ov := Overview(period,
		domain.SalesTotals{Revenue: 1500, Orders: 10, Customers: 8},
		domain.SalesTotals{Revenue: 1000, Orders: 10},
	)

	assert.InDelta(t, 50, ov.Revenue.ChangePercent, 1e-9)
	assert.Equal(t, 0.0, ov.Orders.ChangePercent)
	assert.Equal(t, 100.0, ov.Customers.ChangePercent)
	assert.InDelta(t, 150, ov.AvgOrderValue.Current, 1e-9)
	assert.InDelta(t, 100, ov.AvgOrderValue.Previous, 1e-9)
	assert.Equal(t, PreviousRange(period), ov.PreviousPeriod)
}

func TestBrandShares(t *testing.T) {
	shares := BrandShares([]domain.BrandRevenue{
		{BrandID: "b", Revenue: 25},
		{BrandID: "a", Revenue: 75},
	})
	require.Len(t, shares, 2)
	assert.Equal(t, "a", shares[0].BrandID)
	assert.InDelta(t, 75, shares[0].MarketShare, 1e-9)
	assert.InDelta(t, 25, shares[1].MarketShare, 1e-9)

	zero := BrandShares([]domain.BrandRevenue{{BrandID: "z"}})
	assert.Equal(t, 0.0, zero[0].MarketShare)
}

func TestSeasonalIndices(t *testing.T) {
	monthly := []domain.MonthlyRevenue{{Month: 1, Revenue: 240}, {Month: 7, Revenue: 120}, {Month: 13, Revenue: 999}}
	out := SeasonalIndices(monthly)
	require.Len(t, out, 12)
	assert.InDelta(t, 800, out[0].Index, 1e-9)
	assert.InDelta(t, 400, out[6].Index, 1e-9)
	assert.Equal(t, 0.0, out[1].Index)

	flat := SeasonalIndices(nil)
	for _, s := range flat {
		assert.Equal(t, 100.0, s.Index)
	}
}

func TestRankAndLimitProducts(t *testing.T) {
	ranked := RankProducts([]domain.ProductSales{
		{SKU: "low", UnitsSold: 4, Revenue: 40},
		{SKU: "top", UnitsSold: 5, Revenue: 500},
		{SKU: "unsold", Revenue: 0},
		{SKU: "mid", UnitsSold: 10, Revenue: 150},
	})
	require.Len(t, ranked, 4)
	assert.Equal(t, "top", ranked[0].SKU)
	assert.InDelta(t, 100, ranked[0].AvgPrice, 1e-9)
	assert.Equal(t, "mid", ranked[1].SKU)
	assert.Equal(t, 0.0, ranked[3].AvgPrice)

	top, err := TopProducts(ranked, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	all, err := TopProducts(ranked, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = TopProducts(ranked, -1)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestStorePerformances(t *testing.T) {
	got := StorePerformances([]domain.StoreSales{
		{StoreID: "1", Revenue: 250, Orders: 5},
		{StoreID: "2", Revenue: 750, Orders: 3},
		{StoreID: "3"},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].StoreID)
	assert.InDelta(t, 75, got[0].RevenueShare, 1e-9)
	assert.InDelta(t, 250, got[0].AvgOrderValue, 1e-9)
	assert.InDelta(t, 50, got[1].AvgOrderValue, 1e-9)
	assert.Equal(t, 0.0, got[2].AvgOrderValue)

	assert.Empty(t, StorePerformances(nil))
}
