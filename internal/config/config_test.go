package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, int64(10), cfg.Database.MaxConcurrency)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
	assert.Equal(t, AnalysisConfig{
		SlowMovingDays:     90,
		DeadStockDays:      180,
		ChurnThresholdDays: 180,
		LeadTimeDays:       30,
		SafetyStockDays:    7,
		TrailingSalesDays:  90,
	}, cfg.Analysis)
}

func TestFromViperReadsEnvironment(t *testing.T) {
	t.Setenv("ANALYSIS_LEAD_TIME_DAYS", "14")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/retail")

	v := viper.New()
	v.AutomaticEnv()
	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Analysis.LeadTimeDays)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "postgres://u:p@db:5432/retail", cfg.Database.DSN())
}

func TestFromViperRejectsInvalidAnalysisDefaults(t *testing.T) {
	tests := map[string]any{
		"ANALYSIS_SLOW_MOVING_DAYS":    0,
		"ANALYSIS_DEAD_STOCK_DAYS":     10,
		"ANALYSIS_TRAILING_SALES_DAYS": -1,
		"CACHE_BACKEND":                "memcached",
		"DB_DRIVER":                    "mysql",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			v := viper.New()
			v.Set(key, value)
			_, err := FromViper(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestDSNFromParts(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "1", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", d.DSN())
}
