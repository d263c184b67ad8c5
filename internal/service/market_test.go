package service

import (
	"context"
	"testing"

	"github.com/hashguard/forecast/internal/config"
	"github.com/hashguard/forecast/internal/dto"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeWithoutMarketConfig(t *testing.T) {
	params := newTestParams(t, config.GetDefaultConfig())
	svc := NewMarketService(params)

	sizing, err := svc.Size(context.Background(), dto.NewFinancialSummary(3))
	require.NoError(t, err)
	assert.Nil(t, sizing)
}

func TestSizeDerivesSOMAndPeak(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Market = &config.MarketConfig{
		TAM:        1_000_000_000,
		SAM:        500_000_000,
		BaseRegion: "amer",
		SAMBreakdown: map[string]float64{
			"amer": 0.5,
			"emea": 0.3,
			"apac": 0.2,
		},
		TargetableCompanies: map[string]float64{
			"smb":       1000,
			"midmarket": 500,
		},
	}
	params := newTestParams(t, cfg)
	svc := NewMarketService(params)

	summary := dto.NewFinancialSummary(3)
	require.NoError(t, summary.Set(types.MetricRevenue, 1, types.MetricValueFromInt(100)))
	require.NoError(t, summary.Set(types.MetricRevenue, 2, types.MetricValueFromInt(300)))
	require.NoError(t, summary.Set(types.MetricRevenue, 3, types.MetricValueFromInt(200)))

	sizing, err := svc.Size(context.Background(), summary)
	require.NoError(t, err)
	require.NotNil(t, sizing)

	assert.True(t, sizing.SOMCumulativeRevenue.Equal(decimal.NewFromInt(600)))
	assert.True(t, sizing.PeakRevenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, sizing.PeakRevenuePeriod)

	require.True(t, sizing.PeakShareOfSAM.Applicable())
	assert.True(t, sizing.PeakShareOfSAM.Amount.Equal(
		decimal.NewFromInt(300).Div(decimal.NewFromInt(500_000_000))))

	// Base region holds 1500 companies; the rest scale by SAM share.
	assert.True(t, sizing.TargetableByRegion["amer"].Equal(decimal.NewFromInt(1500)))
	assert.True(t, sizing.TargetableByRegion["emea"].Equal(decimal.NewFromInt(900)))
	assert.True(t, sizing.TargetableByRegion["apac"].Equal(decimal.NewFromInt(600)))
	assert.True(t, sizing.TargetableTotal.Equal(decimal.NewFromInt(3000)))
}

func TestSizeZeroSAM(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Market = &config.MarketConfig{TAM: 0, SAM: 0}
	params := newTestParams(t, cfg)
	svc := NewMarketService(params)

	summary := dto.NewFinancialSummary(1)
	require.NoError(t, summary.Set(types.MetricRevenue, 1, types.MetricValueFromInt(100)))

	sizing, err := svc.Size(context.Background(), summary)
	require.NoError(t, err)
	assert.True(t, sizing.PeakShareOfSAM.NotApplicable)
}
