package service

import (
	"context"
	"testing"

	"github.com/hashguard/forecast/internal/config"
	"github.com/hashguard/forecast/internal/domain/cohort"
	"github.com/hashguard/forecast/internal/domain/ratecard"
	"github.com/hashguard/forecast/internal/logger"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParams(t *testing.T, cfg *config.Configuration) ServiceParams {
	t.Helper()
	log, err := logger.NewLogger()
	require.NoError(t, err)
	card, err := ratecard.New(cfg)
	require.NoError(t, err)
	return ServiceParams{
		Logger:   log,
		Config:   cfg,
		RateCard: card,
	}
}

func freemiumConfig() *config.Configuration {
	return &config.Configuration{
		Model: config.ModelConfig{
			Granularity: types.GRANULARITY_ANNUAL,
			Periods:     3,
		},
		Tiers: []config.TierConfig{
			{
				ID:               "free",
				Kind:             types.TIER_KIND_FREE,
				Churn:            config.ConstantSchedule(0.20),
				AcquisitionSplit: config.ConstantSchedule(0.7),
				SeedCount:        1000,
				Conversions: []config.ConversionConfig{
					{To: "pro", Rate: config.ConstantSchedule(0.10)},
				},
			},
			{
				ID:               "pro",
				Kind:             types.TIER_KIND_INDIVIDUAL,
				Price:            config.ConstantSchedule(1200),
				Churn:            config.ConstantSchedule(0.10),
				Expansion:        config.ConstantSchedule(0.02),
				AcquisitionSplit: config.ConstantSchedule(0.3),
				SeedCount:        100,
			},
		},
		Acquisition: config.AcquisitionConfig{
			Volumes: config.ConstantSchedule(100),
		},
	}
}

func TestAdvanceConservesMass(t *testing.T) {
	cfg := freemiumConfig()
	params := newTestParams(t, cfg)
	svc := NewTransitionService(params)

	ledger := cohort.NewLedger()
	require.NoError(t, ledger.Seed("free", decimal.NewFromInt(1000)))
	require.NoError(t, ledger.Seed("pro", decimal.NewFromInt(100)))

	prevEntrants := decimal.Zero
	for period := 1; period <= 3; period++ {
		result, err := svc.Advance(context.Background(), ledger, period, prevEntrants)
		require.NoError(t, err)

		for tierID, tt := range result.Tiers {
			expected := tt.StartCount.
				Sub(tt.Churned).
				Sub(tt.ConvertedOut).
				Add(tt.Acquired).
				Add(tt.ConvertedIn)
			assert.True(t, tt.EndCount.Equal(expected),
				"tier %s period %d: end %s, identity %s", tierID, period, tt.EndCount, expected)

			// The ledger agrees with the transition's bookkeeping.
			total := decimal.Zero
			for _, key := range ledger.KeysAt(period) {
				if key.TierID != tierID {
					continue
				}
				count, err := ledger.Count(key, period)
				require.NoError(t, err)
				total = total.Add(count)
			}
			assert.True(t, total.Equal(tt.EndCount),
				"tier %s period %d: ledger %s, transition %s", tierID, period, total, tt.EndCount)
		}

		prevEntrants = result.NewEntrants
	}
}

func TestAdvanceFirstPeriod(t *testing.T) {
	cfg := freemiumConfig()
	params := newTestParams(t, cfg)
	svc := NewTransitionService(params)

	ledger := cohort.NewLedger()
	require.NoError(t, ledger.Seed("free", decimal.NewFromInt(1000)))
	require.NoError(t, ledger.Seed("pro", decimal.NewFromInt(100)))

	result, err := svc.Advance(context.Background(), ledger, 1, decimal.Zero)
	require.NoError(t, err)

	free := result.Tiers["free"]
	pro := result.Tiers["pro"]

	// Seeds churn in the first period: 1000 - 200 churned - 100 converted + 70 acquired.
	assert.True(t, free.Churned.Equal(decimal.NewFromInt(200)))
	assert.True(t, free.ConvertedOut.Equal(decimal.NewFromInt(100)))
	assert.True(t, free.Acquired.Equal(decimal.NewFromInt(70)))
	assert.True(t, free.EndCount.Equal(decimal.NewFromInt(770)))

	// Pro: 100 - 10 churned + 30 acquired + 100 converted in.
	assert.True(t, pro.Churned.Equal(decimal.NewFromInt(10)))
	assert.True(t, pro.ConvertedIn.Equal(decimal.NewFromInt(100)))
	assert.True(t, pro.Acquired.Equal(decimal.NewFromInt(30)))
	assert.True(t, pro.EndCount.Equal(decimal.NewFromInt(220)))

	// First-time paying: 30 acquired into pro plus 100 free-to-pro conversions.
	assert.True(t, result.FirstTimePaying.Equal(decimal.NewFromInt(130)))
}

func TestAdvanceNewCohortsDoNotChurnOnArrival(t *testing.T) {
	cfg := freemiumConfig()
	params := newTestParams(t, cfg)
	svc := NewTransitionService(params)

	ledger := cohort.NewLedger()
	require.NoError(t, ledger.Seed("free", decimal.NewFromInt(1000)))
	require.NoError(t, ledger.Seed("pro", decimal.NewFromInt(100)))

	_, err := svc.Advance(context.Background(), ledger, 1, decimal.Zero)
	require.NoError(t, err)

	// The period-1 pro cohort holds the full 130 arrivals, undepleted.
	count, err := ledger.Count(cohort.Key{AcquisitionPeriod: 1, TierID: "pro"}, 1)
	require.NoError(t, err)
	assert.True(t, count.Equal(decimal.NewFromInt(130)))
}

func TestAdvanceZeroPopulationTier(t *testing.T) {
	cfg := freemiumConfig()
	cfg.Tiers[0].SeedCount = 0
	cfg.Tiers[1].SeedCount = 0
	cfg.Acquisition = config.AcquisitionConfig{}
	cfg.Tiers[0].AcquisitionSplit = config.Schedule{}
	cfg.Tiers[1].AcquisitionSplit = config.Schedule{}

	params := newTestParams(t, cfg)
	svc := NewTransitionService(params)

	result, err := svc.Advance(context.Background(), cohort.NewLedger(), 1, decimal.Zero)
	require.NoError(t, err)

	for _, tt := range result.Tiers {
		assert.True(t, tt.StartCount.IsZero())
		assert.True(t, tt.EndCount.IsZero())
		assert.True(t, tt.Churned.IsZero())
	}
	assert.True(t, result.FirstTimePaying.IsZero())
}

func TestAdvanceDerivesUserCounts(t *testing.T) {
	cfg := &config.Configuration{
		Model: config.ModelConfig{
			Granularity: types.GRANULARITY_ANNUAL,
			Periods:     2,
		},
		Tiers: []config.TierConfig{
			{
				ID:               "team",
				Kind:             types.TIER_KIND_TEAM,
				PriceBasis:       types.PRICE_BASIS_PER_USER,
				Price:            config.ConstantSchedule(100),
				Churn:            config.ConstantSchedule(0.10),
				Expansion:        config.ConstantSchedule(0),
				UsersPerAccount:  config.ConstantSchedule(5),
				AcquisitionSplit: config.ConstantSchedule(1),
				SeedCount:        10,
			},
		},
		Acquisition: config.AcquisitionConfig{
			Volumes: config.ConstantSchedule(0),
		},
	}
	params := newTestParams(t, cfg)
	svc := NewTransitionService(params)

	ledger := cohort.NewLedger()
	require.NoError(t, ledger.Seed("team", decimal.NewFromInt(10)))

	result, err := svc.Advance(context.Background(), ledger, 1, decimal.Zero)
	require.NoError(t, err)

	team := result.Tiers["team"]
	assert.True(t, team.StartUsers.Equal(decimal.NewFromInt(50)))
	assert.True(t, team.EndUsers.Equal(decimal.NewFromInt(45)))
}
