package service

import (
	"context"
	"testing"

	"github.com/hashguard/forecast/internal/config"
	"github.com/hashguard/forecast/internal/domain/cohort"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nrrFixtureConfig() *config.Configuration {
	return &config.Configuration{
		Model: config.ModelConfig{
			Granularity: types.GRANULARITY_ANNUAL,
			Periods:     3,
		},
		Tiers: []config.TierConfig{
			{
				ID:        "a",
				Kind:      types.TIER_KIND_INDIVIDUAL,
				Price:     config.ConstantSchedule(100),
				Churn:     config.ConstantSchedule(0.05),
				Expansion: config.ConstantSchedule(0.02),
				SeedCount: 60,
			},
			{
				ID:        "b",
				Kind:      types.TIER_KIND_INDIVIDUAL,
				Price:     config.ConstantSchedule(100),
				Churn:     config.ConstantSchedule(0.10),
				Expansion: config.ConstantSchedule(0),
				SeedCount: 40,
			},
		},
	}
}

// Two tiers holding 60% and 40% of the prior period's revenue:
// NRR = 0.6 x (1 - 0.05 + 0.02) + 0.4 x (1 - 0.10) = 0.942.
func TestNetRevenueRetentionWeightsByRevenueShare(t *testing.T) {
	params := newTestParams(t, nrrFixtureConfig())
	svc := &metricsService{ServiceParams: params}

	ledger := cohort.NewLedger()
	keyA := cohort.Key{AcquisitionPeriod: types.SeedPeriod, TierID: "a"}
	keyB := cohort.Key{AcquisitionPeriod: types.SeedPeriod, TierID: "b"}
	require.NoError(t, ledger.Found(keyA, decimal.NewFromInt(60)))
	require.NoError(t, ledger.Found(keyB, decimal.NewFromInt(40)))
	require.NoError(t, ledger.SetCount(keyA, 1, decimal.NewFromInt(57)))
	require.NoError(t, ledger.SetCount(keyB, 1, decimal.NewFromInt(36)))
	require.NoError(t, ledger.AddRevenue(keyA, 1, decimal.NewFromInt(600)))
	require.NoError(t, ledger.AddRevenue(keyB, 1, decimal.NewFromInt(400)))

	nrr, err := svc.netRevenueRetention(ledger, 2)
	require.NoError(t, err)
	require.True(t, nrr.Applicable())
	assert.True(t, nrr.Amount.Equal(decimal.RequireFromString("0.942")), "got %s", nrr.Amount)
}

func TestNetRevenueRetentionSentinels(t *testing.T) {
	params := newTestParams(t, nrrFixtureConfig())
	svc := &metricsService{ServiceParams: params}

	// Undefined in the first period: there is no prior base.
	nrr, err := svc.netRevenueRetention(cohort.NewLedger(), 1)
	require.NoError(t, err)
	assert.True(t, nrr.NotApplicable)

	// Undefined on a zero prior-revenue base.
	ledger := cohort.NewLedger()
	key := cohort.Key{AcquisitionPeriod: types.SeedPeriod, TierID: "a"}
	require.NoError(t, ledger.Found(key, decimal.NewFromInt(60)))
	require.NoError(t, ledger.SetCount(key, 1, decimal.NewFromInt(57)))

	nrr, err = svc.netRevenueRetention(ledger, 2)
	require.NoError(t, err)
	assert.True(t, nrr.NotApplicable)
}

func TestAnnualizeChurn(t *testing.T) {
	annual := newTestParams(t, nrrFixtureConfig())
	svc := &metricsService{ServiceParams: annual}

	// Annual models pass the rate through unchanged.
	out := svc.annualize(types.NewMetricValue(decimal.RequireFromString("0.10")))
	assert.True(t, out.Amount.Equal(decimal.RequireFromString("0.10")))

	// Monthly models compound: 1 - 0.9^12.
	monthlyCfg := nrrFixtureConfig()
	monthlyCfg.Model.Granularity = types.GRANULARITY_MONTHLY
	svc = &metricsService{ServiceParams: newTestParams(t, monthlyCfg)}

	out = svc.annualize(types.NewMetricValue(decimal.RequireFromString("0.1")))
	require.True(t, out.Applicable())
	assert.True(t, out.Amount.Equal(decimal.RequireFromString("0.717570463519")), "got %s", out.Amount)

	// Sentinels pass through untouched.
	assert.True(t, svc.annualize(types.MetricValueNA()).NotApplicable)
}

func TestLTVSentinels(t *testing.T) {
	svc := &metricsService{ServiceParams: newTestParams(t, nrrFixtureConfig())}

	arpc := types.NewMetricValue(decimal.NewFromInt(1200))
	margin := types.NewMetricValue(decimal.RequireFromString("0.8"))

	// Zero churn: unbounded lifetime, the distinct infinite sentinel.
	ltv := svc.ltv(arpc, margin, types.NewMetricValue(decimal.Zero))
	assert.True(t, ltv.Infinite)

	// 1200 x 0.8 / 0.2 = 4800.
	ltv = svc.ltv(arpc, margin, types.NewMetricValue(decimal.RequireFromString("0.2")))
	require.True(t, ltv.Applicable())
	assert.True(t, ltv.Amount.Equal(decimal.NewFromInt(4800)))

	// Undefined inputs propagate.
	assert.True(t, svc.ltv(types.MetricValueNA(), margin, types.NewMetricValue(decimal.RequireFromString("0.2"))).NotApplicable)
	assert.True(t, svc.ltv(arpc, types.MetricValueNA(), types.NewMetricValue(decimal.RequireFromString("0.2"))).NotApplicable)
	assert.True(t, svc.ltv(arpc, margin, types.MetricValueNA()).NotApplicable)
}

func TestLTVToCACSentinels(t *testing.T) {
	svc := &metricsService{ServiceParams: newTestParams(t, nrrFixtureConfig())}

	ltv := types.NewMetricValue(decimal.NewFromInt(4800))
	cac := types.NewMetricValue(decimal.NewFromInt(1200))

	ratio := svc.ltvToCAC(ltv, cac)
	require.True(t, ratio.Applicable())
	assert.True(t, ratio.Amount.Equal(decimal.NewFromInt(4)))

	assert.True(t, svc.ltvToCAC(ltv, types.MetricValueNA()).NotApplicable)
	assert.True(t, svc.ltvToCAC(ltv, types.NewMetricValue(decimal.Zero)).NotApplicable)
	assert.True(t, svc.ltvToCAC(types.MetricValueInf(), cac).Infinite)
	assert.True(t, svc.ltvToCAC(types.MetricValueNA(), cac).NotApplicable)
}

func TestCACPayback(t *testing.T) {
	svc := &metricsService{ServiceParams: newTestParams(t, nrrFixtureConfig())}

	cac := types.NewMetricValue(decimal.NewFromInt(1200))
	arpc := types.NewMetricValue(decimal.NewFromInt(2400))
	margin := types.NewMetricValue(decimal.RequireFromString("0.5"))

	// Monthly gross profit = 2400/12 x 0.5 = 100; payback = 12 months.
	payback := svc.cacPayback(cac, arpc, margin)
	require.True(t, payback.Applicable())
	assert.True(t, payback.Amount.Equal(decimal.NewFromInt(12)))

	// Non-positive monthly gross profit is undefined, not negative months.
	negativeMargin := types.NewMetricValue(decimal.RequireFromString("-0.2"))
	assert.True(t, svc.cacPayback(cac, arpc, negativeMargin).NotApplicable)
	assert.True(t, svc.cacPayback(types.MetricValueNA(), arpc, margin).NotApplicable)
}

func TestComputeEndToEnd(t *testing.T) {
	cfg := freemiumConfig()
	params := newTestParams(t, cfg)

	transition := NewTransitionService(params)
	attribution := NewAttributionService(params)
	cost := NewCostService(params)
	metrics := NewMetricsService(params)

	ledger := cohort.NewLedger()
	require.NoError(t, ledger.Seed("free", decimal.NewFromInt(1000)))
	require.NoError(t, ledger.Seed("pro", decimal.NewFromInt(100)))

	ctx := context.Background()
	tr, err := transition.Advance(ctx, ledger, 1, decimal.Zero)
	require.NoError(t, err)
	at, err := attribution.Attribute(ctx, ledger, 1)
	require.NoError(t, err)
	co, err := cost.Calculate(ctx, 1, at.Total)
	require.NoError(t, err)

	pm, err := metrics.Compute(ctx, ledger, 1, tr, at, co)
	require.NoError(t, err)

	// Paying population: pro only. Start 100, end 220, 130 new.
	assert.True(t, pm.CustomersStart.Equal(decimal.NewFromInt(100)))
	assert.True(t, pm.CustomersEnd.Equal(decimal.NewFromInt(220)))
	assert.True(t, pm.NewCustomers.Equal(decimal.NewFromInt(130)))
	assert.True(t, pm.RetainedCustomers.Equal(decimal.NewFromInt(90)))

	// End equals retained plus first-time paying.
	assert.True(t, pm.CustomersEnd.Equal(pm.RetainedCustomers.Add(pm.NewCustomers)))

	// No sales & marketing category is configured, so CAC is undefined.
	assert.True(t, pm.CAC.NotApplicable)

	// NRR is undefined in the first period.
	assert.True(t, pm.NRR.NotApplicable)

	// ARPC: revenue / 220 paying accounts at period end.
	require.True(t, pm.ARPC.Applicable())
	assert.True(t, pm.ARPC.Amount.Equal(at.Recurring.Div(decimal.NewFromInt(220))))
}
