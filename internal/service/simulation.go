package service

import (
	"context"

	"github.com/hashguard/forecast/internal/domain/cohort"
	"github.com/hashguard/forecast/internal/dto"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// SimulationService runs the full projection: seeds the cohort ledger, then
// advances period by period through transition, attribution, cost, and
// metrics, committing each period's summary rows exactly once. Identical
// configurations produce identical results.
type SimulationService interface {
	Run(ctx context.Context) (*dto.ProjectionResult, error)
}

type simulationService struct {
	ServiceParams

	transition  TransitionService
	attribution AttributionService
	cost        CostService
	metrics     MetricsService
	market      MarketService
}

func NewSimulationService(params ServiceParams) SimulationService {
	return &simulationService{
		ServiceParams: params,
		transition:    NewTransitionService(params),
		attribution:   NewAttributionService(params),
		cost:          NewCostService(params),
		metrics:       NewMetricsService(params),
		market:        NewMarketService(params),
	}
}

func (s *simulationService) Run(ctx context.Context) (*dto.ProjectionResult, error) {
	card := s.RateCard
	runID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RUN)

	s.Logger.Infow("starting projection run",
		"run_id", runID,
		"granularity", card.Granularity(),
		"periods", card.Periods(),
		"tiers", len(card.Tiers()))

	ledger := cohort.NewLedger()
	for _, tier := range card.Tiers() {
		if !tier.Seed().IsPositive() {
			continue
		}
		if err := ledger.Seed(tier.ID, tier.Seed()); err != nil {
			return nil, err
		}
	}

	summary := dto.NewFinancialSummary(card.Periods())
	prevEntrants := decimal.Zero

	for period := types.FirstPeriod; period <= card.Periods(); period++ {
		transition, err := s.transition.Advance(ctx, ledger, period, prevEntrants)
		if err != nil {
			return nil, err
		}
		attribution, err := s.attribution.Attribute(ctx, ledger, period)
		if err != nil {
			return nil, err
		}
		costs, err := s.cost.Calculate(ctx, period, attribution.Total)
		if err != nil {
			return nil, err
		}
		metrics, err := s.metrics.Compute(ctx, ledger, period, transition, attribution, costs)
		if err != nil {
			return nil, err
		}

		if err := s.commit(summary, period, costs, metrics); err != nil {
			return nil, err
		}

		s.Logger.Infow("period committed",
			"run_id", runID,
			"period", period,
			"revenue", attribution.Total,
			"ebitda", costs.EBITDA,
			"customers_end", metrics.CustomersEnd)

		prevEntrants = transition.NewEntrants
	}

	marketSizing, err := s.market.Size(ctx, summary)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("projection run complete", "run_id", runID)

	return &dto.ProjectionResult{
		RunID:       runID,
		Granularity: card.Granularity(),
		StartLabel:  s.Config.Model.StartLabel,
		Cohorts:     dto.NewCohortTable(ledger),
		Summary:     summary,
		Market:      marketSizing,
	}, nil
}

// commit writes every summary row for the period. Summary cells are
// write-once, so a pipeline bug that revisits a period fails loudly.
func (s *simulationService) commit(summary *dto.FinancialSummary, period int, costs *CostResult, metrics *PeriodMetrics) error {
	cells := []struct {
		metric types.Metric
		value  types.MetricValue
	}{
		{types.MetricRevenue, types.NewMetricValue(costs.Revenue)},
		{types.MetricCOGS, types.NewMetricValue(costs.COGS)},
		{types.MetricGrossProfit, types.NewMetricValue(costs.GrossProfit)},
		{types.MetricTotalOpex, types.NewMetricValue(costs.OpexTotal)},
		{types.MetricEBITDA, types.NewMetricValue(costs.EBITDA)},
		{types.MetricGrossMargin, costs.GrossMargin},
		{types.MetricEBITDAMargin, costs.EBITDAMargin},
		{types.MetricCustomersStart, types.NewMetricValue(metrics.CustomersStart)},
		{types.MetricNewCustomers, types.NewMetricValue(metrics.NewCustomers)},
		{types.MetricRetainedCustomers, types.NewMetricValue(metrics.RetainedCustomers)},
		{types.MetricCustomersEnd, types.NewMetricValue(metrics.CustomersEnd)},
		{types.MetricARPC, metrics.ARPC},
		{types.MetricCAC, metrics.CAC},
		{types.MetricCACPayback, metrics.CACPaybackMonths},
		{types.MetricLTV, metrics.LTV},
		{types.MetricLTVCACRatio, metrics.LTVCACRatio},
		{types.MetricNRR, metrics.NRR},
	}
	for _, cell := range cells {
		if err := summary.Set(cell.metric, period, cell.value); err != nil {
			return err
		}
	}
	return nil
}
