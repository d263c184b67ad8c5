package service

import (
	"context"

	"github.com/hashguard/forecast/internal/domain/cohort"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// PeriodMetrics is the derived-metric block for one period. Customer counts
// cover paying accounts; a freemium population shows up here only once it
// converts.
type PeriodMetrics struct {
	Period int

	CustomersStart    decimal.Decimal
	NewCustomers      decimal.Decimal
	RetainedCustomers decimal.Decimal
	CustomersEnd      decimal.Decimal

	ARPC             types.MetricValue
	CAC              types.MetricValue
	CACPaybackMonths types.MetricValue
	LTV              types.MetricValue
	LTVCACRatio      types.MetricValue
	NRR              types.MetricValue
}

// MetricsService derives the SaaS unit-economics block from a period's
// committed transition, attribution, and cost results.
type MetricsService interface {
	Compute(ctx context.Context, ledger *cohort.Ledger, period int, transition *TransitionResult, attribution *AttributionResult, costs *CostResult) (*PeriodMetrics, error)
}

type metricsService struct {
	ServiceParams
}

func NewMetricsService(params ServiceParams) MetricsService {
	return &metricsService{
		ServiceParams: params,
	}
}

func (s *metricsService) Compute(ctx context.Context, ledger *cohort.Ledger, period int, transition *TransitionResult, attribution *AttributionResult, costs *CostResult) (*PeriodMetrics, error) {
	result := &PeriodMetrics{Period: period}

	paidStart, paidChurned, paidEnd := s.paidPopulation(transition)
	result.CustomersStart = paidStart
	result.CustomersEnd = paidEnd
	result.RetainedCustomers = paidStart.Sub(paidChurned)
	result.NewCustomers = transition.FirstTimePaying

	result.ARPC = s.arpc(attribution, paidEnd)
	result.CAC = s.cac(transition, costs)

	churn, err := s.weightedChurn(period, transition, paidStart)
	if err != nil {
		return nil, err
	}
	annualChurn := s.annualize(churn)

	result.LTV = s.ltv(result.ARPC, costs.GrossMargin, annualChurn)
	result.LTVCACRatio = s.ltvToCAC(result.LTV, result.CAC)
	result.CACPaybackMonths = s.cacPayback(result.CAC, result.ARPC, costs.GrossMargin)

	nrr, err := s.netRevenueRetention(ledger, period)
	if err != nil {
		return nil, err
	}
	result.NRR = nrr

	return result, nil
}

// paidPopulation sums start, churned, and end counts over paying tiers.
// Upgrades between paying tiers cancel out, so end equals retained plus
// first-time-paying exactly.
func (s *metricsService) paidPopulation(transition *TransitionResult) (start, churned, end decimal.Decimal) {
	for _, tier := range s.RateCard.Tiers() {
		if !tier.Paid() {
			continue
		}
		tt := transition.Tiers[tier.ID]
		start = start.Add(tt.StartCount)
		churned = churned.Add(tt.Churned)
		end = end.Add(tt.EndCount)
	}
	return start, churned, end
}

// arpc is annualized recurring revenue per paying account at period end.
func (s *metricsService) arpc(attribution *AttributionResult, paidEnd decimal.Decimal) types.MetricValue {
	if paidEnd.IsZero() {
		return types.MetricValueNA()
	}
	annualized := attribution.Recurring
	if s.RateCard.Granularity().IsMonthly() {
		annualized = annualized.Mul(decimal.NewFromInt(types.MonthsPerYear))
	}
	return types.NewMetricValue(annualized.Div(paidEnd))
}

func (s *metricsService) cac(transition *TransitionResult, costs *CostResult) types.MetricValue {
	if !costs.HasSalesMarketing {
		return types.MetricValueNA()
	}
	if transition.FirstTimePaying.IsZero() {
		return types.MetricValueNA()
	}
	return types.NewMetricValue(costs.SalesMarketingSpend.Div(transition.FirstTimePaying))
}

// weightedChurn is the paying-population churn rate for the period, weighting
// each tier's configured rate by its start-of-period population.
func (s *metricsService) weightedChurn(period int, transition *TransitionResult, paidStart decimal.Decimal) (types.MetricValue, error) {
	if paidStart.IsZero() {
		return types.MetricValueNA(), nil
	}
	weighted := decimal.Zero
	for _, tier := range s.RateCard.Tiers() {
		if !tier.Paid() {
			continue
		}
		tt := transition.Tiers[tier.ID]
		if tt.StartCount.IsZero() {
			continue
		}
		rate, err := tier.ChurnRate(period)
		if err != nil {
			return types.MetricValueNA(), err
		}
		weighted = weighted.Add(tt.StartCount.Mul(rate))
	}
	return types.NewMetricValue(weighted.Div(paidStart)), nil
}

// annualize converts a per-period churn rate to an annual rate. Monthly
// models compound: annual = 1 - (1-m)^12.
func (s *metricsService) annualize(churn types.MetricValue) types.MetricValue {
	if !churn.Applicable() || !s.RateCard.Granularity().IsMonthly() {
		return churn
	}
	one := decimal.NewFromInt(1)
	retained := one.Sub(churn.Amount).Pow(decimal.NewFromInt(types.MonthsPerYear))
	return types.NewMetricValue(one.Sub(retained))
}

// ltv is annualized gross profit per customer over the expected customer
// lifetime. Zero churn makes the lifetime unbounded.
func (s *metricsService) ltv(arpc, grossMargin, annualChurn types.MetricValue) types.MetricValue {
	if !arpc.Applicable() || !grossMargin.Applicable() || annualChurn.NotApplicable {
		return types.MetricValueNA()
	}
	if annualChurn.Amount.IsZero() {
		return types.MetricValueInf()
	}
	return types.NewMetricValue(arpc.Amount.Mul(grossMargin.Amount).Div(annualChurn.Amount))
}

func (s *metricsService) ltvToCAC(ltv, cac types.MetricValue) types.MetricValue {
	if cac.NotApplicable || cac.Applicable() && cac.Amount.IsZero() {
		return types.MetricValueNA()
	}
	if ltv.Infinite {
		return types.MetricValueInf()
	}
	if !ltv.Applicable() {
		return types.MetricValueNA()
	}
	return types.NewMetricValue(ltv.Amount.Div(cac.Amount))
}

// cacPayback is months to recover CAC from monthly gross profit per customer.
func (s *metricsService) cacPayback(cac, arpc, grossMargin types.MetricValue) types.MetricValue {
	if !cac.Applicable() || !arpc.Applicable() || !grossMargin.Applicable() {
		return types.MetricValueNA()
	}
	monthlyGrossProfit := arpc.Amount.
		Div(decimal.NewFromInt(types.MonthsPerYear)).
		Mul(grossMargin.Amount)
	if !monthlyGrossProfit.IsPositive() {
		return types.MetricValueNA()
	}
	return types.NewMetricValue(cac.Amount.Div(monthlyGrossProfit))
}

// netRevenueRetention is the expected revenue multiple on cohorts that existed
// before this period, weighting each tier's (1 - churn + expansion) factor by
// the tier's share of the prior period's revenue base.
func (s *metricsService) netRevenueRetention(ledger *cohort.Ledger, period int) (types.MetricValue, error) {
	if period == types.FirstPeriod {
		return types.MetricValueNA(), nil
	}

	base := make(map[types.TierID]decimal.Decimal)
	total := decimal.Zero
	for _, key := range ledger.KeysAt(period - 1) {
		cell, err := ledger.Cell(key, period-1)
		if err != nil {
			return types.MetricValueNA(), err
		}
		if cell.Revenue.IsZero() {
			continue
		}
		base[key.TierID] = base[key.TierID].Add(cell.Revenue)
		total = total.Add(cell.Revenue)
	}
	if total.IsZero() {
		return types.MetricValueNA(), nil
	}

	one := decimal.NewFromInt(1)
	nrr := decimal.Zero
	for _, tier := range s.RateCard.Tiers() {
		tierBase, ok := base[tier.ID]
		if !ok {
			continue
		}
		churn, err := tier.ChurnRate(period)
		if err != nil {
			return types.MetricValueNA(), err
		}
		expansion, err := tier.ExpansionRate(period)
		if err != nil {
			return types.MetricValueNA(), err
		}
		factor := one.Sub(churn).Add(expansion)
		nrr = nrr.Add(tierBase.Div(total).Mul(factor))
	}
	return types.NewMetricValue(nrr), nil
}
