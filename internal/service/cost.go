package service

import (
	"context"

	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// CostResult is one period's cost allocation and the profitability lines
// derived from it.
type CostResult struct {
	Period  int
	Revenue decimal.Decimal

	COGS           decimal.Decimal
	OpexTotal      decimal.Decimal
	OpexByCategory map[types.CostCategory]decimal.Decimal

	// SalesMarketingSpend is the CAC numerator. HasSalesMarketing is false
	// when no category carries the flag, which makes CAC not-applicable.
	SalesMarketingSpend decimal.Decimal
	HasSalesMarketing   bool

	GrossProfit decimal.Decimal
	EBITDA      decimal.Decimal

	// Margins are not-applicable at zero revenue rather than zero or an
	// arbitrary value, so a pre-revenue period cannot fake a 0% margin.
	GrossMargin  types.MetricValue
	EBITDAMargin types.MetricValue
}

// CostService resolves every configured cost category for a period and derives
// gross profit, EBITDA, and margins from the period's attributed revenue.
type CostService interface {
	Calculate(ctx context.Context, period int, revenue decimal.Decimal) (*CostResult, error)
}

type costService struct {
	ServiceParams
}

func NewCostService(params ServiceParams) CostService {
	return &costService{
		ServiceParams: params,
	}
}

func (s *costService) Calculate(ctx context.Context, period int, revenue decimal.Decimal) (*CostResult, error) {
	result := &CostResult{
		Period:         period,
		Revenue:        revenue,
		OpexByCategory: make(map[types.CostCategory]decimal.Decimal),
	}

	for _, cost := range s.RateCard.Costs() {
		amount, err := cost.AmountFor(period, revenue)
		if err != nil {
			return nil, err
		}
		switch cost.Kind {
		case types.COST_KIND_COGS:
			result.COGS = result.COGS.Add(amount)
		default:
			result.OpexByCategory[cost.Category] = result.OpexByCategory[cost.Category].Add(amount)
			result.OpexTotal = result.OpexTotal.Add(amount)
		}
		if cost.SalesMarketing {
			result.SalesMarketingSpend = result.SalesMarketingSpend.Add(amount)
			result.HasSalesMarketing = true
		}
	}

	result.GrossProfit = revenue.Sub(result.COGS)
	result.EBITDA = result.GrossProfit.Sub(result.OpexTotal)

	if revenue.IsZero() {
		result.GrossMargin = types.MetricValueNA()
		result.EBITDAMargin = types.MetricValueNA()
	} else {
		result.GrossMargin = types.NewMetricValue(result.GrossProfit.Div(revenue))
		result.EBITDAMargin = types.NewMetricValue(result.EBITDA.Div(revenue))
	}

	return result, nil
}
