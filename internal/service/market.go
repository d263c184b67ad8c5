package service

import (
	"context"
	"sort"

	"github.com/hashguard/forecast/internal/dto"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// MarketService derives the market-sizing block from the completed summary
// and the configured TAM/SAM assumptions. It runs strictly after the
// simulation and never feeds anything back into it.
type MarketService interface {
	Size(ctx context.Context, summary *dto.FinancialSummary) (*dto.MarketSizing, error)
}

type marketService struct {
	ServiceParams
}

func NewMarketService(params ServiceParams) MarketService {
	return &marketService{
		ServiceParams: params,
	}
}

func (s *marketService) Size(ctx context.Context, summary *dto.FinancialSummary) (*dto.MarketSizing, error) {
	market := s.Config.Market
	if market == nil {
		return nil, nil
	}

	sizing := &dto.MarketSizing{
		TAM: decimal.NewFromFloat(market.TAM),
		SAM: decimal.NewFromFloat(market.SAM),
	}

	// SOM is what the model actually captures: cumulative projected revenue.
	for _, period := range summary.Periods {
		revenue := summary.Value(types.MetricRevenue, period)
		if !revenue.Applicable() {
			continue
		}
		sizing.SOMCumulativeRevenue = sizing.SOMCumulativeRevenue.Add(revenue.Amount)
		if revenue.Amount.GreaterThan(sizing.PeakRevenue) || sizing.PeakRevenuePeriod == 0 {
			sizing.PeakRevenue = revenue.Amount
			sizing.PeakRevenuePeriod = period
		}
	}

	if sizing.SAM.IsZero() {
		sizing.PeakShareOfSAM = types.MetricValueNA()
	} else {
		sizing.PeakShareOfSAM = types.NewMetricValue(sizing.PeakRevenue.Div(sizing.SAM))
	}

	// Targetable companies: the base region's counts are given; every other
	// region scales by its SAM share relative to the base region's share.
	baseTotal := decimal.Zero
	for _, count := range market.TargetableCompanies {
		baseTotal = baseTotal.Add(decimal.NewFromFloat(count))
	}
	sizing.TargetableTotal = baseTotal

	if market.BaseRegion != "" && len(market.SAMBreakdown) > 0 {
		baseShare := decimal.NewFromFloat(market.SAMBreakdown[market.BaseRegion])
		if baseShare.IsPositive() {
			regions := make([]string, 0, len(market.SAMBreakdown))
			for region := range market.SAMBreakdown {
				regions = append(regions, region)
			}
			sort.Strings(regions)

			sizing.TargetableByRegion = make(map[string]decimal.Decimal, len(regions))
			total := decimal.Zero
			for _, region := range regions {
				share := decimal.NewFromFloat(market.SAMBreakdown[region])
				projected := baseTotal.Mul(share).Div(baseShare)
				sizing.TargetableByRegion[region] = projected
				total = total.Add(projected)
			}
			sizing.TargetableTotal = total
		}
	}

	return sizing, nil
}
