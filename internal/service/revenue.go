package service

import (
	"context"

	"github.com/hashguard/forecast/internal/domain/cohort"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// AttributionResult is one period's revenue, split by tier and by cohort age.
type AttributionResult struct {
	Period int
	Total  decimal.Decimal

	// Recurring excludes one-time charges and is the base for ARPC and NRR.
	Recurring decimal.Decimal

	// NewCohort is revenue from cohorts acquired this period; Existing covers
	// everything older. NewCohort + Existing == Total.
	NewCohort decimal.Decimal
	Existing  decimal.Decimal

	ByTier map[types.TierID]decimal.Decimal
}

// AttributionService computes per-cohort revenue for a period after the
// transition has committed populations, and records it on the ledger cells.
type AttributionService interface {
	Attribute(ctx context.Context, ledger *cohort.Ledger, period int) (*AttributionResult, error)
}

type attributionService struct {
	ServiceParams
}

func NewAttributionService(params ServiceParams) AttributionService {
	return &attributionService{
		ServiceParams: params,
	}
}

func (s *attributionService) Attribute(ctx context.Context, ledger *cohort.Ledger, period int) (*AttributionResult, error) {
	card := s.RateCard
	one := decimal.NewFromInt(1)

	result := &AttributionResult{
		Period: period,
		ByTier: make(map[types.TierID]decimal.Decimal),
	}

	for _, key := range ledger.KeysAt(period) {
		tier, err := card.Tier(key.TierID)
		if err != nil {
			return nil, err
		}
		if !tier.Paid() {
			continue
		}
		// One-time pricing bills a cohort only in its acquisition period.
		if !tier.Recurring() && key.AcquisitionPeriod != period {
			continue
		}

		count, err := ledger.Count(key, period)
		if err != nil {
			return nil, err
		}
		price, err := tier.Price(period)
		if err != nil {
			return nil, err
		}

		quantity := count
		if tier.PriceBasis == types.PRICE_BASIS_PER_USER {
			perAccount, err := tier.UsersPerAccount(period)
			if err != nil {
				return nil, err
			}
			quantity = count.Mul(perAccount)
		}

		revenue := quantity.Mul(price)

		// Expansion uplifts only cohorts observed past their acquisition
		// period. The factor is flat, not accumulated across periods.
		if key.AcquisitionPeriod < period {
			expansion, err := tier.ExpansionRate(period)
			if err != nil {
				return nil, err
			}
			revenue = revenue.Mul(one.Add(expansion))
		}

		if err := ledger.AddRevenue(key, period, revenue); err != nil {
			return nil, err
		}

		result.Total = result.Total.Add(revenue)
		result.ByTier[key.TierID] = result.ByTier[key.TierID].Add(revenue)
		if tier.Recurring() {
			result.Recurring = result.Recurring.Add(revenue)
		}
		if key.AcquisitionPeriod == period {
			result.NewCohort = result.NewCohort.Add(revenue)
		} else {
			result.Existing = result.Existing.Add(revenue)
		}
	}

	return result, nil
}
