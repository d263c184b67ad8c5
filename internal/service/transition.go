package service

import (
	"context"

	"github.com/hashguard/forecast/internal/domain/cohort"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// TierTransition is one tier's population movement over a single period.
// The mass-conservation identity holds exactly:
// EndCount = StartCount - Churned - ConvertedOut + Acquired + ConvertedIn.
type TierTransition struct {
	TierID       types.TierID
	StartCount   decimal.Decimal
	Churned      decimal.Decimal
	ConvertedOut decimal.Decimal
	ConvertedIn  decimal.Decimal
	Acquired     decimal.Decimal
	EndCount     decimal.Decimal

	// StartUsers/EndUsers are derived for account-aggregated tiers only, as
	// accounts x the period's users-per-account average. Users are never
	// churned independently of accounts.
	StartUsers decimal.Decimal
	EndUsers   decimal.Decimal
}

// TransitionResult is the outcome of advancing the model by one period.
type TransitionResult struct {
	Period      int
	NewEntrants decimal.Decimal

	// FirstTimePaying counts customers who became paying this period:
	// direct acquisition into a paid tier plus free-to-paid conversions.
	// Paid-to-paid upgrades do not count.
	FirstTimePaying decimal.Decimal

	Tiers map[types.TierID]*TierTransition
}

// TransitionService advances tier populations by one period: acquisition,
// churn, and cross-tier conversion, reading only the prior period's committed
// ledger snapshot.
type TransitionService interface {
	Advance(ctx context.Context, ledger *cohort.Ledger, period int, prevEntrants decimal.Decimal) (*TransitionResult, error)
}

type transitionService struct {
	ServiceParams
}

func NewTransitionService(params ServiceParams) TransitionService {
	return &transitionService{
		ServiceParams: params,
	}
}

func (s *transitionService) Advance(ctx context.Context, ledger *cohort.Ledger, period int, prevEntrants decimal.Decimal) (*TransitionResult, error) {
	card := s.RateCard

	result := &TransitionResult{
		Period: period,
		Tiers:  make(map[types.TierID]*TierTransition, len(card.Tiers())),
	}
	for _, tier := range card.Tiers() {
		result.Tiers[tier.ID] = &TierTransition{TierID: tier.ID}
	}

	// Inbound conversion arrivals per destination tier, committed after all
	// source rows are processed so no same-period state is ever read.
	arrivals := make(map[types.TierID]decimal.Decimal)
	firstTimePaying := decimal.Zero

	// Churn and outbound conversion deplete every live cohort row
	// proportionally, both against the pre-churn start-of-period count.
	for _, key := range ledger.KeysAt(period - 1) {
		count, err := ledger.Count(key, period-1)
		if err != nil {
			return nil, err
		}
		if count.IsZero() {
			continue
		}

		tier, err := card.Tier(key.TierID)
		if err != nil {
			return nil, err
		}
		churnRate, err := tier.ChurnRate(period)
		if err != nil {
			return nil, err
		}

		churned := count.Mul(churnRate)
		converted := decimal.Zero
		for _, edge := range tier.Conversions() {
			rate, err := edge.Rate(period)
			if err != nil {
				return nil, err
			}
			moving := count.Mul(rate)
			if moving.IsZero() {
				continue
			}
			arrivals[edge.To] = arrivals[edge.To].Add(moving)
			converted = converted.Add(moving)

			dest, err := card.Tier(edge.To)
			if err != nil {
				return nil, err
			}
			if !tier.Paid() && dest.Paid() {
				firstTimePaying = firstTimePaying.Add(moving)
			}
		}

		if err := ledger.SetCount(key, period, count.Sub(churned).Sub(converted)); err != nil {
			return nil, err
		}

		tt := result.Tiers[key.TierID]
		tt.StartCount = tt.StartCount.Add(count)
		tt.Churned = tt.Churned.Add(churned)
		tt.ConvertedOut = tt.ConvertedOut.Add(converted)
	}

	// Acquisition: new entrants split across entry tiers, founding this
	// period's cohorts. New cohorts never churn in their acquisition period.
	entrants, err := card.EntrantVolume(period, prevEntrants)
	if err != nil {
		return nil, err
	}
	result.NewEntrants = entrants

	for _, tier := range card.Tiers() {
		if !tier.Entry() {
			continue
		}
		fraction, err := tier.SplitFraction(period)
		if err != nil {
			return nil, err
		}
		acquired := entrants.Mul(fraction)
		if acquired.IsZero() {
			continue
		}
		if err := ledger.Found(cohort.Key{AcquisitionPeriod: period, TierID: tier.ID}, acquired); err != nil {
			return nil, err
		}
		result.Tiers[tier.ID].Acquired = acquired
		if tier.Paid() {
			firstTimePaying = firstTimePaying.Add(acquired)
		}
	}

	// Conversion arrivals found (or merge into) the destination tier's cohort
	// dated at the current period.
	for _, tier := range card.Tiers() {
		inbound, ok := arrivals[tier.ID]
		if !ok || inbound.IsZero() {
			continue
		}
		if err := ledger.Found(cohort.Key{AcquisitionPeriod: period, TierID: tier.ID}, inbound); err != nil {
			return nil, err
		}
		result.Tiers[tier.ID].ConvertedIn = inbound
	}

	// Close the period: end populations and the derived user counts.
	for _, tier := range card.Tiers() {
		tt := result.Tiers[tier.ID]
		tt.EndCount = tt.StartCount.
			Sub(tt.Churned).
			Sub(tt.ConvertedOut).
			Add(tt.Acquired).
			Add(tt.ConvertedIn)

		if tier.Aggregated() {
			perAccount, err := tier.UsersPerAccount(period)
			if err != nil {
				return nil, err
			}
			tt.StartUsers = tt.StartCount.Mul(perAccount)
			tt.EndUsers = tt.EndCount.Mul(perAccount)
		}
	}

	result.FirstTimePaying = firstTimePaying
	return result, nil
}
