package ratecard

import (
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

func (t *Tier) Seed() decimal.Decimal {
	return t.seed
}

func (t *Tier) Paid() bool {
	return t.Kind.Paid()
}

func (t *Tier) Aggregated() bool {
	return t.Kind.Aggregated()
}

func (t *Tier) Recurring() bool {
	return t.PriceCadence == types.PRICE_CADENCE_RECURRING
}

// Entry reports whether the tier receives a share of new entrants.
func (t *Tier) Entry() bool {
	return !t.split.empty()
}

func (t *Tier) Price(period int) (decimal.Decimal, error) {
	// Free tiers carry no price schedule; their price is identically zero.
	if !t.Paid() && t.price.empty() {
		return decimal.Zero, nil
	}
	v, ok := t.price.value(period)
	if !ok {
		return decimal.Zero, missingEntry("price", t.ID, period)
	}
	return v, nil
}

func (t *Tier) ChurnRate(period int) (decimal.Decimal, error) {
	v, ok := t.churn.value(period)
	if !ok {
		return decimal.Zero, missingEntry("churn", t.ID, period)
	}
	return v, nil
}

func (t *Tier) ExpansionRate(period int) (decimal.Decimal, error) {
	// Free tiers generate no revenue, so an absent expansion schedule is zero.
	if !t.Paid() && t.expansion.empty() {
		return decimal.Zero, nil
	}
	v, ok := t.expansion.value(period)
	if !ok {
		return decimal.Zero, missingEntry("expansion", t.ID, period)
	}
	return v, nil
}

// SplitFraction is this tier's share of the period's new entrants.
func (t *Tier) SplitFraction(period int) (decimal.Decimal, error) {
	if !t.Entry() {
		return decimal.Zero, nil
	}
	v, ok := t.split.value(period)
	if !ok {
		return decimal.Zero, missingEntry("acquisition split", t.ID, period)
	}
	return v, nil
}

func (t *Tier) UsersPerAccount(period int) (decimal.Decimal, error) {
	v, ok := t.usersPerAccount.value(period)
	if !ok {
		return decimal.Zero, missingEntry("users_per_account", t.ID, period)
	}
	return v, nil
}

func (t *Tier) Conversions() []ConversionEdge {
	return t.conversions
}

func (e ConversionEdge) Rate(period int) (decimal.Decimal, error) {
	v, ok := e.rate.value(period)
	if !ok {
		return decimal.Zero, missingEntry("conversion", e.From, period)
	}
	return v, nil
}

// AmountFor resolves a cost category's spend for a period under its policy.
func (c *CostCategory) AmountFor(period int, revenue decimal.Decimal) (decimal.Decimal, error) {
	switch c.Policy {
	case types.COST_POLICY_FIXED_AMOUNT:
		v, ok := c.amounts.value(period)
		if !ok {
			return decimal.Zero, missingEntry("cost amount", "", period)
		}
		return v, nil
	default:
		v, ok := c.rate.value(period)
		if !ok {
			return decimal.Zero, missingEntry("cost rate", "", period)
		}
		return revenue.Mul(v), nil
	}
}
