package config

import (
	ierr "github.com/hashguard/forecast/internal/errors"
	"github.com/hashguard/forecast/internal/types"
)

// CostConfig defines one operating cost category. A category carries exactly
// one policy: an absolute per-period budget or a percentage of period revenue.
// Supplying both schedules is rejected rather than inferred.
type CostConfig struct {
	Category types.CostCategory `mapstructure:"category" validate:"required"`
	Kind     types.CostKind     `mapstructure:"kind" validate:"required"`
	Policy   types.CostPolicy   `mapstructure:"policy" validate:"required"`

	Amounts Schedule `mapstructure:"amounts"`
	Rate    Schedule `mapstructure:"rate"`

	// SalesMarketing flags the category whose spend is the CAC numerator.
	SalesMarketing bool `mapstructure:"sales_marketing"`
}

func (c *CostConfig) Validate(periods int) error {
	if err := c.Kind.Validate(); err != nil {
		return err
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}

	switch c.Policy {
	case types.COST_POLICY_FIXED_AMOUNT:
		if !c.Rate.Empty() {
			return ierr.NewError("mixed cost policy").
				WithHintf("Category %q uses fixed amounts and must not carry a rate schedule", c.Category).
				Mark(ierr.ErrValidation)
		}
		if !c.Amounts.Covers(periods) {
			return ierr.NewError("cost amounts missing a period").
				WithHintf("Category %q must have an amount for every period", c.Category).
				Mark(ierr.ErrValidation)
		}
		for p := types.FirstPeriod; p <= periods; p++ {
			if v, _ := c.Amounts.Value(p); v < 0 {
				return ierr.NewError("negative cost amount").
					WithHintf("Category %q amount for period %d must be non-negative", c.Category, p).
					Mark(ierr.ErrValidation)
			}
		}
	case types.COST_POLICY_PERCENT_OF_REVENUE:
		if !c.Amounts.Empty() {
			return ierr.NewError("mixed cost policy").
				WithHintf("Category %q uses percent-of-revenue and must not carry an amount schedule", c.Category).
				Mark(ierr.ErrValidation)
		}
		if !c.Rate.Covers(periods) {
			return ierr.NewError("cost rate missing a period").
				WithHintf("Category %q must have a rate for every period", c.Category).
				Mark(ierr.ErrValidation)
		}
		for p := types.FirstPeriod; p <= periods; p++ {
			if v, _ := c.Rate.Value(p); v < 0 || v > 1 {
				return ierr.NewError("cost rate out of range").
					WithHintf("Category %q rate for period %d must be within [0, 1]", c.Category, p).
					Mark(ierr.ErrValidation)
			}
		}
	}
	return nil
}
