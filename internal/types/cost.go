package types

import (
	ierr "github.com/hashguard/forecast/internal/errors"
)

// CostCategory is the configured name of an operating cost bucket ex "S&M", "R&D"
type CostCategory string

// CostKind determines where a category lands in the P&L.
type CostKind string

// CostPolicy is how a category's per-period amount is determined. A category
// carries exactly one policy for a whole run; mixing is a validation error.
type CostPolicy string

const (
	COST_KIND_COGS CostKind = "COGS"
	COST_KIND_OPEX CostKind = "OPEX"

	COST_POLICY_FIXED_AMOUNT       CostPolicy = "FIXED_AMOUNT"
	COST_POLICY_PERCENT_OF_REVENUE CostPolicy = "PERCENT_OF_REVENUE"
)

func (k CostKind) Validate() error {
	switch k {
	case COST_KIND_COGS, COST_KIND_OPEX:
		return nil
	default:
		return ierr.NewError("invalid cost kind").
			WithHintf("Cost kind must be one of %s or %s", COST_KIND_COGS, COST_KIND_OPEX).
			WithReportableDetails(map[string]any{"kind": k}).
			Mark(ierr.ErrValidation)
	}
}

func (p CostPolicy) Validate() error {
	switch p {
	case COST_POLICY_FIXED_AMOUNT, COST_POLICY_PERCENT_OF_REVENUE:
		return nil
	default:
		return ierr.NewError("invalid cost policy").
			WithHintf("Cost policy must be one of %s or %s", COST_POLICY_FIXED_AMOUNT, COST_POLICY_PERCENT_OF_REVENUE).
			WithReportableDetails(map[string]any{"policy": p}).
			Mark(ierr.ErrValidation)
	}
}
