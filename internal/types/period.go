package types

import (
	ierr "github.com/hashguard/forecast/internal/errors"
)

// PeriodGranularity is the base time unit of a projection run ex MONTHLY, ANNUAL
type PeriodGranularity string

const (
	GRANULARITY_MONTHLY PeriodGranularity = "MONTHLY"
	GRANULARITY_ANNUAL  PeriodGranularity = "ANNUAL"
)

// SeedPeriod is the acquisition period assigned to seed cohorts. Seeds exist
// before the first simulated period, so period-1 churn applies to them while
// freshly acquired cohorts never churn in their own acquisition period.
const SeedPeriod = 0

// FirstPeriod is the first simulated period index. Periods run 1..N.
const FirstPeriod = 1

// MonthsPerYear is used to annualize monthly quantities (ARPU, churn, payback).
const MonthsPerYear = 12

func (g PeriodGranularity) Validate() error {
	switch g {
	case GRANULARITY_MONTHLY, GRANULARITY_ANNUAL:
		return nil
	default:
		return ierr.NewError("invalid period granularity").
			WithHintf("Granularity must be one of %s or %s", GRANULARITY_MONTHLY, GRANULARITY_ANNUAL).
			WithReportableDetails(map[string]any{"granularity": g}).
			Mark(ierr.ErrValidation)
	}
}

// IsMonthly reports whether annualization (x12) applies to per-period figures.
func (g PeriodGranularity) IsMonthly() bool {
	return g == GRANULARITY_MONTHLY
}
