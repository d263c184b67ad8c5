package dto

import (
	"github.com/hashguard/forecast/internal/domain/cohort"
	"github.com/hashguard/forecast/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CohortRow is one ledger observation in the exported cohort table.
type CohortRow struct {
	AcquisitionPeriod int             `json:"acquisition_period"`
	Tier              types.TierID    `json:"tier"`
	ObservationPeriod int             `json:"observation_period"`
	Count             decimal.Decimal `json:"count"`
	Revenue           decimal.Decimal `json:"revenue"`
}

// CohortTable is the full cohort ledger as a flat table. Rows are sorted by
// acquisition period, tier, then observation period.
type CohortTable struct {
	Rows []CohortRow `json:"rows"`
}

// NewCohortTable flattens a completed ledger. Counts are reported as-is,
// unrounded; rounding for display is the presentation layer's concern and
// never feeds back into the simulation.
func NewCohortTable(ledger *cohort.Ledger) CohortTable {
	return CohortTable{
		Rows: lo.Map(ledger.Rows(), func(r cohort.Row, _ int) CohortRow {
			return CohortRow{
				AcquisitionPeriod: r.Key.AcquisitionPeriod,
				Tier:              r.Key.TierID,
				ObservationPeriod: r.ObservationPeriod,
				Count:             r.Cell.Count,
				Revenue:           r.Cell.Revenue,
			}
		}),
	}
}

// ProjectionResult is everything a presentation layer may read. It performs
// no computation on these tables and the engine depends on nothing it makes.
type ProjectionResult struct {
	RunID       string                  `json:"run_id"`
	Granularity types.PeriodGranularity `json:"granularity"`
	StartLabel  string                  `json:"start_label,omitempty"`
	Cohorts     CohortTable             `json:"cohorts"`
	Summary     *FinancialSummary       `json:"summary"`
	Market      *MarketSizing           `json:"market,omitempty"`
}
