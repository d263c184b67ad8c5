package dto

import (
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// MarketSizing is the post-simulation market block: cumulative revenue over
// the projection horizon (SOM), the peak period, and how the peak compares
// to the serviceable market.
type MarketSizing struct {
	TAM decimal.Decimal `json:"tam"`
	SAM decimal.Decimal `json:"sam"`

	SOMCumulativeRevenue decimal.Decimal   `json:"som_cumulative_revenue"`
	PeakRevenue          decimal.Decimal   `json:"peak_revenue"`
	PeakRevenuePeriod    int               `json:"peak_revenue_period"`
	PeakShareOfSAM       types.MetricValue `json:"peak_share_of_sam"`

	// TargetableByRegion projects the base region's targetable-company total
	// onto every region in proportion to its SAM share.
	TargetableByRegion map[string]decimal.Decimal `json:"targetable_by_region,omitempty"`
	TargetableTotal    decimal.Decimal            `json:"targetable_total"`
}
