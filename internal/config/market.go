package config

import (
	ierr "github.com/hashguard/forecast/internal/errors"
)

// MarketConfig holds the market-sizing assumptions. The simulation never
// reads these; the market sizing summary derives SOM and peak-revenue
// figures from them after the run completes.
type MarketConfig struct {
	// TAM and SAM are absolute currency amounts, not billions.
	TAM float64 `mapstructure:"tam"`
	SAM float64 `mapstructure:"sam"`

	// SAMBreakdown maps region name to its share of SAM; shares sum to 1.
	SAMBreakdown map[string]float64 `mapstructure:"sam_breakdown"`

	// BaseRegion is the region whose targetable-company counts are given
	// explicitly; other regions are projected in proportion to SAM share.
	BaseRegion string `mapstructure:"base_region"`

	// TargetableCompanies maps segment name to company count in BaseRegion.
	TargetableCompanies map[string]float64 `mapstructure:"targetable_companies"`
}

func (m *MarketConfig) Validate() error {
	if m.TAM < 0 || m.SAM < 0 {
		return ierr.NewError("negative market size").
			WithHint("TAM and SAM must be non-negative").
			Mark(ierr.ErrValidation)
	}

	if len(m.SAMBreakdown) > 0 {
		sum := decimalZero
		for region, share := range m.SAMBreakdown {
			if share < 0 || share > 1 {
				return ierr.NewError("SAM share out of range").
					WithHintf("Region %q share must be within [0, 1]", region).
					Mark(ierr.ErrValidation)
			}
			sum = sum.Add(decimalFromFloat(share))
		}
		if !sum.Equal(decimalOne) {
			return ierr.NewError("SAM breakdown does not sum to 1").
				WithHintf("Region shares sum to %s", sum.String()).
				Mark(ierr.ErrValidation)
		}
		if m.BaseRegion != "" {
			if share, ok := m.SAMBreakdown[m.BaseRegion]; !ok || share == 0 {
				return ierr.NewError("base region missing from SAM breakdown").
					WithHintf("Region %q must appear in sam_breakdown with a positive share", m.BaseRegion).
					Mark(ierr.ErrValidation)
			}
		}
	}

	for segment, count := range m.TargetableCompanies {
		if count < 0 {
			return ierr.NewError("negative targetable company count").
				WithHintf("Segment %q count must be non-negative", segment).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
