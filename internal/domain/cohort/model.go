package cohort

import (
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// Key identifies a cohort: the customers who first entered a tier in a given
// period. Conversions found a new cohort in the destination tier dated at the
// conversion period, so one acquisition cohort can have descendant rows in
// several tiers at once. Seed populations use types.SeedPeriod.
type Key struct {
	AcquisitionPeriod int          `json:"acquisition_period"`
	TierID            types.TierID `json:"tier_id"`
}

// Cell is one observation of a cohort: who is left and what they brought in.
type Cell struct {
	Count   decimal.Decimal `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Row is a flattened ledger entry for table export.
type Row struct {
	Key               Key
	ObservationPeriod int
	Cell              Cell
}
