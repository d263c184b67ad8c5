package types

import (
	ierr "github.com/hashguard/forecast/internal/errors"
)

// TierID is the configured identifier of a subscription tier ex "essentials"
type TierID string

// TierKind classifies a tier on the upgrade path. Kinds form a partial order:
// FREE → INDIVIDUAL → TEAM → ENTERPRISE. Churn is terminal from any kind.
type TierKind string

// PriceCadence is how a tier's price recurs ex RECURRING, ONETIME
type PriceCadence string

// PriceBasis is the unit the price applies to. Account-aggregated tiers may
// price per seat (PER_USER) while tracking accounts as the churn unit.
type PriceBasis string

const (
	TIER_KIND_FREE       TierKind = "FREE"
	TIER_KIND_INDIVIDUAL TierKind = "INDIVIDUAL"
	TIER_KIND_TEAM       TierKind = "TEAM"
	TIER_KIND_ENTERPRISE TierKind = "ENTERPRISE"

	PRICE_CADENCE_RECURRING PriceCadence = "RECURRING"
	PRICE_CADENCE_ONETIME   PriceCadence = "ONETIME"

	PRICE_BASIS_PER_CUSTOMER PriceBasis = "PER_CUSTOMER"
	PRICE_BASIS_PER_USER     PriceBasis = "PER_USER"
)

// upgradeRank orders tier kinds along the upgrade path.
var upgradeRank = map[TierKind]int{
	TIER_KIND_FREE:       0,
	TIER_KIND_INDIVIDUAL: 1,
	TIER_KIND_TEAM:       2,
	TIER_KIND_ENTERPRISE: 3,
}

func (k TierKind) Validate() error {
	if _, ok := upgradeRank[k]; !ok {
		return ierr.NewError("invalid tier kind").
			WithHint("Tier kind must be one of FREE, INDIVIDUAL, TEAM, ENTERPRISE").
			WithReportableDetails(map[string]any{"kind": k}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Paid reports whether customers in this kind of tier count as paying.
func (k TierKind) Paid() bool {
	return k != TIER_KIND_FREE
}

// Aggregated reports whether the tier tracks accounts as the churn/conversion
// unit, with user counts derived from accounts x users-per-account.
func (k TierKind) Aggregated() bool {
	return k == TIER_KIND_TEAM || k == TIER_KIND_ENTERPRISE
}

// CanUpgradeTo reports whether a conversion edge from k to dest respects the
// upgrade partial order.
func (k TierKind) CanUpgradeTo(dest TierKind) bool {
	return upgradeRank[dest] > upgradeRank[k]
}

func (c PriceCadence) Validate() error {
	switch c {
	case PRICE_CADENCE_RECURRING, PRICE_CADENCE_ONETIME:
		return nil
	default:
		return ierr.NewError("invalid price cadence").
			WithHintf("Price cadence must be one of %s or %s", PRICE_CADENCE_RECURRING, PRICE_CADENCE_ONETIME).
			WithReportableDetails(map[string]any{"cadence": c}).
			Mark(ierr.ErrValidation)
	}
}

func (b PriceBasis) Validate() error {
	switch b {
	case PRICE_BASIS_PER_CUSTOMER, PRICE_BASIS_PER_USER:
		return nil
	default:
		return ierr.NewError("invalid price basis").
			WithHintf("Price basis must be one of %s or %s", PRICE_BASIS_PER_CUSTOMER, PRICE_BASIS_PER_USER).
			WithReportableDetails(map[string]any{"basis": b}).
			Mark(ierr.ErrValidation)
	}
}
