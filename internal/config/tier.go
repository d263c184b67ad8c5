package config

import (
	ierr "github.com/hashguard/forecast/internal/errors"
	"github.com/hashguard/forecast/internal/types"
)

// TierConfig defines one customer tier: its place on the upgrade path, its
// pricing, and its per-period churn/expansion/conversion behavior.
type TierConfig struct {
	ID           types.TierID       `mapstructure:"id" validate:"required"`
	Name         string             `mapstructure:"name"`
	Kind         types.TierKind     `mapstructure:"kind" validate:"required"`
	PriceCadence types.PriceCadence `mapstructure:"price_cadence"`
	PriceBasis   types.PriceBasis   `mapstructure:"price_basis"`

	Price     Schedule `mapstructure:"price"`
	Churn     Schedule `mapstructure:"churn"`
	Expansion Schedule `mapstructure:"expansion"`

	// AcquisitionSplit is this tier's fraction of new entrants per period.
	// Only entry tiers carry one; the fractions must sum to 1 per period.
	AcquisitionSplit Schedule `mapstructure:"acquisition_split"`

	// UsersPerAccount applies to account-aggregated tiers only: user counts
	// are always re-derived as accounts x this average, never churned alone.
	UsersPerAccount Schedule `mapstructure:"users_per_account"`

	Conversions []ConversionConfig `mapstructure:"conversions" validate:"dive"`

	// SeedCount is the population present at the start of the first period.
	SeedCount float64 `mapstructure:"seed_count"`
}

// ConversionConfig is one upgrade edge out of a tier.
type ConversionConfig struct {
	To   types.TierID `mapstructure:"to" validate:"required"`
	Rate Schedule     `mapstructure:"rate"`
}

func (t *TierConfig) Validate(periods int, byID map[types.TierID]*TierConfig) error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.PriceCadence == "" {
		t.PriceCadence = types.PRICE_CADENCE_RECURRING
	}
	if err := t.PriceCadence.Validate(); err != nil {
		return err
	}
	if t.PriceBasis == "" {
		t.PriceBasis = types.PRICE_BASIS_PER_CUSTOMER
	}
	if err := t.PriceBasis.Validate(); err != nil {
		return err
	}

	if t.SeedCount < 0 {
		return ierr.NewError("negative seed population").
			WithHintf("Tier %q seed_count must be non-negative", t.ID).
			Mark(ierr.ErrValidation)
	}

	if t.Kind.Paid() {
		if !t.Price.Covers(periods) {
			return ierr.NewError("price schedule missing a period").
				WithHintf("Paid tier %q must have a price for every period", t.ID).
				Mark(ierr.ErrValidation)
		}
	}
	if !t.Churn.Covers(periods) {
		return ierr.NewError("churn schedule missing a period").
			WithHintf("Tier %q must have a churn rate for every period", t.ID).
			Mark(ierr.ErrValidation)
	}
	if t.Kind.Paid() && !t.Expansion.Covers(periods) {
		return ierr.NewError("expansion schedule missing a period").
			WithHintf("Paid tier %q must have an expansion rate for every period", t.ID).
			Mark(ierr.ErrValidation)
	}
	if t.Kind.Aggregated() && !t.UsersPerAccount.Covers(periods) {
		return ierr.NewError("users_per_account schedule missing a period").
			WithHintf("Account-aggregated tier %q must define users_per_account for every period", t.ID).
			Mark(ierr.ErrValidation)
	}

	for _, conv := range t.Conversions {
		dest, ok := byID[conv.To]
		if !ok {
			return ierr.NewError("conversion to unknown tier").
				WithHintf("Tier %q converts to undefined tier %q", t.ID, conv.To).
				Mark(ierr.ErrValidation)
		}
		if !t.Kind.CanUpgradeTo(dest.Kind) {
			return ierr.NewError("conversion against the upgrade order").
				WithHintf("Tier %q (%s) cannot upgrade to %q (%s)", t.ID, t.Kind, dest.ID, dest.Kind).
				Mark(ierr.ErrValidation)
		}
		if !conv.Rate.Covers(periods) {
			return ierr.NewError("conversion schedule missing a period").
				WithHintf("Conversion %q -> %q must have a rate for every period", t.ID, conv.To).
				Mark(ierr.ErrValidation)
		}
	}

	return t.validateRates(periods)
}

// validateRates checks the [0,1) rate bounds, non-negative prices, and that
// churn plus total outbound conversion never exhausts a period's population.
func (t *TierConfig) validateRates(periods int) error {
	for p := types.FirstPeriod; p <= periods; p++ {
		churn, _ := t.Churn.Value(p)
		if churn < 0 || churn >= 1 {
			return rangeError("churn", t.ID, p, churn)
		}
		if expansion, ok := t.Expansion.Value(p); ok && (expansion < 0 || expansion >= 1) {
			return rangeError("expansion", t.ID, p, expansion)
		}
		if price, ok := t.Price.Value(p); ok && price < 0 {
			return ierr.NewError("negative price").
				WithHintf("Tier %q price for period %d must be non-negative", t.ID, p).
				Mark(ierr.ErrValidation)
		}
		if upa, ok := t.UsersPerAccount.Value(p); ok && upa < 0 {
			return ierr.NewError("negative users_per_account").
				WithHintf("Tier %q users_per_account for period %d must be non-negative", t.ID, p).
				Mark(ierr.ErrValidation)
		}

		outbound := decimalFromFloat(churn)
		for _, conv := range t.Conversions {
			rate, _ := conv.Rate.Value(p)
			if rate < 0 || rate >= 1 {
				return rangeError("conversion", t.ID, p, rate)
			}
			outbound = outbound.Add(decimalFromFloat(rate))
		}
		if outbound.GreaterThanOrEqual(decimalOne) {
			return ierr.NewError("churn and conversion exhaust the tier").
				WithHintf("Tier %q churn plus outbound conversion for period %d must stay below 1", t.ID, p).
				WithReportableDetails(map[string]any{"tier": t.ID, "period": p, "total": outbound.String()}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
