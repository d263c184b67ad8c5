package ratecard

import (
	"github.com/hashguard/forecast/internal/config"
	ierr "github.com/hashguard/forecast/internal/errors"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// RateCard is the immutable, decimal-typed view of a validated configuration.
// Every accessor fails fast on a missing entry instead of defaulting to zero,
// so a period or tier the configuration does not cover surfaces as an error
// at the exact lookup, never as a silently wrong number.
type RateCard struct {
	granularity types.PeriodGranularity
	periods     int
	tiers       []*Tier
	byID        map[types.TierID]*Tier
	acquisition acquisition
	costs       []*CostCategory
}

// Tier is one tier's resolved rate surface.
type Tier struct {
	ID           types.TierID
	Name         string
	Kind         types.TierKind
	PriceCadence types.PriceCadence
	PriceBasis   types.PriceBasis

	seed            decimal.Decimal
	price           schedule
	churn           schedule
	expansion       schedule
	split           schedule
	usersPerAccount schedule
	conversions     []ConversionEdge
}

// ConversionEdge is one upgrade path out of a tier.
type ConversionEdge struct {
	From types.TierID
	To   types.TierID

	rate schedule
}

// CostCategory is one cost bucket's resolved policy and schedule.
type CostCategory struct {
	Category       types.CostCategory
	Kind           types.CostKind
	Policy         types.CostPolicy
	SalesMarketing bool

	amounts schedule
	rate    schedule
}

type acquisition struct {
	configured  bool
	compounding bool
	initial     decimal.Decimal
	volumes     schedule
	growth      schedule
}

// schedule is the decimal twin of config.Schedule, resolved once at build time.
type schedule struct {
	def     *decimal.Decimal
	periods map[int]decimal.Decimal
}

func (s schedule) value(period int) (decimal.Decimal, bool) {
	if v, ok := s.periods[period]; ok {
		return v, true
	}
	if s.def != nil {
		return *s.def, true
	}
	return decimal.Zero, false
}

func (s schedule) empty() bool {
	return s.def == nil && len(s.periods) == 0
}

func newSchedule(src config.Schedule) schedule {
	out := schedule{}
	if src.Default != nil {
		d := decimal.NewFromFloat(*src.Default)
		out.def = &d
	}
	if len(src.Periods) > 0 {
		out.periods = make(map[int]decimal.Decimal, len(src.Periods))
		for p, v := range src.Periods {
			out.periods[p] = decimal.NewFromFloat(v)
		}
	}
	return out
}

// New builds a rate card from a configuration, validating it first so every
// consumer of the card can rely on the model-consistency invariants.
func New(cfg *config.Configuration) (*RateCard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	card := &RateCard{
		granularity: cfg.Model.Granularity,
		periods:     cfg.Model.Periods,
		byID:        make(map[types.TierID]*Tier, len(cfg.Tiers)),
	}

	for i := range cfg.Tiers {
		src := &cfg.Tiers[i]
		tier := &Tier{
			ID:              src.ID,
			Name:            src.Name,
			Kind:            src.Kind,
			PriceCadence:    src.PriceCadence,
			PriceBasis:      src.PriceBasis,
			seed:            decimal.NewFromFloat(src.SeedCount),
			price:           newSchedule(src.Price),
			churn:           newSchedule(src.Churn),
			expansion:       newSchedule(src.Expansion),
			split:           newSchedule(src.AcquisitionSplit),
			usersPerAccount: newSchedule(src.UsersPerAccount),
		}
		for _, conv := range src.Conversions {
			tier.conversions = append(tier.conversions, ConversionEdge{
				From: src.ID,
				To:   conv.To,
				rate: newSchedule(conv.Rate),
			})
		}
		card.tiers = append(card.tiers, tier)
		card.byID[tier.ID] = tier
	}

	a := cfg.Acquisition
	if !a.Volumes.Empty() || a.InitialVolume != nil {
		card.acquisition.configured = true
		card.acquisition.compounding = a.Compounding()
		if a.InitialVolume != nil {
			card.acquisition.initial = decimal.NewFromFloat(*a.InitialVolume)
		}
		card.acquisition.volumes = newSchedule(a.Volumes)
		card.acquisition.growth = newSchedule(a.Growth)
	}

	for i := range cfg.Costs {
		src := &cfg.Costs[i]
		card.costs = append(card.costs, &CostCategory{
			Category:       src.Category,
			Kind:           src.Kind,
			Policy:         src.Policy,
			SalesMarketing: src.SalesMarketing,
			amounts:        newSchedule(src.Amounts),
			rate:           newSchedule(src.Rate),
		})
	}

	return card, nil
}

func (c *RateCard) Granularity() types.PeriodGranularity {
	return c.granularity
}

func (c *RateCard) Periods() int {
	return c.periods
}

// Tiers returns the tiers in configured order.
func (c *RateCard) Tiers() []*Tier {
	return c.tiers
}

func (c *RateCard) Tier(id types.TierID) (*Tier, error) {
	tier, ok := c.byID[id]
	if !ok {
		return nil, ierr.NewError("unknown tier").
			WithHintf("Tier %q is not part of this model", id).
			Mark(ierr.ErrNotFound)
	}
	return tier, nil
}

// EntrantVolume resolves the new-entrant count for a period. Under the
// compounding plan the volume is the previous period's volume grown by the
// period's rate, so the caller threads the unrounded previous volume through.
func (c *RateCard) EntrantVolume(period int, prev decimal.Decimal) (decimal.Decimal, error) {
	if !c.acquisition.configured {
		return decimal.Zero, nil
	}
	if !c.acquisition.compounding {
		v, ok := c.acquisition.volumes.value(period)
		if !ok {
			return decimal.Zero, missingEntry("acquisition volume", "", period)
		}
		return v, nil
	}
	if period == types.FirstPeriod {
		return c.acquisition.initial, nil
	}
	growth, ok := c.acquisition.growth.value(period)
	if !ok {
		return decimal.Zero, missingEntry("acquisition growth", "", period)
	}
	return prev.Mul(decimal.NewFromInt(1).Add(growth)), nil
}

func (c *RateCard) Costs() []*CostCategory {
	return c.costs
}

// SalesMarketingCategory returns the category flagged as the CAC numerator.
func (c *RateCard) SalesMarketingCategory() (*CostCategory, bool) {
	for _, cost := range c.costs {
		if cost.SalesMarketing {
			return cost, true
		}
	}
	return nil, false
}

func missingEntry(kind string, tier types.TierID, period int) error {
	b := ierr.NewError("missing rate entry").
		WithHintf("No %s entry for period %d", kind, period)
	if tier != "" {
		b = b.WithReportableDetails(map[string]any{"tier": tier, "period": period, "entry": kind})
	}
	return b.Mark(ierr.ErrNotFound)
}
