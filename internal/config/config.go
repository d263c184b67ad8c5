package config

import (
	"errors"
	"fmt"
	"strings"

	ierr "github.com/hashguard/forecast/internal/errors"
	"github.com/hashguard/forecast/internal/types"
	"github.com/hashguard/forecast/internal/validator"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Configuration is the full input of a projection run. It is validated once
// at load time; the simulation never consults it directly, only through the
// rate card built from it.
type Configuration struct {
	Model       ModelConfig       `mapstructure:"model" validate:"required"`
	Tiers       []TierConfig      `mapstructure:"tiers" validate:"required,min=1,dive"`
	Acquisition AcquisitionConfig `mapstructure:"acquisition"`
	Costs       []CostConfig      `mapstructure:"costs" validate:"dive"`
	Market      *MarketConfig     `mapstructure:"market"`
}

type ModelConfig struct {
	Granularity types.PeriodGranularity `mapstructure:"granularity" validate:"required"`
	Periods     int                     `mapstructure:"periods" validate:"required,min=1"`

	// StartLabel names the first period for presentation, e.g. "FY2026".
	StartLabel string `mapstructure:"start_label"`
}

// AcquisitionConfig describes new-entrant volume per period. Exactly one form
// is allowed per run: an absolute volume schedule (annual variant) or an
// initial volume compounded by per-period growth rates (monthly variant).
type AcquisitionConfig struct {
	Volumes       Schedule `mapstructure:"volumes"`
	InitialVolume *float64 `mapstructure:"initial_volume"`
	Growth        Schedule `mapstructure:"growth"`
}

func (a AcquisitionConfig) Compounding() bool {
	return a.InitialVolume != nil
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/forecast")

	v.SetEnvPrefix("FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetDefaultConfig returns a minimal single-tier annual model. This is useful
// for tests and scripts that only need a well-formed configuration.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Model: ModelConfig{
			Granularity: types.GRANULARITY_ANNUAL,
			Periods:     5,
		},
		Tiers: []TierConfig{
			{
				ID:               "standard",
				Name:             "Standard",
				Kind:             types.TIER_KIND_INDIVIDUAL,
				PriceCadence:     types.PRICE_CADENCE_RECURRING,
				PriceBasis:       types.PRICE_BASIS_PER_CUSTOMER,
				Price:            ConstantSchedule(5000),
				Churn:            ConstantSchedule(0.10),
				Expansion:        ConstantSchedule(0),
				AcquisitionSplit: ConstantSchedule(1),
			},
		},
		Acquisition: AcquisitionConfig{
			Volumes: ConstantSchedule(50),
		},
	}
}

// Validate runs tag validation followed by the model-consistency checks that
// must all pass before any simulation step runs.
func (c *Configuration) Validate() error {
	if err := validator.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.Model.Granularity.Validate(); err != nil {
		return err
	}

	if err := c.validateTiers(); err != nil {
		return err
	}
	if err := c.validateAcquisition(); err != nil {
		return err
	}
	if err := c.validateCosts(); err != nil {
		return err
	}
	if c.Market != nil {
		if err := c.Market.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Configuration) validateTiers() error {
	byID := make(map[types.TierID]*TierConfig, len(c.Tiers))
	for i := range c.Tiers {
		tier := &c.Tiers[i]
		if _, ok := byID[tier.ID]; ok {
			return ierr.NewError("duplicate tier id").
				WithHintf("Tier %q is defined more than once", tier.ID).
				Mark(ierr.ErrValidation)
		}
		byID[tier.ID] = tier
	}

	for i := range c.Tiers {
		if err := c.Tiers[i].Validate(c.Model.Periods, byID); err != nil {
			return err
		}
	}

	return c.validateSplits()
}

// validateSplits checks that the entry-tier split fractions sum to exactly 1
// for every period. Sums use decimals so 0.1+0.4+0.5 style splits are exact.
func (c *Configuration) validateSplits() error {
	entryTiers := lo.Filter(c.Tiers, func(t TierConfig, _ int) bool {
		return !t.AcquisitionSplit.Empty()
	})
	if len(entryTiers) == 0 {
		return nil
	}

	for p := types.FirstPeriod; p <= c.Model.Periods; p++ {
		sum := decimalZero
		for _, tier := range entryTiers {
			v, ok := tier.AcquisitionSplit.Value(p)
			if !ok {
				return ierr.NewError("acquisition split missing a period").
					WithHintf("Tier %q has no split fraction for period %d", tier.ID, p).
					Mark(ierr.ErrValidation)
			}
			if v < 0 || v > 1 {
				return ierr.NewError("acquisition split out of range").
					WithHintf("Tier %q split fraction for period %d must be within [0, 1]", tier.ID, p).
					WithReportableDetails(map[string]any{"tier": tier.ID, "period": p, "fraction": v}).
					Mark(ierr.ErrValidation)
			}
			sum = sum.Add(decimalFromFloat(v))
		}
		if !sum.Equal(decimalOne) {
			return ierr.NewError("acquisition split does not sum to 1").
				WithHintf("Entry-tier split fractions for period %d sum to %s", p, sum.String()).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (c *Configuration) validateAcquisition() error {
	a := c.Acquisition
	hasVolumes := !a.Volumes.Empty()
	hasGrowth := a.InitialVolume != nil

	if hasVolumes && hasGrowth {
		return ierr.NewError("ambiguous acquisition plan").
			WithHint("Provide either absolute volumes or initial_volume with growth, not both").
			Mark(ierr.ErrValidation)
	}
	if !hasVolumes && !hasGrowth {
		// A run with no acquisition is valid; it only plays out seeds.
		return nil
	}

	if hasVolumes {
		if !a.Volumes.Covers(c.Model.Periods) {
			return ierr.NewError("acquisition volumes missing a period").
				WithHint("The volume schedule must cover every period of the model").
				Mark(ierr.ErrValidation)
		}
		for p := types.FirstPeriod; p <= c.Model.Periods; p++ {
			if v, _ := a.Volumes.Value(p); v < 0 {
				return ierr.NewError("negative acquisition volume").
					WithHintf("New-entrant volume for period %d must be non-negative", p).
					Mark(ierr.ErrValidation)
			}
		}
		return nil
	}

	if *a.InitialVolume < 0 {
		return ierr.NewError("negative initial acquisition volume").
			WithHint("initial_volume must be non-negative").
			Mark(ierr.ErrValidation)
	}
	if !a.Growth.Covers(c.Model.Periods) {
		return ierr.NewError("acquisition growth missing a period").
			WithHint("The growth schedule must cover every period of the model").
			Mark(ierr.ErrValidation)
	}
	for p := types.FirstPeriod; p <= c.Model.Periods; p++ {
		if v, _ := a.Growth.Value(p); v < 0 {
			return ierr.NewError("negative acquisition growth rate").
				WithHintf("Growth rate for period %d must be non-negative", p).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (c *Configuration) validateCosts() error {
	seen := make(map[types.CostCategory]bool, len(c.Costs))
	salesMarketing := 0
	for i := range c.Costs {
		cost := &c.Costs[i]
		if seen[cost.Category] {
			return ierr.NewError("duplicate cost category").
				WithHintf("Cost category %q is defined more than once", cost.Category).
				Mark(ierr.ErrValidation)
		}
		seen[cost.Category] = true
		if cost.SalesMarketing {
			salesMarketing++
		}
		if err := cost.Validate(c.Model.Periods); err != nil {
			return err
		}
	}
	if salesMarketing > 1 {
		return ierr.NewError("multiple sales & marketing categories").
			WithHint("At most one cost category may be flagged sales_marketing for CAC").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// rangeError is shared by the per-tier rate checks.
func rangeError(kind string, tierID types.TierID, period int, v float64) error {
	return ierr.NewError(fmt.Sprintf("%s rate out of range", kind)).
		WithHintf("Tier %q %s rate for period %d must be within [0, 1)", tierID, kind, period).
		WithReportableDetails(map[string]any{"tier": tierID, "period": period, "rate": v}).
		Mark(ierr.ErrValidation)
}
