package config

import (
	"github.com/hashguard/forecast/internal/types"
)

// Schedule is a per-period scalar: an optional constant default plus explicit
// per-period overrides. Values are raw floats from the config file; the rate
// card converts them to decimals once at build time and never re-reads them.
type Schedule struct {
	Default *float64        `mapstructure:"default"`
	Periods map[int]float64 `mapstructure:"periods"`
}

// Value resolves the scalar for a period. Explicit entries win over the default.
func (s Schedule) Value(period int) (float64, bool) {
	if v, ok := s.Periods[period]; ok {
		return v, true
	}
	if s.Default != nil {
		return *s.Default, true
	}
	return 0, false
}

// Covers reports whether every period 1..n resolves to a value.
func (s Schedule) Covers(n int) bool {
	if s.Default != nil {
		return true
	}
	for p := types.FirstPeriod; p <= n; p++ {
		if _, ok := s.Periods[p]; !ok {
			return false
		}
	}
	return true
}

// Empty reports whether the schedule carries no values at all.
func (s Schedule) Empty() bool {
	return s.Default == nil && len(s.Periods) == 0
}

// ConstantSchedule is a helper for building a schedule with a single default.
func ConstantSchedule(v float64) Schedule {
	return Schedule{Default: &v}
}
