package dto

import (
	ierr "github.com/hashguard/forecast/internal/errors"
	"github.com/hashguard/forecast/internal/types"
)

// FinancialSummary is the per-period metric table. A cell is written exactly
// once, after the owning period's ledger writes complete, and is never
// revised when later periods are processed.
type FinancialSummary struct {
	Metrics []types.Metric                             `json:"metrics"`
	Periods []int                                      `json:"periods"`
	Values  map[types.Metric]map[int]types.MetricValue `json:"values"`
}

// NewFinancialSummary prepares an empty summary for periods 1..n.
func NewFinancialSummary(n int) *FinancialSummary {
	periods := make([]int, 0, n)
	for p := types.FirstPeriod; p <= n; p++ {
		periods = append(periods, p)
	}
	return &FinancialSummary{
		Metrics: types.Metrics(),
		Periods: periods,
		Values:  make(map[types.Metric]map[int]types.MetricValue),
	}
}

// Set writes a summary cell. Writing the same cell twice is rejected: summary
// rows are immutable once computed.
func (s *FinancialSummary) Set(metric types.Metric, period int, value types.MetricValue) error {
	row, ok := s.Values[metric]
	if !ok {
		row = make(map[int]types.MetricValue)
		s.Values[metric] = row
	}
	if _, exists := row[period]; exists {
		return ierr.NewError("summary cell already written").
			WithHintf("Metric %q for period %d is immutable once computed", metric, period).
			Mark(ierr.ErrInvalidOperation)
	}
	row[period] = value
	return nil
}

// Value reads a summary cell. Unwritten cells are not-applicable.
func (s *FinancialSummary) Value(metric types.Metric, period int) types.MetricValue {
	if row, ok := s.Values[metric]; ok {
		if v, ok := row[period]; ok {
			return v
		}
	}
	return types.MetricValueNA()
}
