package types

import (
	"github.com/shopspring/decimal"
)

// MetricValue is a summary cell that may carry an explicit sentinel instead of
// a number. Undefined ratios (zero revenue, zero CAC, empty population) are
// never reported as 0 and never raise; they propagate as NotApplicable.
// Zero churn makes LTV unbounded, which is the distinct Infinite sentinel.
type MetricValue struct {
	Amount        decimal.Decimal `json:"amount"`
	NotApplicable bool            `json:"not_applicable,omitempty"`
	Infinite      bool            `json:"infinite,omitempty"`
}

func NewMetricValue(amount decimal.Decimal) MetricValue {
	return MetricValue{Amount: amount}
}

func MetricValueFromInt(v int64) MetricValue {
	return MetricValue{Amount: decimal.NewFromInt(v)}
}

// MetricValueNA is the not-applicable sentinel.
func MetricValueNA() MetricValue {
	return MetricValue{NotApplicable: true}
}

// MetricValueInf is the unbounded sentinel ex LTV at zero churn.
func MetricValueInf() MetricValue {
	return MetricValue{Infinite: true}
}

// Applicable reports whether the value carries a usable number.
func (v MetricValue) Applicable() bool {
	return !v.NotApplicable && !v.Infinite
}

func (v MetricValue) String() string {
	if v.NotApplicable {
		return "n/a"
	}
	if v.Infinite {
		return "inf"
	}
	return v.Amount.String()
}
