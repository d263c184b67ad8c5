package types

// Metric names a row of the per-period financial summary. The string value is
// the stable key the presentation layer indexes the summary table by.
type Metric string

const (
	MetricRevenue           Metric = "Revenue"
	MetricCOGS              Metric = "COGS"
	MetricGrossProfit       Metric = "Gross Profit"
	MetricTotalOpex         Metric = "Total OpEx"
	MetricEBITDA            Metric = "EBITDA"
	MetricGrossMargin       Metric = "Gross Margin (%)"
	MetricEBITDAMargin      Metric = "EBITDA Margin (%)"
	MetricCustomersStart    Metric = "Customers (Start)"
	MetricNewCustomers      Metric = "New Customers"
	MetricRetainedCustomers Metric = "Retained Customers"
	MetricCustomersEnd      Metric = "Customers (End)"
	MetricARPC              Metric = "ARPC"
	MetricCAC               Metric = "CAC"
	MetricCACPayback        Metric = "CAC Payback (Months)"
	MetricLTV               Metric = "LTV"
	MetricLTVCACRatio       Metric = "LTV:CAC Ratio"
	MetricNRR               Metric = "NRR"
)

// Metrics returns every summary row in presentation order.
func Metrics() []Metric {
	return []Metric{
		MetricRevenue,
		MetricCOGS,
		MetricGrossProfit,
		MetricTotalOpex,
		MetricEBITDA,
		MetricGrossMargin,
		MetricEBITDAMargin,
		MetricCustomersStart,
		MetricNewCustomers,
		MetricRetainedCustomers,
		MetricCustomersEnd,
		MetricARPC,
		MetricCAC,
		MetricCACPayback,
		MetricLTV,
		MetricLTVCACRatio,
		MetricNRR,
	}
}
