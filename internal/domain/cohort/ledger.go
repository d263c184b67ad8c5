package cohort

import (
	"sort"

	ierr "github.com/hashguard/forecast/internal/errors"
	"github.com/hashguard/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// Ledger is the single owner of all population and revenue history. Writes
// happen only during the owning period's transition/attribution step; reads
// never mutate. An observation period before a cohort's acquisition period is
// a programming error and is rejected, never silently zero.
type Ledger struct {
	cells map[Key]map[int]Cell
}

func NewLedger() *Ledger {
	return &Ledger{
		cells: make(map[Key]map[int]Cell),
	}
}

// Seed records a pre-existing population for a tier. Seeds are dated one
// period before the first simulated period so first-period churn applies.
func (l *Ledger) Seed(tierID types.TierID, count decimal.Decimal) error {
	return l.Found(Key{AcquisitionPeriod: types.SeedPeriod, TierID: tierID}, count)
}

// Found creates a cohort at its acquisition period. Arrivals that share a key
// within one period (acquisition plus inbound conversions) merge additively.
func (l *Ledger) Found(key Key, count decimal.Decimal) error {
	if key.AcquisitionPeriod < types.SeedPeriod {
		return l.outOfRange(key, key.AcquisitionPeriod)
	}
	if count.IsNegative() {
		return l.negative(key, key.AcquisitionPeriod, count)
	}
	row, ok := l.cells[key]
	if !ok {
		row = make(map[int]Cell)
		l.cells[key] = row
	}
	cell := row[key.AcquisitionPeriod]
	cell.Count = cell.Count.Add(count)
	row[key.AcquisitionPeriod] = cell
	return nil
}

// SetCount writes a cohort's surviving count for an observation period.
func (l *Ledger) SetCount(key Key, period int, count decimal.Decimal) error {
	row, err := l.row(key, period)
	if err != nil {
		return err
	}
	if count.IsNegative() {
		return l.negative(key, period, count)
	}
	cell := row[period]
	cell.Count = count
	row[period] = cell
	return nil
}

// AddRevenue attributes revenue to a cohort for an observation period. The
// population cell for that period must already exist.
func (l *Ledger) AddRevenue(key Key, period int, amount decimal.Decimal) error {
	row, err := l.row(key, period)
	if err != nil {
		return err
	}
	cell, ok := row[period]
	if !ok {
		return ierr.NewError("revenue before population").
			WithHintf("Cohort %v has no population cell for period %d", key, period).
			Mark(ierr.ErrInvalidOperation)
	}
	if amount.IsNegative() {
		return l.negative(key, period, amount)
	}
	cell.Revenue = cell.Revenue.Add(amount)
	row[period] = cell
	return nil
}

// Cell reads one observation. Missing cells for valid periods are ErrNotFound.
func (l *Ledger) Cell(key Key, period int) (Cell, error) {
	row, err := l.row(key, period)
	if err != nil {
		return Cell{}, err
	}
	cell, ok := row[period]
	if !ok {
		return Cell{}, ierr.NewError("ledger cell not found").
			WithHintf("Cohort %v has no cell for period %d", key, period).
			Mark(ierr.ErrNotFound)
	}
	return cell, nil
}

// Count is a convenience read of a cell's surviving population.
func (l *Ledger) Count(key Key, period int) (decimal.Decimal, error) {
	cell, err := l.Cell(key, period)
	if err != nil {
		return decimal.Zero, err
	}
	return cell.Count, nil
}

// Keys returns every cohort key, sorted by acquisition period then tier.
func (l *Ledger) Keys() []Key {
	keys := make([]Key, 0, len(l.cells))
	for key := range l.cells {
		keys = append(keys, key)
	}
	sortKeys(keys)
	return keys
}

// KeysAt returns the cohorts that have a cell at the given period, sorted.
// Transition snapshots use this with the prior period to avoid reading any
// same-period state while it is being written.
func (l *Ledger) KeysAt(period int) []Key {
	keys := make([]Key, 0, len(l.cells))
	for key, row := range l.cells {
		if _, ok := row[period]; ok {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)
	return keys
}

// Rows flattens the ledger into sorted export rows.
func (l *Ledger) Rows() []Row {
	rows := make([]Row, 0, len(l.cells))
	for _, key := range l.Keys() {
		row := l.cells[key]
		periods := make([]int, 0, len(row))
		for p := range row {
			periods = append(periods, p)
		}
		sort.Ints(periods)
		for _, p := range periods {
			rows = append(rows, Row{Key: key, ObservationPeriod: p, Cell: row[p]})
		}
	}
	return rows
}

func (l *Ledger) row(key Key, period int) (map[int]Cell, error) {
	if period < key.AcquisitionPeriod {
		return nil, l.outOfRange(key, period)
	}
	row, ok := l.cells[key]
	if !ok {
		return nil, ierr.NewError("unknown cohort").
			WithHintf("Cohort %v was never founded", key).
			Mark(ierr.ErrNotFound)
	}
	return row, nil
}

func (l *Ledger) outOfRange(key Key, period int) error {
	return ierr.NewError("observation before acquisition").
		WithHintf("Period %d precedes cohort %v's acquisition period", period, key).
		WithReportableDetails(map[string]any{
			"acquisition_period": key.AcquisitionPeriod,
			"tier":               key.TierID,
			"observation_period": period,
		}).
		Mark(ierr.ErrInvalidOperation)
}

func (l *Ledger) negative(key Key, period int, v decimal.Decimal) error {
	return ierr.NewError("negative ledger quantity").
		WithHintf("Cohort %v period %d received %s", key, period, v.String()).
		Mark(ierr.ErrInvalidOperation)
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].AcquisitionPeriod != keys[j].AcquisitionPeriod {
			return keys[i].AcquisitionPeriod < keys[j].AcquisitionPeriod
		}
		return keys[i].TierID < keys[j].TierID
	})
}
