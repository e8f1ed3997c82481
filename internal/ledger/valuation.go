package ledger

import (
	"context"
	"time"
)

// ValuationSums carries the grouped sums needed by the valuation formulas,
// all taken from one consistent snapshot of the ledger.
type ValuationSums struct {
	IncomingValue float64 // SUM(quantity * incoming_rate) over entries with quantity > 0
	IncomingQty   float64 // SUM(quantity) over entries with quantity > 0
	NetQty        float64 // SUM(quantity) over all entries
}

// BalanceGroup is one (item, warehouse) group with a non-zero net quantity.
type BalanceGroup struct {
	ItemCode  string
	ItemName  string
	Warehouse string
	NetQty    float64
}

// ValuationStore is the read side of the ledger consumed by the valuator.
type ValuationStore interface {
	SumForValuation(ctx context.Context, itemCode, warehouse string, asOf time.Time) (ValuationSums, error)
	BalanceGroups(ctx context.Context, asOf time.Time) ([]BalanceGroup, error)
}

// Valuator recomputes balance and moving-average valuation from the raw entry
// history on every call. No running totals are kept anywhere; the ledger as of
// a date fully determines the result.
type Valuator struct {
	store ValuationStore
}

// NewValuator constructs a Valuator.
func NewValuator(store ValuationStore) *Valuator {
	return &Valuator{store: store}
}

// MovingAverageRate returns the cost-weighted average rate of all incoming
// movements for (item, warehouse) up to and including asOf. Outgoing entries
// are excluded by construction: their rate is defined as zero and would only
// dilute the average. Returns 0 when there are no incoming entries.
func (v *Valuator) MovingAverageRate(ctx context.Context, itemCode, warehouse string, asOf time.Time) (float64, error) {
	sums, err := v.store.SumForValuation(ctx, itemCode, warehouse, EffectiveAsOf(asOf))
	if err != nil {
		return 0, err
	}
	return rateFromSums(sums), nil
}

// StockBalance returns the signed quantity sum over all entries for
// (item, warehouse) up to and including asOf. Returns 0 when none exist.
func (v *Valuator) StockBalance(ctx context.Context, itemCode, warehouse string, asOf time.Time) (float64, error) {
	sums, err := v.store.SumForValuation(ctx, itemCode, warehouse, EffectiveAsOf(asOf))
	if err != nil {
		return 0, err
	}
	return sums.NetQty, nil
}

// StockValue returns balance * moving-average rate, computed from a single
// snapshot so the two factors always agree.
func (v *Valuator) StockValue(ctx context.Context, itemCode, warehouse string, asOf time.Time) (float64, error) {
	sums, err := v.store.SumForValuation(ctx, itemCode, warehouse, EffectiveAsOf(asOf))
	if err != nil {
		return 0, err
	}
	return sums.NetQty * rateFromSums(sums), nil
}

// BalanceReport groups all entries as of a date by (item, warehouse), keeps
// groups with non-zero net quantity, and applies the single-key rate formula
// per group. Row-by-row results match the single-key functions exactly.
func (v *Valuator) BalanceReport(ctx context.Context, asOf time.Time) ([]ReportRow, error) {
	effective := EffectiveAsOf(asOf)
	groups, err := v.store.BalanceGroups(ctx, effective)
	if err != nil {
		return nil, err
	}
	rows := make([]ReportRow, 0, len(groups))
	for _, group := range groups {
		rate, err := v.MovingAverageRate(ctx, group.ItemCode, group.Warehouse, effective)
		if err != nil {
			return nil, err
		}
		rows = append(rows, ReportRow{
			ItemCode:      group.ItemCode,
			ItemName:      group.ItemName,
			Warehouse:     group.Warehouse,
			BalanceQty:    group.NetQty,
			ValuationRate: rate,
			StockValue:    group.NetQty * rate,
		})
	}
	return rows, nil
}

// EffectiveAsOf resolves the shared as-of default: the zero time means
// "today" in UTC. All valuation operations resolve the date through here so
// omitting the parameter behaves identically across calls.
func EffectiveAsOf(asOf time.Time) time.Time {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	year, month, day := asOf.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func rateFromSums(sums ValuationSums) float64 {
	if sums.IncomingQty == 0 {
		return 0
	}
	return sums.IncomingValue / sums.IncomingQty
}
