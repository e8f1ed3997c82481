package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockledger/stockledger/internal/ledger"
)

type stubStore struct {
	calls  int
	groups []ledger.BalanceGroup
	sums   map[string]ledger.ValuationSums
}

func (s *stubStore) SumForValuation(ctx context.Context, itemCode, warehouse string, asOf time.Time) (ledger.ValuationSums, error) {
	return s.sums[itemCode+"|"+warehouse], nil
}

func (s *stubStore) BalanceGroups(ctx context.Context, asOf time.Time) ([]ledger.BalanceGroup, error) {
	s.calls++
	return s.groups, nil
}

func newStubStore() *stubStore {
	return &stubStore{
		groups: []ledger.BalanceGroup{
			{ItemCode: "WIDGET", ItemName: "Widget", Warehouse: "WH-A", NetQty: 15},
		},
		sums: map[string]ledger.ValuationSums{
			"WIDGET|WH-A": {IncomingValue: 1600, IncomingQty: 15, NetQty: 15},
		},
	}
}

func TestStockBalanceCachesBetweenCalls(t *testing.T) {
	store := newStubStore()
	svc := NewService(ledger.NewValuator(store), newTestCache(t))
	ctx := context.Background()
	asOf := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	rows, err := svc.StockBalance(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "WIDGET", rows[0].ItemCode)
	require.InDelta(t, 106.6666667, rows[0].ValuationRate, 1e-6)
	require.InDelta(t, 1600, rows[0].StockValue, 1e-6)

	_, err = svc.StockBalance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
}

func TestStockBalanceRebuildsAfterBump(t *testing.T) {
	store := newStubStore()
	cache := newTestCache(t)
	svc := NewService(ledger.NewValuator(store), cache)
	ctx := context.Background()
	asOf := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.StockBalance(ctx, asOf)
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))
	store.groups[0].NetQty = 7

	rows, err := svc.StockBalance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, 2, store.calls)
	require.InDelta(t, 7, rows[0].BalanceQty, 1e-9)
}

func TestWarmReportsRowCount(t *testing.T) {
	store := newStubStore()
	svc := NewService(ledger.NewValuator(store), newTestCache(t))

	n, err := svc.Warm(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestWriteStockBalanceCSV(t *testing.T) {
	rows := []ledger.ReportRow{
		{ItemCode: "WIDGET", ItemName: "Widget", Warehouse: "WH-A", BalanceQty: 15, ValuationRate: 106.5, StockValue: 1597.5},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteStockBalanceCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Item Code,Item Name,Warehouse,Balance Qty,Valuation Rate,Stock Value", lines[0])
	require.Equal(t, "WIDGET,Widget,WH-A,15,106.5,1597.5", lines[1])
}
