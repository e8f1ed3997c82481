package ledger

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "github.com/stockledger/stockledger/internal/testing/guard"
)

type memoryRepo struct {
	docs      map[int64]*Document
	entries   []Entry
	itemNames map[string]string
	nextDocID int64
	nextRowID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[int64]*Document), itemNames: make(map[string]string)}
}

func (r *memoryRepo) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	r.nextDocID++
	doc.ID = r.nextDocID
	for i := range doc.Lines {
		r.nextRowID++
		doc.Lines[i].ID = r.nextRowID
		doc.Lines[i].DocumentID = doc.ID
	}
	stored := doc
	r.docs[doc.ID] = &stored
	return doc, nil
}

func (r *memoryRepo) GetDocument(ctx context.Context, id int64) (Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return *doc, nil
}

func (r *memoryRepo) SubmitDocument(ctx context.Context, docID int64, entries []Entry) error {
	doc, ok := r.docs[docID]
	if !ok {
		return ErrDocumentNotFound
	}
	if doc.Status != StatusDraft {
		return ErrInvalidTransition
	}
	doc.Status = StatusSubmitted
	for _, entry := range entries {
		r.nextRowID++
		entry.ID = r.nextRowID
		r.entries = append(r.entries, entry)
	}
	return nil
}

func (r *memoryRepo) CancelDocument(ctx context.Context, docID int64, voucherType, voucherNo string) (int64, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return 0, ErrDocumentNotFound
	}
	if doc.Status != StatusSubmitted {
		return 0, ErrInvalidTransition
	}
	doc.Status = StatusCancelled
	kept := r.entries[:0]
	var deleted int64
	for _, entry := range r.entries {
		if entry.VoucherType == voucherType && entry.VoucherNo == voucherNo {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	r.entries = kept
	return deleted, nil
}

func (r *memoryRepo) EntriesByVoucher(ctx context.Context, voucherType, voucherNo string) ([]Entry, error) {
	result := []Entry{}
	for _, entry := range r.entries {
		if entry.VoucherType == voucherType && entry.VoucherNo == voucherNo {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *memoryRepo) SumForValuation(ctx context.Context, itemCode, warehouse string, asOf time.Time) (ValuationSums, error) {
	var sums ValuationSums
	for _, entry := range r.entries {
		if entry.ItemCode != itemCode || entry.Warehouse != warehouse || entry.PostingDate.After(asOf) {
			continue
		}
		sums.NetQty += entry.Quantity
		if entry.Quantity > 0 {
			sums.IncomingValue += entry.Quantity * entry.IncomingRate
			sums.IncomingQty += entry.Quantity
		}
	}
	return sums, nil
}

func (r *memoryRepo) BalanceGroups(ctx context.Context, asOf time.Time) ([]BalanceGroup, error) {
	type key struct{ item, warehouse string }
	sums := map[key]float64{}
	for _, entry := range r.entries {
		if entry.PostingDate.After(asOf) {
			continue
		}
		sums[key{entry.ItemCode, entry.Warehouse}] += entry.Quantity
	}
	groups := []BalanceGroup{}
	for k, qty := range sums {
		if qty == 0 {
			continue
		}
		groups = append(groups, BalanceGroup{ItemCode: k.item, ItemName: r.itemNames[k.item], Warehouse: k.warehouse, NetQty: qty})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].ItemCode != groups[j].ItemCode {
			return groups[i].ItemCode < groups[j].ItemCode
		}
		return groups[i].Warehouse < groups[j].Warehouse
	})
	return groups, nil
}

func newTestService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	return NewService(repo, nil, nil, nil, nil, nil), repo
}

func postMovement(t *testing.T, svc *Service, kind MovementKind, date string, lines ...LineInput) Document {
	t.Helper()
	postingDate, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	doc, err := svc.CreateDocument(context.Background(), DocumentInput{
		Kind:        kind,
		Company:     "Acme",
		PostingDate: postingDate,
		Lines:       lines,
	})
	require.NoError(t, err)
	submitted, err := svc.Submit(context.Background(), doc.ID, 1)
	require.NoError(t, err)
	return submitted
}

func TestMovingAverageScenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	postMovement(t, svc, KindReceipt, "2026-01-05", LineInput{ItemCode: "WIDGET", Qty: 10, BasicRate: 100, TargetWarehouse: "WH-A"})
	postMovement(t, svc, KindReceipt, "2026-01-06", LineInput{ItemCode: "WIDGET", Qty: 5, BasicRate: 120, TargetWarehouse: "WH-A"})

	rate, err := svc.MovingAverageRate(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 106.6667, rate, 0.001)

	balance, err := svc.StockBalance(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 15.0, balance, 1e-9)

	// Consuming stock must not move the average.
	postMovement(t, svc, KindIssue, "2026-01-07", LineInput{ItemCode: "WIDGET", Qty: 8, BasicRate: 999, SourceWarehouse: "WH-A"})

	rate, err = svc.MovingAverageRate(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 106.6667, rate, 0.001)

	balance, err = svc.StockBalance(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 7.0, balance, 1e-9)

	value, err := svc.StockValue(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 7*106.66666666666667, value, 0.001)
}

func TestZeroDenominatorSafety(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rate, err := svc.MovingAverageRate(ctx, "GHOST", "WH-A", time.Time{})
	require.NoError(t, err)
	require.Zero(t, rate)

	balance, err := svc.StockBalance(ctx, "GHOST", "WH-A", time.Time{})
	require.NoError(t, err)
	require.Zero(t, balance)

	// Only outgoing history: still no average, never a division by zero.
	postMovement(t, svc, KindIssue, "2026-01-05", LineInput{ItemCode: "GHOST", Qty: 3, SourceWarehouse: "WH-A"})

	rate, err = svc.MovingAverageRate(ctx, "GHOST", "WH-A", time.Time{})
	require.NoError(t, err)
	require.Zero(t, rate)

	value, err := svc.StockValue(ctx, "GHOST", "WH-A", time.Time{})
	require.NoError(t, err)
	require.Zero(t, value)
}

func TestDateBoundedness(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	postMovement(t, svc, KindReceipt, "2026-01-05", LineInput{ItemCode: "WIDGET", Qty: 10, BasicRate: 100, TargetWarehouse: "WH-A"})
	postMovement(t, svc, KindReceipt, "2026-02-01", LineInput{ItemCode: "WIDGET", Qty: 90, BasicRate: 500, TargetWarehouse: "WH-A"})

	asOf := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	balance, err := svc.StockBalance(ctx, "WIDGET", "WH-A", asOf)
	require.NoError(t, err)
	require.InDelta(t, 10.0, balance, 1e-9)

	rate, err := svc.MovingAverageRate(ctx, "WIDGET", "WH-A", asOf)
	require.NoError(t, err)
	require.InDelta(t, 100.0, rate, 1e-9)
}

func TestTransferMovesValueBetweenWarehouses(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	postMovement(t, svc, KindReceipt, "2026-01-05", LineInput{ItemCode: "WIDGET", Qty: 20, BasicRate: 50, TargetWarehouse: "WH-A"})
	doc := postMovement(t, svc, KindTransfer, "2026-01-06", LineInput{ItemCode: "WIDGET", Qty: 5, BasicRate: 50, SourceWarehouse: "WH-A", TargetWarehouse: "WH-B"})

	entries, err := svc.EntriesByVoucher(ctx, doc.VoucherType, doc.VoucherNo)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	src, err := svc.StockBalance(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 15.0, src, 1e-9)

	dst, err := svc.StockBalance(ctx, "WIDGET", "WH-B", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 5.0, dst, 1e-9)
}

func TestCancellationRemovesVoucherEntries(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	keep := postMovement(t, svc, KindReceipt, "2026-01-05", LineInput{ItemCode: "WIDGET", Qty: 10, BasicRate: 100, TargetWarehouse: "WH-A"})
	drop := postMovement(t, svc, KindReceipt, "2026-01-06", LineInput{ItemCode: "WIDGET", Qty: 5, BasicRate: 120, TargetWarehouse: "WH-A"})

	cancelled, err := svc.Cancel(ctx, drop.ID, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	require.Len(t, repo.entries, 1)
	remaining, err := svc.EntriesByVoucher(ctx, keep.VoucherType, keep.VoucherNo)
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	balance, err := svc.StockBalance(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 10.0, balance, 1e-9)

	rate, err := svc.MovingAverageRate(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, 100.0, rate, 1e-9)
}

func TestStatusTransitions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	doc, err := svc.CreateDocument(ctx, DocumentInput{
		Kind:  KindReceipt,
		Lines: []LineInput{{ItemCode: "WIDGET", Qty: 1, BasicRate: 10, TargetWarehouse: "WH-A"}},
	})
	require.NoError(t, err)

	// Cancel before submit is forbidden.
	_, err = svc.Cancel(ctx, doc.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Submit(ctx, doc.ID, 1)
	require.NoError(t, err)

	// Double submit must not double-append.
	_, err = svc.Submit(ctx, doc.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	entries, err := svc.EntriesByVoucher(ctx, doc.VoucherType, doc.VoucherNo)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = svc.Cancel(ctx, doc.ID, 1)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, doc.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreateDocumentValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateDocument(ctx, DocumentInput{Kind: MovementKind("REPACK"), Lines: []LineInput{{ItemCode: "X", Qty: 1}}})
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = svc.CreateDocument(ctx, DocumentInput{Kind: KindReceipt})
	require.Error(t, err)

	_, err = svc.CreateDocument(ctx, DocumentInput{Kind: KindReceipt, Lines: []LineInput{{ItemCode: "X", Qty: -1}}})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.CreateDocument(ctx, DocumentInput{Kind: KindReceipt, Lines: []LineInput{{ItemCode: "X", Qty: 1, BasicRate: -5}}})
	require.ErrorIs(t, err, ErrInvalidRate)
}

func TestValueConservation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	quantities := []float64{10, -3, 7, -5, 2, -1}
	total := 0.0
	for i, qty := range quantities {
		date := fmt.Sprintf("2026-01-%02d", i+1)
		if qty > 0 {
			postMovement(t, svc, KindReceipt, date, LineInput{ItemCode: "WIDGET", Qty: qty, BasicRate: 10, TargetWarehouse: "WH-A"})
		} else {
			postMovement(t, svc, KindIssue, date, LineInput{ItemCode: "WIDGET", Qty: -qty, SourceWarehouse: "WH-A"})
		}
		total += qty
	}

	balance, err := svc.StockBalance(ctx, "WIDGET", "WH-A", time.Time{})
	require.NoError(t, err)
	require.InDelta(t, total, balance, 1e-9)
}
