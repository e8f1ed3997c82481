package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testDoc(kind MovementKind, status DocStatus, lines ...Line) Document {
	return Document{
		VoucherType: VoucherTypeStockEntry,
		VoucherNo:   "STE-0001",
		Kind:        kind,
		Status:      status,
		Company:     "Acme",
		PostingDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		PostingTime: "09:30:00",
		Lines:       lines,
	}
}

func TestWriterReceipt(t *testing.T) {
	var w Writer
	doc := testDoc(KindReceipt, StatusSubmitted, Line{ID: 1, ItemCode: "WIDGET", Qty: 10, BasicRate: 100, TargetWarehouse: "WH-A"})

	entries, err := w.EntriesForSubmit(doc)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "WH-A", entries[0].Warehouse)
	require.InDelta(t, 10.0, entries[0].Quantity, 1e-9)
	require.InDelta(t, 100.0, entries[0].IncomingRate, 1e-9)
	require.Equal(t, VoucherTypeStockEntry, entries[0].VoucherType)
	require.Equal(t, "STE-0001", entries[0].VoucherNo)
}

func TestWriterReceiptWithoutTargetWarehouse(t *testing.T) {
	var w Writer
	doc := testDoc(KindReceipt, StatusSubmitted, Line{ItemCode: "WIDGET", Qty: 10, BasicRate: 100})

	entries, err := w.EntriesForSubmit(doc)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestWriterIssueZeroesRate(t *testing.T) {
	var w Writer
	// The line's nominal unit cost must never reach an outgoing entry.
	doc := testDoc(KindIssue, StatusSubmitted, Line{ItemCode: "WIDGET", Qty: 4, BasicRate: 250, SourceWarehouse: "WH-A"})

	entries, err := w.EntriesForSubmit(doc)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.InDelta(t, -4.0, entries[0].Quantity, 1e-9)
	require.Zero(t, entries[0].IncomingRate)
}

func TestWriterTransferSymmetry(t *testing.T) {
	var w Writer
	doc := testDoc(KindTransfer, StatusSubmitted, Line{ItemCode: "WIDGET", Qty: 7, BasicRate: 80, SourceWarehouse: "WH-A", TargetWarehouse: "WH-B"})

	entries, err := w.EntriesForSubmit(doc)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	out, in := entries[0], entries[1]
	require.Equal(t, "WH-A", out.Warehouse)
	require.Equal(t, "WH-B", in.Warehouse)
	require.InDelta(t, 0.0, out.Quantity+in.Quantity, 1e-9)
	require.InDelta(t, -7.0, out.Quantity, 1e-9)
	require.Zero(t, out.IncomingRate)
	require.InDelta(t, 80.0, in.IncomingRate, 1e-9)
}

func TestWriterTransferSingleLeg(t *testing.T) {
	var w Writer

	doc := testDoc(KindTransfer, StatusSubmitted, Line{ItemCode: "WIDGET", Qty: 3, BasicRate: 50, TargetWarehouse: "WH-B"})
	entries, err := w.EntriesForSubmit(doc)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.InDelta(t, 3.0, entries[0].Quantity, 1e-9)

	doc = testDoc(KindTransfer, StatusSubmitted, Line{ItemCode: "WIDGET", Qty: 3, BasicRate: 50, SourceWarehouse: "WH-A"})
	entries, err = w.EntriesForSubmit(doc)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.InDelta(t, -3.0, entries[0].Quantity, 1e-9)
}

func TestWriterUnknownKind(t *testing.T) {
	var w Writer
	doc := testDoc(MovementKind("REPACK"), StatusSubmitted, Line{ItemCode: "WIDGET", Qty: 1, TargetWarehouse: "WH-A"})

	_, err := w.EntriesForSubmit(doc)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestWriterNoOpUnlessSubmitted(t *testing.T) {
	var w Writer
	for _, status := range []DocStatus{StatusDraft, StatusCancelled} {
		doc := testDoc(KindReceipt, status, Line{ItemCode: "WIDGET", Qty: 10, BasicRate: 100, TargetWarehouse: "WH-A"})
		entries, err := w.EntriesForSubmit(doc)
		require.NoError(t, err)
		require.Empty(t, entries, "status %s must not produce entries", status)
	}
}
