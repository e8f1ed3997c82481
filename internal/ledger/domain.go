package ledger

import (
	"errors"
	"time"
)

// MovementKind enumerates supported stock movement kinds.
type MovementKind string

const (
	// KindReceipt represents stock arriving into a target warehouse.
	KindReceipt MovementKind = "RECEIPT"
	// KindIssue represents stock leaving a source warehouse.
	KindIssue MovementKind = "ISSUE"
	// KindTransfer represents stock moving between two warehouses.
	KindTransfer MovementKind = "TRANSFER"
)

// DocStatus is the lifecycle state of a movement document.
type DocStatus string

const (
	// StatusDraft is the initial editable state.
	StatusDraft DocStatus = "DRAFT"
	// StatusSubmitted means ledger entries have been appended.
	StatusSubmitted DocStatus = "SUBMITTED"
	// StatusCancelled means the document's entries have been removed.
	StatusCancelled DocStatus = "CANCELLED"
)

// CanTransition reports whether the status may move to next.
// The only legal transitions are Draft -> Submitted -> Cancelled.
func (s DocStatus) CanTransition(next DocStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusCancelled
	default:
		return false
	}
}

// VoucherTypeStockEntry is the voucher type recorded for entries created from
// movement documents. Other document types may join the ledger later.
const VoucherTypeStockEntry = "Stock Entry"

// Entry is one immutable row of the stock ledger. Entries are only ever
// appended on document submission and bulk-deleted by voucher on cancellation;
// there is no update path.
type Entry struct {
	ID              int64
	ItemCode        string
	Warehouse       string
	Quantity        float64 // signed; positive = stock increase
	IncomingRate    float64 // per-unit cost; always 0 when Quantity <= 0
	VoucherType     string
	VoucherNo       string
	VoucherDetailNo string
	Company         string
	PostingDate     time.Time // date component only
	PostingTime     string    // HH:MM:SS, informational ordering within a day
	StockUOM        string
	TransactionUOM  string
	ConversionFactor float64
	CreatedAt       time.Time
}

// Line is one item row of a movement document. Qty is always positive here;
// the writer applies the sign when building entries.
type Line struct {
	ID               int64
	DocumentID       int64
	ItemCode         string
	Qty              float64
	BasicRate        float64
	SourceWarehouse  string
	TargetWarehouse  string
	StockUOM         string
	TransactionUOM   string
	ConversionFactor float64
}

// Document is a stock movement document with one or more lines.
type Document struct {
	ID          int64
	VoucherType string
	VoucherNo   string
	Kind        MovementKind
	Status      DocStatus
	Company     string
	PostingDate time.Time
	PostingTime string
	Lines       []Line
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReportRow is one row of the stock balance report.
type ReportRow struct {
	ItemCode      string  `json:"item_code"`
	ItemName      string  `json:"item_name"`
	Warehouse     string  `json:"warehouse"`
	BalanceQty    float64 `json:"balance_qty"`
	ValuationRate float64 `json:"valuation_rate"`
	StockValue    float64 `json:"stock_value"`
}

// ErrUnknownKind indicates a movement kind the writer does not recognise.
// Surfaced as a hard error so misconfigured documents fail loudly instead of
// silently dropping stock movements.
var ErrUnknownKind = errors.New("ledger: unknown movement kind")

// ErrInvalidTransition indicates a forbidden document status change.
var ErrInvalidTransition = errors.New("ledger: invalid status transition")

// ErrDocumentNotFound indicates a missing movement document.
var ErrDocumentNotFound = errors.New("ledger: document not found")

// ErrInvalidQuantity indicates a non-positive line quantity.
var ErrInvalidQuantity = errors.New("ledger: line quantity must be positive")

// ErrInvalidRate indicates a negative unit cost.
var ErrInvalidRate = errors.New("ledger: unit cost must be >= 0")
