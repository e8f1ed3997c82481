package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockledger/stockledger/internal/platform/db"
)

// Repository persists movement documents and ledger entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateDocument inserts a draft document together with its lines.
func (r *Repository) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO movement_documents (voucher_type, voucher_no, kind, status, company, posting_date, posting_time, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW()) RETURNING id, created_at, updated_at`,
			doc.VoucherType, doc.VoucherNo, string(doc.Kind), string(doc.Status), doc.Company, doc.PostingDate, doc.PostingTime, doc.CreatedBy).
			Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
		if err != nil {
			return err
		}
		for i := range doc.Lines {
			line := &doc.Lines[i]
			line.DocumentID = doc.ID
			err := tx.QueryRow(ctx, `INSERT INTO movement_lines (document_id, item_code, qty, basic_rate, source_warehouse, target_warehouse, stock_uom, transaction_uom, conversion_factor)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
				doc.ID, line.ItemCode, line.Qty, line.BasicRate, line.SourceWarehouse, line.TargetWarehouse, line.StockUOM, line.TransactionUOM, line.ConversionFactor).
				Scan(&line.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// GetDocument loads a document and its lines.
func (r *Repository) GetDocument(ctx context.Context, id int64) (Document, error) {
	var doc Document
	var kind, status string
	err := r.pool.QueryRow(ctx, `SELECT id, voucher_type, voucher_no, kind, status, company, posting_date, posting_time::text, created_by, created_at, updated_at
FROM movement_documents WHERE id=$1`, id).
		Scan(&doc.ID, &doc.VoucherType, &doc.VoucherNo, &kind, &status, &doc.Company, &doc.PostingDate, &doc.PostingTime, &doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	doc.Kind = MovementKind(kind)
	doc.Status = DocStatus(status)

	rows, err := r.pool.Query(ctx, `SELECT id, document_id, item_code, qty, basic_rate, source_warehouse, target_warehouse, stock_uom, transaction_uom, conversion_factor
FROM movement_lines WHERE document_id=$1 ORDER BY id`, id)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.ItemCode, &line.Qty, &line.BasicRate, &line.SourceWarehouse, &line.TargetWarehouse, &line.StockUOM, &line.TransactionUOM, &line.ConversionFactor); err != nil {
			return Document{}, err
		}
		doc.Lines = append(doc.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// SubmitDocument flips a draft to submitted and appends its entries in one
// transaction, so the full entry set of a document commits atomically.
func (r *Repository) SubmitDocument(ctx context.Context, docID int64, entries []Entry) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE movement_documents SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
			string(StatusSubmitted), docID, string(StatusDraft))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInvalidTransition
		}
		for _, entry := range entries {
			_, err := tx.Exec(ctx, `INSERT INTO stock_ledger_entries (item_code, warehouse, quantity, incoming_rate, voucher_type, voucher_no, voucher_detail_no, company, posting_date, posting_time, stock_uom, transaction_uom, conversion_factor, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW())`,
				entry.ItemCode, entry.Warehouse, entry.Quantity, entry.IncomingRate, entry.VoucherType, entry.VoucherNo, entry.VoucherDetailNo, entry.Company, entry.PostingDate, entry.PostingTime, entry.StockUOM, entry.TransactionUOM, entry.ConversionFactor)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// CancelDocument flips a submitted document to cancelled and bulk-deletes
// every entry carrying its voucher, however many there are. Zero matching
// entries is fine: cancellation is idempotent on the ledger side.
func (r *Repository) CancelDocument(ctx context.Context, docID int64, voucherType, voucherNo string) (int64, error) {
	var deleted int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE movement_documents SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
			string(StatusCancelled), docID, string(StatusSubmitted))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInvalidTransition
		}
		delTag, err := tx.Exec(ctx, `DELETE FROM stock_ledger_entries WHERE voucher_type=$1 AND voucher_no=$2`, voucherType, voucherNo)
		if err != nil {
			return err
		}
		deleted = delTag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// EntriesByVoucher lists the entries created by one voucher, oldest first.
func (r *Repository) EntriesByVoucher(ctx context.Context, voucherType, voucherNo string) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, item_code, warehouse, quantity, incoming_rate, voucher_type, voucher_no, voucher_detail_no, company, posting_date, posting_time::text, stock_uom, transaction_uom, conversion_factor, created_at
FROM stock_ledger_entries WHERE voucher_type=$1 AND voucher_no=$2 ORDER BY id`, voucherType, voucherNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.ItemCode, &entry.Warehouse, &entry.Quantity, &entry.IncomingRate, &entry.VoucherType, &entry.VoucherNo, &entry.VoucherDetailNo, &entry.Company, &entry.PostingDate, &entry.PostingTime, &entry.StockUOM, &entry.TransactionUOM, &entry.ConversionFactor, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SumForValuation returns the grouped sums for one (item, warehouse) pair in a
// single query, which keeps all three figures on one consistent snapshot.
func (r *Repository) SumForValuation(ctx context.Context, itemCode, warehouse string, asOf time.Time) (ValuationSums, error) {
	var sums ValuationSums
	err := r.pool.QueryRow(ctx, `SELECT
  COALESCE(SUM(quantity * incoming_rate) FILTER (WHERE quantity > 0), 0),
  COALESCE(SUM(quantity) FILTER (WHERE quantity > 0), 0),
  COALESCE(SUM(quantity), 0)
FROM stock_ledger_entries
WHERE item_code=$1 AND warehouse=$2 AND posting_date <= $3`, itemCode, warehouse, asOf).
		Scan(&sums.IncomingValue, &sums.IncomingQty, &sums.NetQty)
	if err != nil {
		return ValuationSums{}, err
	}
	return sums, nil
}

// BalanceGroups returns every (item, warehouse) pair with a non-zero net
// quantity as of the date, with item display names joined in.
func (r *Repository) BalanceGroups(ctx context.Context, asOf time.Time) ([]BalanceGroup, error) {
	rows, err := r.pool.Query(ctx, `SELECT sle.item_code, COALESCE(i.name, ''), sle.warehouse, SUM(sle.quantity)
FROM stock_ledger_entries sle
LEFT JOIN items i ON i.code = sle.item_code
WHERE sle.posting_date <= $1
GROUP BY sle.item_code, i.name, sle.warehouse
HAVING SUM(sle.quantity) <> 0
ORDER BY sle.item_code, sle.warehouse`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := []BalanceGroup{}
	for rows.Next() {
		var group BalanceGroup
		if err := rows.Scan(&group.ItemCode, &group.ItemName, &group.Warehouse, &group.NetQty); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}
