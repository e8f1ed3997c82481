package ledger

import "fmt"

// Writer translates a movement document into ledger entries. It is pure: the
// service decides when to persist, the writer only decides what.
type Writer struct{}

// EntriesForSubmit returns the entries a submitted document produces: zero,
// one, or two per line depending on the movement kind and which warehouses are
// assigned. Documents in any other status produce nothing, which keeps repeat
// invocations from double-appending.
func (Writer) EntriesForSubmit(doc Document) ([]Entry, error) {
	if doc.Status != StatusSubmitted {
		return nil, nil
	}

	var entries []Entry
	for _, line := range doc.Lines {
		switch doc.Kind {
		case KindReceipt:
			if line.TargetWarehouse != "" {
				entries = append(entries, buildEntry(doc, line, line.TargetWarehouse, line.Qty, line.BasicRate))
			}
		case KindIssue:
			if line.SourceWarehouse != "" {
				entries = append(entries, buildEntry(doc, line, line.SourceWarehouse, -line.Qty, 0))
			}
		case KindTransfer:
			// Both legs are evaluated independently; either may be absent.
			if line.SourceWarehouse != "" {
				entries = append(entries, buildEntry(doc, line, line.SourceWarehouse, -line.Qty, 0))
			}
			if line.TargetWarehouse != "" {
				entries = append(entries, buildEntry(doc, line, line.TargetWarehouse, line.Qty, line.BasicRate))
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, doc.Kind)
		}
	}
	return entries, nil
}

// buildEntry constructs a single ledger entry. The incoming rate rule lives
// here and nowhere else: outgoing movements never carry a valuation signal, so
// the rate is zeroed whenever the signed quantity is not positive.
func buildEntry(doc Document, line Line, warehouse string, quantity, rate float64) Entry {
	incomingRate := rate
	if quantity <= 0 {
		incomingRate = 0
	}
	return Entry{
		ItemCode:         line.ItemCode,
		Warehouse:        warehouse,
		Quantity:         quantity,
		IncomingRate:     incomingRate,
		VoucherType:      doc.VoucherType,
		VoucherNo:        doc.VoucherNo,
		VoucherDetailNo:  lineDetailNo(doc, line),
		Company:          doc.Company,
		PostingDate:      doc.PostingDate,
		PostingTime:      doc.PostingTime,
		StockUOM:         line.StockUOM,
		TransactionUOM:   line.TransactionUOM,
		ConversionFactor: line.ConversionFactor,
	}
}

func lineDetailNo(doc Document, line Line) string {
	return fmt.Sprintf("%s-%d", doc.VoucherNo, line.ID)
}
