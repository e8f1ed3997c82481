package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/stockledger/stockledger/internal/ledger"
)

// WriteStockBalanceCSV serialises report rows to CSV.
func WriteStockBalanceCSV(w io.Writer, rows []ledger.ReportRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Item Code", "Item Name", "Warehouse", "Balance Qty", "Valuation Rate", "Stock Value"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ItemCode,
			row.ItemName,
			row.Warehouse,
			formatFloat(row.BalanceQty),
			formatFloat(row.ValuationRate),
			formatFloat(row.StockValue),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
