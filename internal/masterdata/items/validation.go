package items

import "github.com/stockledger/stockledger/internal/masterdata/shared"

func validate(item Item) error {
	if item.Code == "" || item.Name == "" {
		return shared.ErrRequiredField
	}
	if item.StockUOM == "" {
		return shared.ErrRequiredField
	}
	return nil
}
