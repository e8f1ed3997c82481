package warehouses

import "github.com/stockledger/stockledger/internal/masterdata/shared"

func validate(warehouse Warehouse) error {
	if warehouse.Code == "" || warehouse.Name == "" {
		return shared.ErrRequiredField
	}
	return nil
}
