// Package shared holds list filter and error types common to the master data
// sub-packages.
package shared

// ListFilters represents standard list endpoint filters.
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	Disabled *bool
}

// Offset returns the row offset implied by Page and Limit, clamped at zero.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}
