package domain

// PaginationParams selects one page of a list. A zero PageSize means unpaged: ListManagedEvents
// returns every event, while GET /events always arrives here with a clamped page size.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Paged reports whether the query should carry LIMIT/OFFSET.
func (p PaginationParams) Paged() bool {
	return p.PageSize > 0
}

// Offset is the number of rows before Page; pages are 1-based and anything below 1 is the first page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
