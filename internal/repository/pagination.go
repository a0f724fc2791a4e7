package repository

// Listing defaults follow the public site: the events and articles grids
// render 12 cards per page.
const (
	DefaultPage     = 1
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// PageRequest selects one page of a listing. Zero values fall back to the
// grid defaults.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset is the number of rows to skip for this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResult carries one page of items together with the listing totals the
// pagination controls need.
type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

func normalizePageRequest(in PageRequest) PageRequest {
	page := in.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := in.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

func calcTotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	ps := int64(pageSize)
	pages := total / ps
	if total%ps != 0 {
		pages++
	}
	maxInt := int64(^uint(0) >> 1)
	if pages > maxInt {
		return int(maxInt)
	}
	return int(pages)
}
