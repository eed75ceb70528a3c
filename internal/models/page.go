package models

// Sort directions accepted by list queries.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PageQuery describes one page of a server-side paginated grid.
type PageQuery struct {
	Offset        int
	Limit         int
	Search        string
	SortColumn    string
	SortDirection string
}

// Page is the {data, total, filtered} triple a paginated grid needs.
// Total ignores the search term; Filtered applies it.
type Page[T any] struct {
	Data     []T `json:"data"`
	Total    int `json:"total"`
	Filtered int `json:"filtered"`
}
