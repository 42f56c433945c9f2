package models

import "strings"

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PagedListFilters holds the paging and sorting part of list queries.
// Sort keys are the public names; SortBy returns the storage field.
type PagedListFilters struct {
	page     int
	perPage  int
	sortBy   string
	sortDir  string
	sortable map[string]string
}

// NewPagedListFilters starts at page 1, DefaultPerPage items, sorted by the
// field behind defaultSort in descending order.
func NewPagedListFilters(sortable map[string]string, defaultSort string) PagedListFilters {
	f := PagedListFilters{
		sortable: sortable,
		sortBy:   sortable[defaultSort],
		sortDir:  SortDesc,
	}
	f.SetPage(1)
	f.SetPerPage(DefaultPerPage)
	return f
}

func (f *PagedListFilters) SetPage(page int) {
	if page > 0 {
		f.page = page
		return
	}
	f.page = 1
}

// SetPerPage falls back to DefaultPerPage for values outside 1..MaxPerPage
func (f *PagedListFilters) SetPerPage(perPage int) {
	if perPage > 0 && perPage <= MaxPerPage {
		f.perPage = perPage
		return
	}
	f.perPage = DefaultPerPage
}

// SetSortBy ignores an empty key and rejects unknown ones
func (f *PagedListFilters) SetSortBy(sortBy string) error {
	if sortBy == "" {
		return nil
	}
	field, ok := f.sortable[sortBy]
	if !ok {
		return NewValidationError("sort_by", "unsupported sort field %q", sortBy)
	}
	f.sortBy = field
	return nil
}

func (f *PagedListFilters) SetSortDir(sortDir string) error {
	if sortDir == "" {
		return nil
	}
	dir := strings.ToLower(sortDir)
	if dir != SortAsc && dir != SortDesc {
		return NewValidationError("sort_dir", "unsupported sort direction %q", sortDir)
	}
	f.sortDir = dir
	return nil
}

func (f PagedListFilters) Page() int {
	return f.page
}

func (f PagedListFilters) PerPage() int {
	return f.perPage
}

func (f PagedListFilters) Offset() int {
	return (f.page - 1) * f.perPage
}

func (f PagedListFilters) SortBy() string {
	return f.sortBy
}

func (f PagedListFilters) SortDir() string {
	return f.sortDir
}
