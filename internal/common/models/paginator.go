package models

// Paginator is a single page of items plus the total size of the result set
type Paginator[T any] struct {
	items   []T
	page    int
	perPage int
	total   int64
}

func NewPaginator[T any](items []T, total int64, page, perPage int) *Paginator[T] {
	if perPage <= 0 {
		perPage = 1
	}
	if items == nil {
		items = []T{}
	}
	return &Paginator[T]{
		items:   items,
		page:    page,
		perPage: perPage,
		total:   total,
	}
}

func (p *Paginator[T]) Items() []T {
	return p.items
}

func (p *Paginator[T]) Page() int {
	return p.page
}

func (p *Paginator[T]) PerPage() int {
	return p.perPage
}

func (p *Paginator[T]) Total() int64 {
	return p.total
}

// LastPage is the number of the last page, zero for an empty result set
func (p *Paginator[T]) LastPage() int {
	per := int64(p.perPage)
	return int((p.total + per - 1) / per)
}

func (p *Paginator[T]) IsOnLastPage() bool {
	return p.page >= p.LastPage()
}
