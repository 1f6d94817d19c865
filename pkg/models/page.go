package models

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageParams is the pagination input shared by every list operation.
type PageParams struct {
	Page  int
	Limit int
}

// Normalize applies defaults: page >= 1, limit in [1, MaxPageLimit].
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int64 `json:"lastPage"`
	Limit    int   `json:"limit"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NewPage builds the page envelope; lastPage is ceil(total/limit).
func NewPage[T any](data []T, total int64, p PageParams) *Page[T] {
	if data == nil {
		data = []T{}
	}
	last := int64(0)
	if p.Limit > 0 {
		last = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return &Page[T]{
		Data: data,
		Meta: PageMeta{Total: total, Page: p.Page, LastPage: last, Limit: p.Limit},
	}
}
