package core

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Paging is bound from the `page` & `page_size` query params.
// A zero Paging (see NoPaging) selects all the items.
type Paging struct {
	Page     int `query:"page" json:"page"`
	PageSize int `query:"page_size" json:"page_size"`
}

// Clean applies the defaults & bounds.
func (p *Paging) Clean() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	} else if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

var NoPaging = Paging{}

func (p Paging) Limited() bool { return p.PageSize > 0 }

func (p Paging) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Paginate returns the [lo, hi) bounds of the current page within a list of n items.
func (p Paging) Paginate(n int) (lo, hi int) {
	if !p.Limited() {
		return 0, n
	}
	lo = p.Offset()
	if lo > n {
		lo = n
	}
	hi = lo + p.PageSize
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Page is the list response envelope.
type Page struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func NewPage(items interface{}, total int, p Paging) Page {
	return Page{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}
