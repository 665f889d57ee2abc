package core

const (
	DefaultPageLimit = 20
	// HeavyPageLimit is the default for high-volume listings (grades, attendance).
	HeavyPageLimit = 10
	MaxPageLimit   = 100
)

// Pagination is the validated pagination window of a list query.
type Pagination struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

// Clean applies defaults and bounds: page >= 1, limit in [1, MaxPageLimit].
func (p *Pagination) Clean(defaultLimit int) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the pagination metadata returned on list endpoints.
type PageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

func NewPageMeta(p Pagination, total int) PageMeta {
	pages := 0
	if total > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{Total: total, Page: p.Page, Pages: pages, Limit: p.Limit}
}

func (m PageMeta) HasNext() bool {
	return m.Page < m.Pages
}

func (m PageMeta) HasPrev() bool {
	return m.Page > 1
}
