package pagination

// Pagination carries the offset paging query parameters shared by list
// endpoints.
type Pagination struct {
	Page     int `form:"page,default=1" validate:"gte=1"`
	PageSize int `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return 50
	}
	return p.PageSize
}

func (p Pagination) Offset() int {
	page := p.Page
	if page <= 0 {
		page = 1
	}
	return (page - 1) * p.Limit()
}
