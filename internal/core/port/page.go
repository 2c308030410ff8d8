package port

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page describes pagination and ordering for list queries.
type Page struct {
	Number   int
	Size     int
	OrderBy  string
	Desc     bool // descending order when true
}

// Normalized clamps the page to sane bounds.
func (p Page) Normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	n := p.Normalized()
	return (n.Number - 1) * n.Size
}
