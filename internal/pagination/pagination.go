// Package pagination turns the page/offset/limit query parameters into a bounded
// limit and offset.
package pagination

import "math"

type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type Policy struct {
	DefaultLimit int
	MaxLimit     int
}

func DefaultPolicy() Policy {
	return Policy{DefaultLimit: 20, MaxLimit: 100}
}

// Query carries raw values; zero means "not supplied".
type Query struct {
	Page   int
	Offset int
	Limit  int
}

// Resolve applies the policy. A page wins over an explicit offset. The limit is
// clamped to [1, MaxLimit], negative offsets become zero and pages too large
// to address are pinned to the last addressable one.
func (p Policy) Resolve(q Query) Params {
	limit := q.Limit
	if limit == 0 {
		limit = p.DefaultLimit
	}
	if limit < 1 {
		limit = 1
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	offset := q.Offset
	if q.Page != 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		if maxPage := math.MaxInt/limit + 1; page > maxPage {
			page = maxPage
		}
		offset = (page - 1) * limit
	}
	if offset < 0 {
		offset = 0
	}
	return Params{Limit: limit, Offset: offset}
}
