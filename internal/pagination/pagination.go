// Package pagination splits ordered result sets into fixed-size pages.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// PostsPerPage is the page size of every post listing.
const PostsPerPage = 10

// Page describes one page of a listing. The zero value is not useful; build
// pages with NewPage.
type Page struct {
	Number         int   `json:"number"`
	NumPages       int   `json:"num_pages"`
	PerPage        int   `json:"per_page"`
	Count          int64 `json:"count"`
	HasNext        bool  `json:"has_next"`
	HasPrevious    bool  `json:"has_previous"`
	NextNumber     int   `json:"next_page_number,omitempty"`
	PreviousNumber int   `json:"previous_page_number,omitempty"`
}

// NewPage resolves the raw ?page= value against total items. Non-numeric or
// missing input and numbers below 1 select the first page, numbers past the
// end select the last one. An empty listing still has a single empty page.
func NewPage(raw string, total int64, perPage int) Page {
	if perPage <= 0 {
		perPage = PostsPerPage
	}
	if total < 0 {
		total = 0
	}

	numPages := int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number := ParseNumber(raw)
	if number > numPages {
		number = numPages
	}

	p := Page{
		Number:      number,
		NumPages:    numPages,
		PerPage:     perPage,
		Count:       total,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
	if p.HasNext {
		p.NextNumber = number + 1
	}
	if p.HasPrevious {
		p.PreviousNumber = number - 1
	}
	return p
}

// ParseNumber reads a 1-based page number, falling back to 1. Positive
// numbers too large for an int saturate so NewPage clamps them to the last
// page.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset is the number of items preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit is the maximum number of items on this page.
func (p Page) Limit() int {
	return p.PerPage
}

// StartIndex is the 1-based index of the first item, or 0 for an empty listing.
func (p Page) StartIndex() int64 {
	if p.Count == 0 {
		return 0
	}
	return int64(p.Offset()) + 1
}

// EndIndex is the 1-based index of the last item on this page.
func (p Page) EndIndex() int64 {
	end := int64(p.Offset() + p.PerPage)
	if end > p.Count {
		return p.Count
	}
	return end
}

// Slice returns the items of page raw from an already materialized list.
func Slice[T any](raw string, items []T, perPage int) (Page, []T) {
	p := NewPage(raw, int64(len(items)), perPage)
	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + p.Limit()
	if end > len(items) {
		end = len(items)
	}
	return p, items[start:end]
}
