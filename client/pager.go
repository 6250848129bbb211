package client

import (
	"errors"

	"github.com/BrobridgeOrg/go-quickbase/api"
)

// ErrPagerInUse is returned when a pager that already walked pages is
// started again without a Reset.
var ErrPagerInUse = errors.New("pager already in use")

// PagerState is the lifecycle state of a ResponsePager.
type PagerState int

const (
	PagerNotStarted PagerState = iota
	PagerInProgress
	PagerComplete
)

// String returns the string representation of the state.
func (s PagerState) String() string {
	switch s {
	case PagerNotStarted:
		return "not-started"
	case PagerInProgress:
		return "in-progress"
	case PagerComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ResponsePager tracks progress through a multi-page query result. It does
// not issue requests; the table client feeds it each page's metadata.
type ResponsePager struct {
	state        PagerState
	recordsSeen  int
	totalRecords int
	skip         int
	pageSize     int
}

// PagerOption configures a ResponsePager.
type PagerOption func(*ResponsePager)

// WithPageSize sets the number of records requested per page. Zero leaves
// the page size to the server.
func WithPageSize(n int) PagerOption {
	return func(p *ResponsePager) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// NewResponsePager creates a pager in the not-started state.
func NewResponsePager(opts ...PagerOption) *ResponsePager {
	p := &ResponsePager{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Begin moves a fresh pager to in-progress.
func (p *ResponsePager) Begin() error {
	if p.state != PagerNotStarted {
		return ErrPagerInUse
	}
	p.state = PagerInProgress
	return nil
}

// Update records a received page.
func (p *ResponsePager) Update(meta api.ResultMetadata) {
	if p.state == PagerNotStarted {
		p.state = PagerInProgress
	}

	p.totalRecords = meta.TotalRecords
	p.recordsSeen += meta.NumRecords
	p.skip = p.recordsSeen

	if meta.NumRecords == 0 || p.recordsSeen >= p.totalRecords {
		p.state = PagerComplete
	}
}

// MoreRemaining reports whether records are left to fetch. Before the first
// page the total is unknown and it reports true.
func (p *ResponsePager) MoreRemaining() bool {
	switch p.state {
	case PagerNotStarted:
		return true
	case PagerComplete:
		return false
	}
	if p.recordsSeen == 0 && p.totalRecords == 0 {
		return true
	}
	return p.recordsSeen < p.totalRecords
}

// Reset returns the pager to the not-started state.
func (p *ResponsePager) Reset() {
	p.state = PagerNotStarted
	p.recordsSeen = 0
	p.totalRecords = 0
	p.skip = 0
}

// State returns the lifecycle state.
func (p *ResponsePager) State() PagerState { return p.state }

// RecordsSeen returns the number of records received so far.
func (p *ResponsePager) RecordsSeen() int { return p.recordsSeen }

// TotalRecords returns the total reported by the last page.
func (p *ResponsePager) TotalRecords() int { return p.totalRecords }

// Skip returns the offset of the next page.
func (p *ResponsePager) Skip() int { return p.skip }

// PageSize returns the configured page size, zero for the server default.
func (p *ResponsePager) PageSize() int { return p.pageSize }
