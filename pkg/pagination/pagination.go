// Package pagination parses page-based query parameters into offset windows.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxResultWindow mirrors the search engine's index.max_result_window:
	// from+size beyond it is rejected upstream, so it is rejected here first.
	MaxResultWindow = 10000
)

// Params is a validated page window.
type Params struct {
	Page     int
	PageSize int
}

// Offset is the zero-based index of the first record on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Validate checks both values are in range and the page lies inside the
// result window.
func (p Params) Validate() error {
	if p.Page < 1 {
		return &ParamError{Param: "page", Msg: "must be a positive integer"}
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return &ParamError{Param: "page_size", Msg: fmt.Sprintf("must be an integer between 1 and %d", MaxPageSize)}
	}
	if p.Page > MaxResultWindow/p.PageSize {
		return &ParamError{Param: "page", Msg: fmt.Sprintf("is beyond the last reachable page (%d records max)", MaxResultWindow)}
	}
	return nil
}

// ParamError reports which query parameter was rejected.
type ParamError struct {
	Param string
	Msg   string
}

func (e *ParamError) Error() string {
	return e.Param + " " + e.Msg
}

// FromRequest reads page (default 1) and page_size (default DefaultPageSize)
// from the query string. Out-of-range values are errors, not clamped.
func FromRequest(r *http.Request) (Params, error) {
	q := r.URL.Query()
	p := Params{Page: 1, PageSize: DefaultPageSize}

	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, &ParamError{Param: "page", Msg: "must be a positive integer"}
		}
		p.Page = v
	}

	if raw := q.Get("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, &ParamError{Param: "page_size", Msg: fmt.Sprintf("must be an integer between 1 and %d", MaxPageSize)}
		}
		p.PageSize = v
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
