package service

import "taskboard/internal/apiclient"

// Meta describes the pagination window of a Page.
type Meta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// CanPrev reports whether an earlier page exists.
func (m Meta) CanPrev() bool {
	return m.Offset > 0
}

// CanNext reports whether a later page exists.
func (m Meta) CanNext() bool {
	return m.Offset+m.Limit < m.Total
}

// Page is the envelope of every list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Meta  Meta `json:"meta"`
}

// Window is the requested slice of a collection.
type Window struct {
	Limit  int
	Offset int
}

// Query returns the window as request parameters.
func (w Window) Query() apiclient.Query {
	return apiclient.PageQuery(w.Limit, w.Offset)
}

// Prev returns the window of the previous page, clamped at zero.
func (w Window) Prev() Window {
	off := w.Offset - w.Limit
	if off < 0 {
		off = 0
	}
	return Window{Limit: w.Limit, Offset: off}
}

// Next returns the window of the next page.
func (w Window) Next() Window {
	return Window{Limit: w.Limit, Offset: w.Offset + w.Limit}
}
