// Package listview holds one page of a paginated collection together with
// its filter, pagination window and load status.
package listview

import (
	"context"
	"errors"
	"slices"
	"sync"

	"taskboard/internal/apiclient"
	"taskboard/internal/service"
)

// ErrStale is returned by Load when a newer load was issued before this one
// finished; its result has been discarded.
var ErrStale = errors.New("stale response discarded")

// Status is the load state of a controller.
type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Errored
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Fetcher issues one list request.
type Fetcher[T, F any] func(ctx context.Context, filter F, w service.Window) (service.Page[T], error)

// Controller owns one page of items of type T filtered by F.
//
// Every Load takes a sequence number; a response that arrives after a newer
// Load was started is dropped and reported as ErrStale.
type Controller[T, F any] struct {
	fetch       Fetcher[T, F]
	failMessage string

	mu     sync.Mutex
	filter F
	limit  int
	offset int
	items  []T
	meta   service.Meta
	status Status
	errMsg string
	seq    uint64
}

// New creates an idle controller. failMessage is shown when a load fails
// without a message of its own.
func New[T, F any](fetch Fetcher[T, F], filter F, limit int, failMessage string) *Controller[T, F] {
	if limit <= 0 {
		limit = 20
	}
	return &Controller[T, F]{
		fetch:       fetch,
		failMessage: failMessage,
		filter:      filter,
		limit:       limit,
		meta:        service.Meta{Limit: limit},
	}
}

// Load fetches the page starting at offset with the current filter.
// On failure the previous items stay visible and the error message is kept.
func (c *Controller[T, F]) Load(ctx context.Context, offset int) error {
	if offset < 0 {
		offset = 0
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.status = Loading
	c.errMsg = ""
	filter := c.filter
	w := service.Window{Limit: c.limit, Offset: offset}
	c.mu.Unlock()

	page, err := c.fetch(ctx, filter, w)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return ErrStale
	}
	if err != nil {
		c.status = Errored
		c.errMsg = apiclient.MessageOr(err, c.failMessage)
		return err
	}

	c.items = page.Items
	if c.items == nil {
		c.items = []T{}
	}
	c.meta = page.Meta
	if c.meta.Limit <= 0 {
		c.meta.Limit = w.Limit
	}
	c.offset = offset
	c.status = Loaded
	return nil
}

// Reload fetches the current page again.
func (c *Controller[T, F]) Reload(ctx context.Context) error {
	return c.Load(ctx, c.Offset())
}

// Next loads the following page. It does nothing on the last page.
func (c *Controller[T, F]) Next(ctx context.Context) error {
	if !c.CanNext() {
		return nil
	}
	c.mu.Lock()
	next := service.Window{Limit: c.limit, Offset: c.offset}.Next()
	c.mu.Unlock()
	return c.Load(ctx, next.Offset)
}

// Prev loads the preceding page. It does nothing on the first page.
func (c *Controller[T, F]) Prev(ctx context.Context) error {
	if !c.CanPrev() {
		return nil
	}
	c.mu.Lock()
	prev := service.Window{Limit: c.limit, Offset: c.offset}.Prev()
	c.mu.Unlock()
	return c.Load(ctx, prev.Offset)
}

// SetFilter replaces the filter and reloads from offset 0.
func (c *Controller[T, F]) SetFilter(ctx context.Context, filter F) error {
	c.mu.Lock()
	c.filter = filter
	c.offset = 0
	c.mu.Unlock()
	return c.Load(ctx, 0)
}

// SetLimit changes the page size and reloads from offset 0.
func (c *Controller[T, F]) SetLimit(ctx context.Context, limit int) error {
	if limit <= 0 {
		return nil
	}
	c.mu.Lock()
	c.limit = limit
	c.offset = 0
	c.mu.Unlock()
	return c.Load(ctx, 0)
}

// Reset clears the page without a request. Loads still in flight are
// discarded when they return.
func (c *Controller[T, F]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.items = []T{}
	c.meta = service.Meta{Limit: c.limit}
	c.offset = 0
	c.status = Idle
	c.errMsg = ""
}

// ResetFilter replaces the filter and clears the page without a request.
func (c *Controller[T, F]) ResetFilter(filter F) {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	c.Reset()
}

// Filter returns the current filter.
func (c *Controller[T, F]) Filter() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Limit returns the page size.
func (c *Controller[T, F]) Limit() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}

// Offset returns the offset of the loaded page.
func (c *Controller[T, F]) Offset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// Items returns a copy of the visible items.
func (c *Controller[T, F]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Meta returns the pagination metadata of the loaded page.
func (c *Controller[T, F]) Meta() service.Meta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

// Status returns the load state.
func (c *Controller[T, F]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the message of the last failure, or "".
func (c *Controller[T, F]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// SetErr records the failure of an action on the page, using fallback when
// err has no message. A nil err clears the message.
func (c *Controller[T, F]) SetErr(err error, fallback string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = apiclient.MessageOr(err, fallback)
}

// CanPrev reports whether a previous page exists.
func (c *Controller[T, F]) CanPrev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset > 0
}

// CanNext reports whether a following page exists.
func (c *Controller[T, F]) CanNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset+c.limit < c.meta.Total
}

// Prepend inserts item at the top of the page.
func (c *Controller[T, F]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
	c.meta.Total++
}

// Replace swaps the first item matching match for item. It reports whether
// an item was replaced.
func (c *Controller[T, F]) Replace(match func(T) bool, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.items, match)
	if i < 0 {
		return false
	}
	c.items = slices.Clone(c.items)
	c.items[i] = item
	return true
}

// Mutate applies change to the visible items right away, then runs commit.
// If commit fails the items are put back the way they were, unless a load
// replaced them in the meantime, and the failure message is recorded.
func (c *Controller[T, F]) Mutate(ctx context.Context, change func([]T) []T, commit func(context.Context) error, failMessage string) error {
	var seq uint64
	err := Optimistic(ctx,
		func() []T {
			c.mu.Lock()
			defer c.mu.Unlock()
			seq = c.seq
			c.errMsg = ""
			snapshot := c.items
			c.items = change(slices.Clone(c.items))
			return snapshot
		},
		func(snapshot []T) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if seq == c.seq {
				c.items = snapshot
			}
		},
		commit,
	)
	if err != nil {
		c.SetErr(err, failMessage)
	}
	return err
}
