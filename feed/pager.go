package feed

import (
	"context"
	"sync"

	"github.com/habitboard/habitboard/models"
	"github.com/habitboard/habitboard/services"
)

// State names the pagination lifecycle explicitly rather than leaving it
// implicit in callback timing.
type State int

const (
	// StateInitialLoading: first page not yet settled.
	StateInitialLoading State = iota
	// StateIdle: a page is loaded and more may exist.
	StateIdle
	// StateExhausted: a page is loaded and the feed has no further rows.
	StateExhausted
	// StateLoadingMore: an additive fetch is in flight.
	StateLoadingMore
	// StateError: the last fetch failed; Err holds the message.
	StateError
)

// FetchFunc retrieves one feed window. services.HabitService.GetHabitFeed
// satisfies it directly.
type FetchFunc func(ctx context.Context, actionType, offset int) (services.FeedPage, error)

// Pager accumulates feed pages for one action-type filter. Switching the
// filter resets the accumulated set and bumps an internal generation so that
// a stale in-flight fetch settling afterwards is discarded instead of
// overwriting fresher state.
type Pager struct {
	mu         sync.Mutex
	fetch      FetchFunc
	actionType int
	generation uint64
	state      State
	items      []models.Habit
	offset     int
	hasMore    bool
	err        error
}

// NewPager creates a pager for the given action type, in StateInitialLoading.
func NewPager(fetch FetchFunc, actionType int) *Pager {
	return &Pager{fetch: fetch, actionType: actionType, state: StateInitialLoading}
}

// Reset switches the action-type filter: empty accumulated set, offset zero,
// back to StateInitialLoading. Any fetch still in flight belongs to the old
// generation and will be ignored when it settles.
func (p *Pager) Reset(actionType int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.actionType = actionType
	p.state = StateInitialLoading
	p.items = nil
	p.offset = 0
	p.hasMore = false
	p.err = nil
}

// LoadFirst fetches the first page. Valid from StateInitialLoading (or after
// Reset); a settling result from before a Reset is dropped.
func (p *Pager) LoadFirst(ctx context.Context) error {
	p.mu.Lock()
	gen := p.generation
	actionType := p.actionType
	p.state = StateInitialLoading
	p.mu.Unlock()

	page, err := p.fetch(ctx, actionType, 0)
	return p.settle(gen, page, err, true)
}

// LoadMore fetches the next window and appends it to the accumulated set.
// It is a no-op unless the pager is idle with more rows available.
func (p *Pager) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateIdle || !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	gen := p.generation
	actionType := p.actionType
	offset := p.offset
	p.state = StateLoadingMore
	p.mu.Unlock()

	page, err := p.fetch(ctx, actionType, offset)
	return p.settle(gen, page, err, false)
}

// settle applies a fetch result unless the generation moved on in the
// meantime (the stale-response guard).
func (p *Pager) settle(gen uint64, page services.FeedPage, err error, replace bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		// A Reset happened while the fetch was in flight; discard.
		return nil
	}
	if err != nil {
		p.state = StateError
		p.err = err
		return err
	}
	if replace {
		p.items = page.Items
		p.offset = services.PageSize
	} else {
		p.items = append(p.items, page.Items...)
		p.offset += services.PageSize
	}
	p.hasMore = page.HasMore
	if page.HasMore {
		p.state = StateIdle
	} else {
		p.state = StateExhausted
	}
	p.err = nil
	return nil
}

// State returns the current lifecycle state.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Items returns a copy of the accumulated records.
func (p *Pager) Items() []models.Habit {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Habit, len(p.items))
	copy(out, p.items)
	return out
}

// Groups returns the accumulated records composed into date groups.
func (p *Pager) Groups() []Group {
	return GroupByDate(p.Items())
}

// HasMore reports whether another window exists beyond the accumulated set.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Err returns the error from the last failed fetch, if any.
func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
