package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitboard/habitboard/models"
	"github.com/habitboard/habitboard/services"
)

// fakeFeed serves deterministic windows over a fixed record set, mirroring
// the service's probe-and-trim contract.
type fakeFeed struct {
	mu    sync.Mutex
	rows  map[int][]models.Habit
	calls int
}

func (f *fakeFeed) fetch(_ context.Context, actionType, offset int) (services.FeedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	all := f.rows[actionType]
	if offset > len(all) {
		offset = len(all)
	}
	window := all[offset:]
	hasMore := len(window) > services.PageSize
	if hasMore {
		window = window[:services.PageSize]
	}
	return services.FeedPage{Items: window, HasMore: hasMore}, nil
}

func makeRows(n int) []models.Habit {
	rows := make([]models.Habit, n)
	base := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	for i := range rows {
		ts := base.Add(-time.Duration(i) * time.Hour)
		rows[i] = models.Habit{ID: uint(i + 1), CompletedAt: &ts, CreatedAt: ts}
	}
	return rows
}

func TestPagerShortFirstPageExhausts(t *testing.T) {
	src := &fakeFeed{rows: map[int][]models.Habit{2: makeRows(3)}}
	p := NewPager(src.fetch, 2)

	assert.Equal(t, StateInitialLoading, p.State())
	require.NoError(t, p.LoadFirst(context.Background()))

	assert.Equal(t, StateExhausted, p.State())
	assert.False(t, p.HasMore())
	assert.Len(t, p.Items(), 3)
}

func TestPagerFullPagePlusOneHasMore(t *testing.T) {
	src := &fakeFeed{rows: map[int][]models.Habit{1: makeRows(services.PageSize + 1)}}
	p := NewPager(src.fetch, 1)

	require.NoError(t, p.LoadFirst(context.Background()))

	assert.Equal(t, StateIdle, p.State())
	assert.True(t, p.HasMore())
	assert.Len(t, p.Items(), services.PageSize)
}

func TestPagerLoadMoreAppends(t *testing.T) {
	src := &fakeFeed{rows: map[int][]models.Habit{1: makeRows(2*services.PageSize + 5)}}
	p := NewPager(src.fetch, 1)

	require.NoError(t, p.LoadFirst(context.Background()))
	require.NoError(t, p.LoadMore(context.Background()))

	assert.Len(t, p.Items(), 2*services.PageSize)
	assert.True(t, p.HasMore())

	require.NoError(t, p.LoadMore(context.Background()))
	assert.Len(t, p.Items(), 2*services.PageSize+5)
	assert.Equal(t, StateExhausted, p.State())

	// Exhausted: further LoadMore calls do nothing.
	require.NoError(t, p.LoadMore(context.Background()))
	assert.Len(t, p.Items(), 2*services.PageSize+5)
}

func TestPagerErrorState(t *testing.T) {
	wantErr := errors.New("backend says no")
	p := NewPager(func(context.Context, int, int) (services.FeedPage, error) {
		return services.FeedPage{}, wantErr
	}, 1)

	err := p.LoadFirst(context.Background())
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, StateError, p.State())
	assert.ErrorIs(t, p.Err(), wantErr)
}

func TestPagerResetDiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	stale := makeRows(5)

	p := NewPager(func(_ context.Context, actionType, _ int) (services.FeedPage, error) {
		if actionType == 1 {
			close(started)
			<-release
			return services.FeedPage{Items: stale, HasMore: false}, nil
		}
		return services.FeedPage{}, nil
	}, 1)

	done := make(chan struct{})
	go func() {
		_ = p.LoadFirst(context.Background())
		close(done)
	}()

	<-started
	// Filter switch while the type-1 fetch is still in flight.
	p.Reset(2)
	close(release)
	<-done

	// The stale type-1 page must not have been applied.
	assert.Empty(t, p.Items())
	assert.Equal(t, StateInitialLoading, p.State())

	require.NoError(t, p.LoadFirst(context.Background()))
	assert.Equal(t, StateExhausted, p.State())
	assert.Empty(t, p.Items())
}

func TestPagerResetClearsErrorAndItems(t *testing.T) {
	src := &fakeFeed{rows: map[int][]models.Habit{1: makeRows(4)}}
	p := NewPager(src.fetch, 1)
	require.NoError(t, p.LoadFirst(context.Background()))
	require.Len(t, p.Items(), 4)

	p.Reset(3)

	assert.Empty(t, p.Items())
	assert.NoError(t, p.Err())
	assert.Equal(t, StateInitialLoading, p.State())
}

func TestPagerGroups(t *testing.T) {
	src := &fakeFeed{rows: map[int][]models.Habit{1: makeRows(30)}}
	p := NewPager(src.fetch, 1)
	require.NoError(t, p.LoadFirst(context.Background()))

	groups := p.Groups()
	require.NotEmpty(t, groups)
	total := 0
	for _, g := range groups {
		total += len(g.Habits)
	}
	assert.Equal(t, services.PageSize, total)
}
