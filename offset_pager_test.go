package pager_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alp4ka/pager"
	"github.com/Alp4ka/pager/memexec"
)

func Test_OffsetPager_Paginate(t *testing.T) {
	players := newPlayers(95)
	order := scoreOrderIDs(players)
	exec := memexec.New(players, _playerGetters)

	tests := []struct {
		name       string
		page       int
		limit      int
		wantItems  []int64
		wantPages  int
		wantNext   bool
		wantPrev   bool
		wantPageNo int
	}{
		{"first", 1, 20, order[:20], 5, true, false, 1},
		{"middle", 3, 20, order[40:60], 5, true, true, 3},
		{"last partial", 5, 20, order[80:], 5, false, true, 5},
		{"beyond the end", 7, 20, []int64{}, 5, false, true, 7},
		{"page below one", -2, 20, order[:20], 5, true, false, 1},
		{"default limit", 1, 0, order[:10], 10, true, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := pager.NewOffsetPager[player]().
				WithPage(tt.page).
				WithLimit(tt.limit).
				WithSort(_scoreOrder).
				Paginate(context.Background(), exec)
			require.NoError(t, err)

			assert.Equal(t, tt.wantItems, ids(page.Items))
			assert.Equal(t, int64(95), page.TotalCount)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrev, page.HasPrev)
			assert.Equal(t, tt.wantPageNo, page.Page)
		})
	}
}

func Test_OffsetPager_emptyDataset(t *testing.T) {
	page, err := pager.NewOffsetPager[player]().
		WithPage(3).
		WithSort(_scoreOrder).
		Paginate(context.Background(), memexec.New[player](nil, _playerGetters))
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalCount)
	assert.Zero(t, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func Test_OffsetPager_filteredCount(t *testing.T) {
	exec := memexec.New(newPlayers(30), _playerGetters)

	page, err := pager.NewOffsetPager[player]().
		WithLimit(4).
		WithSort(_scoreOrder).
		WithFilter(pager.Filter{All: []pager.Term{{Column: "score", Predicate: pager.OneOf{Values: []any{int64(0), int64(1)}}}}}).
		Paginate(context.Background(), exec)
	require.NoError(t, err)

	// Scores are i%4 for i in 1..30: seven zeros and eight ones.
	assert.Equal(t, int64(15), page.TotalCount)
	assert.Equal(t, 4, page.TotalPages)
	assert.Len(t, page.Items, 4)
	for _, p := range page.Items {
		assert.Equal(t, int64(1), p.Score)
	}
}

// countingExecutor records concurrent Find and Count calls.
type countingExecutor struct {
	pager.Executor[player]
	finds, counts atomic.Int32
	countErr      error
}

func (c *countingExecutor) Find(ctx context.Context, q pager.Query) ([]player, error) {
	c.finds.Add(1)
	return c.Executor.Find(ctx, q)
}

func (c *countingExecutor) Count(ctx context.Context, f pager.Filter) (int64, error) {
	c.counts.Add(1)
	if c.countErr != nil {
		return 0, c.countErr
	}
	return c.Executor.Count(ctx, f)
}

func Test_OffsetPager_errors(t *testing.T) {
	boom := errors.New("count timeout")
	exec := &countingExecutor{
		Executor: memexec.New(newPlayers(5), _playerGetters),
		countErr: boom,
	}

	_, err := pager.NewOffsetPager[player]().
		WithSort(_scoreOrder).
		Paginate(context.Background(), exec)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), exec.counts.Load())
	assert.Equal(t, int32(1), exec.finds.Load())

	_, err = pager.NewOffsetPager[player]().
		WithSort(_scoreOrder).
		Paginate(context.Background(), failingExecutor{err: boom})
	require.ErrorIs(t, err, boom)

	_, err = pager.NewOffsetPager[player]().Paginate(context.Background(), exec)
	assert.Error(t, err, "no sort")
}

func Test_OffsetPager_getters(t *testing.T) {
	p := pager.NewOffsetPager[player]().WithPage(4).WithLimit(25)
	assert.Equal(t, 4, p.GetPage())
	assert.Equal(t, 25, p.GetLimit())
	assert.Equal(t, 75, p.GetOffset())

	var nilPager *pager.OffsetPager[player]
	assert.Equal(t, 1, nilPager.GetPage())
	assert.Nil(t, nilPager.GetSort())
}

func Test_OffsetPager_hugePage(t *testing.T) {
	exec := memexec.New(newPlayers(25), _playerGetters)

	p := pager.NewOffsetPager[player]().
		WithPage(math.MaxInt64 / 5).
		WithLimit(10).
		WithSort(_scoreOrder)
	assert.Equal(t, math.MaxInt/10+1, p.GetPage())
	assert.GreaterOrEqual(t, p.GetOffset(), 0)

	page, err := p.Paginate(context.Background(), exec)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(25), page.TotalCount)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)

	// With a limit of one every page number already fits.
	single := pager.NewOffsetPager[player]().WithPage(math.MaxInt).WithLimit(1)
	assert.Equal(t, math.MaxInt, single.GetPage())
	assert.Equal(t, math.MaxInt-1, single.GetOffset())
}

func Test_TotalPages(t *testing.T) {
	assert.Equal(t, 5, pager.TotalPages(95, 20))
	assert.Equal(t, 5, pager.TotalPages(100, 20))
	assert.Equal(t, 1, pager.TotalPages(1, 20))
	assert.Equal(t, 0, pager.TotalPages(0, 20))
	assert.Equal(t, 0, pager.TotalPages(10, 0))
}
