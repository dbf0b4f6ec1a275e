package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginateFirstPage(t *testing.T) {
	p := Paginate(12, 0, 5)

	assert.Equal(t, int64(5), p.Items)
	assert.Equal(t, int64(1), p.Current)
	assert.Equal(t, int64(3), p.Pages)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, int64(5), p.NextOffset)
}

func TestPaginateLastShortPage(t *testing.T) {
	p := Paginate(12, 10, 5)

	assert.Equal(t, int64(2), p.Items)
	assert.Equal(t, int64(3), p.Current)
	assert.Equal(t, int64(3), p.Pages)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
	assert.Equal(t, int64(5), p.PrevOffset)
}

func TestPaginateExactBoundary(t *testing.T) {
	p := Paginate(10, 5, 5)

	assert.Equal(t, int64(5), p.Items)
	assert.Equal(t, int64(2), p.Current)
	assert.Equal(t, int64(2), p.Pages)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(0, 0, 5)

	assert.Equal(t, int64(0), p.Total)
	assert.Equal(t, int64(0), p.Items)
	assert.Equal(t, int64(0), p.Pages)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestPaginateOffsetBeyondTotal(t *testing.T) {
	// Listings expired between the count and the navigation tap.
	p := Paginate(3, 5, 5)

	assert.Equal(t, int64(0), p.Items)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestPaginateDefendsBadInputs(t *testing.T) {
	p := Paginate(3, -5, 0)

	assert.Equal(t, int64(0), p.Offset)
	assert.Equal(t, int64(1), p.PerPage)
	assert.Equal(t, int64(1), p.Items)
}

func TestStepBack(t *testing.T) {
	assert.Equal(t, int64(5), StepBack(10, 5))
	assert.Equal(t, int64(0), StepBack(5, 5))
	assert.Equal(t, int64(0), StepBack(3, 5))
	assert.Equal(t, int64(0), StepBack(0, 5))
}
