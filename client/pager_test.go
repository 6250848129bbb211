package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrobridgeOrg/go-quickbase/api"
)

func TestPagerLifecycle(t *testing.T) {
	p := NewResponsePager(WithPageSize(2))
	assert.Equal(t, PagerNotStarted, p.State())
	assert.True(t, p.MoreRemaining())
	assert.Equal(t, 2, p.PageSize())

	require.NoError(t, p.Begin())
	assert.Equal(t, PagerInProgress, p.State())
	assert.True(t, p.MoreRemaining())

	p.Update(api.ResultMetadata{TotalRecords: 4, NumRecords: 2})
	assert.Equal(t, 2, p.RecordsSeen())
	assert.Equal(t, 4, p.TotalRecords())
	assert.Equal(t, 2, p.Skip())
	assert.True(t, p.MoreRemaining())

	p.Update(api.ResultMetadata{TotalRecords: 4, NumRecords: 2, Skip: 2})
	assert.Equal(t, PagerComplete, p.State())
	assert.False(t, p.MoreRemaining())
	assert.Equal(t, 4, p.Skip())

	assert.ErrorIs(t, p.Begin(), ErrPagerInUse)

	p.Reset()
	assert.Equal(t, PagerNotStarted, p.State())
	assert.Zero(t, p.RecordsSeen())
	assert.Equal(t, 2, p.PageSize())
	require.NoError(t, p.Begin())
}

func TestPagerStopsOnEmptyPage(t *testing.T) {
	p := NewResponsePager()
	require.NoError(t, p.Begin())

	p.Update(api.ResultMetadata{TotalRecords: 10, NumRecords: 0})
	assert.Equal(t, PagerComplete, p.State())
	assert.False(t, p.MoreRemaining())
}

func TestPagerStateString(t *testing.T) {
	assert.Equal(t, "not-started", PagerNotStarted.String())
	assert.Equal(t, "in-progress", PagerInProgress.String())
	assert.Equal(t, "complete", PagerComplete.String())
}
