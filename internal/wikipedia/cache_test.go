package wikipedia

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)

	content := "'''Inception''' is a 2010 film."
	revs := []Revision{
		{RevID: 2, User: "Alice", Timestamp: time.Date(2010, 7, 10, 12, 0, 0, 0, time.UTC), Size: 31, Content: &content},
		{RevID: 1, User: "Bob", Timestamp: time.Date(2010, 7, 9, 12, 0, 0, 0, time.UTC), Size: 20},
	}
	require.NoError(t, c.Write("Inception", revs))
	assert.True(t, c.Has("Inception"))

	got, err := c.Read("Inception")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].RevID)
	require.NotNil(t, got[0].Content)
	assert.Equal(t, content, *got[0].Content)
	assert.Nil(t, got[1].Content)
	assert.True(t, revs[0].Timestamp.Equal(got[0].Timestamp))
}

func TestCacheEmptyHistoryIsValid(t *testing.T) {
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Write("Obscure Film", nil))
	assert.True(t, c.Has("Obscure Film"))

	got, err := c.Read("Obscure Film")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCacheMissingEntryIsError(t *testing.T) {
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)

	assert.False(t, c.Has("Never Fetched"))
	_, err = c.Read("Never Fetched")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCacheFileName(t *testing.T) {
	// md5("Inception") in hex, plus the fixed extension.
	assert.Equal(t, "25bfef169eafddf29120cd78d9d4a66d.revisions", CacheFileName("Inception"))
	assert.Equal(t, filepath.Ext(CacheFileName("anything")), ".revisions")
}
