package cache_test

import (
	"testing"

	"gotest.tools/assert"

	"github.com/snapdb/snapdb/internal/cache"
	"github.com/snapdb/snapdb/internal/query"
)

func TestGetMissThenHit(t *testing.T) {
	c := cache.New(10)
	q := query.New("users").Where("age", query.OpGte, 18)

	_, ok := c.Get("users", q)
	assert.Assert(t, !ok)

	want := []query.Record{{"id": 1, "age": 30}}
	c.Set("users", q, want)

	got, ok := c.Get("users", q)
	assert.Assert(t, ok)
	assert.DeepEqual(t, got, want)

	// the same query built again fingerprints identically
	again := query.New("users").Where("age", query.OpGte, 18)
	_, ok = c.Get("users", again)
	assert.Assert(t, ok)
}

func TestDistinctQueriesDistinctEntries(t *testing.T) {
	c := cache.New(10)
	q1 := query.New("users").Where("age", query.OpGte, 18)
	q2 := query.New("users").Where("age", query.OpGte, 21)

	c.Set("users", q1, []query.Record{{"id": 1}})
	_, ok := c.Get("users", q2)
	assert.Assert(t, !ok)
}

func TestEvictsLeastRecentlyAccessed(t *testing.T) {
	c := cache.New(2)
	q1 := query.New("users").Limit(1)
	q2 := query.New("users").Limit(2)
	q3 := query.New("users").Limit(3)

	c.Set("users", q1, []query.Record{})
	c.Set("users", q2, []query.Record{})

	// touch q1 so q2 becomes the eviction candidate
	_, ok := c.Get("users", q1)
	assert.Assert(t, ok)

	c.Set("users", q3, []query.Record{})
	assert.Equal(t, c.Len(), 2)

	_, ok = c.Get("users", q2)
	assert.Assert(t, !ok)
	_, ok = c.Get("users", q1)
	assert.Assert(t, ok)
}

func TestInvalidateDropsWholeTableOnly(t *testing.T) {
	c := cache.New(10)
	users := query.New("users")
	posts := query.New("posts")

	c.Set("users", users, []query.Record{{"id": 1}})
	c.Set("users", users.Where("age", query.OpGt, 5), []query.Record{})
	c.Set("posts", posts, []query.Record{{"id": 1}})

	c.Invalidate("users")

	_, ok := c.Get("users", users)
	assert.Assert(t, !ok)
	_, ok = c.Get("posts", posts)
	assert.Assert(t, ok)
	assert.Equal(t, c.Len(), 1)
}

func TestReset(t *testing.T) {
	c := cache.New(10)
	c.Set("users", query.New("users"), []query.Record{})
	c.Reset()
	assert.Equal(t, c.Len(), 0)
}
