package crawler_test

import (
	"testing"

	"github.com/alvmarrod/web-sieve/internal/crawler"
	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/stretchr/testify/assert"
)

func entry(url string, depth int) storage.FrontierEntry {
	return storage.FrontierEntry{URL: url, Depth: depth}
}

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("FIFO batches", func(t *testing.T) {
		t.Parallel()

		q := crawler.NewQueue()
		for _, u := range []string{"a", "b", "c"} {
			assert.True(t, q.Push(entry(u, 0)))
		}

		first := q.PopBatch(2)
		second := q.PopBatch(2)

		assert.Equal(t, []storage.FrontierEntry{entry("a", 0), entry("b", 0)}, first)
		assert.Equal(t, []storage.FrontierEntry{entry("c", 0)}, second)
		assert.True(t, q.IsEmpty())
	})

	t.Run("never admits a URL twice in a run", func(t *testing.T) {
		t.Parallel()

		q := crawler.NewQueue()
		assert.True(t, q.Push(entry("a", 0)))
		assert.False(t, q.Push(entry("a", 1)))

		q.PopBatch(1)
		assert.True(t, q.Visited("a"))
		assert.False(t, q.Push(entry("a", 2)))

		q.Resolve("a")
		assert.False(t, q.Push(entry("a", 2)))
		assert.Equal(t, 0, q.Size())
	})

	t.Run("tracks seen and visited", func(t *testing.T) {
		t.Parallel()

		q := crawler.NewQueue()
		q.Push(entry("a", 0))

		assert.True(t, q.Seen("a"))
		assert.False(t, q.Visited("a"))
		assert.False(t, q.Seen("b"))
		assert.Equal(t, []storage.FrontierEntry{entry("a", 0)}, q.GetAllEntries())
	})

	t.Run("empty queue gives empty batch", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, crawler.NewQueue().PopBatch(5))
	})
}

func TestSubdomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("caps distinct hosts", func(t *testing.T) {
		t.Parallel()

		sl := crawler.NewSubdomainLimiter(2)
		assert.True(t, sl.Add("example.com"))
		assert.True(t, sl.Add("blog.example.com"))

		assert.True(t, sl.CanAdd("Example.com"))
		assert.False(t, sl.CanAdd("shop.example.com"))
		assert.False(t, sl.Add("shop.example.com"))
		assert.Equal(t, 2, sl.Count())
	})

	t.Run("zero means unlimited", func(t *testing.T) {
		t.Parallel()

		sl := crawler.NewSubdomainLimiter(0)
		for _, h := range []string{"a", "b", "c", "d"} {
			assert.True(t, sl.CanAdd(h))
			assert.True(t, sl.Add(h))
		}
		assert.Equal(t, 4, sl.Count())
	})
}
