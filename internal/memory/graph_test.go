package memory_test

import (
	"path/filepath"
	"testing"

	"github.com/alvmarrod/web-sieve/internal/memory"
	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkGraph_Incoming(t *testing.T) {
	t.Parallel()

	t.Run("counts distinct referrers", func(t *testing.T) {
		t.Parallel()

		g := memory.NewLinkGraph()
		g.AddEdge("a", "c")
		g.AddEdge("a", "c")
		g.AddEdge("b", "c")

		assert.Equal(t, 2, g.Incoming("c"))
		assert.Equal(t, 0, g.Incoming("a"))
	})

	t.Run("refetch replaces outgoing links", func(t *testing.T) {
		t.Parallel()

		g := memory.NewLinkGraph()
		g.ReplaceOutgoing("a", []string{"b", "c"})
		g.ReplaceOutgoing("a", []string{"c", "d"})

		assert.Equal(t, 0, g.Incoming("b"))
		assert.Equal(t, 1, g.Incoming("c"))
		assert.Equal(t, 1, g.Incoming("d"))

		nodes, edges := g.GetStats()
		assert.Equal(t, 3, nodes)
		assert.Equal(t, 2, edges)
	})
}

func TestLinkGraph_ApplyIncoming(t *testing.T) {
	t.Parallel()

	g := memory.NewLinkGraph()
	g.ReplaceOutgoing("https://a.com/", []string{"https://a.com/x", "https://a.com/y"})
	g.ReplaceOutgoing("https://a.com/x", []string{"https://a.com/y"})

	results := []storage.PageResult{
		{URL: "https://a.com/", Links: storage.LinkCounts{Incoming: 9}},
		{URL: "https://a.com/x"},
		{URL: "https://a.com/y"},
	}
	g.ApplyIncoming(results)

	assert.Equal(t, 0, results[0].Links.Incoming)
	assert.Equal(t, 1, results[1].Links.Incoming)
	assert.Equal(t, 2, results[2].Links.Incoming)
}

func TestLinkGraph_Flush(t *testing.T) {
	t.Parallel()

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer store.Close()

	g := memory.NewLinkGraph()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	require.NoError(t, g.Flush(store))

	w, err := store.LinkWeight("a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	w, err = store.LinkWeight("b", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, w)
}
