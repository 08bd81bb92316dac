package storage_test

import (
	"testing"

	"github.com/alvmarrod/web-sieve/internal/storage"
	"github.com/stretchr/testify/assert"
)

func page(url, title string) storage.PageResult {
	return storage.PageResult{URL: url, Content: storage.Content{Title: title}}
}

func urls(results []storage.PageResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.URL
	}
	return out
}

func TestHostInDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host, domain string
		want         bool
	}{
		{"example.com", "example.com", true},
		{"blog.example.com", "example.com", true},
		{"Blog.Example.COM", "example.com", true},
		{"example.com:8080", "example.com", true},
		{"notexample.com", "example.com", false},
		{"example.com.evil.io", "example.com", false},
		{"other.org", "example.com", false},
		{"", "example.com", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, storage.HostInDomain(tt.host, tt.domain), "%s in %s", tt.host, tt.domain)
	}
}

func TestFilterAndExcludeDomain(t *testing.T) {
	t.Parallel()

	results := []storage.PageResult{
		page("https://a.com/1", ""),
		page("https://b.com/1", ""),
		page("https://www.a.com/2", ""),
		page("https://b.com/2", ""),
	}

	assert.Equal(t, []string{"https://a.com/1", "https://www.a.com/2"}, urls(storage.FilterDomain(results, "a.com")))
	assert.Equal(t, []string{"https://b.com/1", "https://b.com/2"}, urls(storage.ExcludeDomain(results, "a.com")))
	assert.Empty(t, storage.FilterDomain(results, "c.com"))
}

func TestDedupeByURL(t *testing.T) {
	t.Parallel()

	t.Run("later record wins at first position", func(t *testing.T) {
		t.Parallel()

		got := storage.DedupeByURL(
			[]storage.PageResult{page("u1", "old"), page("u2", "two")},
			[]storage.PageResult{page("u3", "three"), page("u1", "new")},
		)

		assert.Equal(t, []string{"u1", "u2", "u3"}, urls(got))
		assert.Equal(t, "new", got[0].Content.Title)
	})

	t.Run("empty input gives empty non-nil slice", func(t *testing.T) {
		t.Parallel()

		got := storage.DedupeByURL()

		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	existing := []storage.PageResult{page("https://a.com/1", "a1"), page("https://b.com/1", "b1")}
	site := []storage.PageResult{page("https://b.com/1", "b1-new"), page("https://b.com/2", "b2")}

	got := storage.Merge(storage.ExcludeDomain(existing, "b.com"), site)

	assert.Equal(t, []string{"https://a.com/1", "https://b.com/1", "https://b.com/2"}, urls(got))
	assert.Equal(t, "b1-new", got[1].Content.Title)
}
