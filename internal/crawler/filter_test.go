package crawler_test

import (
	"testing"

	"github.com/alvmarrod/web-sieve/internal/crawler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("keeps subdomains strips fragments drops other sites", func(t *testing.T) {
		t.Parallel()

		body := `<html><body>
<a href="https://sub.example.com/x">sub</a>
<a href="https://example.com/y#frag">frag</a>
<a href="https://other.com/z">other</a>
</body></html>`

		got := crawler.ExtractLinks("https://example.com/", body, "example.com")

		assert.ElementsMatch(t, []string{"https://sub.example.com/x", "https://example.com/y"}, got)
	})

	t.Run("resolves relative links and deduplicates", func(t *testing.T) {
		t.Parallel()

		body := `<a href="/about">a</a><a href="about#team">b</a><a href="../docs/">c</a><a href="/about">d</a>`

		got := crawler.ExtractLinks("https://example.com/blog/post", body, "example.com")

		assert.ElementsMatch(t, []string{
			"https://example.com/about",
			"https://example.com/blog/about",
			"https://example.com/docs/",
		}, got)
	})

	t.Run("skips non-page schemes", func(t *testing.T) {
		t.Parallel()

		body := `<a href="mailto:me@example.com">m</a>
<a href="javascript:void(0)">j</a>
<a href="tel:123">t</a>
<a href="ftp://example.com/file">f</a>
<a href="">empty</a>
<a>no href</a>`

		got := crawler.ExtractLinks("https://example.com/", body, "example.com")

		assert.Empty(t, got)
	})

	t.Run("lookalike domains are not subdomains", func(t *testing.T) {
		t.Parallel()

		body := `<a href="https://notexample.com/">x</a><a href="https://example.com.evil.io/">y</a>`

		got := crawler.ExtractLinks("https://example.com/", body, "example.com")

		assert.Empty(t, got)
	})
}

func TestExtractDomain(t *testing.T) {
	t.Parallel()

	d, err := crawler.ExtractDomain("https://WWW.Example.com:8443/path")
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", d)

	_, err = crawler.ExtractDomain("example.com/path")
	assert.Error(t, err)

	_, err = crawler.ExtractDomain("mailto:me@example.com")
	assert.Error(t, err)
}
