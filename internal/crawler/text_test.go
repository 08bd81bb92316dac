package crawler_test

import (
	"strings"
	"testing"

	"github.com/alvmarrod/web-sieve/internal/crawler"
	"github.com/stretchr/testify/assert"
)

func TestWordStats(t *testing.T) {
	t.Parallel()

	t.Run("counts total and distinct words", func(t *testing.T) {
		t.Parallel()

		got := crawler.WordStats("the cat sat on the mat")

		assert.Equal(t, 6, got.WordCount)
		assert.Equal(t, 5, got.UniqueWords)
		assert.Equal(t, 22, got.TextLength)
	})

	t.Run("is case-insensitive", func(t *testing.T) {
		t.Parallel()

		got := crawler.WordStats("Go go GO")

		assert.Equal(t, 3, got.WordCount)
		assert.Equal(t, 1, got.UniqueWords)
	})

	t.Run("measures length in characters", func(t *testing.T) {
		t.Parallel()

		got := crawler.WordStats("café naïve")

		assert.Equal(t, 2, got.WordCount)
		assert.Equal(t, 10, got.TextLength)
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()

		got := crawler.WordStats("")

		assert.Zero(t, got.WordCount)
		assert.Zero(t, got.UniqueWords)
		assert.Zero(t, got.TextLength)
	})
}

func TestExtractEntities(t *testing.T) {
	t.Parallel()

	t.Run("years names and numbers", func(t *testing.T) {
		t.Parallel()

		got := crawler.ExtractEntities("In 1999 and 2023, Alice met Bob near Paris with 42 and 3.14 items.")

		assert.Equal(t, []int{1999, 2023}, got.Years)
		assert.Equal(t, []string{"Alice", "Bob", "Paris"}, got.CapitalizedTerms)
		assert.Contains(t, got.Numbers, "42")
		assert.Contains(t, got.Numbers, "3.14")
		assert.IsNonDecreasing(t, got.Numbers)
	})

	t.Run("years are deduplicated and bounded to 1800-2099", func(t *testing.T) {
		t.Parallel()

		got := crawler.ExtractEntities("1750 1850 1850 2099 2100 19999")

		assert.Equal(t, []int{1850, 2099}, got.Years)
	})

	t.Run("caps terms and numbers at twenty", func(t *testing.T) {
		t.Parallel()

		var b strings.Builder
		for i := range 30 {
			b.WriteString("Term")
			b.WriteByte(byte('a' + i%26))
			b.WriteByte(byte('a' + i/26))
			b.WriteString(" ")
			b.WriteString(strings.Repeat("7", i+1))
			b.WriteString(" ")
		}

		got := crawler.ExtractEntities(b.String())

		assert.Len(t, got.CapitalizedTerms, 20)
		assert.Len(t, got.Numbers, 20)
		assert.IsNonDecreasing(t, got.CapitalizedTerms)
	})

	t.Run("empty text gives empty lists", func(t *testing.T) {
		t.Parallel()

		got := crawler.ExtractEntities("")

		assert.NotNil(t, got.Years)
		assert.Empty(t, got.Years)
		assert.Empty(t, got.CapitalizedTerms)
		assert.Empty(t, got.Numbers)
	})
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"hello", "wörld", "x_1"}, crawler.Tokenize("Hello, Wörld! x_1"))
	assert.Empty(t, crawler.Tokenize("  ... !!"))
}
