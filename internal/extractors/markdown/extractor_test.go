package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestFormats(t *testing.T) {
	e := New()
	assert.Equal(t, []domain.Format{domain.FormatMD}, e.Formats())
}

func TestExtract(t *testing.T) {
	e := New()

	t.Run("headings stripped", func(t *testing.T) {
		text, err := e.Extract(context.Background(), []byte("# Title\n\nBody text here."))
		require.NoError(t, err)
		assert.Equal(t, "Title\n\nBody text here.", text)
	})

	t.Run("links keep text", func(t *testing.T) {
		text, err := e.Extract(context.Background(), []byte("See [the docs](https://example.com) for details."))
		require.NoError(t, err)
		assert.Equal(t, "See the docs for details.", text)
	})

	t.Run("code blocks removed", func(t *testing.T) {
		text, err := e.Extract(context.Background(), []byte("Before\n```go\nfunc main() {}\n```\nAfter"))
		require.NoError(t, err)
		assert.NotContains(t, text, "func main")
		assert.Contains(t, text, "Before")
		assert.Contains(t, text, "After")
	})

	t.Run("emphasis stripped", func(t *testing.T) {
		text, err := e.Extract(context.Background(), []byte("This is **bold** and *italic*."))
		require.NoError(t, err)
		assert.Equal(t, "This is bold and italic.", text)
	})

	t.Run("list markers removed", func(t *testing.T) {
		text, err := e.Extract(context.Background(), []byte("- first\n- second\n1. third"))
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond\nthird", text)
	})
}
