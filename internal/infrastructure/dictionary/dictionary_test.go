package dictionary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	require.Greater(t, d.Len(), 50)

	for i := 0; i < 100; i++ {
		word, err := d.RandomWord()
		require.NoError(t, err)
		n := utf8.RuneCountInString(word)
		assert.GreaterOrEqual(t, n, MinLength)
		assert.LessOrEqual(t, n, MaxLength)
		assert.Equal(t, strings.ToUpper(word), word)
	}
}

func TestParse(t *testing.T) {
	input := `
# comment
garden
Garden
cat
extraordinary
half-word
  window
`
	d, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"GARDEN", "WINDOW"}, d.words)

	d.intN = func(int) int { return 1 }
	word, err := d.RandomWord()
	require.NoError(t, err)
	assert.Equal(t, "WINDOW", word)
}

func TestRandomWord_Empty(t *testing.T) {
	d, err := Parse(strings.NewReader("# nothing\n"))
	require.NoError(t, err)
	_, err = d.RandomWord()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("meadow\nharbour\n"), 0o600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
