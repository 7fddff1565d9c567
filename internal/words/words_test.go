package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	l, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, l.Len(), 10)
	for i := 0; i < l.Len(); i++ {
		assert.Len(t, l.At(i), 5)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.txt")
	require.NoError(t, os.WriteFile(path, []byte("# cafe\nmocha\nlatte\nespresso\nmocha\nl4tte\n\n"), 0o644))

	l, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "MOCHA", l.At(0))
	assert.Equal(t, "LATTE", l.At(1))

}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = New([]string{"tea", "espresso"})
	assert.ErrorIs(t, err, ErrEmpty)
}
