package dictionary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordgames-server/internal/dictionary"
)

func TestLoad_FiltersShortAndNonAlpha(t *testing.T) {
	input := "Cat\ncats\n  Tree \nat\nrock-n-roll\n\nstone\n"

	d, err := dictionary.Load(strings.NewReader(input), dictionary.DefaultMinLength)
	require.NoError(t, err)

	assert.Equal(t, 4, d.Len())
	assert.True(t, d.Contains("cat"), "three letter words are kept for 4x4 boards")
	assert.True(t, d.Contains("cats"))
	assert.True(t, d.Contains("tree"))
	assert.True(t, d.Contains("stone"))
	assert.False(t, d.Contains("at"))
	assert.False(t, d.Contains("rock-n-roll"))
}

func TestLoad_CustomThreshold(t *testing.T) {
	d, err := dictionary.Load(strings.NewReader("cat\ncats\n"), 4)
	require.NoError(t, err)

	assert.True(t, d.Contains("cats"))
	assert.False(t, d.Contains("cat"))
}

func TestNew_Normalizes(t *testing.T) {
	d := dictionary.New(" CAT", "", "Dog")

	assert.Equal(t, 2, d.Len())
	assert.True(t, d.Contains("cat"))
	assert.True(t, d.Contains("dog"))
}

func TestLoadFile_EmbeddedDefault(t *testing.T) {
	d, err := dictionary.LoadFile("", dictionary.DefaultMinLength)
	require.NoError(t, err)

	assert.Greater(t, d.Len(), 100)
	d.Each(func(w string) bool {
		assert.GreaterOrEqual(t, len(w), dictionary.DefaultMinLength)
		return true
	})
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := dictionary.LoadFile("/does/not/exist.txt", dictionary.DefaultMinLength)
	assert.Error(t, err)
}
