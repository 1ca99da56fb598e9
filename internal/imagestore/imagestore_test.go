package imagestore

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{G: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestSaveEncodesJPEGWithSlugName(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	filename, err := store.Save("Fresh Milk 1L", pngBytes(t, 10, 10))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filename, "fresh-milk-1l-"))
	assert.True(t, strings.HasSuffix(filename, ".jpg"))
	assert.True(t, store.Exists(filename))

	img, err := imaging.Open(store.Path(filename))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
}

func TestSaveBoundsLargeImages(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	filename, err := store.Save("banner", pngBytes(t, 1600, 400))
	require.NoError(t, err)

	img, err := imaging.Open(store.Path(filename))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), maxDimension)
	assert.LessOrEqual(t, img.Bounds().Dy(), maxDimension)
}

func TestSaveRejectsNonImageData(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("broken", strings.NewReader("not an image"))
	assert.Error(t, err)
}

func TestReplaceRemovesPreviousFile(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	previous, err := store.Save("milk", pngBytes(t, 8, 8))
	require.NoError(t, err)

	replacement, err := store.Replace(&previous, "milk", pngBytes(t, 8, 8))
	require.NoError(t, err)

	assert.NotEqual(t, previous, replacement)
	assert.True(t, store.Exists(replacement))
	assert.False(t, store.Exists(previous))
}

func TestReplaceWithoutPrevious(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	filename, err := store.Replace(nil, "milk", pngBytes(t, 8, 8))
	require.NoError(t, err)
	assert.True(t, store.Exists(filename))
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove("does-not-exist.jpg"))
}

func TestSlugFallback(t *testing.T) {
	assert.Equal(t, "product", slug("???"))
	assert.Equal(t, "susu-uht", slug("  Susu UHT "))
}
