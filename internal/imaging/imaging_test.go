package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("https://cdn.example.com/a380.jpg", 10))
	assert.NoError(t, Validate("/uploads/a380.jpg", 10))
	assert.NoError(t, Validate(pngDataURL(t, 4, 4), 10))

	assert.ErrorIs(t, Validate("", 10), ErrInvalidImage)
	assert.ErrorIs(t, Validate("ftp://example.com/a.jpg", 10), ErrInvalidImage)
	assert.ErrorIs(t, Validate("data:image/png,rawbytes", 10), ErrInvalidImage)
	assert.ErrorIs(t, Validate("data:image/png;base64,!!!", 10), ErrInvalidImage)
}

func TestValidateRejectsOversizedDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(make([]byte, (1<<20)+1))
	assert.ErrorIs(t, Validate("data:image/png;base64,"+payload, 1), ErrTooLarge)
}

func TestThumbnailBoundsSize(t *testing.T) {
	thumb, err := Thumbnail(pngDataURL(t, 800, 200))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(thumb, "data:image/jpeg;base64,"))

	raw, err := DecodeDataURL(thumb)
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestThumbnailRejectsNonImage(t *testing.T) {
	_, err := Thumbnail("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")))
	assert.ErrorIs(t, err, ErrInvalidImage)
}
