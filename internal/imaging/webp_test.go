package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	wide := image.NewRGBA(image.Rect(0, 0, 1600, 400))
	got := Fit(wide, 800)
	assert.Equal(t, 800, got.Bounds().Dx())
	assert.Equal(t, 200, got.Bounds().Dy())

	tall := image.NewRGBA(image.Rect(0, 0, 300, 900))
	got = Fit(tall, 600)
	assert.Equal(t, 200, got.Bounds().Dx())
	assert.Equal(t, 600, got.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 50, 50))
	assert.Same(t, small, Fit(small, 800))
}

func TestToWebP(t *testing.T) {
	out, err := ToWebP(pngOf(t, 120, 60), 64, 80)
	require.NoError(t, err)
	require.Greater(t, len(out), 12)
	assert.Equal(t, "RIFF", string(out[:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestToWebPRejectsGarbage(t *testing.T) {
	_, err := ToWebP([]byte("definitely not an image"), 800, 80)
	assert.ErrorIs(t, err, ErrUnsupported)
}
