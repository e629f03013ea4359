package cloud_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memvault/memvault/pkg/service/cloud"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()
	return buf.Bytes()
}

func testImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestContentHashStableAcrossContainers(t *testing.T) {
	img := testImage(8, 8, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	first := encodePNG(t, img)

	// Re-encode the decoded image into a new PNG container; the pixel
	// hash must not change.
	decoded, _, err := image.Decode(bytes.NewReader(first))
	gt.NoError(t, err).Required()
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, decoded)).Required()

	gt.S(t, cloud.ContentHash(first)).Equal(cloud.ContentHash(buf.Bytes()))
}

func TestContentHashDistinguishesPixels(t *testing.T) {
	red := encodePNG(t, testImage(8, 8, color.RGBA{R: 255, A: 255}))
	blue := encodePNG(t, testImage(8, 8, color.RGBA{B: 255, A: 255}))
	gt.B(t, cloud.ContentHash(red) == cloud.ContentHash(blue)).False()
}

func TestContentHashNonImageFallback(t *testing.T) {
	a := cloud.ContentHash([]byte("not an image"))
	b := cloud.ContentHash([]byte("not an image"))
	c := cloud.ContentHash([]byte("different bytes"))
	gt.S(t, a).Equal(b)
	gt.B(t, a == c).False()
}

func TestCompressDownscalesWideImages(t *testing.T) {
	wide := encodePNG(t, testImage(2048, 512, color.RGBA{G: 128, A: 255}))

	out, err := cloud.Compress(wide, 0.8)
	gt.NoError(t, err).Required()

	img, err := jpeg.Decode(bytes.NewReader(out))
	gt.NoError(t, err).Required()
	gt.Number(t, img.Bounds().Dx()).Equal(1024)
	gt.Number(t, img.Bounds().Dy()).Equal(256)
}

func TestCompressKeepsSmallImages(t *testing.T) {
	small := encodePNG(t, testImage(64, 64, color.RGBA{B: 128, A: 255}))

	out, err := cloud.Compress(small, 0.8)
	gt.NoError(t, err).Required()

	img, err := jpeg.Decode(bytes.NewReader(out))
	gt.NoError(t, err).Required()
	gt.Number(t, img.Bounds().Dx()).Equal(64)
}

func TestCompressPassesThroughNonImages(t *testing.T) {
	data := []byte("plain bytes")
	out, err := cloud.Compress(data, 0.8)
	gt.NoError(t, err).Required()
	gt.Value(t, out).Equal(data)
}
