package cloud

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/image/draw"
)

// maxUploadWidth bounds the longest edge of uploaded images. Matches
// typical image host limits while keeping memes readable.
const maxUploadWidth = 1024

// Compress re-encodes an image as JPEG at the configured quality,
// downscaling to maxUploadWidth when wider. Undecodable bytes are
// returned unchanged so uploads of exotic formats still work.
func Compress(data []byte, quality float64) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxUploadWidth {
		height := bounds.Dy() * maxUploadWidth / bounds.Dx()
		scaled := image.NewRGBA(image.Rect(0, 0, maxUploadWidth, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	q := int(quality * 100)
	if q <= 0 || q > 100 {
		q = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, goerr.Wrap(err, "failed to encode compressed image")
	}
	return buf.Bytes(), nil
}
