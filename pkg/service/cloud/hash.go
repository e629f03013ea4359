package cloud

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ContentHash fingerprints an image by its decoded pixel data, so the
// same picture hashes identically regardless of container format or
// metadata. Bytes that do not decode as an image are hashed as-is.
func ContentHash(data []byte) string {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}

	h := sha256.New()
	bounds := img.Bounds()

	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(bounds.Dx()))
	binary.BigEndian.PutUint32(buf[4:8], uint32(bounds.Dy()))
	h.Write(buf[:])

	var px [8]byte
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			binary.BigEndian.PutUint16(px[0:2], uint16(r))
			binary.BigEndian.PutUint16(px[2:4], uint16(g))
			binary.BigEndian.PutUint16(px[4:6], uint16(b))
			binary.BigEndian.PutUint16(px[6:8], uint16(a))
			h.Write(px[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
