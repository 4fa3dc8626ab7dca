package fprint

import (
	"image"

	"github.com/openbiometrics/libfprint-go/pkg/fprint/driver"
)

// Image is a raw captured fingerprint frame. Values are immutable once
// returned; accessors hand out copies.
type Image struct {
	width  int
	height int
	data   []byte
}

func newImage(di *driver.Image) *Image {
	img := &Image{width: di.Width, height: di.Height}
	img.data = append(img.data, di.Data...)
	return img
}

// Width returns the frame width in pixels.
func (i *Image) Width() int { return i.width }

// Height returns the frame height in pixels.
func (i *Image) Height() int { return i.height }

// Data returns a copy of the 8-bit grayscale pixel data, row-major.
func (i *Image) Data() []byte {
	return append([]byte(nil), i.data...)
}

// Gray converts the frame to a standard library grayscale image.
func (i *Image) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, i.width, i.height))
	copy(g.Pix, i.data)
	return g
}
