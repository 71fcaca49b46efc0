package capture

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// faceEdge is the square input size the emotion classifier expects.
const faceEdge = 48

// Grayscale renders a frame into 8-bit gray.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// FaceCrop cuts the region out of the frame and scales it down to the
// 48x48 grayscale patch the classifier takes.
func FaceCrop(frame image.Image, r image.Rectangle) *image.Gray {
	r = r.Intersect(frame.Bounds())
	crop := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(crop, crop.Bounds(), frame, r.Min, draw.Src)
	out := image.NewGray(image.Rect(0, 0, faceEdge, faceEdge))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), crop, crop.Bounds(), xdraw.Src, nil)
	return out
}

// largestRegion picks the biggest rectangle by area.
func largestRegion(rs []image.Rectangle) (image.Rectangle, bool) {
	if len(rs) == 0 {
		return image.Rectangle{}, false
	}
	best := rs[0]
	for _, r := range rs[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}
	return best, true
}
