package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow cast by the annotation layer.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions keeps strokes readable over bright footage without
// smearing thin lines.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  2,
		Offset:  image.Pt(2, 2),
		Opacity: 0.6,
	}
}

// ApplyShadow returns a copy of layer with a blurred shadow of its opaque
// pixels beneath it. The result has the same bounds as layer; shadow that
// falls outside is clipped.
func ApplyShadow(layer *image.RGBA, opts ShadowOptions) *image.RGBA {
	if layer == nil {
		return nil
	}
	bounds := layer.Bounds()
	out := image.NewRGBA(bounds)
	if bounds.Empty() {
		return out
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)
	if opacity > 0 {
		mask := image.NewGray(bounds.Sub(bounds.Min))
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if a := layer.RGBAAt(x, y).A; a != 0 {
					mask.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: a})
				}
			}
		}
		blurred := blurGray(mask, radius)
		shade := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
		draw.DrawMask(out, blurred.Bounds().Add(bounds.Min).Add(opts.Offset), shade, image.Point{}, blurred, image.Point{}, draw.Over)
	}
	draw.Draw(out, bounds, layer, bounds.Min, draw.Over)
	return out
}

// blurGray is a separable box blur using running sums per row and column.
func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[y*src.Stride+x])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return dst
}
