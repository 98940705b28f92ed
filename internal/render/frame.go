package render

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/swingmark/internal/annotation"
)

// Frame renders the annotations over background, scaled to w×h, and returns
// the flattened image. A nil background gives a transparent frame.
func Frame(background image.Image, w, h int, committed []annotation.Annotation, preview *annotation.Annotation, opts Options) *image.RGBA {
	layer := NewRaster(w, h)
	Redraw(layer, committed, preview, opts)
	overlay := layer.Image
	if opts.Shadow != nil {
		overlay = ApplyShadow(overlay, *opts.Shadow)
	}
	if background == nil {
		return overlay
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	ScaleInto(out, out.Bounds(), background)
	draw.Draw(out, out.Bounds(), overlay, image.Point{}, draw.Over)
	return out
}

// ScaleInto draws src stretched over rect of dst.
func ScaleInto(dst draw.Image, rect image.Rectangle, src image.Image) {
	if src.Bounds().Size() == rect.Size() {
		draw.Draw(dst, rect, src, src.Bounds().Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
}
