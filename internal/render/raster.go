package render

import (
	"image"
	"image/color"
	"log"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/example/swingmark/internal/geom"
)

// Raster draws onto an RGBA image whose pixels are logical pixels.
type Raster struct {
	Image *image.RGBA
}

// NewRaster allocates a transparent w×h surface.
func NewRaster(w, h int) *Raster {
	return &Raster{Image: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (r *Raster) Clear() {
	clear(r.Image.Pix)
}

func (r *Raster) Line(a, b geom.Point, c color.RGBA, width float64) {
	drawLine(r.Image, round(a.X), round(a.Y), round(b.X), round(b.Y), c, thickness(width))
}

func (r *Raster) Polyline(pts []geom.Point, c color.RGBA, width float64) {
	if len(pts) == 1 {
		setThickPixel(r.Image, round(pts[0].X), round(pts[0].Y), thickness(width), c)
		return
	}
	for i := 1; i < len(pts); i++ {
		r.Line(pts[i-1], pts[i], c, width)
	}
}

func (r *Raster) Circle(center geom.Point, radius float64, c color.RGBA, width float64) {
	drawCircle(r.Image, round(center.X), round(center.Y), round(radius), c, thickness(width))
}

func (r *Raster) Arc(center geom.Point, radius, start, sweep float64, c color.RGBA, width float64) {
	r.Polyline(geom.ArcPoints(center, radius, start, sweep), c, width)
}

func (r *Raster) Text(anchor geom.Point, s string, size float64, c color.RGBA) {
	face, err := faceForSize(size)
	if err != nil {
		log.Printf("text: %v", err)
		return
	}
	baseline := round(anchor.Y) + face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  r.Image,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(round(anchor.X), baseline),
	}
	d.DrawString(s)
}

func round(v float64) int { return int(math.Round(v)) }

func thickness(w float64) int {
	t := round(w)
	if t < 1 {
		return 1
	}
	return t
}

// blend composites premultiplied c over the pixel at x, y.
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	if c.A == 255 {
		img.SetRGBA(x, y, c)
		return
	}
	d := img.RGBAAt(x, y)
	k := 255 - uint32(c.A)
	img.SetRGBA(x, y, color.RGBA{
		R: uint8(uint32(c.R) + uint32(d.R)*k/255),
		G: uint8(uint32(c.G) + uint32(d.G)*k/255),
		B: uint8(uint32(c.B) + uint32(d.B)*k/255),
		A: uint8(uint32(c.A) + uint32(d.A)*k/255),
	})
}

func setThickPixel(img *image.RGBA, x, y, thick int, c color.RGBA) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			blend(img, x+dx, y+dy, c)
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA, thick int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawCircleThin(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			blend(img, cx+p[0], cy+p[1], c)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA, thick int) {
	start := -thick / 2
	for i := 0; i < thick; i++ {
		if rr := r + start + i; rr >= 0 {
			drawCircleThin(img, cx, cy, rr, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
