package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/swingmark/internal/geom"
)

// PDF is a vector surface; every Clear starts a new page sized to the
// logical frame, one point per logical pixel.
type PDF struct {
	doc        *gofpdf.Fpdf
	size       gofpdf.SizeType
	tr         func(string) string
	background string
	frames     int
}

// NewPDF creates an empty document for frames of w×h logical pixels.
func NewPDF(w, h float64) *PDF {
	size := gofpdf.SizeType{Wd: w, Ht: h}
	doc := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetLineCapStyle("round")
	doc.SetLineJoinStyle("round")
	return &PDF{doc: doc, size: size, tr: doc.UnicodeTranslatorFromDescriptor("")}
}

// SetBackground embeds img and paints it under every following page.
func (p *PDF) SetBackground(img image.Image) error {
	if img == nil {
		p.background = ""
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	p.frames++
	name := fmt.Sprintf("frame%d", p.frames)
	p.doc.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if err := p.doc.Error(); err != nil {
		return err
	}
	p.background = name
	return nil
}

func (p *PDF) Clear() {
	orientation := "P"
	if p.size.Wd > p.size.Ht {
		orientation = "L"
	}
	p.doc.AddPageFormat(orientation, p.size)
	if p.background != "" {
		p.doc.ImageOptions(p.background, 0, 0, p.size.Wd, p.size.Ht, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}
}

func (p *PDF) stroke(c color.RGBA, width float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	p.doc.SetDrawColor(int(n.R), int(n.G), int(n.B))
	p.doc.SetAlpha(float64(n.A)/255, "Normal")
	p.doc.SetLineWidth(width)
}

func (p *PDF) Line(a, b geom.Point, c color.RGBA, width float64) {
	p.stroke(c, width)
	p.doc.Line(a.X, a.Y, b.X, b.Y)
}

func (p *PDF) Polyline(pts []geom.Point, c color.RGBA, width float64) {
	p.stroke(c, width)
	for i := 1; i < len(pts); i++ {
		p.doc.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
}

func (p *PDF) Circle(center geom.Point, r float64, c color.RGBA, width float64) {
	p.stroke(c, width)
	p.doc.Circle(center.X, center.Y, r, "D")
}

func (p *PDF) Arc(center geom.Point, r, start, sweep float64, c color.RGBA, width float64) {
	p.Polyline(geom.ArcPoints(center, r, start, sweep), c, width)
}

func (p *PDF) Text(anchor geom.Point, s string, size float64, c color.RGBA) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	p.doc.SetFont("Helvetica", "", size)
	p.doc.SetTextColor(int(n.R), int(n.G), int(n.B))
	p.doc.SetAlpha(float64(n.A)/255, "Normal")
	// Text takes the baseline; the ascent of Helvetica is about 0.8em.
	p.doc.Text(anchor.X, anchor.Y+size*0.8, p.tr(s))
}

// Pages reports how many pages have been started.
func (p *PDF) Pages() int { return p.doc.PageCount() }

// Write finishes the document into w.
func (p *PDF) Write(w io.Writer) error {
	if p.doc.PageCount() == 0 {
		p.Clear()
	}
	return p.doc.Output(w)
}
