package render

import (
	"fmt"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	regularFont *opentype.Font
	faces       sync.Map // map[float64]font.Face
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Printf("font: %v", err)
		return
	}
	regularFont = f
}

func faceForSize(size float64) (font.Face, error) {
	if size <= 0 {
		size = 12
	}
	if regularFont == nil {
		return nil, fmt.Errorf("text font not initialised")
	}
	if face, ok := faces.Load(size); ok {
		return face.(font.Face), nil
	}
	face, err := opentype.NewFace(regularFont, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// MeasureText returns the box text occupies at size, and the offset from
// the top to the baseline.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := faceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	baseline = metrics.Ascent.Ceil()
	height = baseline + metrics.Descent.Ceil()
	return
}
