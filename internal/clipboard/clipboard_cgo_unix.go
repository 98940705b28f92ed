//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"golang.design/x/clipboard"
)

// designBackend uses golang.design/x/clipboard. It has no custom targets,
// so annotations travel as text.
type designBackend struct{}

func newBackend() (backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return designBackend{}, nil
}

func fmtFor(f format) clipboard.Format {
	if f == fmtImage {
		return clipboard.FmtImage
	}
	return clipboard.FmtText
}

func (designBackend) write(f format, data []byte) error {
	clipboard.Write(fmtFor(f), data)
	return nil
}

func (designBackend) read(f format) ([]byte, error) {
	return clipboard.Read(fmtFor(f)), nil
}
