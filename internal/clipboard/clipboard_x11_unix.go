//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// x11Backend owns the CLIPBOARD selection through a hidden window and
// answers conversion requests from its event loop. Reads open a second
// connection so they never race the owner loop.
type x11Backend struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atomSet

	mu      sync.RWMutex
	offered map[xproto.Atom][]byte
}

type atomSet struct {
	clipboard   xproto.Atom
	targets     xproto.Atom
	utf8        xproto.Atom
	textPlain   xproto.Atom
	png         xproto.Atom
	annotations xproto.Atom
	property    xproto.Atom
}

func newBackend() (backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	const eventMask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{eventMask}).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	b := &x11Backend{conn: conn, window: window, atoms: atoms}
	go b.eventLoop()
	return b, nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	names := []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "text/plain;charset=utf-8", "image/png", MIMEAnnotations, "SWINGMARK_CLIPBOARD"}
	got := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atomSet{}, fmt.Errorf("intern %s: %w", name, err)
		}
		got[i] = reply.Atom
	}
	return atomSet{
		clipboard:   got[0],
		targets:     got[1],
		utf8:        got[2],
		textPlain:   got[3],
		png:         got[4],
		annotations: got[5],
		property:    got[6],
	}, nil
}

// targetsFor lists the atoms a format is offered or requested under, most
// specific first.
func (b *x11Backend) targetsFor(f format) []xproto.Atom {
	text := []xproto.Atom{b.atoms.utf8, xproto.AtomString, b.atoms.textPlain}
	switch f {
	case fmtImage:
		return []xproto.Atom{b.atoms.png}
	case fmtAnnotations:
		return append([]xproto.Atom{b.atoms.annotations}, text...)
	}
	return text
}

func (b *x11Backend) write(f format, data []byte) error {
	offered := make(map[xproto.Atom][]byte)
	payload := append([]byte(nil), data...)
	for _, atom := range b.targetsFor(f) {
		offered[atom] = payload
	}
	b.mu.Lock()
	b.offered = offered
	b.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(b.conn, b.window, b.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (b *x11Backend) read(f format) ([]byte, error) {
	var lastErr error
	for _, target := range b.targetsFor(f) {
		data, err := b.readSelection(target)
		if err != nil {
			lastErr = err
			continue
		}
		// Some applications append a null byte to STRING responses.
		if n := len(data); n > 0 && data[n-1] == 0 {
			data = data[:n-1]
		}
		return data, nil
	}
	return nil, lastErr
}

func (b *x11Backend) eventLoop() {
	for {
		ev, err := b.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			b.answer(e)
		case xproto.SelectionClearEvent:
			b.mu.Lock()
			b.offered = nil
			b.mu.Unlock()
		}
	}
}

func (b *x11Backend) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	b.mu.RLock()
	offered := b.offered
	b.mu.RUnlock()

	if e.Target == b.atoms.targets {
		targets := []xproto.Atom{b.atoms.targets}
		for atom := range offered {
			targets = append(targets, atom)
		}
		buf := make([]byte, len(targets)*4)
		for i, atom := range targets {
			xgb.Put32(buf[i*4:], uint32(atom))
		}
		xproto.ChangeProperty(b.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	} else if payload, ok := offered[e.Target]; ok && len(payload) > 0 {
		typ := e.Target
		if typ == xproto.AtomString || typ == b.atoms.textPlain {
			typ = b.atoms.utf8
		}
		xproto.ChangeProperty(b.conn, xproto.PropModeReplace, e.Requestor, property, typ, 8, uint32(len(payload)), payload)
	} else {
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(b.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

func (b *x11Backend) readSelection(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0, xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.DeletePropertyChecked(conn, window, b.atoms.property).Check(); err != nil {
		return nil, err
	}
	if err := xproto.ConvertSelectionChecked(conn, window, b.atoms.clipboard, target, b.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, fmt.Errorf("clipboard target unavailable")
		}
		if e.Property != b.atoms.property {
			continue
		}
		reply, perr := xproto.GetProperty(conn, false, window, b.atoms.property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, perr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}
