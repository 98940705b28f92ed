package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/coords"
	"github.com/example/swingmark/internal/editor"
	"github.com/example/swingmark/internal/geom"
	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/playback"
	"github.com/example/swingmark/internal/tool"
)

var errNoPrompt = errors.New("no text prompt is pending")

func errInvalid(msgType string) error { return fmt.Errorf("invalid %s data", msgType) }

func errUnknown(msgType string) error { return fmt.Errorf("unknown message type: %s", msgType) }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 64,
	WriteBufferSize: 1024 * 64,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket message types from client.
const (
	wsMsgPointerDown = "pointer_down"
	wsMsgPointerMove = "pointer_move"
	wsMsgPointerUp   = "pointer_up"
	wsMsgSurface     = "surface"
	wsMsgKey         = "key"
	wsMsgTool        = "tool"
	wsMsgSeek        = "seek"
	wsMsgUndo        = "undo"
	wsMsgRedo        = "redo"
	wsMsgText        = "text"
	wsMsgSelect      = "select"
	wsMsgShowAll     = "show_all"
	wsMsgSave        = "save"
)

// WebSocket message types to client.
const (
	wsMsgState       = "state"
	wsMsgTextRequest = "text_request"
	wsMsgSaved       = "saved"
	wsMsgError       = "error"
)

// wsMessage is the envelope for WebSocket messages in both directions.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// wsPointer is the payload for pointer messages, in client pixels.
type wsPointer struct {
	ClientX float64      `json:"clientX"`
	ClientY float64      `json:"clientY"`
	Touches []geom.Point `json:"touches,omitempty"`
}

// wsSurfaceMsg reports where the client draws the frame.
type wsSurfaceMsg struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	LogicalWidth  float64 `json:"logicalWidth"`
	LogicalHeight float64 `json:"logicalHeight"`
}

type wsKeyMsg struct {
	Chord string `json:"chord"`
}

type wsToolMsg struct {
	Tool        string  `json:"tool"`
	Color       string  `json:"color,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

type wsSeekMsg struct {
	Time float64 `json:"time"`
}

type wsTextMsg struct {
	Text string `json:"text"`
	OK   bool   `json:"ok"`
}

type wsSelectMsg struct {
	ID string `json:"id"`
}

type wsShowAllMsg struct {
	All bool `json:"all"`
}

// wsStateResponse is sent after every handled message.
type wsStateResponse struct {
	Time        float64         `json:"time"`
	Tool        string          `json:"tool"`
	Status      string          `json:"status"`
	Selection   string          `json:"selection,omitempty"`
	ShowAll     bool            `json:"showAll"`
	CanUndo     bool            `json:"canUndo"`
	CanRedo     bool            `json:"canRedo"`
	Dirty       bool            `json:"dirty"`
	Annotations json.RawMessage `json:"annotations"`
	Visible     []string        `json:"visible"`
	Preview     json.RawMessage `json:"preview,omitempty"`
	Markers     []wsMarker      `json:"markers"`
}

type wsMarker struct {
	ID       string  `json:"id"`
	Position float64 `json:"position"`
}

type wsTextRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wsSavedResponse struct {
	Changes int    `json:"changes"`
	Error   string `json:"error,omitempty"`
}

// wsSurface is the client's frame rect, updated by "surface" messages.
type wsSurface struct {
	rect coords.Rect
	w, h float64
}

func (s *wsSurface) ScreenRect() coords.Rect         { return s.rect }
func (s *wsSurface) LogicalSize() (float64, float64) { return s.w, s.h }

// liveSession is one WebSocket editing session. Messages are handled on
// the read loop; only writes are shared with save callbacks.
type liveSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	editor  *editor.Editor
	surface *wsSurface
	pending func(string, bool)
	saves   sync.WaitGroup
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	video := r.URL.Query().Get("video")
	if video == "" {
		writeError(w, http.StatusBadRequest, "video is required")
		return
	}
	duration, _ := strconv.ParseFloat(r.URL.Query().Get("duration"), 64)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	session := &liveSession{
		conn: conn,
		surface: &wsSurface{
			rect: coords.Rect{Width: float64(s.width), Height: float64(s.height)},
			w:    float64(s.width),
			h:    float64(s.height),
		},
	}
	defer session.saves.Wait()
	opts := []editor.Option{
		editor.WithVideo(video),
		editor.WithPlayer(playback.NewClock(duration, s.fps)),
		editor.WithSurface(session.surface),
		editor.WithSaver(s.saver),
		editor.WithFPS(s.fps),
		editor.WithToolOptions(
			tool.WithTextInput(tool.TextInputFunc(session.requestText)),
			tool.WithErrorHandler(func(err error) { session.sendError(err.Error()) }),
		),
	}
	if s.colors != nil {
		opts = append(opts, editor.WithColors(s.colors))
	}
	session.editor = editor.New(opts...)
	if err := session.editor.LoadFromRepository(r.Context(), s.repo); err != nil {
		session.sendError("loading annotations: " + err.Error())
	}
	session.sendState()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			session.sendError("invalid message format")
			continue
		}
		if err := session.handle(msg); err != nil {
			session.sendError(err.Error())
		}
		session.sendState()
	}
}

func (ls *liveSession) handle(msg wsMessage) error {
	e := ls.editor
	switch msg.Type {
	case wsMsgPointerDown, wsMsgPointerMove, wsMsgPointerUp:
		var p wsPointer
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return errInvalid(msg.Type)
		}
		in := coords.Pointer(p.ClientX, p.ClientY)
		in.Touches = p.Touches
		switch msg.Type {
		case wsMsgPointerDown:
			return e.PointerDown(in)
		case wsMsgPointerMove:
			return e.PointerMove(in)
		}
		return e.PointerUp(in)
	case wsMsgSurface:
		var m wsSurfaceMsg
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return errInvalid(msg.Type)
		}
		ls.surface.rect = coords.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
		if m.LogicalWidth > 0 && m.LogicalHeight > 0 {
			ls.surface.w, ls.surface.h = m.LogicalWidth, m.LogicalHeight
		}
		e.Mapper().Invalidate()
	case wsMsgKey:
		var m wsKeyMsg
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return errInvalid(msg.Type)
		}
		ev, err := tool.ParseKey(m.Chord)
		if err != nil {
			return err
		}
		e.HandleKey(ev)
	case wsMsgTool:
		var m wsToolMsg
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return errInvalid(msg.Type)
		}
		t, err := tool.Parse(m.Tool)
		if err != nil {
			return err
		}
		e.Machine().SetTool(t)
		style := e.Machine().Style()
		if m.Color != "" {
			style.Color = annotation.ColorToken(m.Color)
		}
		if m.StrokeWidth > 0 {
			style.StrokeWidth = m.StrokeWidth
		}
		e.Machine().SetStyle(style)
	case wsMsgSeek:
		var m wsSeekMsg
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return errInvalid(msg.Type)
		}
		e.Seek(m.Time)
	case wsMsgUndo:
		e.Do(tool.Binding{Action: tool.ActionUndo})
	case wsMsgRedo:
		e.Do(tool.Binding{Action: tool.ActionRedo})
	case wsMsgText:
		var m wsTextMsg
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return errInvalid(msg.Type)
		}
		done := ls.pending
		ls.pending = nil
		if done == nil {
			return errNoPrompt
		}
		done(m.Text, m.OK)
	case wsMsgSelect:
		var m wsSelectMsg
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return errInvalid(msg.Type)
		}
		if m.ID == "" {
			e.Machine().ClearSelection()
		} else if !e.Select(m.ID) {
			return persist.ErrNotFound
		}
	case wsMsgShowAll:
		var m wsShowAllMsg
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return errInvalid(msg.Type)
		}
		e.SetShowAll(m.All)
	case wsMsgSave:
		return ls.save()
	default:
		return errUnknown(msg.Type)
	}
	return nil
}

// requestText parks the machine's callback until the client answers.
func (ls *liveSession) requestText(anchor geom.Point, done func(string, bool)) {
	ls.pending = done
	ls.send(wsMsgTextRequest, wsTextRequest{X: anchor.X, Y: anchor.Y})
}

// save queues the diff and reports once every change has landed.
func (ls *liveSession) save() error {
	fs, err := ls.editor.Save()
	if err != nil {
		return err
	}
	ls.saves.Add(1)
	go func() {
		defer ls.saves.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resp := wsSavedResponse{Changes: len(fs)}
		if err := persist.WaitAll(ctx, fs); err != nil {
			resp.Error = err.Error()
		}
		ls.send(wsMsgSaved, resp)
	}()
	return nil
}

func (ls *liveSession) sendState() {
	e := ls.editor
	m := e.Machine()
	all, err := codec.Serialize(e.Store().List())
	if err != nil {
		ls.sendError(err.Error())
		return
	}
	resp := wsStateResponse{
		Time:        e.Player().CurrentTime(),
		Tool:        m.Tool().String(),
		Status:      m.Status().String(),
		Selection:   m.Selection(),
		ShowAll:     e.ShowAll(),
		CanUndo:     e.Store().CanUndo(),
		CanRedo:     e.Store().CanRedo(),
		Dirty:       e.Dirty(),
		Annotations: all,
		Visible:     []string{},
		Markers:     []wsMarker{},
	}
	for _, a := range e.Visible() {
		resp.Visible = append(resp.Visible, a.ID)
	}
	for _, mk := range e.Markers() {
		resp.Markers = append(resp.Markers, wsMarker{ID: mk.ID, Position: mk.Position})
	}
	if p := m.Preview(); p != nil {
		if data, err := codec.MarshalRecord(*p); err == nil {
			resp.Preview = data
		}
	}
	ls.send(wsMsgState, resp)
}

func (ls *liveSession) send(msgType string, data any) {
	ls.writeMu.Lock()
	defer ls.writeMu.Unlock()
	sendWSMessage(ls.conn, msgType, data)
}

func (ls *liveSession) sendError(msg string) {
	ls.writeMu.Lock()
	defer ls.writeMu.Unlock()
	sendWSError(ls.conn, msg)
}

func sendWSMessage(conn *websocket.Conn, msgType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("websocket marshal: %v", err)
		return
	}
	msg := wsMessage{Type: msgType, Data: raw}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("websocket write: %v", err)
	}
}

func sendWSError(conn *websocket.Conn, message string) {
	sendWSMessage(conn, wsMsgError, map[string]string{"message": message})
}
