package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/swingmark/internal/persist"
)

const lineRecord = `{
  "id": "l1",
  "shapeKind": "line",
  "geometry": {"start": {"x": 0, "y": 0}, "end": {"x": 100, "y": 0}},
  "style": {"color": "red", "strokeWidth": 4},
  "timestamp": 2
}`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	repo, err := persist.NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := New(":0", repo, append([]Option{WithFrameSize(200, 100)}, opts...)...)
	t.Cleanup(srv.Close)
	return srv
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := do(srv, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestAnnotationCRUD(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/videos/swing1/annotations", lineRecord)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created["videoId"] != "swing1" || created["createdAt"] == "" {
		t.Fatalf("created = %v", created)
	}

	if w := do(srv, http.MethodPost, "/api/videos/swing1/annotations", lineRecord); w.Code != http.StatusConflict {
		t.Errorf("duplicate create: %d", w.Code)
	}

	w = do(srv, http.MethodPatch, "/api/annotations/l1", `{"timestamp": 7.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}
	var patched map[string]any
	json.Unmarshal(w.Body.Bytes(), &patched)
	if patched["timestamp"] != 7.5 {
		t.Errorf("patched timestamp = %v", patched["timestamp"])
	}

	w = do(srv, http.MethodGet, "/api/videos/swing1/annotations", "")
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s (%v)", w.Body.String(), err)
	}

	if w := do(srv, http.MethodDelete, "/api/annotations/l1", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete: %d", w.Code)
	}
	if w := do(srv, http.MethodGet, "/api/annotations/l1", ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete: %d", w.Code)
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"invalid json", http.MethodPost, "/api/videos/v/annotations", "{", http.StatusBadRequest},
		{"bad kind", http.MethodPost, "/api/videos/v/annotations", `{"shapeKind":"blob"}`, http.StatusBadRequest},
		{"empty patch", http.MethodPatch, "/api/annotations/x", `{}`, http.StatusBadRequest},
		{"patch missing", http.MethodPatch, "/api/annotations/x", `{"timestamp":1}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/annotations/x", "", http.StatusNotFound},
		{"negative time", http.MethodGet, "/api/videos/v/frame.png?t=-1", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			var resp map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
				t.Errorf("expected error body, got %q", w.Body.String())
			}
		})
	}
}

func TestFrameRendersActiveAnnotations(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for i := range bg.Pix {
		bg.Pix[i] = 255
	}
	srv := newTestServer(t, WithFrames(func(video string, ts float64) (image.Image, error) {
		return bg, nil
	}))
	do(srv, http.MethodPost, "/api/videos/swing1/annotations", lineRecord)

	decode := func(path string) image.Image {
		t.Helper()
		w := do(srv, http.MethodGet, path, "")
		if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("%s: %d %s", path, w.Code, w.Header().Get("Content-Type"))
		}
		img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		return img
	}

	img := decode("/api/videos/swing1/frame.png?t=2")
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if c := color.RGBAModel.Convert(img.At(50, 0)).(color.RGBA); c.G > 100 {
		t.Errorf("line not drawn at t=2: %v", c)
	}
	img = decode("/api/videos/swing1/frame.png?t=30")
	if c := color.RGBAModel.Convert(img.At(50, 0)).(color.RGBA); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("inactive line drawn at t=30: %v", c)
	}
	img = decode("/api/videos/swing1/frame.png?t=30&all=1")
	if c := color.RGBAModel.Convert(img.At(50, 0)).(color.RGBA); c.G > 100 {
		t.Errorf("show all did not draw: %v", c)
	}
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (c *wsClient) send(msgType string, data any) {
	c.t.Helper()
	raw, _ := json.Marshal(data)
	if err := c.conn.WriteJSON(wsMessage{Type: msgType, Data: raw}); err != nil {
		c.t.Fatal(err)
	}
}

// next reads until a message of msgType arrives.
func (c *wsClient) next(msgType string) json.RawMessage {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg wsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg.Data
		}
	}
}

func (c *wsClient) state() wsStateResponse {
	c.t.Helper()
	var st wsStateResponse
	if err := json.Unmarshal(c.next(wsMsgState), &st); err != nil {
		c.t.Fatal(err)
	}
	return st
}

func dialSession(t *testing.T, srv *Server, video string) *wsClient {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?video=" + video + "&duration=60"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func TestWebSocketDrawAndSave(t *testing.T) {
	srv := newTestServer(t)
	c := dialSession(t, srv, "swing1")
	if st := c.state(); st.Tool != "select" || st.CanUndo {
		t.Fatalf("initial state = %+v", st)
	}

	c.send(wsMsgSurface, wsSurfaceMsg{X: 10, Y: 10, Width: 100, Height: 50, LogicalWidth: 200, LogicalHeight: 100})
	c.state()
	c.send(wsMsgTool, wsToolMsg{Tool: "line", Color: "blue", StrokeWidth: 2})
	c.state()
	c.send(wsMsgSeek, wsSeekMsg{Time: 3})
	c.state()
	c.send(wsMsgPointerDown, wsPointer{ClientX: 10, ClientY: 10})
	c.state()
	c.send(wsMsgPointerMove, wsPointer{ClientX: 60, ClientY: 35})
	if st := c.state(); st.Status != "drawing" || len(st.Preview) == 0 {
		t.Fatalf("drawing state = %+v", st)
	}
	c.send(wsMsgPointerUp, wsPointer{ClientX: 60, ClientY: 35})
	st := c.state()
	if !st.CanUndo || !st.Dirty || len(st.Markers) != 1 {
		t.Fatalf("after draw = %+v", st)
	}
	var recs []struct {
		Geometry struct {
			End struct{ X, Y float64 } `json:"end"`
		} `json:"geometry"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(st.Annotations, &recs); err != nil || len(recs) != 1 {
		t.Fatalf("annotations = %s", st.Annotations)
	}
	if recs[0].Geometry.End.X != 100 || recs[0].Geometry.End.Y != 50 || recs[0].Timestamp != 3 {
		t.Fatalf("record = %+v", recs[0])
	}

	c.send(wsMsgSave, nil)
	var saved wsSavedResponse
	if err := json.Unmarshal(c.next(wsMsgSaved), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Changes != 1 || saved.Error != "" {
		t.Fatalf("saved = %+v", saved)
	}
	w := do(srv, http.MethodGet, "/api/videos/swing1/annotations", "")
	var list []map[string]any
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Fatalf("repository has %d records", len(list))
	}

	c.send(wsMsgUndo, nil)
	if st := c.state(); st.CanUndo || !st.CanRedo {
		t.Fatalf("after undo = %+v", st)
	}
}

func TestWebSocketTextPrompt(t *testing.T) {
	srv := newTestServer(t)
	c := dialSession(t, srv, "swing1")
	c.state()
	c.send(wsMsgTool, wsToolMsg{Tool: "text"})
	c.state()
	c.send(wsMsgPointerDown, wsPointer{ClientX: 40, ClientY: 20})
	var req wsTextRequest
	if err := json.Unmarshal(c.next(wsMsgTextRequest), &req); err != nil {
		t.Fatal(err)
	}
	if req.X != 40 || req.Y != 20 {
		t.Fatalf("prompt at %+v", req)
	}
	if st := c.state(); st.Status != "awaiting-text" {
		t.Fatalf("status = %s", st.Status)
	}
	c.send(wsMsgText, wsTextMsg{Text: "hips", OK: true})
	if st := c.state(); st.Status != "idle" || len(st.Markers) != 1 {
		t.Fatalf("after text = %+v", st)
	}
	c.send(wsMsgText, wsTextMsg{Text: "again", OK: true})
	var e map[string]string
	json.Unmarshal(c.next(wsMsgError), &e)
	if e["message"] != errNoPrompt.Error() {
		t.Fatalf("error = %v", e)
	}
}

func TestWebSocketRequiresVideo(t *testing.T) {
	srv := newTestServer(t)
	if w := do(srv, http.MethodGet, "/api/ws", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
