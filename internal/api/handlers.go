package api

import (
	"errors"
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
	"github.com/example/swingmark/internal/palette"
	"github.com/example/swingmark/internal/persist"
	"github.com/example/swingmark/internal/render"
	"github.com/example/swingmark/internal/timeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		verr *annotation.ValidationError
		derr *codec.DecodeError
	)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, persist.ErrExists):
		return http.StatusConflict
	case errors.As(err, &verr), errors.As(err, &derr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.repo.ListForVideo(r.Context(), r.PathValue("video"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	data, err := codec.Serialize(list)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeRaw(w, http.StatusOK, data)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	a, err := codec.UnmarshalRecord(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a.VideoID = r.PathValue("video")
	out, err := s.repo.Create(r.Context(), a)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeRecord(w, http.StatusCreated, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	a, err := s.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeRecord(w, http.StatusOK, a)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	p, err := codec.UnmarshalPatch(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.Update(r.Context(), id, p); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	a, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeRecord(w, http.StatusOK, a)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeRecord(w http.ResponseWriter, status int, a annotation.Annotation) {
	data, err := codec.MarshalRecord(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeRaw(w, status, data)
}

// handleFrame renders the annotations active at ?t= (or all of them with
// ?all=1) over the video's still frame.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	video := r.PathValue("video")
	q := r.URL.Query()
	t := 0.0
	if v := q.Get("t"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "t must be a non-negative number")
			return
		}
		t = parsed
	}
	all, _ := strconv.ParseBool(q.Get("all"))

	list, err := s.repo.ListForVideo(r.Context(), video)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if !all {
		list = timeline.New(list).At(t, timeline.DefaultTolerance)
	}
	bg := s.background(video, t)
	colors := s.colors
	if colors == nil {
		colors = palette.Default()
	}
	shadow := render.DefaultShadowOptions()
	img := render.Frame(bg, s.width, s.height, list, nil, render.Options{Colors: colors, Shadow: &shadow})
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("frame encode: %v", err)
	}
}
