package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/swingmark/internal/annotation"
	"github.com/example/swingmark/internal/codec"
)

// HTTPClient is a Repository backed by the annotation REST API.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient talks to the API rooted at baseURL. A nil client uses a
// default with a timeout.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{base: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode == http.StatusConflict {
		return nil, ErrExists
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("%s: %s", resp.Status, e.Error)
		}
		return nil, fmt.Errorf("%s", resp.Status)
	}
	return data, nil
}

func (c *HTTPClient) Create(ctx context.Context, a annotation.Annotation) (annotation.Annotation, error) {
	if a.VideoID == "" {
		return annotation.Annotation{}, fail("create", a.ID, ErrNoVideo)
	}
	body, err := codec.MarshalRecord(a)
	if err != nil {
		return annotation.Annotation{}, fail("create", a.ID, err)
	}
	data, err := c.do(ctx, http.MethodPost, "/api/videos/"+url.PathEscape(a.VideoID)+"/annotations", body)
	if err != nil {
		return annotation.Annotation{}, fail("create", a.ID, err)
	}
	out, err := codec.UnmarshalRecord(data)
	if err != nil {
		return annotation.Annotation{}, fail("create", a.ID, err)
	}
	return out, nil
}

func (c *HTTPClient) Get(ctx context.Context, id string) (annotation.Annotation, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/annotations/"+url.PathEscape(id), nil)
	if err != nil {
		return annotation.Annotation{}, fail("get", id, err)
	}
	out, err := codec.UnmarshalRecord(data)
	if err != nil {
		return annotation.Annotation{}, fail("get", id, err)
	}
	return out, nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, p annotation.Patch) error {
	body, err := codec.MarshalPatch(p)
	if err != nil {
		return fail("update", id, err)
	}
	if _, err := c.do(ctx, http.MethodPatch, "/api/annotations/"+url.PathEscape(id), body); err != nil {
		return fail("update", id, err)
	}
	return nil
}

func (c *HTTPClient) Remove(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/api/annotations/"+url.PathEscape(id), nil); err != nil {
		return fail("remove", id, err)
	}
	return nil
}

func (c *HTTPClient) ListForVideo(ctx context.Context, videoID string) ([]annotation.Annotation, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/videos/"+url.PathEscape(videoID)+"/annotations", nil)
	if err != nil {
		return nil, fail("list", videoID, err)
	}
	list, err := codec.Deserialize(data)
	if err != nil {
		return nil, fail("list", videoID, err)
	}
	return list, nil
}
