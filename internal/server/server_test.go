package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/typeviz/pkg/config"
	"github.com/matzehuels/typeviz/pkg/convert"
	"github.com/matzehuels/typeviz/pkg/errors"
	"github.com/matzehuels/typeviz/pkg/pipeline"
	"github.com/matzehuels/typeviz/pkg/render"
)

const employment = `{
	"queryType": "read",
	"answerType": "conceptRows",
	"query": {"branches": [{"edges": [
		{"type": {"kind": "links", "param": {"kind": "label", "value": {"kind": "roleType", "label": "employment:employee"}}},
		 "from": {"kind": "variable", "value": {"variable": "e"}},
		 "to": {"kind": "variable", "value": {"variable": "p"}}},
		{"type": {"kind": "isa", "param": null},
		 "from": {"kind": "variable", "value": {"variable": "e"}},
		 "to": {"kind": "label", "value": {"kind": "relationType", "label": "employment"}}}
	]}]},
	"answers": [
		{"involvedBlocks": [0], "data": {
			"e": {"kind": "relation", "iid": "0x10", "type": {"kind": "relationType", "label": "employment"}},
			"p": {"kind": "entity", "iid": "0x1", "type": {"kind": "entityType", "label": "person"}}}},
		{"involvedBlocks": [0], "data": {
			"e": {"kind": "relation", "iid": "0x11", "type": {"kind": "relationType", "label": "employment"}}}}
	]
}`

func newTestServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(convert.DefaultStructureParameters(), render.DefaultStyle(), nil, nil)
	cfg := config.Default().Server
	cfg.MaxBodyBytes = maxBody
	cfg.ShutdownTimeout = config.Duration{Duration: time.Second}
	ts := httptest.NewServer(New(runner, nil, cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 1<<20)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestMaterialize(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	resp := post(t, ts.URL+"/v1/materialize", employment)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var g struct {
		Vertices []struct {
			ID string `json:"id"`
		} `json:"vertices"`
		Answers [][]json.RawMessage `json:"answers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		t.Fatal(err)
	}
	// 0x10, 0x11, 0x1, employment, employment:employee and one placeholder
	// for the unbound $p of answer 1.
	if len(g.Vertices) != 6 {
		t.Errorf("len(vertices) = %d, want 6", len(g.Vertices))
	}
	if len(g.Answers) != 2 || len(g.Answers[1]) != 2 {
		t.Errorf("answers = %v, want 2 answers of 2 edges", g.Answers)
	}
}

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	resp := post(t, ts.URL+"/v1/render?format=dot&highlight=0", employment)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q, want text/vnd.graphviz", ct)
	}
	if resp.Header.Get(HeaderRunID) == "" {
		t.Error("missing run id header")
	}
	if got := resp.Header.Get(HeaderCache); got != "miss" {
		t.Errorf("%s = %q, want miss", HeaderCache, got)
	}

	var sb bytes.Buffer
	if _, err := sb.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	dot := sb.String()
	if !strings.Contains(dot, "digraph") {
		t.Errorf("body is not DOT:\n%s", dot)
	}
	if !strings.Contains(dot, "employment:employee") {
		t.Errorf("links edge should carry the role label:\n%s", dot)
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t, 1<<20)

	tests := []struct {
		name     string
		query    string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown format", "?format=pdf", employment, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad highlight", "?highlight=first", employment, http.StatusBadRequest, "INVALID_INPUT"},
		{"highlight out of range", "?highlight=9&format=json", employment, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad coords", "?coords=first", employment, http.StatusBadRequest, "INVALID_INPUT"},
		{"coords out of range", "?coords=0,5&format=json", employment, http.StatusBadRequest, "INVALID_INPUT"},
		{"coords with highlight", "?coords=0,0&highlight=0&format=json", employment, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad bool", "?detailed=maybe", employment, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed body", "?format=json", `{"answers": [`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"entity without iid", "?format=json", strings.Replace(employment, `"iid": "0x1", `, "", 1), http.StatusBadRequest, "INVALID_FORMAT"},
		{"documents", "?format=json", `{"queryType":"read","answerType":"conceptDocuments","answers":[]}`, http.StatusUnprocessableEntity, "UNSUPPORTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/render"+tt.query, tt.body)
			if resp.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}
			var body apiError
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if body.Error.Code != tt.wantErr {
				t.Errorf("code = %q, want %q (%s)", body.Error.Code, tt.wantErr, body.Error.Message)
			}
		})
	}
}

func TestRenderHighlightCoordinates(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	resp := post(t, ts.URL+"/v1/render?format=json&coords=0,0", employment)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var g struct {
		Edges []struct {
			Highlighted bool `json:"highlighted"`
		} `json:"edges"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, e := range g.Edges {
		if e.Highlighted {
			n++
		}
	}
	// The links edge of both answers, one to $p and one to a placeholder.
	if n != 2 {
		t.Errorf("highlighted edges = %d, want 2", n)
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, 64)
	resp := post(t, ts.URL+"/v1/materialize", employment)

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	resp, err := http.Get(ts.URL + "/v2/render")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	runner := pipeline.NewRunner(convert.DefaultStructureParameters(), render.DefaultStyle(), nil, nil)
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = config.Duration{Duration: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(runner, nil, cfg).ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}

func TestListenAndServeBadAddr(t *testing.T) {
	runner := pipeline.NewRunner(convert.DefaultStructureParameters(), render.DefaultStyle(), nil, nil)
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:-1"

	err := New(runner, nil, cfg).ListenAndServe(context.Background())
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("ListenAndServe() = %v, want NETWORK_ERROR", err)
	}
}
