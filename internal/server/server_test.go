package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shelfworks/shelfstack/pkg/catalog"
	"github.com/shelfworks/shelfstack/pkg/layouts"
	"github.com/shelfworks/shelfstack/pkg/snapshot"
)

const testLibrary = `
[[layout]]
id = "test-cooler"
name = "Test cooler"

  [[layout.door]]
  id = "d1"
  width_px = 200
  height_px = 300

    [[layout.door.row]]
    id = "r1"
    capacity_px = 200
    max_height_px = 150

    [[layout.door.row]]
    id = "r2"
    capacity_px = 200
    max_height_px = 150
`

const testCatalog = `
[[sku]]
sku = "cola-500"
name = "Cola 500ml"
width_mm = 20
height_mm = 40
type = "bottle"
stackable = true

[[sku]]
sku = "keg-huge"
name = "Oversized"
width_mm = 400
height_mm = 400
type = "bottle"
stackable = false
`

func newTestServer(t *testing.T, store snapshot.Store) *httptest.Server {
	t.Helper()
	lib, err := layouts.ParseLibrary([]byte(testLibrary))
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.ParseFileSource([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	if store == nil {
		store = snapshot.NewMemoryStore()
	}
	srv := New(Config{Library: lib, Catalog: cat, Store: store, Rules: true})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, wantStatus int) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		var raw bytes.Buffer
		_, _ = raw.ReadFrom(resp.Body)
		t.Fatalf("%s %s: status %d, want %d (%s)", method, url, resp.StatusCode, wantStatus, raw.String())
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return out
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	out := doJSON(t, http.MethodPost, ts.URL+"/api/sessions", map[string]string{"layoutId": "test-cooler"}, http.StatusCreated)
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("no session id in %v", out)
	}
	return id
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	out := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, http.StatusOK)
	if out["status"] != "ok" {
		t.Errorf("health: %v", out)
	}
}

func TestLayoutsAndSKUs(t *testing.T) {
	ts := newTestServer(t, nil)

	out := doJSON(t, http.MethodGet, ts.URL+"/api/layouts", nil, http.StatusOK)
	if layouts, ok := out["layouts"].([]any); !ok || len(layouts) != 1 {
		t.Errorf("layouts: %v", out)
	}
	doJSON(t, http.MethodGet, ts.URL+"/api/layouts/test-cooler", nil, http.StatusOK)
	doJSON(t, http.MethodGet, ts.URL+"/api/layouts/nope", nil, http.StatusNotFound)

	doJSON(t, http.MethodGet, ts.URL+"/api/skus/cola-500", nil, http.StatusOK)
	doJSON(t, http.MethodGet, ts.URL+"/api/skus/nope", nil, http.StatusNotFound)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createSession(t, ts)

	base := fmt.Sprintf("%s/api/sessions/%s", ts.URL, id)
	out := doJSON(t, http.MethodGet, base, nil, http.StatusOK)
	if out["layoutId"] != "test-cooler" || out["canUndo"] != false {
		t.Errorf("fresh session: %v", out)
	}

	doJSON(t, http.MethodDelete, base, nil, http.StatusNoContent)
	doJSON(t, http.MethodGet, base, nil, http.StatusNotFound)
}

func TestAddUndoRedo(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createSession(t, ts)
	base := fmt.Sprintf("%s/api/sessions/%s", ts.URL, id)

	add := map[string]any{"sku": "cola-500", "doorId": "d1", "rowId": "r1", "index": -1}
	out := doJSON(t, http.MethodPost, base+"/items", add, http.StatusOK)
	if out["canUndo"] != true {
		t.Errorf("after add: %v", out["canUndo"])
	}

	out = doJSON(t, http.MethodPost, base+"/undo", nil, http.StatusOK)
	if out["canRedo"] != true {
		t.Error("undo did not enable redo")
	}
	doJSON(t, http.MethodPost, base+"/redo", nil, http.StatusOK)
}

func TestRejectedPlacementIs422(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createSession(t, ts)
	base := fmt.Sprintf("%s/api/sessions/%s", ts.URL, id)

	// 400mm tall item cannot fit a 150px row
	add := map[string]any{"sku": "keg-huge", "doorId": "d1", "rowId": "r1", "index": -1}
	out := doJSON(t, http.MethodPost, base+"/items", add, http.StatusUnprocessableEntity)
	if out["code"] != "CAPACITY_EXCEEDED" {
		t.Errorf("error code: %v", out["code"])
	}

	// the rejection is not in history
	state := doJSON(t, http.MethodGet, base, nil, http.StatusOK)
	if state["canUndo"] != false {
		t.Error("rejected placement landed in history")
	}
}

func TestTargetsAndConflicts(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createSession(t, ts)
	base := fmt.Sprintf("%s/api/sessions/%s", ts.URL, id)

	out := doJSON(t, http.MethodGet, base+"/targets?door=d1&sku=cola-500", nil, http.StatusOK)
	rows, _ := out["rows"].([]any)
	if len(rows) != 2 {
		t.Errorf("target rows: %v", out)
	}

	doJSON(t, http.MethodGet, base+"/targets?door=d1", nil, http.StatusUnprocessableEntity)
	doJSON(t, http.MethodGet, base+"/conflicts", nil, http.StatusOK)
}

func TestExportDocument(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createSession(t, ts)
	base := fmt.Sprintf("%s/api/sessions/%s", ts.URL, id)

	add := map[string]any{"sku": "cola-500", "doorId": "d1", "rowId": "r1", "index": -1}
	doJSON(t, http.MethodPost, base+"/items", add, http.StatusOK)

	out := doJSON(t, http.MethodGet, base+"/export", nil, http.StatusOK)
	doors, ok := out["doors"].(map[string]any)
	if !ok || doors["d1"] == nil {
		t.Fatalf("export doors: %v", out)
	}
	dims, _ := out["dimensions"].(map[string]any)
	if dims["pixelScale"] != float64(1) {
		t.Errorf("pixel scale: %v", dims)
	}

	// a scale query multiplies every coordinate and records the ratio
	scaled := doJSON(t, http.MethodGet, base+"/export?scale=2.5", nil, http.StatusOK)
	sdims, _ := scaled["dimensions"].(map[string]any)
	if sdims["pixelScale"] != float64(2.5) {
		t.Errorf("scaled pixel scale: %v", sdims)
	}
	if sdims["width"] != dims["width"].(float64)*2.5 {
		t.Errorf("scaled width: got %v, want %v", sdims["width"], dims["width"].(float64)*2.5)
	}

	doJSON(t, http.MethodGet, base+"/export?scale=-1", nil, http.StatusUnprocessableEntity)
}

func TestSessionRestoredFromStore(t *testing.T) {
	store := snapshot.NewMemoryStore()
	ts := newTestServer(t, store)
	id := createSession(t, ts)
	base := fmt.Sprintf("%s/api/sessions/%s", ts.URL, id)
	add := map[string]any{"sku": "cola-500", "doorId": "d1", "rowId": "r1", "index": -1}
	doJSON(t, http.MethodPost, base+"/items", add, http.StatusOK)

	// a second server instance sharing the store sees the session
	ts2 := newTestServer(t, store)
	base2 := fmt.Sprintf("%s/api/sessions/%s", ts2.URL, id)
	out := doJSON(t, http.MethodGet, base2, nil, http.StatusOK)
	if out["canUndo"] != true {
		t.Error("restored session lost its history")
	}
}

func TestPreviewEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)
	id := createSession(t, ts)
	base := fmt.Sprintf("%s/api/sessions/%s", ts.URL, id)

	resp, err := http.Get(base + "/preview.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("preview: status=%d type=%s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}
