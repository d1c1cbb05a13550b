package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"geo-registry/internal/querycache"
	"geo-registry/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*registry.Handle, http.Handler) {
	t.Helper()
	h := registry.NewHandle(nil)
	return h, BuildRoutes(h, querycache.New(nil, 64, time.Minute), "secret")
}

func do(t *testing.T, hd http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	hd.ServeHTTP(w, req)
	return w
}

func decodeIDs(t *testing.T, w *httptest.ResponseRecorder) []int64 {
	t.Helper()
	var resp struct {
		IDs []int64 `json:"ids"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.IDs)
	return resp.IDs
}

func seedPlaces(t *testing.T, hd http.Handler) {
	t.Helper()
	for _, body := range []string{
		`{"id":1,"name":"A","category":"SHELTER","x":0,"y":0}`,
		`{"id":2,"name":"B","category":"SHELTER","x":3,"y":4}`,
		`{"id":3,"name":"C","category":"PARKING","x":0,"y":5}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, hd, http.MethodPost, "/places", body).Code)
	}
}

func TestPlaceLifecycle(t *testing.T) {
	_, hd := setupTestServer(t)
	seedPlaces(t, hd)

	assert.Equal(t, http.StatusConflict, do(t, hd, http.MethodPost, "/places", `{"id":1,"name":"dup","x":1,"y":1}`).Code)

	w := do(t, hd, http.MethodGet, "/places/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("content-type"))
	var p placeResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, placeResult{ID: 2, Name: "B", Category: "SHELTER", X: 3, Y: 4}, p)

	assert.Equal(t, http.StatusNotFound, do(t, hd, http.MethodGet, "/places/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, hd, http.MethodGet, "/places/abc", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, hd, http.MethodPatch, "/places/3", `{"name":"0","x":0,"y":1}`).Code)
	assert.Equal(t, []int64{3, 1, 2}, decodeIDs(t, do(t, hd, http.MethodGet, "/places?order=name", "")))
	assert.Equal(t, []int64{1, 3, 2}, decodeIDs(t, do(t, hd, http.MethodGet, "/places?order=coord", "")))

	assert.Equal(t, http.StatusNoContent, do(t, hd, http.MethodDelete, "/places/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, hd, http.MethodDelete, "/places/1", "").Code)
	assert.ElementsMatch(t, []int64{2, 3}, decodeIDs(t, do(t, hd, http.MethodGet, "/places", "")))
}

func TestPlaceValidation(t *testing.T) {
	_, hd := setupTestServer(t)
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"invalid json", http.MethodPost, "/places", `{invalid`, http.StatusBadRequest},
		{"missing coords", http.MethodPost, "/places", `{"id":1,"name":"a"}`, http.StatusBadRequest},
		{"unknown category", http.MethodPost, "/places", `{"id":1,"name":"a","category":"VOLCANO","x":0,"y":0}`, http.StatusBadRequest},
		{"wildcard category", http.MethodPost, "/places", `{"id":1,"name":"a","category":"NO_TYPE","x":0,"y":0}`, http.StatusBadRequest},
		{"x beyond int32", http.MethodPost, "/places", `{"id":1,"name":"a","x":3037000500,"y":0}`, http.StatusBadRequest},
		{"area coord beyond int32", http.MethodPost, "/areas", `{"id":1,"name":"a","coords":[[0,-2147483649]]}`, http.StatusBadRequest},
		{"default category", http.MethodPost, "/places", `{"id":1,"name":"a","x":0,"y":0}`, http.StatusCreated},
		{"move beyond int32", http.MethodPatch, "/places/1", `{"x":2147483648,"y":0}`, http.StatusBadRequest},
		{"half move", http.MethodPatch, "/places/1", `{"x":1}`, http.StatusBadRequest},
		{"empty patch", http.MethodPatch, "/places/1", `{}`, http.StatusBadRequest},
		{"patch unknown", http.MethodPatch, "/places/7", `{"name":"z"}`, http.StatusNotFound},
		{"bad order", http.MethodGet, "/places?order=size", "", http.StatusBadRequest},
		{"search without key", http.MethodGet, "/places/search", "", http.StatusBadRequest},
		{"nearest without x", http.MethodGet, "/places/nearest?y=1", "", http.StatusBadRequest},
		{"nearest x beyond int32", http.MethodGet, "/places/nearest?x=3037000500&y=0", "", http.StatusBadRequest},
		{"nearest bad category", http.MethodGet, "/places/nearest?x=1&y=1&category=nope", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, do(t, hd, tt.method, tt.path, tt.body).Code)
		})
	}
}

func TestSearchAndNearest(t *testing.T) {
	_, hd := setupTestServer(t)
	seedPlaces(t, hd)

	assert.Equal(t, []int64{1, 2}, decodeIDs(t, do(t, hd, http.MethodGet, "/places/search?category=shelter", "")))
	assert.Equal(t, []int64{3}, decodeIDs(t, do(t, hd, http.MethodGet, "/places/search?name=C", "")))
	assert.Empty(t, decodeIDs(t, do(t, hd, http.MethodGet, "/places/search?name=none", "")))

	assert.Equal(t, []int64{1, 2}, decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=0&y=0&category=SHELTER", "")))
	assert.Equal(t, []int64{1, 2, 3}, decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=0&y=0", "")))
	assert.Empty(t, decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=0&y=0&category=BAY", "")))
}

func TestExtremeCoordinatesOverHTTP(t *testing.T) {
	_, hd := setupTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, hd, http.MethodPost, "/places", `{"id":1,"name":"near","x":0,"y":0}`).Code)
	require.Equal(t, http.StatusCreated, do(t, hd, http.MethodPost, "/places", `{"id":2,"name":"far","x":2147483647,"y":-2147483648}`).Code)

	assert.Equal(t, []int64{1, 2}, decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=0&y=0", "")))
	assert.Equal(t, []int64{1, 2}, decodeIDs(t, do(t, hd, http.MethodGet, "/places?order=coord", "")))
	assert.Equal(t, []int64{2, 1}, decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=2147483647&y=-2147483648", "")))
}

func TestCachedResultsFollowWrites(t *testing.T) {
	_, hd := setupTestServer(t)
	seedPlaces(t, hd)

	first := decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=0&y=5", ""))
	assert.Equal(t, []int64{3, 2, 1}, first)
	assert.Equal(t, first, decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=0&y=5", "")))

	require.Equal(t, http.StatusNoContent, do(t, hd, http.MethodDelete, "/places/3", "").Code)
	assert.Equal(t, []int64{2, 1}, decodeIDs(t, do(t, hd, http.MethodGet, "/places/nearest?x=0&y=5", "")))
}

func TestAreaRoutes(t *testing.T) {
	_, hd := setupTestServer(t)
	for _, body := range []string{
		`{"id":1,"name":"X","coords":[[0,0],[4,0],[4,4]]}`,
		`{"id":2,"name":"Y"}`,
		`{"id":3,"name":"Z"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, hd, http.MethodPost, "/areas", body).Code)
	}
	assert.Equal(t, http.StatusConflict, do(t, hd, http.MethodPost, "/areas", `{"id":1,"name":"X"}`).Code)

	assert.Equal(t, http.StatusNoContent, do(t, hd, http.MethodPut, "/areas/2/parent", `{"parent":1}`).Code)
	assert.Equal(t, http.StatusNoContent, do(t, hd, http.MethodPut, "/areas/3/parent", `{"parent":2}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, hd, http.MethodPut, "/areas/3/parent", `{"parent":1}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, hd, http.MethodPut, "/areas/1/parent", `{"parent":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, hd, http.MethodPut, "/areas/1/parent", `{}`).Code)

	assert.Equal(t, []int64{2, 1}, decodeIDs(t, do(t, hd, http.MethodGet, "/areas/3/ancestors", "")))
	assert.Empty(t, decodeIDs(t, do(t, hd, http.MethodGet, "/areas/1/ancestors", "")))
	assert.Equal(t, []int64{3, 2}, decodeIDs(t, do(t, hd, http.MethodGet, "/areas/1/descendants", "")))
	assert.Equal(t, http.StatusNotFound, do(t, hd, http.MethodGet, "/areas/9/descendants", "").Code)
	assert.Equal(t, []int64{1, 2, 3}, decodeIDs(t, do(t, hd, http.MethodGet, "/areas", "")))

	w := do(t, hd, http.MethodGet, "/areas/common?a=2&b=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	var id idResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&id))
	assert.Equal(t, int64(1), id.ID)
	assert.Equal(t, http.StatusNotFound, do(t, hd, http.MethodGet, "/areas/common?a=1&b=3", "").Code)

	w = do(t, hd, http.MethodGet, "/areas/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var a areaResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&a))
	require.NotNil(t, a.Parent)
	assert.Equal(t, int64(1), *a.Parent)
	assert.Equal(t, []int64{3}, a.Children)

	w = do(t, hd, http.MethodGet, "/areas/1", "")
	var root areaResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&root))
	assert.Nil(t, root.Parent)
	assert.Equal(t, [][2]int32{{0, 0}, {4, 0}, {4, 4}}, root.Coords)
}

func TestResetAndStats(t *testing.T) {
	h, hd := setupTestServer(t)
	seedPlaces(t, hd)
	require.Equal(t, http.StatusCreated, do(t, hd, http.MethodPost, "/areas", `{"id":1,"name":"X"}`).Code)

	var st statsResult
	require.NoError(t, json.NewDecoder(do(t, hd, http.MethodGet, "/stats", "").Body).Decode(&st))
	assert.Equal(t, 3, st.Places)
	assert.Equal(t, 1, st.Areas)

	assert.Equal(t, http.StatusForbidden, do(t, hd, http.MethodPost, "/reset", "").Code)
	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.Header.Set("x-admin-token", "secret")
	w := httptest.NewRecorder()
	hd.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	h.Do(func(r *registry.Registry) {
		assert.Equal(t, 0, r.Count())
		assert.Equal(t, 0, r.AreaCount())
	})
	assert.Empty(t, decodeIDs(t, do(t, hd, http.MethodGet, "/places?order=name", "")))
}

func TestResetDisabledWithoutToken(t *testing.T) {
	hd := BuildRoutes(registry.NewHandle(nil), nil, "")
	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.Header.Set("x-admin-token", "")
	w := httptest.NewRecorder()
	hd.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
