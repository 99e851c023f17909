package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arin-jaff/peach-data-tool/internal/model"
	"github.com/arin-jaff/peach-data-tool/internal/sample"
	"github.com/arin-jaff/peach-data-tool/internal/store"
)

func newTestHandler(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "peach.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return New(st, Options{CORSOrigins: []string{"http://example.test"}}), st
}

func uploadRequest(t *testing.T, payload []byte, sessionName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "outing.json")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if sessionName != "" {
		if err := mw.WriteField("session_name", sessionName); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestUploadCreatesSession(t *testing.T) {
	h, _ := newTestHandler(t)
	payload, err := json.Marshal(sample.Bundle(sample.Options{Strokes: 4}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rec := serve(h, uploadRequest(t, payload, "Tuesday"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res model.UploadResult
	decode(t, rec, &res)
	if res.SessionName != "Tuesday" || res.PiecesCreated != 2 || res.StrokeCount != 8 {
		t.Fatalf("unexpected result: %+v", res)
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/"+res.SessionID, nil))
	var detail model.SessionDetail
	decode(t, rec, &detail)
	if detail.Filename == nil || *detail.Filename != "demo.csv" {
		t.Fatalf("expected bundle filename kept, got %v", detail.Filename)
	}
}

func TestUploadRejectsBadPayloads(t *testing.T) {
	h, _ := newTestHandler(t)
	cases := map[string][]byte{
		"not json":       []byte("Session,Start\n1,2"),
		"duplicate seat": []byte(`{"name":"x","athletes":[{"seat_position":1,"name":"a"},{"seat_position":1,"name":"b"}]}`),
		"bad seat":       []byte(`{"name":"x","athletes":[{"seat_position":0,"name":"a"}]}`),
	}
	for name, payload := range cases {
		rec := serve(h, uploadRequest(t, payload, ""))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("x"))
	if rec := serve(h, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without multipart body, got %d", rec.Code)
	}
}

func TestNotFoundDetail(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["detail"] != "Session not found" {
		t.Fatalf("unexpected detail: %v", body)
	}
}

func TestAveragesRequireStrokes(t *testing.T) {
	h, st := newTestHandler(t)
	b := sample.Bundle(sample.Options{Pieces: 1, Strokes: 2})
	b.Pieces[0].Strokes = nil
	res, err := st.ImportBundle(context.Background(), b, "")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	detail, err := st.GetSession(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/pieces/"+detail.Pieces[0].ID+"/strokes/averages", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestForceCurveWindow(t *testing.T) {
	h, st := newTestHandler(t)
	res, err := st.ImportBundle(context.Background(), sample.Bundle(sample.Options{Pieces: 1, Strokes: 6}), "")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	detail, err := st.GetSession(context.Background(), res.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	pieceID := detail.Pieces[0].ID

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/pieces/"+pieceID+"/stroke/3/force-curve", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var curve model.ForceCurve
	decode(t, rec, &curve)
	if curve.StrokeNumber != 3 || curve.DataPoints != len(curve.Data) || curve.DataPoints != 39 {
		t.Fatalf("unexpected curve: number=%d points=%d", curve.StrokeNumber, curve.DataPoints)
	}
	for i := 1; i < len(curve.Data); i++ {
		if *curve.Data[i].NormalizedTime < *curve.Data[i-1].NormalizedTime {
			t.Fatalf("expected samples ordered by normalized time")
		}
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/pieces/"+pieceID+"/stroke/99/force-curve", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown stroke, got %d", rec.Code)
	}
}

func TestFilterPeriodic(t *testing.T) {
	points := make([]model.PeriodicDataPoint, 10)
	for i := range points {
		points[i] = model.PeriodicDataPoint{TimeMs: int64(i * 100)}
	}
	start, end := int64(200), int64(700)
	got := FilterPeriodic(points, model.PeriodicQuery{StrokeStart: &start, StrokeEnd: &end, Downsample: 2})
	want := []int64{200, 400, 600}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i, ms := range want {
		if got[i].TimeMs != ms {
			t.Fatalf("point %d: expected %d, got %d", i, ms, got[i].TimeMs)
		}
	}
	if all := FilterPeriodic(points, model.PeriodicQuery{}); len(all) != 10 {
		t.Fatalf("expected unfiltered passthrough, got %d", len(all))
	}
}

func TestPeriodicEndpointRejectsBadQuery(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/pieces/x/periodic?downsample=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := serve(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://example.test" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
