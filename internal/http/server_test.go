package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notebk/internal/core"
	"notebk/internal/services"
	"notebk/internal/storage"
	"notebk/internal/transfer"
)

type fakeExporter struct {
	got transfer.Payload
	res transfer.Result
}

func (f *fakeExporter) Export(_ context.Context, p transfer.Payload) transfer.Result {
	f.got = p
	return f.res
}

func newTestServer(t *testing.T, exp transfer.Exporter) (*Server, *services.Notebook) {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC) }
	nb := services.Open(context.Background(), storage.NewStore(storage.NewMemoryKV(), nil), services.WithClock(clock))
	srv := NewServer(":0", nb, exp, nil)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv, nb
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	if rr := do(t, srv, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/state", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestEditEndpoints(t *testing.T) {
	srv, nb := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"note", http.MethodPut, "/api/notes/2024-05-17", `{"text":"hola\u0000"}`, http.StatusOK},
		{"note bad day", http.MethodPut, "/api/notes/2024-13-01", `{"text":"x"}`, http.StatusBadRequest},
		{"note bad json", http.MethodPut, "/api/notes/2024-05-17", `{"text":`, http.StatusBadRequest},
		{"monthly note", http.MethodPut, "/api/monthly-notes/2024-05", `{"text":"mayo"}`, http.StatusOK},
		{"expenses", http.MethodPut, "/api/expenses/2024-05",
			`{"expenses":[{"id":"1","date":"01/05","concept":"Sueldo","income":2000,"expense":null},{"id":"2","concept":"Alquiler","expense":"750,5"}]}`,
			http.StatusOK},
		{"expenses duplicate id", http.MethodPut, "/api/expenses/2024-05", `{"expenses":[{"id":"1"},{"id":"1"}]}`, http.StatusUnprocessableEntity},
		{"expenses blank id", http.MethodPut, "/api/expenses/2024-05", `{"expenses":[{"id":" "}]}`, http.StatusUnprocessableEntity},
		{"saving by name", http.MethodPut, "/api/savings/2024/Enero", `{"amount":1200}`, http.StatusOK},
		{"saving by number", http.MethodPut, "/api/savings/2024/2", `{"amount":800}`, http.StatusOK},
		{"saving bad month", http.MethodPut, "/api/savings/2024/13", `{"amount":1}`, http.StatusBadRequest},
		{"health", http.MethodPut, "/api/health/2024", `{"items":[{"id":"h1","title":"Dentista","completed":true},{"id":"h2","title":"Análisis"}]}`, http.StatusOK},
		{"table blank title", http.MethodPost, "/api/tables/2024", `{"title":"  "}`, http.StatusUnprocessableEntity},
		{"rows missing table", http.MethodPut, "/api/tables/2024/none/rows", `{"rows":[]}`, http.StatusNotFound},
		{"remove missing table", http.MethodDelete, "/api/tables/2024/none", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, srv, tt.method, tt.path, tt.body); rr.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body)
			}
		})
	}

	st := nb.State()
	if st.Notes["2024-05-17"] != "hola" {
		t.Errorf("note not sanitized: %q", st.Notes["2024-05-17"])
	}
	if st.MonthlyNotes["2024-05"] != "mayo" {
		t.Errorf("monthly note = %q", st.MonthlyNotes["2024-05"])
	}
	totals := core.MonthTotals(st.Expenses["2024-05"])
	if totals.Income.String() != "2000" || totals.Expense.String() != "750.5" {
		t.Errorf("unexpected totals %+v", totals)
	}
	if st.Savings["2024"]["Enero"] != 1200 || st.Savings["2024"]["Febrero"] != 800 {
		t.Errorf("unexpected savings %+v", st.Savings["2024"])
	}
	if done, total := core.HealthProgress(st.Health["2024"]); done != 1 || total != 2 {
		t.Errorf("health progress = %d/%d", done, total)
	}
}

func TestCustomTableLifecycle(t *testing.T) {
	srv, nb := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/tables/2024", `{"title":"Libros","col1Title":"Título"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d: %s", rr.Code, rr.Body)
	}
	var table core.CustomTable
	if err := json.Unmarshal(rr.Body.Bytes(), &table); err != nil {
		t.Fatal(err)
	}
	if table.ID == "" || table.Col1Title != "Título" || table.Col2Title != core.DefaultCol2Title {
		t.Fatalf("unexpected table %+v", table)
	}

	rr = do(t, srv, http.MethodPut, "/api/tables/2024/"+table.ID+"/rows", `{"rows":[{"id":"r1","val1":"Dune","val2":"sí"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("rows status=%d: %s", rr.Code, rr.Body)
	}
	got, ok := nb.State().FindTable("2024", table.ID)
	if !ok || len(got.Rows) != 1 || got.Rows[0].Val1 != "Dune" {
		t.Fatalf("rows not stored: %+v", got)
	}

	if rr := do(t, srv, http.MethodDelete, "/api/tables/2024/"+table.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if _, ok := nb.State().FindTable("2024", table.ID); ok {
		t.Fatal("table still present after delete")
	}
}

func TestSummary(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	do(t, srv, http.MethodPut, "/api/expenses/2024-03", `{"expenses":[{"id":"1","income":100,"expense":40}]}`)
	do(t, srv, http.MethodPut, "/api/savings/2024/Marzo", `{"amount":60}`)

	rr := do(t, srv, http.MethodGet, "/api/summary/2024", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var got summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Expenses.Months[2].Totals.Diff().String() != "60" {
		t.Errorf("march diff = %s", got.Expenses.Months[2].Totals.Diff())
	}
	if got.SavingsTotal.String() != "60" {
		t.Errorf("savings total = %s", got.SavingsTotal)
	}

	if rr := do(t, srv, http.MethodGet, "/api/summary/24", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad year, got %d", rr.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	if rr := do(t, srv, http.MethodPost, "/api/export", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without exporter, got %d", rr.Code)
	}

	exp := &fakeExporter{res: transfer.Result{Success: true, Channel: transfer.ChannelClipboard, Message: transfer.MsgCopiedToClipboard}}
	srv, _ = newTestServer(t, exp)
	rr := do(t, srv, http.MethodPost, "/api/export", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), transfer.MsgCopiedToClipboard) {
		t.Fatalf("export: %d %s", rr.Code, rr.Body)
	}
	if exp.got.Filename != "notebk-backup-2024-05-17.json" {
		t.Errorf("filename = %q", exp.got.Filename)
	}

	exp.res = transfer.Result{Message: transfer.MsgExportFailed}
	if rr := do(t, srv, http.MethodPost, "/api/export", ""); rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502 on export failure, got %d", rr.Code)
	}
}

func upload(t *testing.T, srv *Server, path string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != nil {
		fw, err := mw.CreateFormFile("file", "backup.json")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(content)
	}
	mw.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestBackupDownloadAndUpload(t *testing.T) {
	src, _ := newTestServer(t, nil)
	do(t, src, http.MethodPut, "/api/notes/2024-05-17", `{"text":"copia"}`)

	rr := do(t, src, http.MethodGet, "/backup", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("download status=%d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "notebk-backup-2024-05-17.json") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	file := rr.Body.Bytes()

	dst, nb := newTestServer(t, nil)
	do(t, dst, http.MethodPut, "/api/notes/2020-01-01", `{"text":"se pierde"}`)

	if rr := upload(t, dst, "/backup?dry_run=1", file); rr.Code != http.StatusOK {
		t.Fatalf("dry run status=%d: %s", rr.Code, rr.Body)
	}
	if _, ok := nb.State().Notes["2020-01-01"]; !ok {
		t.Fatal("dry run changed the document")
	}

	if rr := upload(t, dst, "/backup", file); rr.Code != http.StatusOK {
		t.Fatalf("upload status=%d: %s", rr.Code, rr.Body)
	}
	notes := nb.State().Notes
	if len(notes) != 1 || notes["2024-05-17"] != "copia" {
		t.Fatalf("restore is not a total replace: %+v", notes)
	}
}

func TestUploadFailures(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		name    string
		content []byte
		want    int
	}{
		{"missing file", nil, http.StatusBadRequest},
		{"not json", []byte("{oops"), http.StatusUnprocessableEntity},
		{"foreign app", []byte(`{"version":1,"appName":"other","data":{}}`), http.StatusUnprocessableEntity},
		{"bad shape", []byte(`{"version":1,"appName":"notebk","data":{"notes":{"2024-01-01":5}}}`), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := upload(t, srv, "/backup", tt.content)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body)
			}
			if strings.Contains(rr.Body.String(), `"data"`) {
				t.Error("failure response must not carry data")
			}
		})
	}
}

func TestWriteRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	srv.rateLimiter.stop()
	srv.rateLimiter = newRateLimiter(2)

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPut, "/api/notes/2024-05-17", `{"text":"x"}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPut, "/api/notes/2024-05-17", `{"text":"x"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/state", ""); rr.Code != http.StatusOK {
		t.Errorf("reads are not limited, got %d", rr.Code)
	}

	var ready struct {
		Metrics map[string]int64 `json:"metrics"`
	}
	rr = do(t, srv, http.MethodGet, "/readyz", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &ready); err != nil {
		t.Fatalf("decode readyz: %v", err)
	}
	if ready.Metrics["rateLimitHits"] != 1 {
		t.Errorf("readyz metrics = %v, want one rate limit hit", ready.Metrics)
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.7:5000", "", "203.0.113.7"},
		{"untrusted peer ignores header", "203.0.113.7:5000", "1.2.3.4", "203.0.113.7"},
		{"trusted proxy", "127.0.0.1:5000", "198.51.100.2, 10.0.0.1", "198.51.100.2"},
		{"trusted proxy bad header", "10.1.1.1:5000", "garbage", "10.1.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("a\x00b\tc\nd\x1f"); got != "ab\tc\nd" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
