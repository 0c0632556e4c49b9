package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*httptest.Server, *Config) {
	t.Helper()
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	config.Server.ExportDir = filepath.Join(t.TempDir(), "exports")

	ws := NewWebServer(config, "localhost:0", zerolog.Nop())
	ws.now = func() time.Time { return time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(ws.Routes())
	t.Cleanup(srv.Close)
	return srv, config
}

func postDeal(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthAndIndex(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %v %v", resp, err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<title>Investment Deal Summary</title>") {
		t.Error("index should serve the form UI")
	}
}

func TestInitialAndDerive(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/deal/initial")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var deal DealRecord
	if err := json.NewDecoder(resp.Body).Decode(&deal); err != nil {
		t.Fatal(err)
	}
	if len(deal.FundAllocations) != 4 || len(deal.Founders) != 1 {
		t.Errorf("initial deal = %+v", deal)
	}

	derivedResp := postDeal(t, srv, "/api/deal/derive", deal)
	var derived DerivedState
	if err := json.NewDecoder(derivedResp.Body).Decode(&derived); err != nil {
		t.Fatal(err)
	}
	if derived.Valid || len(derived.PendingItems) != 8 || len(derived.Sections) != 7 {
		t.Errorf("derived = %+v", derived)
	}
}

func TestApplyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	company := "Acme"
	resp := postDeal(t, srv, "/api/deal/apply", APIApplyRequest{
		State:  NewDealRecord(),
		Change: DealChange{CompanyName: &company},
	})

	var out APIApplyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.State.CompanyName != "Acme" {
		t.Errorf("company = %q", out.State.CompanyName)
	}
	if _, ok := out.Derived.Errors["companyName"]; ok {
		t.Error("company error should be cleared")
	}
}

func TestDownloadBlockedForIncompleteDeal(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postDeal(t, srv, "/api/deal/download", NewDealRecord())

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var blocked APIBlockedResponse
	if err := json.NewDecoder(resp.Body).Decode(&blocked); err != nil {
		t.Fatal(err)
	}
	if len(blocked.PendingItems) == 0 {
		t.Error("blocked response should list pending items")
	}
}

func TestDownloadCompleteDeal(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postDeal(t, srv, "/api/deal/download", SampleDeal())

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="Investment_Summary.pdf"` {
		t.Errorf("content disposition = %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestPreviewAllowsIncompleteDeal(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := postDeal(t, srv, "/api/deal/preview", NewDealRecord())

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "inline") {
		t.Errorf("content disposition = %q", cd)
	}
}

func TestExportWritesFile(t *testing.T) {
	srv, config := newTestServer(t)
	resp := postDeal(t, srv, "/api/deal/export", SampleDeal())

	var out PDFExportResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Success {
		t.Fatalf("export failed: %s", out.Message)
	}
	if filepath.Dir(out.FilePath) != config.Server.ExportDir {
		t.Errorf("saved to %s, want inside %s", out.FilePath, config.Server.ExportDir)
	}
	if _, err := os.Stat(out.FilePath); err != nil {
		t.Errorf("exported file missing: %v", err)
	}

	blocked := postDeal(t, srv, "/api/deal/export", NewDealRecord())
	if blocked.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("incomplete export status = %d, want 422", blocked.StatusCode)
	}
}

func TestLivePreviewAndLayoutEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postDeal(t, srv, "/api/deal/live-preview", SampleDeal())
	html, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(html), "Northwind Analytics") {
		t.Error("live preview should include the company name")
	}

	layoutResp := postDeal(t, srv, "/api/deal/layout", SampleDeal())
	var layout APILayoutResponse
	if err := json.NewDecoder(layoutResp.Body).Decode(&layout); err != nil {
		t.Fatal(err)
	}
	if layout.Pages < 1 || layout.PageBreaks != layout.Pages-1 || layout.OpCounts["text"] == 0 {
		t.Errorf("layout = %+v", layout)
	}
}

func TestInvalidJSONRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/deal/derive", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/deal/download")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
