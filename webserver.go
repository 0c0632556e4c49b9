package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxRequestBytes caps a posted deal snapshot
const maxRequestBytes = 1 << 20

// WebServer serves the deal form, the memo endpoints and the live preview
type WebServer struct {
	config *Config
	addr   string
	log    zerolog.Logger
	now    func() time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(config *Config, addr string, logger zerolog.Logger) *WebServer {
	if addr == "" {
		addr = config.Server.Addr
	}
	return &WebServer{
		config: config,
		addr:   addr,
		log:    logger,
		now:    time.Now,
	}
}

// APIApplyRequest carries a snapshot and a partial change to merge into it
type APIApplyRequest struct {
	State  DealRecord `json:"state"`
	Change DealChange `json:"change"`
}

// APIApplyResponse is the next snapshot and its derived view
type APIApplyResponse struct {
	State   DealRecord   `json:"state"`
	Derived DerivedState `json:"derived"`
}

// APIBlockedResponse is returned when a memo is requested for an incomplete deal
type APIBlockedResponse struct {
	Error        string   `json:"error"`
	PendingItems []string `json:"pendingItems"`
}

// APILayoutResponse summarises a layout pass
type APILayoutResponse struct {
	Pages      int            `json:"pages"`
	PageBreaks int            `json:"pageBreaks"`
	OpCounts   map[string]int `json:"opCounts"`
}

// PDFExportResponse represents the response from saving a memo to disk
type PDFExportResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"filePath,omitempty"`
	Message  string `json:"message"`
}

// Routes builds the HTTP handler
func (ws *WebServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(ws.log))
	r.Use(middleware.Recoverer)

	r.Get("/", ws.handleIndex)
	r.Get("/healthz", ws.handleHealth)

	r.Route("/api/deal", func(r chi.Router) {
		r.Get("/initial", ws.handleInitial)
		r.Get("/sample", ws.handleSample)
		r.Post("/derive", ws.handleDerive)
		r.Post("/apply", ws.handleApply)
		r.Post("/preview", ws.handlePreviewPDF)
		r.Post("/download", ws.handleDownloadPDF)
		r.Post("/export", ws.handleExportPDF)
		r.Post("/live-preview", ws.handleLivePreview)
		r.Post("/layout", ws.handleLayout)
	})

	r.Get("/ws/preview", ws.handlePreviewSocket)
	return r
}

// listen opens the listener and works out the browser URL for it
func (ws *WebServer) listen() (net.Listener, string, error) {
	// Listen on the address (use :0 for auto-assign)
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return nil, "", fmt.Errorf("listening on %s: %w", ws.addr, err)
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)

	// If listening on all interfaces, use localhost for the URL
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}
	return listener, url, nil
}

// Start serves until ctx is cancelled, optionally opening a browser
func (ws *WebServer) Start(ctx context.Context, open bool) error {
	listener, url, err := ws.listen()
	if err != nil {
		return err
	}

	ws.log.Info().Str("addr", listener.Addr().String()).Str("url", url).Msg("starting web server")
	if open {
		go openBrowser(url)
	}

	server := &http.Server{Handler: ws.Routes(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ws.log.Info().Msg("shutting down web server")
		return server.Shutdown(shutdownCtx)
	}
}

// StartForEmbedded starts the server in the background for the desktop
// window and returns its URL plus a cleanup function
func (ws *WebServer) StartForEmbedded() (url string, cleanup func(), err error) {
	listener, url, err := ws.listen()
	if err != nil {
		return "", nil, err
	}

	ws.log.Info().Str("addr", listener.Addr().String()).Msg("starting embedded web server")

	server := &http.Server{Handler: ws.Routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			ws.log.Error().Err(err).Msg("server error")
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
	return url, cleanup, nil
}

func (ws *WebServer) reportOptions() ReportOptions {
	opts := ws.config.ReportOptions()
	opts.Now = ws.now
	return opts
}

func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, webUIHTML)
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ws *WebServer) handleInitial(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewDealRecord())
}

func (ws *WebServer) handleSample(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SampleDeal())
}

func (ws *WebServer) handleDerive(w http.ResponseWriter, r *http.Request) {
	deal, ok := ws.decodeDealRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Derive(deal))
}

func (ws *WebServer) handleApply(w http.ResponseWriter, r *http.Request) {
	var req APIApplyRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	next := ApplyChange(req.State, req.Change)
	writeJSON(w, http.StatusOK, APIApplyResponse{State: next, Derived: Derive(next)})
}

// handlePreviewPDF renders whatever has been entered so far
func (ws *WebServer) handlePreviewPDF(w http.ResponseWriter, r *http.Request) {
	deal, ok := ws.decodeDealRequest(w, r)
	if !ok {
		return
	}
	opts := ws.reportOptions()
	ws.writePDF(w, r, deal, opts, "inline")
}

// handleDownloadPDF only hands out the memo once the deal is complete
func (ws *WebServer) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	deal, ok := ws.decodeDealRequest(w, r)
	if !ok {
		return
	}
	if derived := Derive(deal); !derived.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, APIBlockedResponse{
			Error:        "Deal is incomplete",
			PendingItems: derived.PendingItems,
		})
		return
	}
	ws.writePDF(w, r, deal, ws.reportOptions(), "attachment")
}

func (ws *WebServer) writePDF(w http.ResponseWriter, r *http.Request, deal DealRecord, opts ReportOptions, disposition string) {
	pdfBytes, err := GenerateInvestmentPDF(deal, opts)
	if err != nil {
		ws.log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("generating memo")
		http.Error(w, "Failed to generate PDF: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, opts.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))
	w.Write(pdfBytes)
}

func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	deal, ok := ws.decodeDealRequest(w, r)
	if !ok {
		return
	}
	if derived := Derive(deal); !derived.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, PDFExportResponse{
			Success: false,
			Message: "Deal is incomplete: " + strings.Join(derived.PendingItems, "; "),
		})
		return
	}

	path, err := SaveInvestmentPDF(deal, ws.reportOptions(), ws.config.Server.ExportDir)
	if err != nil {
		ws.log.Error().Err(err).Msg("exporting memo")
		writeJSON(w, http.StatusInternalServerError, PDFExportResponse{
			Success: false,
			Message: "Failed to save PDF: " + err.Error(),
		})
		return
	}

	ws.log.Info().Str("path", path).Msg("memo exported")
	writeJSON(w, http.StatusOK, PDFExportResponse{
		Success:  true,
		FilePath: path,
		Message:  "PDF saved to " + path,
	})
}

func (ws *WebServer) handleLivePreview(w http.ResponseWriter, r *http.Request) {
	deal, ok := ws.decodeDealRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderLivePreviewHTML(w, deal, ws.now()); err != nil {
		ws.log.Error().Err(err).Msg("live preview")
	}
}

func (ws *WebServer) handleLayout(w http.ResponseWriter, r *http.Request) {
	deal, ok := ws.decodeDealRequest(w, r)
	if !ok {
		return
	}
	result := LayoutInvestmentReport(deal, ws.reportOptions())
	counts := make(map[string]int)
	for _, op := range result.Ops {
		counts[op.Kind]++
	}
	writeJSON(w, http.StatusOK, APILayoutResponse{
		Pages:      result.Pages,
		PageBreaks: result.PageBreaks,
		OpCounts:   counts,
	})
}

// decodeDealRequest reads a DealRecord body, answering 400 itself on failure
func (ws *WebServer) decodeDealRequest(w http.ResponseWriter, r *http.Request) (DealRecord, bool) {
	var deal DealRecord
	if err := decodeJSONBody(w, r, &deal); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return DealRecord{}, false
	}
	deal.ensureIDs()
	return deal, true
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// openBrowser opens url in the system browser
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	cmd.Start()
}
