package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	previewWriteWait      = 10 * time.Second
	previewMaxMessageSize = maxRequestBytes
)

var previewUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 64 * 1024,
	// The UI is served from the same embedded server
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PreviewRequest is one deal snapshot sent by the client. Seq increases
// with every edit.
type PreviewRequest struct {
	Seq  int64      `json:"seq"`
	Deal DealRecord `json:"deal"`
}

// PreviewResponse is the rendered memo for the snapshot numbered Seq
type PreviewResponse struct {
	Seq     int64        `json:"seq"`
	Pages   int          `json:"pages"`
	Derived DerivedState `json:"derived"`
	PDF     string       `json:"pdf,omitempty"` // base64
	Error   string       `json:"error,omitempty"`
}

// previewMailbox holds at most one pending snapshot; a newer put replaces
// whatever is waiting. Only one goroutine may put.
type previewMailbox struct {
	ch chan PreviewRequest
}

func newPreviewMailbox() *previewMailbox {
	return &previewMailbox{ch: make(chan PreviewRequest, 1)}
}

func (m *previewMailbox) put(req PreviewRequest) {
	for {
		select {
		case m.ch <- req:
			return
		default:
		}
		// drop the stale snapshot
		select {
		case <-m.ch:
		default:
		}
	}
}

// pending reports whether a newer snapshot is waiting
func (m *previewMailbox) pending() bool {
	return len(m.ch) > 0
}

func (m *previewMailbox) close() {
	close(m.ch)
}

// previewRenderer turns a snapshot into a response
type previewRenderer func(DealRecord) PreviewResponse

func (ws *WebServer) renderPreview(deal DealRecord) PreviewResponse {
	resp := PreviewResponse{Derived: Derive(deal)}
	report, err := RenderInvestmentReport(deal, ws.reportOptions())
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Pages = report.Pages
	resp.PDF = base64.StdEncoding.EncodeToString(report.PDF)
	return resp
}

func (ws *WebServer) handlePreviewSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := previewUpgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ws.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("preview client connected")
	servePreview(r.Context(), conn, ws.renderPreview, ws.log)
	ws.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("preview client disconnected")
}

// servePreview reads snapshots on one goroutine and renders on the calling
// one. Renders are sequential; a response is only written when no newer
// snapshot arrived while it was being produced.
func servePreview(ctx context.Context, conn *websocket.Conn, render previewRenderer, log zerolog.Logger) {
	mailbox := newPreviewMailbox()
	go readPreviewRequests(conn, mailbox, log)

	var lastSent int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-mailbox.ch:
			if !ok {
				return
			}
			if req.Seq <= lastSent {
				continue
			}

			resp := render(req.Deal)
			resp.Seq = req.Seq
			if mailbox.pending() {
				log.Debug().Int64("seq", req.Seq).Msg("preview superseded")
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
			if err := conn.WriteJSON(resp); err != nil {
				log.Debug().Err(err).Msg("preview write failed")
				return
			}
			lastSent = req.Seq
		}
	}
}

func readPreviewRequests(conn *websocket.Conn, mailbox *previewMailbox, log zerolog.Logger) {
	defer mailbox.close()
	conn.SetReadLimit(previewMaxMessageSize)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("preview read error")
			}
			return
		}

		var req PreviewRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Debug().Err(err).Msg("ignoring malformed preview request")
			continue
		}
		req.Deal.ensureIDs()
		mailbox.put(req)
	}
}
