package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// The live channel lets an editor re-run the checks on every keystroke
// without the form round trip. Each text frame is one document; each reply
// is the analysis of that document. Nothing sent over the socket is stored.

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin only admits browser connections from our own pages.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser clients
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, r.Host)
}

type liveAuditRequest struct {
	Source   string `json:"source"`
	Markdown bool   `json:"markdown"`
}

type liveAuditResponse struct {
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// liveConn serializes writes; the reply path and the ping loop share the
// connection and gorilla permits only one concurrent writer.
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) writeJSON(resp liveAuditResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteJSON(resp)
}

func (c *liveConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func wsAuditHandler(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	wsConnectionsActive.Add(1)
	defer wsConnectionsActive.Add(-1)
	logger.Info("live audit session opened", "remote", r.RemoteAddr)

	conn.SetReadLimit(appConfig.MaxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	live := &liveConn{conn: conn}
	done := make(chan struct{})
	defer close(done)
	go pingLoop(live, done)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("live audit session ended abnormally", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))

		var req liveAuditRequest
		if err := json.Unmarshal(data, &req); err != nil {
			live.writeJSON(liveAuditResponse{Error: "invalid request frame"})
			continue
		}
		if strings.TrimSpace(req.Source) == "" {
			live.writeJSON(liveAuditResponse{Error: "empty document"})
			continue
		}

		report, err := runAudit(req.Source, "live session", req.Markdown)
		if err != nil {
			logger.Warn("live audit failed", "error", err)
			live.writeJSON(liveAuditResponse{Error: "document could not be analyzed"})
			continue
		}
		if err := live.writeJSON(liveAuditResponse{Report: report}); err != nil {
			return
		}
	}
}

func pingLoop(live *liveConn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := live.ping(); err != nil {
				return
			}
		}
	}
}
