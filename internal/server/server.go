// Package server exposes the markup engine to editors over a websocket.
//
// Each connection sends JSON requests and receives one JSON response per
// request, matched by ID. Requests are answered synchronously by the pure
// engine functions, so connections share no state beyond the default
// reference catalog loaded at startup.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/conneroisu/redactor/internal/catalog"
	"github.com/conneroisu/redactor/internal/config"
	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/logging"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/conneroisu/redactor/internal/validation"
	"github.com/conneroisu/redactor/internal/version"
)

const (
	// Time allowed to write a response to the peer.
	writeWait = 10 * time.Second

	// Maximum request size allowed from peer.
	maxMessageSize = 4 << 20
)

// Operations accepted in Request.Op.
const (
	OpLint      = "lint"
	OpInline    = "inline"
	OpBlock     = "block"
	OpNormalize = "normalize"
)

// Request is a single editor request.
type Request struct {
	ID             string           `json:"id,omitempty"`
	Op             string           `json:"op"`
	Text           string           `json:"text"`
	SelectionStart int              `json:"selectionStart,omitempty"`
	SelectionEnd   int              `json:"selectionEnd,omitempty"`
	Cursor         int              `json:"cursor,omitempty"`
	Tag            string           `json:"tag,omitempty"`
	Title          string           `json:"title,omitempty"`
	Value          *string          `json:"value,omitempty"`
	Placeholder    string           `json:"placeholder,omitempty"`
	Catalog        *catalog.Catalog `json:"catalog,omitempty"`
}

// Response answers a Request with the same ID. Exactly one of Issues,
// Result, Text or Error is meaningful, depending on the operation.
type Response struct {
	ID     string              `json:"id,omitempty"`
	Issues []markup.Issue      `json:"issues,omitempty"`
	Result *markup.ApplyResult `json:"result,omitempty"`
	Text   *string             `json:"text,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// Server serves the editor websocket and a health endpoint.
type Server struct {
	config         *config.Config
	logger         logging.Logger
	defaultContext *markup.LintContext
	httpServer     *http.Server
	serverMutex    sync.RWMutex
	clients        map[*websocket.Conn]struct{}
	clientsMutex   sync.RWMutex
	shutdownOnce   sync.Once
}

// New creates a server. cat is the catalog used when a request carries
// none; it may be nil.
func New(cfg *config.Config, cat *catalog.Catalog, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		config:         cfg,
		logger:         logger.WithComponent("server"),
		defaultContext: cat.LintContext(),
		clients:        make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.config.Server.Port))
}

// Start listens until ctx is cancelled or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown closes every websocket and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down")

		s.clientsMutex.Lock()
		conns := make([]*websocket.Conn, 0, len(s.clients))
		for conn := range s.clients {
			conns = append(conns, conn)
		}
		s.clients = make(map[*websocket.Conn]struct{})
		s.clientsMutex.Unlock()

		// Close waits for the peer's close frame, so the lock is not held here
		for _, conn := range conns {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// ClientCount returns the number of open websocket connections.
func (s *Server) ClientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"clients":   s.ClientCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "failed to encode health response")
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if err := validation.ValidateOrigin(origin, s.config.Server.AllowedOrigins); err != nil {
		s.logger.Warn(r.Context(), err, "rejected websocket origin", "origin", origin)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.config.Server.AllowedOrigins),
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	s.clientsMutex.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMutex.Unlock()
	s.logger.Info(r.Context(), "client connected", "remote", r.RemoteAddr)

	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, conn)
		s.clientsMutex.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Info(context.Background(), "client disconnected", "remote", r.RemoteAddr)
	}()

	s.serve(r.Context(), conn)
}

// serve answers requests on conn until the peer goes away.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				s.logger.Debug(ctx, "websocket read ended", "error", err.Error())
			}
			return
		}

		var resp Response
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			resp = Response{Error: fmt.Sprintf("invalid request: %v", err)}
		} else {
			op := logging.StartOperation(s.logger, req.Op)
			resp = s.Handle(req)
			op.End(ctx, "id", req.ID)
		}

		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err = wsjson.Write(writeCtx, conn, resp)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, err, "failed to write response")
			return
		}
	}
}

// Handle answers a single request.
func (s *Server) Handle(req Request) Response {
	resp := Response{ID: req.ID}

	switch req.Op {
	case OpLint:
		lintCtx := s.defaultContext
		if req.Catalog != nil {
			lintCtx = req.Catalog.LintContext()
		}
		resp.Issues = markup.LintTags(req.Text, lintCtx)

	case OpInline:
		if !markup.LookupKind(req.Tag).IsInline() {
			return failed(resp, fmt.Sprintf("%q is not an inline tag", req.Tag))
		}
		result := markup.ApplyInlineTag(req.Text, req.SelectionStart, req.SelectionEnd, req.Tag,
			markup.InlineOptions{Value: req.Value, Placeholder: req.Placeholder})
		resp.Result = &result

	case OpBlock:
		if !markup.LookupKind(req.Tag).IsBlock() {
			return failed(resp, fmt.Sprintf("%q is not a block tag", req.Tag))
		}
		result := markup.InsertBlockTag(req.Text, req.Cursor, req.Tag, req.Title)
		resp.Result = &result

	case OpNormalize:
		text := markup.NormalizeOnSave(req.Text)
		resp.Text = &text

	default:
		return failed(resp, fmt.Sprintf("unknown op %q", req.Op))
	}

	return resp
}

func failed(resp Response, msg string) Response {
	resp.Error = rerrors.NewValidationError(rerrors.ErrCodeInvalidRequest, msg).Error()
	return resp
}

// originPatterns turns allowed origins into the host patterns the websocket
// handshake checks against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return patterns
}
