// FILE: src/internal/service/server.go
package service

import (
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"tracesift/src/internal/config"
	"tracesift/src/internal/core"
	"tracesift/src/internal/extract"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fastjson"
)

// Server exposes the extraction pipeline over HTTP: POST /extract takes
// already-fetched log lines and returns the extracted incidents, GET
// /status reports statistics. Each request runs one synchronous pipeline
// pass; the engine itself holds no per-request state.
type Server struct {
	cfg       config.ServerConfig
	extractor *extract.Extractor
	limiter   *RateLimiter
	server    *fasthttp.Server
	listener  net.Listener
	logger    *log.Logger
	parsers   fastjson.ParserPool

	// Statistics
	startTime        time.Time
	totalRequests    atomic.Uint64
	rejectedRequests atomic.Uint64
	failedRequests   atomic.Uint64
}

// incidentResponse mirrors the JSON formatter's wire shape.
type incidentResponse struct {
	ID         string `json:"id"`
	Convention string `json:"convention"`
	Trace      string `json:"trace"`
	Multiline  bool   `json:"multiline"`
	FirstSeen  string `json:"first_seen,omitempty"`
	LastSeen   string `json:"last_seen,omitempty"`
}

// New creates the HTTP extraction service.
func New(cfg config.ServerConfig, extractor *extract.Extractor, logger *log.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		extractor: extractor,
		logger:    logger,
		startTime: time.Now(),
	}
	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerSecond,
			int(cfg.RateLimit.Burst),
			cfg.RateLimit.CleanupIntervalSeconds)
	}
	s.server = &fasthttp.Server{
		Handler:            s.handle,
		MaxRequestBodySize: int(cfg.MaxBodyMB) * 1024 * 1024,
		CloseOnShutdown:    true,
	}
	return s
}

// Start binds the listener and serves in the background. The bind error
// surfaces synchronously so a bad port fails startup.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen failed on %s: %w", addr, err)
	}
	s.listener = ln

	go func() {
		s.logger.Info("msg", "Extraction service started",
			"component", "service",
			"addr", addr)
		if err := s.server.Serve(ln); err != nil {
			s.logger.Error("msg", "Extraction service failed",
				"component", "service",
				"addr", addr,
				"error", err)
		}
	}()
	return nil
}

// Shutdown stops the server and the rate limiter.
func (s *Server) Shutdown() {
	if err := s.server.Shutdown(); err != nil {
		s.logger.Warn("msg", "Server shutdown error",
			"component", "service",
			"error", err)
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.logger.Info("msg", "Extraction service stopped",
		"component", "service")
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	s.totalRequests.Add(1)

	switch string(ctx.Path()) {
	case "/extract":
		s.handleExtract(ctx)
	case "/status":
		s.handleStatus(ctx)
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) handleExtract(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	if s.limiter != nil {
		client := ctx.RemoteIP().String()
		if !s.limiter.Allow(client) {
			s.rejectedRequests.Add(1)
			ctx.Error("rate limit exceeded", fasthttp.StatusTooManyRequests)
			return
		}
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := p.ParseBytes(ctx.PostBody())
	if err != nil {
		s.failedRequests.Add(1)
		ctx.Error(fmt.Sprintf("invalid JSON: %v", err), fasthttp.StatusBadRequest)
		return
	}

	lineVals := v.GetArray("lines")
	lines := make([]string, 0, len(lineVals))
	for _, lv := range lineVals {
		lines = append(lines, string(lv.GetStringBytes()))
	}

	incidents := s.extractor.Incidents(lines)
	if v.GetBool("most_recent_only") {
		if inc, ok := extract.MostRecentIncident(incidents); ok {
			incidents = []core.Incident{inc}
		} else {
			incidents = nil
		}
	}

	out := make([]incidentResponse, 0, len(incidents))
	for _, inc := range incidents {
		r := incidentResponse{
			ID:         inc.ID.String(),
			Convention: inc.Block.Convention,
			Trace:      inc.Block.Text,
			Multiline:  inc.Block.Multiline,
		}
		if inc.Block.MinTS != nil {
			r.FirstSeen = inc.Block.MinTS.Time.Format(time.RFC3339Nano)
		}
		if inc.Block.MaxTS != nil {
			r.LastSeen = inc.Block.MaxTS.Time.Format(time.RFC3339Nano)
		}
		out = append(out, r)
	}

	s.respondJSON(ctx, map[string]any{"incidents": out})
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	status := map[string]any{
		"uptime_seconds":    time.Since(s.startTime).Seconds(),
		"total_requests":    s.totalRequests.Load(),
		"rejected_requests": s.rejectedRequests.Load(),
		"failed_requests":   s.failedRequests.Load(),
		"extractor":         s.extractor.GetStats(),
	}
	if s.limiter != nil {
		status["rate_limited_clients"] = s.limiter.ActiveClients()
	}
	s.respondJSON(ctx, status)
}

func (s *Server) respondJSON(ctx *fasthttp.RequestCtx, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.failedRequests.Add(1)
		ctx.Error("encoding failed", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
