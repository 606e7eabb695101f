// Package server exposes a live session over HTTP: the scene as JSON or
// SVG, interaction events, reloads and prometheus metrics.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/cooc/pkg/analysis"
	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/export"
	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/layout"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/scene"
)

// ShutdownTimeout bounds graceful shutdown after the context is cancelled.
const ShutdownTimeout = 5 * time.Second

// LoadFunc fetches a fresh graph for POST /api/reload.
type LoadFunc func(ctx context.Context) (*model.Graph, error)

// Config configures a Server.
type Config struct {
	Addr         string
	TickInterval time.Duration
	Title        string
	Load         LoadFunc          // nil disables reloads
	Metrics      *metrics.Registry // nil creates one
}

// Server serves one session.
type Server struct {
	echo    *echo.Echo
	session *interact.Session
	runner  *layout.Runner
	metrics *metrics.Registry
	cfg     Config
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
	Nodes   int    `json:"nodes"`
	Links   int    `json:"links"`
}

// New builds the echo instance and binds a layout runner to session.
func New(session *interact.Session, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}

	s := &Server{
		session: session,
		metrics: cfg.Metrics,
		cfg:     cfg,
	}
	s.runner = session.Runner(cfg.TickInterval)
	s.runner.OnStep = s.metrics.RecordTick

	g := session.Graph()
	s.metrics.SetGraphSize(len(g.Nodes), len(g.Links))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goccySerializer{}
	e.Use(middleware.Recover())
	e.Use(s.recordRequests)

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Gatherer(), promhttp.HandlerOpts{})))
	e.GET("/graph.svg", s.handleSVG)
	e.GET("/graph.png", s.handlePNG)

	api := e.Group("/api")
	api.GET("/graph", s.handleGraph)
	api.GET("/stats", s.handleStats)
	api.POST("/events", s.handleEvent)
	api.POST("/reload", s.handleReload)

	s.echo = e
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until ctx is cancelled, ticking the simulation in the
// background. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := s.runner.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		debug.Log("server: listening on %s", s.cfg.Addr)
		if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Reload fetches a new graph and swaps it into the session. On failure the
// previous graph keeps being served.
func (s *Server) Reload(ctx context.Context) error {
	if s.cfg.Load == nil {
		return errors.New("reload not configured")
	}
	g, err := s.cfg.Load(ctx)
	if err == nil {
		err = s.session.Reload(g)
	}
	s.metrics.RecordReload(err)
	if err != nil {
		debug.Log("server: reload failed: %v", err)
		return err
	}
	s.metrics.SetGraphSize(len(g.Nodes), len(g.Links))
	return nil
}

func (s *Server) recordRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		s.metrics.RecordHTTPRequest(c.Request().Method, path, strconv.Itoa(status), time.Since(start))
		return err
	}
}

func (s *Server) document() export.Document {
	var doc export.Document
	s.session.View(func(sc *scene.Scene, v interact.Visual) {
		doc = export.NewDocument(sc, v.Transform, v.Hovered, s.cfg.Title)
	})
	return doc
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok", Running: s.session.Running()}
	s.session.View(func(sc *scene.Scene, _ interact.Visual) {
		resp.Nodes, resp.Links = len(sc.Nodes), len(sc.Links)
	})
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGraph(c echo.Context) error {
	return c.JSON(http.StatusOK, s.document())
}

func (s *Server) snapshot(c echo.Context, contentType string, write func(*bytes.Buffer, export.SnapshotOptions) error) error {
	defer metrics.Timer(metrics.SnapshotRender)()
	var buf bytes.Buffer
	var err error
	s.session.View(func(sc *scene.Scene, v interact.Visual) {
		err = write(&buf, export.SnapshotOptions{
			Title:     s.cfg.Title,
			Scene:     sc,
			Transform: v.Transform,
			Hovered:   v.Hovered,
		})
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleSVG(c echo.Context) error {
	return s.snapshot(c, "image/svg+xml", func(b *bytes.Buffer, o export.SnapshotOptions) error {
		return export.WriteSVG(b, o)
	})
}

func (s *Server) handlePNG(c echo.Context) error {
	return s.snapshot(c, "image/png", func(b *bytes.Buffer, o export.SnapshotOptions) error {
		return export.WritePNG(b, o)
	})
}

func (s *Server) handleStats(c echo.Context) error {
	var stats analysis.Stats
	s.session.View(func(sc *scene.Scene, _ interact.Visual) {
		stats = analysis.Analyze(sc.Graph())
	})
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleEvent(c echo.Context) error {
	var spec interact.EventSpec
	if err := c.Bind(&spec); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid event body"})
	}
	ev, err := spec.Decode()
	if err != nil {
		s.metrics.RecordEvent(spec.Type, err)
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	err = s.session.Apply(ev)
	s.metrics.RecordEvent(ev.Kind(), err)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, interact.ErrUnknownNode) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, s.document())
}

func (s *Server) handleReload(c echo.Context) error {
	if s.cfg.Load == nil {
		return c.JSON(http.StatusNotImplemented, errorResponse{Error: "reload not configured"})
	}
	if err := s.Reload(c.Request().Context()); err != nil {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, s.document())
}
