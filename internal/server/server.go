// Package server exposes exam compilation over HTTP.
//
// Routes:
//
//	GET  /                       recent builds
//	GET  /health                 liveness
//	GET  /builds/:id             answer key page
//	POST /api/compile            compile markup, JSON in and out
//	GET  /api/builds/:id         a build and its answers
//	GET  /api/builds/:id/bundle  the build as .tar.xz
//	GET  /ws                     compile events
//
// When a JWT secret is configured, /api and /ws require an HS256 bearer
// token.
package server

import (
	"context"
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"github.com/FocuswithJustin/ExamTeX/core/compiler"
	"github.com/FocuswithJustin/ExamTeX/core/template"
	"github.com/FocuswithJustin/ExamTeX/internal/cache"
	"github.com/FocuswithJustin/ExamTeX/internal/keystore"
	"github.com/FocuswithJustin/ExamTeX/internal/logging"
)

//go:embed templates/index.html
var indexHTML string

//go:embed templates/build.html
var buildHTML string

// Config holds server configuration.
type Config struct {
	Addr      string
	JWTSecret string // empty disables auth
	JWTIssuer string
	CacheSize int
	CacheTTL  time.Duration
	Templates template.Provider
	Store     *keystore.Store // nil keeps builds in memory only
}

// Server is the compile service.
type Server struct {
	cfg     Config
	engine  *gin.Engine
	hub     *Hub
	results *cache.LRU[string, *compiler.Documents]
	builds  *cache.LRU[string, *Build]
	stopHub context.CancelFunc
	hubDone chan struct{}
}

// maxRecentBuilds bounds the in-memory build history.
const maxRecentBuilds = 256

// New creates a server and starts its event hub. Close stops the hub.
func New(cfg Config) *Server {
	if cfg.Templates == nil {
		cfg.Templates = template.Default()
	}
	s := &Server{
		cfg:     cfg,
		hub:     NewHub(),
		results: cache.New[string, *compiler.Documents](cfg.CacheSize, cfg.CacheTTL),
		builds:  cache.New[string, *Build](maxRecentBuilds, 0),
		hubDone: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopHub = cancel
	go func() {
		defer close(s.hubDone)
		s.hub.Run(ctx)
	}()

	s.engine = s.routes()
	return s
}

func htmlRenderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	r.AddFromString("index", indexHTML)
	r.AddFromString("build", buildHTML)
	return r
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestID(), logging.RequestLogger())
	r.HTMLRender = htmlRenderer()

	r.GET("/", s.handleIndex)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/builds/:id", s.handleBuildPage)

	api := r.Group("/api")
	ws := r.Group("/ws")
	if s.cfg.JWTSecret != "" {
		auth := AuthMiddleware(s.cfg.JWTSecret, s.cfg.JWTIssuer)
		api.Use(auth)
		ws.Use(auth)
	}
	api.POST("/compile", s.handleCompile)
	api.GET("/builds/:id", s.handleGetBuild)
	api.GET("/builds/:id/bundle", s.handleBundle)
	ws.GET("", s.hub.serveWS)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Hub returns the event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close stops the event hub and disconnects its clients.
func (s *Server) Close() {
	s.stopHub()
	<-s.hubDone
}

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.ServerStartup("http", s.cfg.Addr, "auth", s.cfg.JWTSecret != "", "store", s.cfg.Store != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}
