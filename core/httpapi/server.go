// Package httpapi serves the small operations API next to the bot:
// a health probe and token-protected read-only endpoints.
package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m3rciful/signalbot/core/buildinfo"
	"github.com/m3rciful/signalbot/core/logger"
)

// StatsFunc produces the JSON body of GET /stats.
type StatsFunc func(ctx context.Context) (any, error)

// Options configures a Server.
type Options struct {
	Listen string
	// Token guards every endpoint except /healthz.
	Token string
	Stats StatsFunc
}

// Server is the ops HTTP server.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	done   chan error
}

// New builds the server and its routes without listening.
func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Version, "commit": buildinfo.Commit})
	})

	api := r.Group("/", BearerAuth(opts.Token))
	api.GET("/stats", func(c *gin.Context) {
		if opts.Stats == nil {
			c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "stats not available"})
			return
		}
		stats, err := opts.Stats(c.Request.Context())
		if err != nil {
			logger.Error(c.Request.Context(), "ops", "ops.stats_failed", slog.Any("err", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	return &Server{
		engine: r,
		srv: &http.Server{
			Addr:              opts.Listen,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.done = make(chan error, 1)
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	logger.Info(context.Background(), "ops", "ops.listen", slog.String("addr", ln.Addr().String()))
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.done == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-s.done
}

// BearerAuth rejects requests whose Authorization header does not carry
// token. An empty token rejects everything.
func BearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug(c.Request.Context(), "ops", "ops.request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("code", c.Writer.Status()),
			slog.Duration("duration", logger.Took(start)),
		)
	}
}
