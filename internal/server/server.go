// Package server is the reference HTTP API for the Planner board. It serves
// the JSON endpoints the client in internal/api speaks, backed by
// internal/store.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/models"
	"github.com/fentz26/planner/internal/store"
)

// Server provides the HTTP API for Planner.
type Server struct {
	store    *store.Store
	cfg      Config
	log      *log.Logger
	sessions *sessions
	echo     *echo.Echo
	server   *http.Server
}

// New builds a server over st. An empty cfg.Secret is replaced with a
// random one, so sessions do not survive a restart.
func New(st *store.Store, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("PLANNER_SECRET not set; using a random secret, sessions end on restart")
	}
	if cfg.AdminPassword == "" {
		logger.Warn("PLANNER_ADMIN_PASSWORD not set; user deletion is disabled")
	}
	if cfg.AppPassword != "" {
		logger.Info("app lock enabled")
	}

	s := &Server{
		store:    st,
		cfg:      cfg,
		log:      logger,
		sessions: newSessions(secret, cfg.SessionTTL),
	}
	s.echo = s.routes()
	return s, nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(s.requestLogger)
	e.Use(noCache)
	e.Use(s.loadSession)
	e.Use(s.appLock)

	e.GET("/healthz", s.healthz)

	e.POST("/api/unlock", s.unlock)
	e.POST("/api/signup", s.signUp)
	e.POST("/api/signin", s.signIn)
	e.POST("/api/signout", s.signOut)
	e.GET("/api/session", s.session)

	e.GET("/api/users", s.listUsers)
	e.DELETE("/api/users/:id", s.deleteUser, requireViewer)

	e.GET("/api/tasks", s.listTasks)
	e.POST("/api/tasks", s.createTask, requireViewer)
	e.PUT("/api/tasks/:id", s.updateTask, requireViewer)
	e.DELETE("/api/tasks/:id", s.deleteTask, requireViewer)
	e.GET("/api/tasks/:id/comments", s.listComments, requireViewer)
	e.POST("/api/tasks/:id/comments", s.addComment, requireViewer)

	return e
}

// Handler exposes the routes, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on cfg.Listen until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.echo,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.log.WithFields(log.Fields{"addr": s.cfg.Listen, "driver": s.store.Driver()}).Info("starting planner server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	OK   bool   `json:"ok"`
	DB   string `json:"db"`
	Time string `json:"time"`
}

func (s *Server) healthz(c echo.Context) error {
	resp := HealthResponse{OK: true, DB: "ok", Time: time.Now().UTC().Format(time.RFC3339)}
	if err := s.store.Ping(c.Request().Context()); err != nil {
		resp.OK = false
		resp.DB = err.Error()
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		entry := s.log.WithFields(log.Fields{
			"method":   c.Request().Method,
			"path":     c.Path(),
			"status":   c.Response().Status,
			"duration": time.Since(start).String(),
		})
		if v, ok := viewerFrom(c); ok {
			entry = entry.WithField("user_id", v.UserID)
		}
		entry.Debug("request")
		return nil
	}
}

// noCache keeps the board authoritative; clients must never see a cached list.
func noCache(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "-1")
		return next(c)
	}
}

func requireViewer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := viewerFrom(c); !ok {
			return fail(c, http.StatusUnauthorized, msgAuthRequired)
		}
		return next(c)
	}
}

// appLock rejects /api calls until the client presents an unlock pass.
// It is a no-op when no app password is configured.
func (s *Server) appLock(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Request().URL.Path
		if s.cfg.AppPassword == "" || !strings.HasPrefix(path, "/api/") || path == "/api/unlock" {
			return next(c)
		}
		if ck, err := c.Cookie(models.UnlockCookieName); err == nil {
			_, perr := s.sessions.parseUnlock(ck.Value)
			if perr == nil {
				return next(c)
			}
			s.log.WithError(perr).Debug("ignoring unlock cookie")
		}
		return c.JSON(http.StatusForbidden, errorResponse{Error: msgAppLocked, Locked: true})
	}
}

// IsClosed reports whether err is the normal result of Shutdown.
func IsClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed)
}
