// Package blogapi is a headless JSON blog backend built with Go, Echo, and SQLite.
// It provides admin login with bearer tokens, post CRUD with soft-delete and
// publish-date visibility rules, image uploads with resized variants, and
// newsletter signups.
package blogapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// App is the central blogapi application. It wires together the store,
// auth middleware, and handlers.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store

	customRoutes []func(*App)
}

// New creates a new blogapi App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, middleware, and routes, then starts the
// server. It blocks until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) init() error {
	if a.Config.Secret == "" {
		return fmt.Errorf("blogapi: Secret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blogapi: init store: %w", err)
	}
	a.Store = store

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Uploaded originals and their resized variants are plain files served
	// straight from the image directory.
	e.Static("/api/images", a.Config.ImageDir)

	e.GET("/healthz", a.handleHealth)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.POST("/api/blog/login", a.handleLogin)
	e.GET("/protected", a.handleProtected, a.RequireAuth)

	e.POST("/api/blog/posts", a.handleCreatePost, a.RequireAuth)
	e.GET("/api/blog/posts", a.handleListPosts, a.OptionalAuth)
	e.GET("/api/blog/posts/:slug", a.handleGetPost)
	e.PUT("/api/blog/posts/:slug", a.handleUpdatePost, a.RequireAuth)
	e.DELETE("/api/blog/posts/:slug", a.handleDeletePost, a.RequireAuth)

	e.POST("/api/blog/images", a.handleImageUpload, a.RequireAuth)
	e.GET("/api/blog/images", a.handleListImages)

	e.POST("/api/sign-up-for-newsletter", a.handleNewsletterSignup)
}

// Shutdown gracefully stops the server and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.Echo.Shutdown(ctx); err != nil {
		return err
	}
	return a.Close()
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(); err != nil {
		return c.String(http.StatusServiceUnavailable, "db unreachable")
	}
	return c.String(http.StatusOK, "ok")
}
