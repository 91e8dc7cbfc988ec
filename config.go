package blogapi

import (
	"log"
	"os"
	"time"
)

// Config holds all configuration for a blogapi server.
type Config struct {
	Name        string // Site name for the RSS channel (default "Blog")
	URL         string // Canonical URL for feeds and sitemap (default "http://localhost:3000")
	Description string // Site description for the RSS channel

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")
	ImageDir     string // Directory for uploaded images (default "data/images")

	Secret   string        // Required: HMAC secret for signing bearer tokens
	TokenTTL time.Duration // Token lifetime (default 6h)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.ImageDir == "" {
		c.ImageDir = "data/images"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 6 * time.Hour
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("blogapi: required environment variable %s is not set", key)
	}
	return v
}
