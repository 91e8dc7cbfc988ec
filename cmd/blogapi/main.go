package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/blogapi"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		runServe()
	case "adduser":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: blogapi adduser <username> <password>")
			os.Exit(1)
		}
		if err := runAddUser(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("blogapi %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func runServe() {
	app := blogapi.New(blogapi.Config{
		Name:         blogapi.EnvOr("SITE_NAME", "Blog"),
		URL:          blogapi.EnvOr("SITE_URL", "http://localhost:3000"),
		Description:  os.Getenv("SITE_DESCRIPTION"),
		Addr:         blogapi.EnvOr("ADDR", ":3000"),
		DatabasePath: blogapi.EnvOr("DATABASE_PATH", "data/blog.db"),
		ImageDir:     blogapi.EnvOr("IMAGE_DIR", "data/images"),
		Secret:       blogapi.MustEnv("SECRET_KEY"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Start(); err != nil {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

// runAddUser seeds an admin account. The API has no user management
// surface, so this is the only way accounts come into existence.
func runAddUser(username, password string) error {
	store, err := blogapi.NewStore(blogapi.EnvOr("DATABASE_PATH", "data/blog.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := store.CreateUser(username, string(hash)); err != nil {
		return err
	}
	fmt.Printf("created user %s\n", username)
	return nil
}

func printUsage() {
	fmt.Println(`blogapi - A headless blog backend built with Go, Echo, and SQLite

Usage:
  blogapi <command> [arguments]

Commands:
  serve                        Start the HTTP server (default)
  adduser <username> <pass>    Create an admin account
  version                      Print the blogapi version
  help                         Show this help message

Environment:
  SECRET_KEY        Required. HMAC secret for signing bearer tokens.
  DATABASE_PATH     SQLite database path (default data/blog.db)
  IMAGE_DIR         Uploaded image directory (default data/images)
  ADDR              Listen address (default :3000)
  SITE_NAME, SITE_URL, SITE_DESCRIPTION
                    Feed and sitemap metadata`)
}
