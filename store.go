package blogapi

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides typed queries for users,
// blog posts, and newsletter emails.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) ensureSchema() error {
	// Slug is intentionally not UNIQUE: two posts whose titles slugify the
	// same coexist, and lookups resolve to whichever row sorts first.
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    passwordHash TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS blogPosts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    date INTEGER NOT NULL,
    headerImage TEXT NOT NULL DEFAULT '',
    thumbnailImage TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    deleted INTEGER NOT NULL DEFAULT 0,
    byline TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS emails (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL,
    dateRegistered INTEGER NOT NULL
);
`)
	return err
}

// GetUserByUsername returns the user with the given username.
// Returns sql.ErrNoRows when no such user exists.
func (s *Store) GetUserByUsername(username string) (User, error) {
	var u User
	err := s.db.QueryRow(`SELECT id, username, passwordHash FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// CreateUser inserts a new admin account. The password must already be hashed.
func (s *Store) CreateUser(username, passwordHash string) error {
	_, err := s.db.Exec(`INSERT INTO users (username, passwordHash) VALUES (?, ?)`, username, passwordHash)
	return err
}

const postColumns = `id, slug, content, title, date, headerImage, thumbnailImage, tags, deleted, byline`

func scanPost(row interface{ Scan(...any) error }) (BlogPost, error) {
	var p BlogPost
	var deleted int
	err := row.Scan(&p.ID, &p.Slug, &p.Content, &p.Title, &p.Date,
		&p.HeaderImage, &p.ThumbnailImage, &p.Tags, &deleted, &p.Byline)
	if err != nil {
		return BlogPost{}, err
	}
	p.Deleted = deleted == 1
	return p, nil
}

// CreatePost inserts a new post row. Slug and defaults are the caller's
// responsibility; Deleted is always written as the flag's value.
func (s *Store) CreatePost(p BlogPost) error {
	deleted := 0
	if p.Deleted {
		deleted = 1
	}
	_, err := s.db.Exec(`INSERT INTO blogPosts (slug, content, title, headerImage, thumbnailImage, date, deleted, tags, byline)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Content, p.Title, p.HeaderImage, p.ThumbnailImage, p.Date, deleted, p.Tags, p.Byline)
	return err
}

// UpdatePost overwrites all mutable fields of the post currently stored
// under slug, including the row's slug itself and the deleted flag.
func (s *Store) UpdatePost(slug string, p BlogPost) error {
	deleted := 0
	if p.Deleted {
		deleted = 1
	}
	_, err := s.db.Exec(`UPDATE blogPosts SET content = ?, title = ?, headerImage = ?, thumbnailImage = ?, slug = ?, date = ?, tags = ?, deleted = ?, byline = ? WHERE slug = ?`,
		p.Content, p.Title, p.HeaderImage, p.ThumbnailImage, p.Slug, p.Date, p.Tags, deleted, p.Byline, slug)
	return err
}

// SoftDeletePost sets the deleted flag on the post with the given slug.
// No other fields change; updating the post with deleted=false restores it.
func (s *Store) SoftDeletePost(slug string) error {
	_, err := s.db.Exec(`UPDATE blogPosts SET deleted = 1 WHERE slug = ?`, slug)
	return err
}

// GetPost returns a single non-deleted post by slug. Deleted posts are
// hidden here regardless of who is asking. Returns sql.ErrNoRows when absent.
func (s *Store) GetPost(slug string) (BlogPost, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM blogPosts WHERE slug = ? AND deleted = 0`, slug)
	return scanPost(row)
}

// ListPosts returns posts ordered by date ascending. When visibleOnly is
// set, rows are restricted to non-deleted posts published at or before now
// (epoch milliseconds); otherwise every row is returned, drafts and
// deleted posts included.
func (s *Store) ListPosts(visibleOnly bool, now int64) ([]BlogPost, error) {
	var rows *sql.Rows
	var err error
	if visibleOnly {
		rows, err = s.db.Query(`SELECT `+postColumns+` FROM blogPosts WHERE date <= ? AND deleted = 0 ORDER BY date`, now)
	} else {
		rows, err = s.db.Query(`SELECT ` + postColumns + ` FROM blogPosts ORDER BY date`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]BlogPost, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// AddEmail inserts a newsletter signup with the given registration time
// (epoch milliseconds). No format validation, no duplicate check.
func (s *Store) AddEmail(email string, now int64) error {
	_, err := s.db.Exec(`INSERT INTO emails (email, dateRegistered) VALUES (?, ?)`, email, now)
	return err
}
