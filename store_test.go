package blogapi

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)

	if s == nil {
		t.Fatal("store should not be nil")
	}
	if err := s.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)

	post := BlogPost{
		Slug:           "test-title",
		Title:          "test title",
		Content:        "Some content.",
		HeaderImage:    "header.jpg",
		ThumbnailImage: "thumb.jpg",
		Date:           1700000000000,
		Tags:           "go,web",
		Byline:         "the author",
	}

	if err := s.CreatePost(post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	got, err := s.GetPost("test-title")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}

	if got.ID == 0 {
		t.Error("ID should be assigned by the database")
	}
	if got.Slug != post.Slug {
		t.Errorf("Slug = %q, want %q", got.Slug, post.Slug)
	}
	if got.Title != post.Title {
		t.Errorf("Title = %q, want %q", got.Title, post.Title)
	}
	if got.Content != post.Content {
		t.Errorf("Content = %q, want %q", got.Content, post.Content)
	}
	if got.HeaderImage != post.HeaderImage {
		t.Errorf("HeaderImage = %q, want %q", got.HeaderImage, post.HeaderImage)
	}
	if got.Date != post.Date {
		t.Errorf("Date = %d, want %d", got.Date, post.Date)
	}
	if got.Tags != post.Tags {
		t.Errorf("Tags = %q, want %q", got.Tags, post.Tags)
	}
	if got.Byline != post.Byline {
		t.Errorf("Byline = %q, want %q", got.Byline, post.Byline)
	}
	if got.Deleted {
		t.Error("Deleted should be false")
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetPost("nonexistent")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestGetPostHidesDeleted(t *testing.T) {
	s := setupTestStore(t)

	if err := s.CreatePost(BlogPost{Slug: "hidden", Title: "Hidden", Date: 1}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.SoftDeletePost("hidden"); err != nil {
		t.Fatalf("SoftDeletePost failed: %v", err)
	}

	// GetPost never returns deleted rows, regardless of caller.
	_, err := s.GetPost("hidden")
	if err != sql.ErrNoRows {
		t.Errorf("GetPost should hide deleted post, got err: %v", err)
	}

	// The row still exists in the unrestricted listing.
	posts, err := s.ListPosts(false, time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 || !posts[0].Deleted {
		t.Errorf("deleted post should remain listed with flag set, got %+v", posts)
	}
}

func TestListPostsVisibility(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UnixMilli()

	posts := []BlogPost{
		{Slug: "past", Title: "Past", Date: now - 1000},
		{Slug: "future", Title: "Future", Date: now + 60*60*1000},
		{Slug: "gone", Title: "Gone", Date: now - 2000, Deleted: true},
	}
	for _, p := range posts {
		if err := s.CreatePost(p); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	visible, err := s.ListPosts(true, now)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(visible) != 1 || visible[0].Slug != "past" {
		t.Errorf("visible listing should contain only the past post, got %+v", visible)
	}

	all, err := s.ListPosts(false, now)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unrestricted listing count = %d, want 3", len(all))
	}
}

func TestListPostsOrderedByDateAscending(t *testing.T) {
	s := setupTestStore(t)

	if err := s.CreatePost(BlogPost{Slug: "newer", Title: "Newer", Date: 2000}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.CreatePost(BlogPost{Slug: "older", Title: "Older", Date: 1000}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	got, err := s.ListPosts(true, 5000)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("count = %d, want 2", len(got))
	}
	if got[0].Slug != "older" || got[1].Slug != "newer" {
		t.Errorf("posts should be ordered by date ascending, got %s then %s", got[0].Slug, got[1].Slug)
	}
}

func TestUpdatePostChangesSlugAndRestores(t *testing.T) {
	s := setupTestStore(t)

	if err := s.CreatePost(BlogPost{Slug: "first-title", Title: "first title", Date: 1}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.SoftDeletePost("first-title"); err != nil {
		t.Fatalf("SoftDeletePost failed: %v", err)
	}

	// Updating rewrites the slug and, with Deleted false, un-deletes the row.
	err := s.UpdatePost("first-title", BlogPost{
		Slug:  "second-title",
		Title: "second title",
		Date:  2,
	})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	if _, err := s.GetPost("first-title"); err != sql.ErrNoRows {
		t.Errorf("old slug should no longer resolve, got err: %v", err)
	}
	got, err := s.GetPost("second-title")
	if err != nil {
		t.Fatalf("GetPost(second-title) failed: %v", err)
	}
	if got.Title != "second title" || got.Deleted {
		t.Errorf("unexpected post after update: %+v", got)
	}
}

func TestSoftDeleteKeepsOtherFields(t *testing.T) {
	s := setupTestStore(t)

	if err := s.CreatePost(BlogPost{Slug: "keep", Title: "Keep", Content: "body", Date: 42}); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if err := s.SoftDeletePost("keep"); err != nil {
		t.Fatalf("SoftDeletePost failed: %v", err)
	}

	all, err := s.ListPosts(false, 1000)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("count = %d, want 1", len(all))
	}
	got := all[0]
	if !got.Deleted {
		t.Error("Deleted should be true")
	}
	if got.Title != "Keep" || got.Content != "body" || got.Date != 42 {
		t.Errorf("other fields should be untouched, got %+v", got)
	}
}

func TestSoftDeleteNonexistent(t *testing.T) {
	s := setupTestStore(t)

	// UPDATE on an absent slug matches zero rows and is not an error.
	if err := s.SoftDeletePost("nonexistent"); err != nil {
		t.Errorf("SoftDeletePost on nonexistent should not error, got: %v", err)
	}
}

func TestUsers(t *testing.T) {
	s := setupTestStore(t)

	if err := s.CreateUser("admin", "hash-value"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.GetUserByUsername("admin")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.ID == 0 {
		t.Error("ID should be assigned by the database")
	}
	if got.Username != "admin" || got.PasswordHash != "hash-value" {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := s.GetUserByUsername("nobody"); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows for unknown user, got %v", err)
	}

	// Usernames are unique.
	if err := s.CreateUser("admin", "other-hash"); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestAddEmail(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UnixMilli()

	if err := s.AddEmail("reader@example.com", now); err != nil {
		t.Fatalf("AddEmail failed: %v", err)
	}
	// Duplicates are accepted as-is.
	if err := s.AddEmail("reader@example.com", now); err != nil {
		t.Fatalf("AddEmail duplicate failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM emails WHERE email = ?`, "reader@example.com").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("email count = %d, want 2", count)
	}
}
