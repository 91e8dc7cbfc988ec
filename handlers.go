package blogapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// looseBool accepts JSON booleans and numbers. Clients of the old surface
// send deleted as 0/1, so a nonzero number counts as true.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("true")):
		*b = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*b = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = n != 0
	}
	return nil
}

// postRequest is the body of create and update calls. A zero Date on create
// means "now"; an absent Deleted on update means false, so updating a post
// without the flag un-deletes it.
type postRequest struct {
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	HeaderImage    string    `json:"headerImage"`
	ThumbnailImage string    `json:"thumbnailImage"`
	Date           int64     `json:"date"`
	Tags           string    `json:"tags"`
	Byline         string    `json:"byline"`
	Deleted        looseBool `json:"deleted"`
}

func (r postRequest) toPost() BlogPost {
	return BlogPost{
		Slug:           Slugify(r.Title),
		Title:          r.Title,
		Content:        r.Content,
		HeaderImage:    r.HeaderImage,
		ThumbnailImage: r.ThumbnailImage,
		Date:           r.Date,
		Tags:           r.Tags,
		Byline:         r.Byline,
		Deleted:        bool(r.Deleted),
	}
}

func (a *App) handleCreatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	post := req.toPost()
	post.Deleted = false
	if post.Date == 0 {
		post.Date = time.Now().UnixMilli()
	}
	if err := a.Store.CreatePost(post); err != nil {
		c.Logger().Errorf("create post: %v", err)
		return c.String(http.StatusInternalServerError, "error writing to db")
	}
	return c.JSON(http.StatusCreated, map[string]bool{"success": true})
}

// handleListPosts applies the visibility policy: anonymous callers see only
// non-deleted posts published at or before now, authenticated callers see
// everything. Ordered by publish date ascending either way.
func (a *App) handleListPosts(c echo.Context) error {
	_, authenticated := UserID(c)
	posts, err := a.Store.ListPosts(!authenticated, time.Now().UnixMilli())
	if err != nil {
		c.Logger().Errorf("list posts: %v", err)
		return c.String(http.StatusInternalServerError, "error reading from db")
	}
	return c.JSON(http.StatusOK, posts)
}

// handleGetPost is public and always hides deleted posts, even for callers
// holding a valid token. An absent row yields 200 with a null body, not 404.
func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("slug"))
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusOK, nil)
	}
	if err != nil {
		c.Logger().Errorf("get post: %v", err)
		return c.String(http.StatusInternalServerError, "error reading from db")
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	// Slug is recomputed from the new title, so a rename moves the post to
	// a new URL and the old slug stops resolving.
	if err := a.Store.UpdatePost(c.Param("slug"), req.toPost()); err != nil {
		c.Logger().Errorf("update post: %v", err)
		return c.String(http.StatusInternalServerError, "error writing to db")
	}
	return c.String(http.StatusCreated, "success")
}

func (a *App) handleDeletePost(c echo.Context) error {
	if err := a.Store.SoftDeletePost(c.Param("slug")); err != nil {
		c.Logger().Errorf("delete post: %v", err)
		return c.String(http.StatusInternalServerError, "error deleting from db")
	}
	return c.String(http.StatusCreated, "success")
}

type newsletterRequest struct {
	Email string `json:"email"`
}

func (a *App) handleNewsletterSignup(c echo.Context) error {
	var req newsletterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := a.Store.AddEmail(req.Email, time.Now().UnixMilli()); err != nil {
		c.Logger().Errorf("newsletter signup: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.String(http.StatusCreated, "success")
}
