package blogapi

// BlogPost is a row in the blogPosts table. Date is epoch milliseconds;
// Tags is a free-form string. Deleted is a soft-delete flag — rows are
// never physically removed through the API.
type BlogPost struct {
	ID             int64  `json:"id"`
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	HeaderImage    string `json:"headerImage"`
	ThumbnailImage string `json:"thumbnailImage"`
	Date           int64  `json:"date"`
	Tags           string `json:"tags"`
	Byline         string `json:"byline"`
	Deleted        bool   `json:"deleted"`
}

// User is an admin account. Accounts are seeded via the adduser CLI
// command; the API only reads them at login.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// EmailSignup is a newsletter registration. DateRegistered is epoch milliseconds.
type EmailSignup struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	DateRegistered int64  `json:"dateRegistered"`
}
