package blogservice

import (
	"database/sql"
	"time"
)

type BlogState string

const (
	StateDraft     BlogState = "draft"
	StatePublished BlogState = "published"
)

// Author is the slice of the user record that blog responses expose. The
// password hash never leaves the users table on this path.
type Author struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type Blog struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	// Body is stored in Markdown format.
	Body        string    `json:"body"`
	Author      Author    `json:"author"`
	State       BlogState `json:"state"`
	ReadCount   int       `json:"read_count"`
	ReadingTime string    `json:"reading_time"`
	CreatedAt   time.Time `json:"timestamp"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
}
