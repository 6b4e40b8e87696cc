package userservice

import (
	"database/sql"
	"time"

	"github.com/openpress/blogapi/internal/common"
)

const (
	// AccessTokenTime is how long an issued credential stays valid. The
	// browser cookie written by the app layer uses the same lifetime.
	AccessTokenTime time.Duration = 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m  *DBModel
	mb common.MessageProducer
	c  *common.Cache
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Token is the opaque credential handed to a caller: 26 base32 characters,
// stored server side as a sha256 hash.
type Token struct {
	Plain  string    `json:"token"`
	Hash   []byte    `json:"-"`
	UserID int       `json:"-"`
	Expiry time.Time `json:"expiry"`
}
