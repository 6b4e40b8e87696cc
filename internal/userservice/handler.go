package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openpress/blogapi/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid credentials")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache) *UserService {
	return &UserService{
		m:  newUserModel(db),
		mb: mb,
		c:  c,
	}
}

// SignupUser creates a new user account, issues an access token, and
// publishes a user.created event for the welcome email. The duplicate-email
// check is read-then-write; the database constraint covers the race window.
func (s *UserService) SignupUser(ctx context.Context, firstName, lastName, email, password string) (*User, *Token, error) {
	v := common.NewValidator()
	validateName(v, firstName, "first_name")
	validateName(v, lastName, "last_name")
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	exists, err := s.m.emailExists(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, ErrDuplicateEmail
	}

	u := User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
	}

	if err := u.Password.set(password); err != nil {
		return nil, nil, err
	}

	if err := s.m.insertUser(ctx, &u); err != nil {
		return nil, nil, err
	}

	token, err := s.m.createToken(ctx, u.ID, AccessTokenTime)
	if err != nil {
		return nil, nil, err
	}

	data := struct {
		Email     string
		FirstName string
	}{
		Email:     u.Email,
		FirstName: u.FirstName,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}

	err = s.mb.Publish(ctx, eventData, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		return nil, nil, err
	}

	return &u, token, nil
}

// LoginUser authenticates an email and password pair and issues a fresh
// access token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*User, *Token, error) {
	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrAuthenticationFailure
	}

	token, err := s.m.createToken(ctx, user.ID, AccessTokenTime)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// GetUserByAccessToken resolves a presented credential to its user. Hits are
// cached by token hash so the hot authenticate path skips the database.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)

	if cached, ok := s.c.Get(common.CacheKeyUserByToken(hash)); ok {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}

	user, err := s.m.getUserByTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUserByToken(hash), user)

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, id)
}

// LogoutUser revokes every token issued to the user and drops the presented
// token from the cache.
func (s *UserService) LogoutUser(ctx context.Context, userID int, token string) error {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.deleteTokensForUser(ctx, userID); err != nil {
		return err
	}

	if token != "" {
		s.c.Delete(common.CacheKeyUserByToken(hashToken(token)))
	}

	return nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
