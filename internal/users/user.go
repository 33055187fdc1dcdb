package users

import "errors"

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}
