package musclegroups

import "errors"

var (
	ErrGroupNotFound = errors.New("muscle group not found")
	ErrUserNotFound  = errors.New("user not found")
)

type MuscleGroup struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}
