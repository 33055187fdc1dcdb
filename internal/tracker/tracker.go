package tracker

import (
	"context"
	"errors"
)

var (
	ErrUsernameTaken    = errors.New("username already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrNoCurrentUser    = errors.New("no user selected")
	ErrNoCurrentGroup   = errors.New("no muscle group open")
	ErrGroupNotFound    = errors.New("muscle group not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrStorageFull: the backing medium rejected a write. Recoverable,
	// the in-memory state is left as it was before the mutation.
	ErrStorageFull = errors.New("storage full")
)

type User struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
}

type MuscleGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Exercise struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Weight, Sets and Reps are stored exactly as typed, without numeric
	// coercion, and round-trip unchanged - even non-numeric input.
	Weight string `json:"weight"`
	Sets   string `json:"sets"`
	Reps   string `json:"reps"`
	// Image is the embeddable representation of the attached photo: an
	// inline base64 data URL in the local store, a server-side path like
	// /uploads/squat.png when backed by the remote API.
	Image string `json:"imageDataURL,omitempty"`
}

// ImageUpload is an optional photo attached to an exercise on create or
// update. A nil upload on update keeps the previously attached image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExerciseParams carries the user-entered exercise fields.
type ExerciseParams struct {
	Name   string
	Weight string
	Sets   string
	Reps   string
	Image  *ImageUpload
}

// Store is the canonical owner of the User -> MuscleGroup -> Exercise tree.
// Implementations: localstore (single JSON document on disk) and apiclient
// (remote CRUD API). Every mutation is durable before it returns.
type Store interface {
	// CreateUser adds a new user and makes it the current one.
	// Fails with ErrUsernameTaken on an exact (case-sensitive) match.
	CreateUser(ctx context.Context, username string) (*User, error)
	Users(ctx context.Context) ([]User, error)
	// SelectUser sets the current user; an empty username clears the
	// selection (and with it any derived current muscle group).
	SelectUser(ctx context.Context, username string) error
	CurrentUser() string

	// CreateMuscleGroup appends a group to the current user's sequence.
	// Insertion order is the only defined display order.
	CreateMuscleGroup(ctx context.Context, name string) (*MuscleGroup, error)
	MuscleGroups(ctx context.Context) ([]MuscleGroup, error)
	// DeleteMuscleGroup cascades to all exercises of the group.
	// Deleting an unknown id is a no-op, not an error.
	DeleteMuscleGroup(ctx context.Context, id int) error

	Exercises(ctx context.Context, groupID int) ([]Exercise, error)
	CreateExercise(ctx context.Context, groupID int, params ExerciseParams) (*Exercise, error)
	// UpdateExercise fails with ErrExerciseNotFound if the exercise is not
	// part of the given group. A nil params.Image keeps the existing image
	// unchanged - it is never cleared by an update.
	UpdateExercise(ctx context.Context, groupID, exerciseID int, params ExerciseParams) (*Exercise, error)
	// DeleteExercise is idempotent, like DeleteMuscleGroup.
	DeleteExercise(ctx context.Context, groupID, exerciseID int) error
}
