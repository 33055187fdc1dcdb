package exercises

import "errors"

var ErrExerciseNotFound = errors.New("exercise not found")

// Exercise as stored server-side. Weight, Sets and Reps come in as free-form
// text and are persisted exactly as typed, without numeric coercion.
// ImagePath is the public URL path of the attached photo (/uploads/<name>),
// empty when no photo is attached.
type Exercise struct {
	ID            int    `json:"id"`
	MuscleGroupID int    `json:"muscle_group_id"`
	Name          string `json:"name"`
	Weight        string `json:"weight"`
	Sets          string `json:"sets"`
	Reps          string `json:"reps"`
	ImagePath     string `json:"image_path,omitempty"`
}
