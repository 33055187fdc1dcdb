package view

import (
	"context"

	"github.com/2beens/gymtrack/internal/tracker"
)

// State is the current navigation position. The machine is strictly linear,
// there is no back-stack beyond one level:
//
//	UserSelectionIdle -> MuscleGroupList -> ExerciseList
//
// plus the EditForm overlay, reachable only from ExerciseList.
type State int

const (
	StateUserSelectionIdle State = iota
	StateMuscleGroupList
	StateExerciseList
)

func (s State) String() string {
	switch s {
	case StateUserSelectionIdle:
		return "user-selection"
	case StateMuscleGroupList:
		return "muscle-groups"
	case StateExerciseList:
		return "exercises"
	default:
		return "unknown"
	}
}

// EditForm holds the fields of the exercise being edited. The values are a
// snapshot taken when the form opens; the caller edits them in place and
// then submits. Image starts out nil on every open, so a selection from a
// previous edit can never be silently resubmitted.
type EditForm struct {
	ExerciseID int
	Name       string
	Weight     string
	Sets       string
	Reps       string
	Image      *tracker.ImageUpload
}

// Snapshot is everything the active view needs to render. It is rebuilt
// from the store on demand, never cached.
type Snapshot struct {
	State        State
	CurrentUser  string
	Users        []tracker.User
	MuscleGroups []tracker.MuscleGroup
	// GroupName is the view header while an exercise list is open.
	GroupName string
	Exercises []tracker.Exercise
	Editing   *EditForm
}

// Controller drives the navigation state machine over an injected store.
// It holds identifiers only - current group, exercise under edit - and
// re-reads everything else from the store, so the rendered view can never
// diverge from durable state.
type Controller struct {
	store          tracker.Store
	state          State
	currentGroupID int
	editing        *EditForm
}

func NewController(store tracker.Store) *Controller {
	c := &Controller{
		store: store,
		state: StateUserSelectionIdle,
	}
	if store.CurrentUser() != "" {
		c.state = StateMuscleGroupList
	}
	return c
}

func (c *Controller) State() State {
	return c.state
}

// CreateUser adds the user and lands on their (empty) muscle group list.
func (c *Controller) CreateUser(ctx context.Context, username string) error {
	if _, err := c.store.CreateUser(ctx, username); err != nil {
		return err
	}
	c.currentGroupID = 0
	c.editing = nil
	c.state = StateMuscleGroupList
	return nil
}

// SelectUser switches to the given user's muscle group list. An empty
// username clears the selection and returns to the idle screen.
func (c *Controller) SelectUser(ctx context.Context, username string) error {
	if err := c.store.SelectUser(ctx, username); err != nil {
		return err
	}
	c.currentGroupID = 0
	c.editing = nil
	if username == "" {
		c.state = StateUserSelectionIdle
	} else {
		c.state = StateMuscleGroupList
	}
	return nil
}

func (c *Controller) CreateMuscleGroup(ctx context.Context, name string) error {
	_, err := c.store.CreateMuscleGroup(ctx, name)
	return err
}

// OpenMuscleGroup transitions to the exercise list of the given group.
func (c *Controller) OpenMuscleGroup(ctx context.Context, groupID int) error {
	if c.state == StateUserSelectionIdle {
		return tracker.ErrNoCurrentUser
	}
	if _, err := c.store.Exercises(ctx, groupID); err != nil {
		return err
	}
	c.currentGroupID = groupID
	c.state = StateExerciseList
	return nil
}

// Back returns from the exercise list to the muscle group list.
func (c *Controller) Back() {
	if c.state != StateExerciseList {
		return
	}
	c.currentGroupID = 0
	c.editing = nil
	c.state = StateMuscleGroupList
}

// DeleteMuscleGroup removes the group and its exercises. Deleting the group
// whose exercise list is currently open closes that list and returns to the
// muscle group overview.
func (c *Controller) DeleteMuscleGroup(ctx context.Context, groupID int) error {
	if err := c.store.DeleteMuscleGroup(ctx, groupID); err != nil {
		return err
	}
	if c.state == StateExerciseList && c.currentGroupID == groupID {
		c.Back()
	}
	return nil
}

func (c *Controller) CreateExercise(ctx context.Context, params tracker.ExerciseParams) error {
	if c.state != StateExerciseList {
		return tracker.ErrNoCurrentGroup
	}
	_, err := c.store.CreateExercise(ctx, c.currentGroupID, params)
	return err
}

func (c *Controller) DeleteExercise(ctx context.Context, exerciseID int) error {
	if c.state != StateExerciseList {
		return tracker.ErrNoCurrentGroup
	}
	if err := c.store.DeleteExercise(ctx, c.currentGroupID, exerciseID); err != nil {
		return err
	}
	if c.editing != nil && c.editing.ExerciseID == exerciseID {
		c.editing = nil
	}
	return nil
}

// OpenEditForm opens the edit overlay for the given exercise, pre-filled
// with its current field values. The returned form is live: edit the fields
// in place, then call SaveEdit, or CloseEditForm to discard.
func (c *Controller) OpenEditForm(ctx context.Context, exerciseID int) (*EditForm, error) {
	if c.state != StateExerciseList {
		return nil, tracker.ErrNoCurrentGroup
	}

	exercises, err := c.store.Exercises(ctx, c.currentGroupID)
	if err != nil {
		return nil, err
	}

	for _, e := range exercises {
		if e.ID == exerciseID {
			c.editing = &EditForm{
				ExerciseID: e.ID,
				Name:       e.Name,
				Weight:     e.Weight,
				Sets:       e.Sets,
				Reps:       e.Reps,
				// image deliberately left empty
			}
			return c.editing, nil
		}
	}
	return nil, tracker.ErrExerciseNotFound
}

// CloseEditForm discards the overlay without saving. Covers both the cancel
// button and a click outside the form.
func (c *Controller) CloseEditForm() {
	c.editing = nil
}

// SaveEdit submits the open edit form and closes the overlay. A form with
// no image selected leaves the stored image untouched.
func (c *Controller) SaveEdit(ctx context.Context) error {
	if c.editing == nil {
		return tracker.ErrExerciseNotFound
	}

	_, err := c.store.UpdateExercise(ctx, c.currentGroupID, c.editing.ExerciseID, tracker.ExerciseParams{
		Name:   c.editing.Name,
		Weight: c.editing.Weight,
		Sets:   c.editing.Sets,
		Reps:   c.editing.Reps,
		Image:  c.editing.Image,
	})
	if err != nil {
		return err
	}

	c.editing = nil
	return nil
}

// Snapshot assembles the data for the currently active view by re-reading
// the store.
func (c *Controller) Snapshot(ctx context.Context) (*Snapshot, error) {
	users, err := c.store.Users(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		State:       c.state,
		CurrentUser: c.store.CurrentUser(),
		Users:       users,
		Editing:     c.editing,
	}

	if c.state == StateUserSelectionIdle {
		return snap, nil
	}

	snap.MuscleGroups, err = c.store.MuscleGroups(ctx)
	if err != nil {
		return nil, err
	}

	if c.state != StateExerciseList {
		return snap, nil
	}

	for _, g := range snap.MuscleGroups {
		if g.ID == c.currentGroupID {
			snap.GroupName = g.Name
			break
		}
	}
	snap.Exercises, err = c.store.Exercises(ctx, c.currentGroupID)
	if err != nil {
		return nil, err
	}

	return snap, nil
}
