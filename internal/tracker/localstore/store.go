package localstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/2beens/gymtrack/internal/tracker"
	"github.com/2beens/gymtrack/pkg"

	log "github.com/sirupsen/logrus"
)

// Store keeps the canonical User -> MuscleGroup -> Exercise tree in memory
// and mirrors it into a single JSON document on disk after every mutation.
// Single-writer: all mutations run to completion under one lock, there is no
// concurrent mutation path.
type Store struct {
	path  string
	mutex sync.RWMutex
	data  *tree
	// monotonic id counter, unique per store
	// (replaces the timestamp-derived ids of older versions)
	nextID int
}

func New(path string) *Store {
	data := loadTree(path)
	return &Store{
		path:   path,
		data:   data,
		nextID: maxID(data) + 1,
	}
}

func maxID(t *tree) int {
	max := 0
	for _, user := range t.Users {
		for _, group := range user.MuscleGroups {
			if group.ID > max {
				max = group.ID
			}
			for _, e := range group.Exercises {
				if e.ID > max {
					max = e.ID
				}
			}
		}
	}
	return max
}

// mutate runs fn on the tree, then persists. If the persist fails, the tree
// is rolled back to its pre-mutation state so that memory and disk never
// diverge, and the error is returned to the caller.
func (s *Store) mutate(fn func(t *tree) error) error {
	snapshot, err := json.Marshal(s.data)
	if err != nil {
		return err
	}

	if err := fn(s.data); err != nil {
		return err
	}

	if err := saveTree(s.path, s.data); err != nil {
		var restored tree
		if restoreErr := json.Unmarshal(snapshot, &restored); restoreErr != nil {
			log.Errorf("rollback after failed persist: %s", restoreErr)
		} else {
			s.data = &restored
		}
		return err
	}

	return nil
}

func (s *Store) CreateUser(_ context.Context, username string) (*tracker.User, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.data.Users[username]; exists {
		return nil, tracker.ErrUsernameTaken
	}

	err := s.mutate(func(t *tree) error {
		t.Users[username] = &userRecord{
			MuscleGroups: []*groupRecord{},
		}
		// the newly added user becomes current
		t.CurrentUser = username
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &tracker.User{Username: username}, nil
}

func (s *Store) Users(_ context.Context) ([]tracker.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	users := make([]tracker.User, 0, len(s.data.Users))
	for username := range s.data.Users {
		users = append(users, tracker.User{Username: username})
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func (s *Store) SelectUser(_ context.Context, username string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if username != "" {
		if _, exists := s.data.Users[username]; !exists {
			return tracker.ErrUserNotFound
		}
	}

	return s.mutate(func(t *tree) error {
		t.CurrentUser = username
		return nil
	})
}

func (s *Store) CurrentUser() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data.CurrentUser
}

func (s *Store) CreateMuscleGroup(_ context.Context, name string) (*tracker.MuscleGroup, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user, err := s.currentUserRecord()
	if err != nil {
		return nil, err
	}

	newGroup := &groupRecord{
		ID:        s.nextID,
		Name:      name,
		Exercises: []tracker.Exercise{},
	}

	err = s.mutate(func(*tree) error {
		user.MuscleGroups = append(user.MuscleGroups, newGroup)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.nextID++
	return &tracker.MuscleGroup{ID: newGroup.ID, Name: newGroup.Name}, nil
}

func (s *Store) MuscleGroups(_ context.Context) ([]tracker.MuscleGroup, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, err := s.currentUserRecord()
	if err != nil {
		return nil, err
	}

	// insertion order is the only defined display order
	groups := make([]tracker.MuscleGroup, 0, len(user.MuscleGroups))
	for _, g := range user.MuscleGroups {
		groups = append(groups, tracker.MuscleGroup{ID: g.ID, Name: g.Name})
	}
	return groups, nil
}

func (s *Store) DeleteMuscleGroup(_ context.Context, id int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user, err := s.currentUserRecord()
	if err != nil {
		return err
	}

	found := false
	for _, g := range user.MuscleGroups {
		if g.ID == id {
			found = true
			break
		}
	}
	if !found {
		// idempotent: deleting an unknown group is a no-op
		return nil
	}

	return s.mutate(func(*tree) error {
		groups := user.MuscleGroups[:0]
		for _, g := range user.MuscleGroups {
			if g.ID != id {
				groups = append(groups, g)
			}
		}
		// the group's exercises go with it
		user.MuscleGroups = groups
		return nil
	})
}

func (s *Store) Exercises(_ context.Context, groupID int) ([]tracker.Exercise, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	group, err := s.groupRecord(groupID)
	if err != nil {
		return nil, err
	}

	exercises := make([]tracker.Exercise, len(group.Exercises))
	copy(exercises, group.Exercises)
	return exercises, nil
}

func (s *Store) CreateExercise(_ context.Context, groupID int, params tracker.ExerciseParams) (*tracker.Exercise, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	group, err := s.groupRecord(groupID)
	if err != nil {
		return nil, err
	}

	newExercise := tracker.Exercise{
		ID:     s.nextID,
		Name:   params.Name,
		Weight: params.Weight,
		Sets:   params.Sets,
		Reps:   params.Reps,
	}
	if params.Image != nil {
		newExercise.Image = pkg.EncodeDataURL(params.Image.ContentType, params.Image.Data)
	}

	err = s.mutate(func(*tree) error {
		group.Exercises = append(group.Exercises, newExercise)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.nextID++
	return &newExercise, nil
}

func (s *Store) UpdateExercise(_ context.Context, groupID, exerciseID int, params tracker.ExerciseParams) (*tracker.Exercise, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	group, err := s.groupRecord(groupID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range group.Exercises {
		if group.Exercises[i].ID == exerciseID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, tracker.ErrExerciseNotFound
	}

	var updated tracker.Exercise
	err = s.mutate(func(*tree) error {
		e := &group.Exercises[index]
		e.Name = params.Name
		e.Weight = params.Weight
		e.Sets = params.Sets
		e.Reps = params.Reps
		// no new image supplied: the existing one is kept, never cleared
		if params.Image != nil {
			e.Image = pkg.EncodeDataURL(params.Image.ContentType, params.Image.Data)
		}
		updated = *e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *Store) DeleteExercise(_ context.Context, groupID, exerciseID int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	group, err := s.groupRecord(groupID)
	if err != nil {
		return err
	}

	found := false
	for i := range group.Exercises {
		if group.Exercises[i].ID == exerciseID {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return s.mutate(func(*tree) error {
		exercises := group.Exercises[:0]
		for _, e := range group.Exercises {
			if e.ID != exerciseID {
				exercises = append(exercises, e)
			}
		}
		group.Exercises = exercises
		return nil
	})
}

func (s *Store) currentUserRecord() (*userRecord, error) {
	if s.data.CurrentUser == "" {
		return nil, tracker.ErrNoCurrentUser
	}
	user, exists := s.data.Users[s.data.CurrentUser]
	if !exists {
		return nil, tracker.ErrNoCurrentUser
	}
	return user, nil
}

func (s *Store) groupRecord(groupID int) (*groupRecord, error) {
	user, err := s.currentUserRecord()
	if err != nil {
		return nil, err
	}
	if groupID <= 0 {
		return nil, tracker.ErrNoCurrentGroup
	}
	for _, g := range user.MuscleGroups {
		if g.ID == groupID {
			return g, nil
		}
	}
	return nil, tracker.ErrGroupNotFound
}
