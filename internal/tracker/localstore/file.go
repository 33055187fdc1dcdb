package localstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/2beens/gymtrack/internal/tracker"

	log "github.com/sirupsen/logrus"
)

// on-disk shape, the single JSON document holding the whole tree:
//
//	{
//	  "users": { "<username>": { "muscleGroups": [ {id, name, exercises: [...]}]}},
//	  "currentUser": "<username>"
//	}
type tree struct {
	Users       map[string]*userRecord `json:"users"`
	CurrentUser string                 `json:"currentUser"`
}

type userRecord struct {
	MuscleGroups []*groupRecord `json:"muscleGroups"`
}

type groupRecord struct {
	ID        int                `json:"id"`
	Name      string             `json:"name"`
	Exercises []tracker.Exercise `json:"exercises"`
}

func newTree() *tree {
	return &tree{
		Users: make(map[string]*userRecord),
	}
}

// loadTree reads the data file. Missing or corrupt data yields the empty
// default tree rather than an error - a fresh session starts from scratch.
func loadTree(path string) *tree {
	dataJson, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("read tracker data file [%s]: %s", path, err)
		}
		return newTree()
	}

	var t tree
	if err := json.Unmarshal(dataJson, &t); err != nil {
		log.Warnf("tracker data file [%s] corrupt, starting fresh: %s", path, err)
		return newTree()
	}
	if t.Users == nil {
		t.Users = make(map[string]*userRecord)
	}
	// null user or group records parse fine but hold no data, the file
	// cannot be trusted
	for username, user := range t.Users {
		if user == nil {
			log.Warnf("tracker data file [%s] holds null record for user [%s], starting fresh", path, username)
			return newTree()
		}
		for _, group := range user.MuscleGroups {
			if group == nil {
				log.Warnf("tracker data file [%s] holds null muscle group for user [%s], starting fresh", path, username)
				return newTree()
			}
		}
	}
	return &t
}

// saveTree serializes the whole tree to the data file. A rejected write is
// reported as tracker.ErrStorageFull - recoverable, the caller keeps running.
func saveTree(path string, t *tree) error {
	dataJson, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal tracker data: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s", tracker.ErrStorageFull, err)
	}
	defer func() {
		if err := dst.Close(); err != nil {
			log.Warnf("close tracker data file: %s", err)
		}
	}()

	if _, err := io.Copy(dst, bytes.NewReader(dataJson)); err != nil {
		return fmt.Errorf("%w: %s", tracker.ErrStorageFull, err)
	}

	return nil
}
