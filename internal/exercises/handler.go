package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/internal/uploads"
	"github.com/2beens/gymtrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

const maxUploadSize = 16 << 20 // 16 MB

type exercisesRepo interface {
	Add(ctx context.Context, exercise Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	ListForGroup(ctx context.Context, groupID int) ([]Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id int) error
}

type imageStore interface {
	Save(ctx context.Context, filename string, src io.Reader) (string, error)
	Delete(ctx context.Context, urlPath string) error
}

type Handler struct {
	repo    exercisesRepo
	images  imageStore
	metrics *metrics.Manager
}

func NewHandler(repo exercisesRepo, images imageStore, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		images:  images,
		metrics: metrics,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	groupID, err := pathID(r, "groupId")
	if err != nil {
		pkg.WriteJSONError(w, "invalid muscle group id", http.StatusBadRequest)
		return
	}

	exercises, err := handler.repo.ListForGroup(ctx, groupID)
	if err != nil {
		log.Errorf("list exercises for group %d: %s", groupID, err)
		pkg.WriteJSONError(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	if len(exercises) == 0 {
		exercises = []Exercise{}
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("marshal exercises: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exercisesJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	groupID, err := pathID(r, "groupId")
	if err != nil {
		pkg.WriteJSONError(w, "invalid muscle group id", http.StatusBadRequest)
		return
	}

	exercise, ok := handler.exerciseFromForm(ctx, w, r)
	if !ok {
		return
	}
	exercise.MuscleGroupID = groupID

	addedExercise, err := handler.repo.Add(ctx, *exercise)
	if err != nil {
		log.Errorf("failed to add exercise [%s] to group %d: %s", exercise.Name, groupID, err)
		pkg.WriteJSONError(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterExercises.Inc()

	exerciseJson, err := json.Marshal(addedExercise)
	if err != nil {
		log.Errorf("marshal added exercise: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new exercise added: [%s] %d, group %d", addedExercise.Name, addedExercise.ID, groupID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	existing, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to update exercise", http.StatusInternalServerError)
		return
	}

	updated, ok := handler.exerciseFromForm(ctx, w, r)
	if !ok {
		return
	}
	updated.ID = existing.ID
	updated.MuscleGroupID = existing.MuscleGroupID

	// no new image in the form: the stored one stays, it is never cleared
	replacedImage := ""
	if updated.ImagePath == "" {
		updated.ImagePath = existing.ImagePath
	} else if existing.ImagePath != "" {
		replacedImage = existing.ImagePath
	}

	if err := handler.repo.Update(ctx, updated); err != nil {
		log.Errorf("failed to update exercise %d: %s", id, err)
		// the new image was stored but is not referenced by any row
		if updated.ImagePath != existing.ImagePath {
			if delErr := handler.images.Delete(ctx, updated.ImagePath); delErr != nil {
				log.Errorf("failed to remove unreferenced image %s: %s", updated.ImagePath, delErr)
			}
		}
		pkg.WriteJSONError(w, "failed to update exercise", http.StatusInternalServerError)
		return
	}

	// the old image is removed only once the row points at the new one
	if replacedImage != "" {
		if err := handler.images.Delete(ctx, replacedImage); err != nil {
			log.Errorf("failed to remove replaced image %s: %s", replacedImage, err)
		}
	}

	exerciseJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("marshal updated exercise: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("exercise updated: [%s] %d", updated.Name, updated.ID)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, exerciseJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	existing, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			// idempotent, same as deleting an existing one
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Errorf("get exercise %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to delete exercise", http.StatusInternalServerError)
		return
	}

	if existing.ImagePath != "" {
		if err := handler.images.Delete(ctx, existing.ImagePath); err != nil {
			log.Errorf("failed to remove image %s of exercise %d: %s", existing.ImagePath, id, err)
		}
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete exercise %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to delete exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("exercise deleted: %d", id)
	w.WriteHeader(http.StatusNoContent)
}

// exerciseFromForm reads the multipart form fields and the optional image
// file. On a bad request the error response is already written and ok is
// false. A present but empty or unsupported image file is skipped rather
// than rejected, leaving any stored image to the caller's keep-or-replace
// logic.
func (handler *Handler) exerciseFromForm(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
) (_ *Exercise, ok bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Tracef("exercise form parse: %s", err)
		pkg.WriteJSONError(w, "invalid form data", http.StatusBadRequest)
		return nil, false
	}

	exercise := &Exercise{
		Name:   r.FormValue("name"),
		Weight: r.FormValue("weight"),
		Sets:   r.FormValue("sets"),
		Reps:   r.FormValue("reps"),
	}
	if exercise.Name == "" || exercise.Weight == "" || exercise.Sets == "" || exercise.Reps == "" {
		pkg.WriteJSONError(w, "missing exercise data", http.StatusBadRequest)
		return nil, false
	}

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			log.Tracef("exercise image form file: %s", err)
		}
		return exercise, true
	}
	defer file.Close()

	if fileHeader.Filename == "" || !uploads.AllowedFile(fileHeader.Filename) {
		return exercise, true
	}

	imagePath, err := handler.images.Save(ctx, fileHeader.Filename, file)
	if err != nil {
		log.Errorf("failed to save exercise image [%s]: %s", fileHeader.Filename, err)
		pkg.WriteJSONError(w, "failed to save image", http.StatusInternalServerError)
		return nil, false
	}

	handler.metrics.CounterImagesUploaded.Inc()
	exercise.ImagePath = imagePath
	return exercise, true
}

func pathID(r *http.Request, name string) (int, error) {
	idStr := mux.Vars(r)[name]
	if idStr == "" {
		return 0, errors.New("empty id")
	}
	return strconv.Atoi(idStr)
}
