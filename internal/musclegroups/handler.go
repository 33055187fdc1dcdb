package musclegroups

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=musclegroups_mocks_test.go -package=musclegroups_test

type muscleGroupsRepo interface {
	Add(ctx context.Context, userID int, name string) (*MuscleGroup, error)
	Get(ctx context.Context, id int) (*MuscleGroup, error)
	ListForUser(ctx context.Context, userID int) ([]MuscleGroup, error)
	Delete(ctx context.Context, id int) error
}

type AddMuscleGroupRequest struct {
	Name string `json:"name"`
}

type Handler struct {
	repo    muscleGroupsRepo
	metrics *metrics.Manager
}

func NewHandler(repo muscleGroupsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.musclegroups.list")
	defer span.End()

	userID, err := pathID(r, "userId")
	if err != nil {
		pkg.WriteJSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	groups, err := handler.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("list muscle groups for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get muscle groups", http.StatusInternalServerError)
		return
	}

	if len(groups) == 0 {
		groups = []MuscleGroup{}
	}

	groupsJson, err := json.Marshal(groups)
	if err != nil {
		log.Errorf("marshal muscle groups: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, groupsJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.musclegroups.add")
	defer span.End()

	userID, err := pathID(r, "userId")
	if err != nil {
		pkg.WriteJSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var addReq AddMuscleGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("add muscle group, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if addReq.Name == "" {
		pkg.WriteJSONError(w, "muscle group name is required", http.StatusBadRequest)
		return
	}

	addedGroup, err := handler.repo.Add(ctx, userID, addReq.Name)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			pkg.WriteJSONError(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to add muscle group [%s] for user %d: %s", addReq.Name, userID, err)
		pkg.WriteJSONError(w, "failed to add muscle group", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterMuscleGroups.Inc()

	groupJson, err := json.Marshal(addedGroup)
	if err != nil {
		log.Errorf("marshal added muscle group: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new muscle group added: [%s] %d, user %d", addedGroup.Name, addedGroup.ID, userID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, groupJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.musclegroups.delete")
	defer span.End()

	id, err := pathID(r, "id")
	if err != nil {
		pkg.WriteJSONError(w, "invalid muscle group id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete muscle group %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to delete muscle group", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, name string) (int, error) {
	idStr := mux.Vars(r)[name]
	if idStr == "" {
		return 0, errors.New("empty id")
	}
	return strconv.Atoi(idStr)
}
