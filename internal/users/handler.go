package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymtrack/internal/telemetry/metrics"
	"github.com/2beens/gymtrack/internal/telemetry/tracing"
	"github.com/2beens/gymtrack/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type usersRepo interface {
	Add(ctx context.Context, username string) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	List(ctx context.Context) ([]User, error)
}

type AddUserRequest struct {
	Username string `json:"username"`
}

type Handler struct {
	repo    usersRepo
	metrics *metrics.Manager
}

func NewHandler(repo usersRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	users, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list users: %s", err)
		pkg.WriteJSONError(w, "failed to get users", http.StatusInternalServerError)
		return
	}

	if len(users) == 0 {
		users = []User{}
	}

	usersJson, err := json.Marshal(users)
	if err != nil {
		log.Errorf("marshal users: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, usersJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.add")
	defer span.End()

	var addReq AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("add user, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if addReq.Username == "" {
		pkg.WriteJSONError(w, "username is required", http.StatusBadRequest)
		return
	}

	addedUser, err := handler.repo.Add(ctx, addReq.Username)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			pkg.WriteJSONError(w, "username already exists", http.StatusConflict)
			return
		}
		log.Errorf("failed to add user [%s]: %s", addReq.Username, err)
		pkg.WriteJSONError(w, "failed to add user", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterUsersCreated.Inc()

	userJson, err := json.Marshal(addedUser)
	if err != nil {
		log.Errorf("marshal added user: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user added: [%s] %d", addedUser.Username, addedUser.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}
