package musclegroups

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymtrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const foreignKeyViolationCode = "23503"

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, userID int, name string) (_ *MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.musclegroups.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO muscle_groups (user_id, name) VALUES ($1, $2) RETURNING id;`,
		userID, name,
	)
	if err != nil {
		return nil, asRepoError(err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, asRepoError(err)
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("musclegroup.id", id))

	return &MuscleGroup{
		ID:     id,
		UserID: userID,
		Name:   name,
	}, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.musclegroups.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name FROM muscle_groups WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrGroupNotFound
	}

	var group MuscleGroup
	if err := rows.Scan(&group.ID, &group.UserID, &group.Name); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	return &group, nil
}

func (r *Repo) ListForUser(ctx context.Context, userID int) (_ []MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.musclegroups.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, name FROM muscle_groups WHERE user_id = $1 ORDER BY name;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []MuscleGroup
	for rows.Next() {
		var group MuscleGroup
		if err := rows.Scan(&group.ID, &group.UserID, &group.Name); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// Delete removes the group; its exercises go with it via the FK cascade.
// Deleting an unknown id is not an error.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.musclegroups.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	_, err = r.db.Exec(
		ctx,
		`DELETE FROM muscle_groups WHERE id = $1`,
		id,
	)
	return err
}

// asRepoError maps a user_id FK violation to ErrUserNotFound, everything
// else passes through untouched.
func asRepoError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return ErrUserNotFound
	}
	return err
}
