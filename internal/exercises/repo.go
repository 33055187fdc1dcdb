package exercises

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/2beens/gymtrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO exercises
				(muscle_group_id, name, weight, sets, reps, image_path)
				VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
		exercise.MuscleGroupID, exercise.Name, exercise.Weight, exercise.Sets, exercise.Reps,
		nullableImagePath(exercise.ImagePath),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", id))

	exercise.ID = id
	return &exercise, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, muscle_group_id, name, weight, sets, reps, image_path
			FROM exercises WHERE id = $1;`,
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
		return nil, ErrExerciseNotFound
	}

	exercise, err := scanExercise(rows.Scan)
	if err != nil {
		return nil, err
	}
	return exercise, nil
}

func (r *Repo) ListForGroup(ctx context.Context, groupID int) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("musclegroup.id", groupID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, muscle_group_id, name, weight, sets, reps, image_path
			FROM exercises WHERE muscle_group_id = $1 ORDER BY name;`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var exercises []Exercise
	for rows.Next() {
		exercise, err := scanExercise(rows.Scan)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, *exercise)
	}

	return exercises, nil
}

func (r *Repo) Update(ctx context.Context, exercise *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercises SET name = $1, weight = $2, sets = $3, reps = $4, image_path = $5 WHERE id = $6;`,
		exercise.Name, exercise.Weight, exercise.Sets, exercise.Reps,
		nullableImagePath(exercise.ImagePath), exercise.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

// Delete removes the row; the image file on disk is the handler's concern.
// Deleting an unknown id is not an error.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	_, err = r.db.Exec(
		ctx,
		`DELETE FROM exercises WHERE id = $1`,
		id,
	)
	return err
}

func scanExercise(scan func(dest ...any) error) (*Exercise, error) {
	var exercise Exercise
	var imagePath sql.NullString
	if err := scan(
		&exercise.ID, &exercise.MuscleGroupID, &exercise.Name,
		&exercise.Weight, &exercise.Sets, &exercise.Reps, &imagePath,
	); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}
	exercise.ImagePath = imagePath.String
	return &exercise, nil
}

func nullableImagePath(imagePath string) sql.NullString {
	return sql.NullString{
		String: imagePath,
		Valid:  imagePath != "",
	}
}
