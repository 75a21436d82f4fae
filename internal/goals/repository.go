package goals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds the read-transform-write retries on conflict.
const DefaultMaxAttempts = 3

// MutateFunc transforms a private copy of the collection. Returning an error
// aborts the write; classify it with apperr.
type MutateFunc func(goals []models.Goal) ([]models.Goal, error)

// Repository applies goal/task operations to a user's profile.
//
// Each mutation reads the full collection, transforms it, and writes it back
// with a version check. If another writer changed the row in between, the
// whole cycle is retried against the fresh collection.
type Repository struct {
	store       ProfileStore
	log         *zap.SugaredLogger
	now         func() time.Time
	newID       func() uuid.UUID
	maxAttempts int
}

func NewRepository(store ProfileStore, log *zap.SugaredLogger) *Repository {
	return &Repository{
		store:       store,
		log:         log,
		now:         time.Now,
		newID:       uuid.New,
		maxAttempts: DefaultMaxAttempts,
	}
}

// WithClock replaces the time source. Used in tests.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

func (r *Repository) Store() ProfileStore {
	return r.store
}

// LoadGoals returns the user's goals, or an empty collection if the user has
// no profile yet.
func (r *Repository) LoadGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	goals, _, err := r.store.GetGoals(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return []models.Goal{}, nil
	}
	if err != nil {
		r.log.Errorw("Error loading goals", "userId", userID, "error", err)
		return nil, apperr.E("goals.LoadGoals", apperr.Store, err)
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	return goals, nil
}

// SaveAITasks merges an imported batch into the user's goals and marks the
// profile as having set its initial goals.
func (r *Repository) SaveAITasks(ctx context.Context, userID uuid.UUID, entries []AIEntry) ([]models.Goal, error) {
	const op = "goals.SaveAITasks"
	for _, e := range entries {
		if strings.TrimSpace(e.Goal) == "" {
			err := apperr.Errorf(op, apperr.Validation, "goal name is required")
			r.log.Errorw("Error saving AI tasks", "userId", userID, "error", err)
			return nil, err
		}
	}

	now := r.now()
	return r.mutate(ctx, op, userID, true, func(goals []models.Goal) ([]models.Goal, error) {
		return MergeAITasks(goals, entries, now, r.newID), nil
	})
}

// CreateGoal adds an empty goal, or returns the goal that already has name.
func (r *Repository) CreateGoal(ctx context.Context, userID uuid.UUID, name string) (models.Goal, error) {
	const op = "goals.CreateGoal"
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Goal{}, apperr.Errorf(op, apperr.Validation, "goal name is required")
	}

	var created models.Goal
	now := r.now()
	_, err := r.mutate(ctx, op, userID, false, func(goals []models.Goal) ([]models.Goal, error) {
		out, g := AddGoal(goals, name, now, r.newID)
		created = g
		return out, nil
	})
	return created, err
}

// AddManualTask appends a task to goalID.
func (r *Repository) AddManualTask(ctx context.Context, userID, goalID uuid.UUID, text string) (models.Task, error) {
	const op = "goals.AddManualTask"
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, apperr.Errorf(op, apperr.Validation, "task text is required")
	}

	var added models.Task
	_, err := r.mutate(ctx, op, userID, false, func(goals []models.Goal) ([]models.Goal, error) {
		out, task, ok := AppendTask(goals, goalID, text, r.newID)
		if !ok {
			return nil, apperr.Errorf(op, apperr.NotFound, "goal %s not found", goalID)
		}
		added = task
		return out, nil
	})
	return added, err
}

// RemoveTask deletes a task. Removing a task that is already gone succeeds.
func (r *Repository) RemoveTask(ctx context.Context, userID, goalID, taskID uuid.UUID) error {
	_, err := r.mutate(ctx, "goals.RemoveTask", userID, false, func(goals []models.Goal) ([]models.Goal, error) {
		return RemoveTask(goals, goalID, taskID), nil
	})
	return err
}

// ToggleTaskCompletion flips a task's completion and returns the new state.
func (r *Repository) ToggleTaskCompletion(ctx context.Context, userID, goalID, taskID uuid.UUID) (models.Task, error) {
	const op = "goals.ToggleTaskCompletion"
	var toggled models.Task
	_, err := r.mutate(ctx, op, userID, false, func(goals []models.Goal) ([]models.Goal, error) {
		out, task, ok := ToggleTask(goals, goalID, taskID, r.now())
		if !ok {
			return nil, apperr.Errorf(op, apperr.NotFound, "task %s not found", taskID)
		}
		toggled = task
		return out, nil
	})
	return toggled, err
}

// EditTask replaces a task's text.
func (r *Repository) EditTask(ctx context.Context, userID, goalID, taskID uuid.UUID, text string) (models.Task, error) {
	const op = "goals.EditTask"
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, apperr.Errorf(op, apperr.Validation, "task text is required")
	}

	var edited models.Task
	_, err := r.mutate(ctx, op, userID, false, func(goals []models.Goal) ([]models.Goal, error) {
		out, task, ok := EditTask(goals, goalID, taskID, text)
		if !ok {
			return nil, apperr.Errorf(op, apperr.NotFound, "task %s not found", taskID)
		}
		edited = task
		return out, nil
	})
	return edited, err
}

// Mutate runs an arbitrary transform through the same versioned write cycle.
func (r *Repository) Mutate(ctx context.Context, op string, userID uuid.UUID, fn MutateFunc) ([]models.Goal, error) {
	return r.mutate(ctx, op, userID, false, fn)
}

func (r *Repository) mutate(ctx context.Context, op string, userID uuid.UUID, markInitial bool, fn MutateFunc) ([]models.Goal, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperr.E(op, apperr.Store, err)
		}

		current, version, err := r.store.GetGoals(ctx, userID)
		if errors.Is(err, ErrProfileNotFound) {
			err = apperr.E(op, apperr.NotFound, err)
			r.log.Errorw("Error updating goals", "op", op, "userId", userID, "error", err)
			return nil, err
		}
		if err != nil {
			r.log.Errorw("Error updating goals", "op", op, "userId", userID, "error", err)
			return nil, apperr.E(op, apperr.Store, err)
		}

		next, err := fn(Clone(current))
		if err != nil {
			r.log.Errorw("Error updating goals", "op", op, "userId", userID, "error", err)
			return nil, err
		}

		err = r.store.PutGoals(ctx, userID, next, version, markInitial)
		if errors.Is(err, apperr.ErrConflict) {
			r.log.Warnw("Goals changed concurrently, retrying", "op", op, "userId", userID, "attempt", attempt)
			continue
		}
		if err != nil {
			r.log.Errorw("Error updating goals", "op", op, "userId", userID, "error", err)
			return nil, apperr.E(op, apperr.Store, err)
		}
		return next, nil
	}

	err := apperr.E(op, apperr.Conflict, apperr.ErrConflict)
	r.log.Errorw("Error updating goals", "op", op, "userId", userID, "error", err)
	return nil, err
}
