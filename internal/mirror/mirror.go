// Package mirror keeps the local-first daily task list. Every change is
// written to the local store straight away; the remote profile only sees the
// list when a Syncer pushes it.
package mirror

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/localstore"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
)

// KeyPrefix prefixes every mirror key in the local store.
const KeyPrefix = "tasks:"

func Key(userID uuid.UUID) string {
	return KeyPrefix + userID.String()
}

// UserIDFromKey parses the user id out of a mirror key.
func UserIDFromKey(key string) (uuid.UUID, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(key, KeyPrefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Mirror is one user's local task list. It is safe for concurrent use.
type Mirror struct {
	mu     sync.Mutex
	store  localstore.Store
	userID uuid.UUID
	loc    *time.Location
	now    func() time.Time
	newID  func() uuid.UUID
	tasks  []models.LocalTask
}

// Open loads the user's mirror, or starts an empty one if none is stored.
// loc decides which calendar day a toggle falls on.
func Open(ctx context.Context, store localstore.Store, userID uuid.UUID, loc *time.Location) (*Mirror, error) {
	m := &Mirror{
		store:  store,
		userID: userID,
		loc:    loc,
		now:    time.Now,
		newID:  uuid.New,
		tasks:  []models.LocalTask{},
	}

	var tasks []models.LocalTask
	found, err := localstore.GetJSON(ctx, store, Key(userID), &tasks)
	if err != nil {
		return nil, apperr.E("mirror.Open", apperr.Store, err)
	}
	if found && tasks != nil {
		m.tasks = tasks
	}
	return m, nil
}

// WithClock replaces the time source. Used in tests.
func (m *Mirror) WithClock(now func() time.Time) *Mirror {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	return m
}

func (m *Mirror) UserID() uuid.UUID {
	return m.userID
}

// Tasks returns a copy of the list.
func (m *Mirror) Tasks() []models.LocalTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.LocalTask{}, m.tasks...)
}

func (m *Mirror) today() string {
	return m.now().In(m.loc).Format(models.DayLayout)
}

func (m *Mirror) index(id uuid.UUID) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes next to the store and adopts it only if the write succeeded.
// Caller holds mu.
func (m *Mirror) persist(ctx context.Context, op string, next []models.LocalTask) error {
	if err := localstore.SetJSON(ctx, m.store, Key(m.userID), next); err != nil {
		return apperr.E(op, apperr.Store, err)
	}
	m.tasks = next
	return nil
}

// Add appends a new incomplete task. Blank text is rejected.
func (m *Mirror) Add(ctx context.Context, goal string) (models.LocalTask, error) {
	const op = "mirror.Add"
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return models.LocalTask{}, apperr.Errorf(op, apperr.Validation, "goal is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task := models.LocalTask{ID: m.newID(), Goal: goal}
	next := append(append([]models.LocalTask{}, m.tasks...), task)
	if err := m.persist(ctx, op, next); err != nil {
		return models.LocalTask{}, err
	}
	return task, nil
}

// Edit replaces a task's text.
func (m *Mirror) Edit(ctx context.Context, id uuid.UUID, goal string) (models.LocalTask, error) {
	const op = "mirror.Edit"
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return models.LocalTask{}, apperr.Errorf(op, apperr.Validation, "goal is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.LocalTask{}, apperr.Errorf(op, apperr.NotFound, "task %s not found", id)
	}
	next := append([]models.LocalTask{}, m.tasks...)
	next[i].Goal = goal
	if err := m.persist(ctx, op, next); err != nil {
		return models.LocalTask{}, err
	}
	return next[i], nil
}

// Remove drops a task. Unknown ids are a no-op.
func (m *Mirror) Remove(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]models.LocalTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	return m.persist(ctx, "mirror.Remove", next)
}

// Toggle marks a task done for today. If it was already done today the
// completion is cleared instead, so two toggles on one day always leave the
// task incomplete.
func (m *Mirror) Toggle(ctx context.Context, id uuid.UUID) (models.LocalTask, error) {
	const op = "mirror.Toggle"
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.LocalTask{}, apperr.Errorf(op, apperr.NotFound, "task %s not found", id)
	}

	today := m.today()
	next := append([]models.LocalTask{}, m.tasks...)
	if next[i].LastCompletedDate == today {
		next[i].IsCompleted = false
		next[i].LastCompletedDate = ""
	} else {
		next[i].IsCompleted = true
		next[i].LastCompletedDate = today
	}

	if err := m.persist(ctx, op, next); err != nil {
		return models.LocalTask{}, err
	}
	return next[i], nil
}

// Registry hands out one Mirror per user so concurrent requests share a lock.
// Entries are released by Drop at sign-out; the local list itself stays in
// the store for the next sync.
type Registry struct {
	mu      sync.Mutex
	store   localstore.Store
	loc     *time.Location
	mirrors map[uuid.UUID]*Mirror
}

func NewRegistry(store localstore.Store, loc *time.Location) *Registry {
	return &Registry{
		store:   store,
		loc:     loc,
		mirrors: make(map[uuid.UUID]*Mirror),
	}
}

// Get returns the user's mirror, loading it on first use.
func (r *Registry) Get(ctx context.Context, userID uuid.UUID) (*Mirror, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.mirrors[userID]; ok {
		return m, nil
	}
	m, err := Open(ctx, r.store, userID, r.loc)
	if err != nil {
		return nil, err
	}
	r.mirrors[userID] = m
	return m, nil
}

// Drop forgets the user's in-memory mirror. Stored entries are kept.
func (r *Registry) Drop(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mirrors, userID)
}

func (r *Registry) Store() localstore.Store {
	return r.store
}

func (r *Registry) Location() *time.Location {
	return r.loc
}
