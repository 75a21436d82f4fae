package profile

import (
	"context"
	"sync"

	"github.com/freedompraise/lockedin/internal/localstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry owns one Context per user id. Entries live until Drop, which
// sign-out calls, so the map holds at most one entry per signed-in user.
type Registry struct {
	mu       sync.Mutex
	users    UserSource
	profiles ProfileSource
	store    localstore.Store
	log      *zap.SugaredLogger
	contexts map[uuid.UUID]*Context
}

func NewRegistry(users UserSource, profiles ProfileSource, store localstore.Store, log *zap.SugaredLogger) *Registry {
	return &Registry{
		users:    users,
		profiles: profiles,
		store:    store,
		log:      log,
		contexts: make(map[uuid.UUID]*Context),
	}
}

func (r *Registry) lookup(userID uuid.UUID) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	pc, ok := r.contexts[userID]
	if !ok {
		pc = NewContext(userID, r.users, r.profiles, r.store, r.log)
		r.contexts[userID] = pc
	}
	return pc
}

// Get returns the user's context, refreshing it whenever it holds no profile.
func (r *Registry) Get(ctx context.Context, userID uuid.UUID) *Context {
	pc := r.lookup(userID)
	if _, ok := pc.Profile(); !ok {
		pc.Refresh(ctx)
	}
	return pc
}

// Refresh re-reads the user's profile into their context.
func (r *Registry) Refresh(ctx context.Context, userID uuid.UUID) (State, error) {
	return r.lookup(userID).Refresh(ctx)
}

// Drop clears and forgets the user's context, e.g. on sign-out.
func (r *Registry) Drop(ctx context.Context, userID uuid.UUID) {
	r.mu.Lock()
	pc, ok := r.contexts[userID]
	delete(r.contexts, userID)
	r.mu.Unlock()

	if ok {
		pc.drop(ctx)
		return
	}
	if err := r.store.Delete(ctx, Key(userID)); err != nil {
		r.log.Warnw("Failed to remove cached profile", "userId", userID, "error", err)
	}
}
