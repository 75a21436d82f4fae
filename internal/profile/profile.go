// Package profile caches the signed-in user's merged account and profile.
//
// A Context is refreshed explicitly. Nothing refreshes it in the background,
// so State.FetchedAt tells callers how old the copy is.
package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/localstore"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// KeyPrefix prefixes cached profile keys in the local store.
const KeyPrefix = "userProfile:"

func Key(userID uuid.UUID) string {
	return KeyPrefix + userID.String()
}

type UserSource interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type ProfileSource interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// State is the cached view.
type State struct {
	User      models.User    `json:"user"`
	Profile   models.Profile `json:"profile"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

func (s State) clone() State {
	out := s
	out.Profile.Goals = goals.Clone(s.Profile.Goals)
	return out
}

// Context holds one user's cached State. It is safe for concurrent use.
type Context struct {
	mu       sync.RWMutex
	userID   uuid.UUID
	users    UserSource
	profiles ProfileSource
	store    localstore.Store
	log      *zap.SugaredLogger
	now      func() time.Time
	state    *State
	dropped  bool
}

// NewContext returns an empty context. Call Refresh to fill it.
func NewContext(userID uuid.UUID, users UserSource, profiles ProfileSource, store localstore.Store, log *zap.SugaredLogger) *Context {
	return &Context{
		userID:   userID,
		users:    users,
		profiles: profiles,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// Refresh fetches the account and profile. On success the cached state is
// replaced and written to the local store; on any failure it is cleared.
// A context that was dropped while the fetch ran keeps nothing.
func (c *Context) Refresh(ctx context.Context) (State, error) {
	const op = "profile.Refresh"

	user, err := c.users.GetUser(ctx, c.userID)
	if err != nil {
		c.log.Errorw("Error refreshing profile", "userId", c.userID, "error", err)
		c.Clear(ctx)
		return State{}, err
	}

	p, err := c.profiles.GetProfile(ctx, c.userID)
	if err != nil {
		if errors.Is(err, goals.ErrProfileNotFound) {
			err = apperr.E(op, apperr.NotFound, err)
		} else {
			err = apperr.E(op, apperr.Store, err)
		}
		c.log.Errorw("Error refreshing profile", "userId", c.userID, "error", err)
		c.Clear(ctx)
		return State{}, err
	}

	state := State{User: *user, Profile: *p, FetchedAt: c.now()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dropped {
		return state.clone(), nil
	}
	c.state = &state
	if err := localstore.SetJSON(ctx, c.store, Key(c.userID), state); err != nil {
		c.log.Warnw("Failed to cache profile locally", "userId", c.userID, "error", err)
	}
	return state.clone(), nil
}

// Clear empties the cache and removes the local entry.
func (c *Context) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = nil
	if err := c.store.Delete(ctx, Key(c.userID)); err != nil {
		c.log.Warnw("Failed to remove cached profile", "userId", c.userID, "error", err)
	}
}

// drop clears the context for good; later refreshes no longer cache.
func (c *Context) drop(ctx context.Context) {
	c.mu.Lock()
	c.dropped = true
	c.mu.Unlock()
	c.Clear(ctx)
}

// UpdateDisplayName patches the cached display name and the local entry.
// The remote profile is not written.
func (c *Context) UpdateDisplayName(ctx context.Context, name string) (State, error) {
	const op = "profile.UpdateDisplayName"
	name = strings.TrimSpace(name)
	if name == "" {
		return State{}, apperr.Errorf(op, apperr.Validation, "display name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return State{}, apperr.Errorf(op, apperr.NotFound, "no cached profile")
	}

	c.state.Profile.DisplayName = name
	if err := localstore.SetJSON(ctx, c.store, Key(c.userID), c.state); err != nil {
		return State{}, apperr.E(op, apperr.Store, err)
	}
	return c.state.clone(), nil
}

// Profile returns a copy of the cached state. ok is false when empty.
func (c *Context) Profile() (state State, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == nil {
		return State{}, false
	}
	return c.state.clone(), true
}
