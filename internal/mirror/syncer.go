package mirror

import (
	"context"
	"time"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/localstore"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Syncer pushes stored mirrors into the remote profiles.
type Syncer struct {
	store    localstore.Store
	repo     *goals.Repository
	log      *zap.SugaredLogger
	goalName string
	loc      *time.Location
	now      func() time.Time
}

func NewSyncer(store localstore.Store, repo *goals.Repository, log *zap.SugaredLogger, goalName string, loc *time.Location) *Syncer {
	if goalName == "" {
		goalName = DefaultGoalName
	}
	return &Syncer{
		store:    store,
		repo:     repo,
		log:      log,
		goalName: goalName,
		loc:      loc,
		now:      time.Now,
	}
}

// SyncResult summarizes one SyncAll run.
type SyncResult struct {
	Synced  int
	Skipped int
	Failed  int
}

// SyncAll pushes every mirror in the local store. A failing user is logged
// and counted; the others still sync.
func (s *Syncer) SyncAll(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	keys, err := s.store.Keys(ctx, KeyPrefix)
	if err != nil {
		s.log.Errorw("Error listing mirrors", "error", err)
		return res, apperr.E("mirror.SyncAll", apperr.Store, err)
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		userID, ok := UserIDFromKey(key)
		if !ok {
			res.Skipped++
			continue
		}

		var local []models.LocalTask
		if _, err := localstore.GetJSON(ctx, s.store, key, &local); err != nil {
			s.log.Errorw("Error reading mirror", "userId", userID, "error", err)
			res.Failed++
			continue
		}

		if err := s.push(ctx, userID, local); err != nil {
			if apperr.Is(err, apperr.NotFound) {
				res.Skipped++
				continue
			}
			res.Failed++
			continue
		}
		res.Synced++
	}

	s.log.Infow("Mirror sync finished", "synced", res.Synced, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// SyncUser pushes one user's mirror.
func (s *Syncer) SyncUser(ctx context.Context, m *Mirror) ([]models.Goal, error) {
	return s.repo.Mutate(ctx, "mirror.SyncUser", m.UserID(), s.reconcile(m.Tasks()))
}

func (s *Syncer) push(ctx context.Context, userID uuid.UUID, local []models.LocalTask) error {
	_, err := s.repo.Mutate(ctx, "mirror.SyncAll", userID, s.reconcile(local))
	return err
}

func (s *Syncer) reconcile(local []models.LocalTask) goals.MutateFunc {
	now := s.now()
	return func(current []models.Goal) ([]models.Goal, error) {
		return Reconcile(current, local, s.goalName, s.loc, now, uuid.New), nil
	}
}
