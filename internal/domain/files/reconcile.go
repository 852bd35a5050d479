package files

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cloudstore/internal/pkg/upstream"
	"cloudstore/internal/storage"
)

const defaultSweepBatch = 100

// Reconciler repairs cross-store operations whose intent outlived the grace
// period: interrupted uploads lose their orphan blob, interrupted purges lose
// their metadata row.
type Reconciler struct {
	repo    Repository
	intents IntentRepository
	store   storage.Store
	log     zerolog.Logger
	grace   time.Duration
	timeout time.Duration
	batch   int
	now     func() time.Time
}

type SweepResult struct {
	Scanned  int
	Repaired int
	Failed   int
}

func NewReconciler(repo Repository, intents IntentRepository, store storage.Store, log zerolog.Logger, grace, timeout time.Duration) *Reconciler {
	return &Reconciler{
		repo:    repo,
		intents: intents,
		store:   store,
		log:     log.With().Str("component", "reconciler").Logger(),
		grace:   grace,
		timeout: timeout,
		batch:   defaultSweepBatch,
		now:     time.Now,
	}
}

// Sweep processes one batch of stale intents. Intents that cannot be
// repaired stay in place for the next sweep.
func (r *Reconciler) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	cutoff := r.now().Add(-r.grace)

	var stale []BlobIntent
	err := upstream.Call(ctx, r.timeout, func(ctx context.Context) error {
		var err error
		stale, err = r.intents.ListOlderThan(ctx, cutoff, r.batch)
		return err
	})
	if err != nil {
		return res, upstream.Failure("list stale intents", err)
	}

	for i := range stale {
		in := stale[i]
		res.Scanned++

		var err error
		switch in.Op {
		case IntentUpload:
			err = r.repairUpload(ctx, in)
		case IntentPurge:
			err = r.repairPurge(ctx, in)
		default:
			r.log.Warn().Str("intent_id", in.ID).Str("op", in.Op).Msg("dropping intent with unknown op")
			err = r.dropIntent(ctx, in)
		}

		if err != nil {
			res.Failed++
			r.log.Error().Err(err).
				Str("intent_id", in.ID).
				Str("op", in.Op).
				Str("storage_key", in.StorageKey).
				Msg("reconcile failed")
			continue
		}
		res.Repaired++
	}

	if res.Scanned > 0 {
		r.log.Info().
			Int("scanned", res.Scanned).
			Int("repaired", res.Repaired).
			Int("failed", res.Failed).
			Msg("reconcile sweep completed")
	}
	return res, nil
}

func (r *Reconciler) repairUpload(ctx context.Context, in BlobIntent) error {
	var exists bool
	if err := upstream.Call(ctx, r.timeout, func(ctx context.Context) error {
		var err error
		exists, err = r.repo.ExistsByStorageKey(ctx, in.StorageKey)
		return err
	}); err != nil {
		return upstream.Failure("lookup storage key", err)
	}

	// the upload finished but its intent was never cleared
	if exists {
		return r.dropIntent(ctx, in)
	}

	if err := upstream.Call(ctx, r.timeout, func(ctx context.Context) error {
		return r.store.Delete(ctx, in.StorageKey)
	}); err != nil {
		return upstream.Failure("delete orphan blob", err)
	}
	return r.dropIntent(ctx, in)
}

func (r *Reconciler) repairPurge(ctx context.Context, in BlobIntent) error {
	if err := upstream.Call(ctx, r.timeout, func(ctx context.Context) error {
		return r.store.Delete(ctx, in.StorageKey)
	}); err != nil {
		return upstream.Failure("delete purged blob", err)
	}

	if in.FileID == nil {
		return r.dropIntent(ctx, in)
	}
	if err := upstream.Call(ctx, r.timeout, func(ctx context.Context) error {
		return r.repo.DeleteWithIntent(ctx, *in.FileID, in.ID)
	}); err != nil {
		return upstream.Failure("delete purged row", err)
	}
	return nil
}

func (r *Reconciler) dropIntent(ctx context.Context, in BlobIntent) error {
	if err := upstream.Call(ctx, r.timeout, func(ctx context.Context) error {
		return r.intents.Delete(ctx, in.ID)
	}); err != nil {
		return upstream.Failure("drop intent", err)
	}
	return nil
}

// Schedule runs Sweep every interval until ctx is done or the returned
// channel is closed.
func (r *Reconciler) Schedule(ctx context.Context, interval time.Duration) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := r.Sweep(ctx); err != nil {
					r.log.Error().Err(err).Msg("scheduled reconcile failed")
				}
			case <-stopCh:
				r.log.Info().Msg("reconciler stopped")
				return
			case <-ctx.Done():
				r.log.Info().Msg("reconciler stopped (context done)")
				return
			}
		}
	}()

	r.log.Info().Dur("interval", interval).Dur("grace", r.grace).Msg("reconciler scheduled")
	return stopCh
}
