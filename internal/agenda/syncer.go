// Package agenda keeps the displayed reservation set current. It
// periodically refreshes the listing from the API, mirrors it into the
// local cache, and reconciles the countdown manager: new rows start
// ticking, rows that disappeared from the listing stop.
package agenda

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ureserve/internal/countdown"
	"ureserve/internal/models"
	"ureserve/internal/session"
)

// Lister fetches the reservation listing from the remote API.
type Lister interface {
	ListReservations(ctx context.Context, sess session.Session) ([]models.Reservation, error)
}

// Store mirrors fetched listings locally so the client can fall back
// to the cache when the API is unreachable.
type Store interface {
	ReplaceReservations(ctx context.Context, studentID string, items []models.Reservation) error
	ListReservations(ctx context.Context, studentID string) ([]models.Reservation, error)
}

// Syncer refreshes the reservation set on an interval.
type Syncer struct {
	client   Lister
	store    Store
	manager  *countdown.Manager
	interval time.Duration
	logger   zerolog.Logger

	tracked map[string]bool
}

// NewSyncer creates a syncer. Store may be nil to run without a local
// cache.
func NewSyncer(client Lister, store Store, manager *countdown.Manager, interval time.Duration, logger zerolog.Logger) *Syncer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Syncer{
		client:   client,
		store:    store,
		manager:  manager,
		interval: interval,
		logger:   logger,
		tracked:  make(map[string]bool),
	}
}

// Run refreshes immediately and then on every interval until the
// context is cancelled. Countdown tasks are stopped on the way out.
func (s *Syncer) Run(ctx context.Context, sess session.Session) {
	s.Refresh(ctx, sess)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.manager.Stop()
			return
		case <-ticker.C:
			s.Refresh(ctx, sess)
		}
	}
}

// Refresh fetches the listing once and reconciles the tracked rows.
// An API failure falls back to the local cache; the rows currently
// ticking keep ticking either way.
func (s *Syncer) Refresh(ctx context.Context, sess session.Session) {
	items, err := s.client.ListReservations(ctx, sess)
	if err != nil {
		s.logger.Warn().Err(err).Msg("listing fetch failed, falling back to cache")
		if s.store == nil {
			return
		}
		items, err = s.store.ListReservations(ctx, sess.StudentID)
		if err != nil {
			s.logger.Error().Err(err).Msg("cache read failed")
			return
		}
	} else if s.store != nil {
		if err := s.store.ReplaceReservations(ctx, sess.StudentID, items); err != nil {
			s.logger.Error().Err(err).Msg("cache write failed")
		}
	}

	s.reconcile(ctx, items)
}

func (s *Syncer) reconcile(ctx context.Context, items []models.Reservation) {
	current := make(map[string]bool, len(items))
	for i := range items {
		r := &items[i]
		if !r.IsActiveStatus() {
			continue
		}
		current[r.Code] = true
		if !s.tracked[r.Code] {
			s.manager.Track(ctx, r)
			s.tracked[r.Code] = true
			s.logger.Debug().Str("code", r.Code).Msg("tracking reservation")
		}
	}

	for code := range s.tracked {
		if !current[code] {
			s.manager.Forget(code)
			delete(s.tracked, code)
			s.logger.Debug().Str("code", code).Msg("reservation left listing")
		}
	}
}
