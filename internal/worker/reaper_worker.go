package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/southeastwestnorth/tanzimapp/internal/store"
)

const ReaperInterval = 1 * time.Minute

// ReaperWorker evicts finished sessions from the in-memory store once they
// have outlived their retention window, bounding the store's memory. Live
// (in-progress) sessions are never touched.
type ReaperWorker struct {
	sessions *store.SessionStore
	ttl      time.Duration
	log      zerolog.Logger
}

func NewReaperWorker(sessions *store.SessionStore, ttl time.Duration, log zerolog.Logger) *ReaperWorker {
	return &ReaperWorker{
		sessions: sessions,
		ttl:      ttl,
		log:      log.With().Str("component", "reaper_worker").Logger(),
	}
}

func (w *ReaperWorker) Start(ctx context.Context) {
	w.log.Info().Dur("ttl", w.ttl).Msg("ReaperWorker started")

	ticker := time.NewTicker(ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return
		case now := <-ticker.C:
			w.sweep(now)
		}
	}
}

func (w *ReaperWorker) sweep(now time.Time) {
	swept := 0

	for _, entry := range w.sessions.Snapshot() {
		entry.Lock()
		expired := entry.Session.Status().Terminal() &&
			!entry.FinishedAt.IsZero() &&
			now.Sub(entry.FinishedAt) > w.ttl
		id := entry.ID
		entry.Unlock()

		if expired {
			w.sessions.Delete(id)
			swept++
		}
	}

	if swept > 0 {
		w.log.Info().
			Int("swept", swept).
			Int("remaining", w.sessions.Count()).
			Msg("Finished sessions evicted")
	}
}
