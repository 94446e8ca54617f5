package artifact

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Sambhram1/tele-bot/core/logger"
	"log/slog"
)

// Sweeper periodically removes stale artifacts from a Store. The sweep is
// age-based and independent of any in-flight session; a session whose
// artifact outlives the max age simply loses it on the next operation.
type Sweeper struct {
	store   *Store
	maxAge  time.Duration
	cron    *cron.Cron
	onSwept func(int)
}

// NewSweeper schedules a sweep of store every interval, deleting files older
// than maxAge. onSwept, when non-nil, observes the number of removed files.
func NewSweeper(store *Store, interval, maxAge time.Duration, onSwept func(int)) (*Sweeper, error) {
	if store == nil {
		return nil, errors.New("artifact: nil store")
	}
	if interval <= 0 || maxAge <= 0 {
		return nil, fmt.Errorf("artifact: invalid sweep schedule (interval=%s, max_age=%s)", interval, maxAge)
	}

	s := &Sweeper{
		store:   store,
		maxAge:  maxAge,
		cron:    cron.New(),
		onSwept: onSwept,
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.run); err != nil {
		return nil, fmt.Errorf("artifact: schedule sweep: %w", err)
	}
	return s, nil
}

// Start begins the sweep schedule.
func (s *Sweeper) Start() {
	s.cron.Start()
	logger.Info(logger.Background(), "sweep", "sweep.start",
		slog.Duration("max_age", logger.RoundMS(s.maxAge)),
	)
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) run() {
	start := time.Now()
	swept, err := s.store.Sweep(s.maxAge)
	if err != nil {
		logger.Error(logger.Background(), "sweep", "sweep.run",
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return
	}
	if s.onSwept != nil {
		s.onSwept(swept)
	}
	if swept == 0 {
		return
	}
	logger.Info(logger.Background(), "sweep", "sweep.run",
		slog.Int("swept", swept),
		slog.Duration("duration", logger.Took(start)),
	)
}
