package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper drops expired entries and reports how many were removed
type Sweeper interface {
	Sweep(ctx context.Context) int
}

type Scheduler struct {
	cron   *cron.Cron
	nonces Sweeper
	spec   string
	log    zerolog.Logger
}

// NewScheduler creates a scheduler. A nil sweeper disables the nonce sweep, which is the case
// when nonces live in redis and expire on their own.
func NewScheduler(spec string, nonces Sweeper, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		nonces: nonces,
		spec:   spec,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.nonces == nil || s.spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.sweepNonces); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule. The returned context is done once a running sweep finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) sweepNonces() {
	removed := s.nonces.Sweep(context.Background())
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Msg("expired nonces swept")
	}
}
