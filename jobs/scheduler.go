// Package jobs runs periodic maintenance of the chat room store.
package jobs

import (
	"context"
	"time"

	"travelmate/backend/logger"

	"github.com/robfig/cron/v3"
)

// Archiver deactivates rooms whose trip has ended.
type Archiver interface {
	ArchiveEnded(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler 定時封存已結束行程的聊天室
type Scheduler struct {
	cron     *cron.Cron
	archiver Archiver
	log      *logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewScheduler registers the archival run on spec (standard cron syntax or
// descriptors such as @hourly).
func NewScheduler(spec string, archiver Archiver, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		archiver: archiver,
		log:      log.WithField("job", "archive_chatrooms"),
		timeout:  time.Minute,
		now:      time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.ArchiveNow); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ArchiveNow runs one archival pass.
func (s *Scheduler) ArchiveNow() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.archiver.ArchiveEnded(ctx, s.now())
	if err != nil {
		s.log.WithError(err).Error("Chat room archival failed")
		return
	}
	if n > 0 {
		s.log.WithField("archived", n).Info("Archived ended chat rooms")
	}
}
