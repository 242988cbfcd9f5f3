package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/archive"
)

// snapshotSchedule exports the registry every night at 02:00 local time,
// after the archive office has gone home.
const snapshotSchedule = "0 2 * * *"

// Scheduler runs the periodic registry snapshot export. The export gives a
// court without a replicated database a restorable copy of the registry and
// doubles as the nightly archive statistics log line.
type Scheduler struct {
	cron     *cron.Cron
	registry *archive.Registry
	backup   *archive.FileStore
}

// New creates a scheduler exporting the given registry to the file store
func New(registry *archive.Registry, backup *archive.FileStore) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.Local)),
		registry: registry,
		backup:   backup,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(snapshotSchedule, s.runSnapshot)
	if err != nil {
		zap.S().Errorw("failed to register snapshot job", "error", err)
		return
	}
	s.cron.Start()
	zap.S().Infow("registry snapshot job scheduled", "schedule", snapshotSchedule)
}

// Stop halts the scheduler, letting a running job finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runSnapshot() {
	cases := s.registry.List()
	if err := s.backup.WriteAll(cases); err != nil {
		zap.S().Errorw("registry snapshot export failed", "error", err)
		return
	}

	counts := archive.CountByType(cases)
	archived := 0
	for _, c := range cases {
		if c.Details.IsArchived {
			archived++
		}
	}
	zap.S().Infow("registry snapshot exported",
		"total", len(cases),
		"gugatan", counts.Gugatan,
		"permohonan", counts.Permohonan,
		"archived", archived,
		"pending", len(cases)-archived,
	)
}
