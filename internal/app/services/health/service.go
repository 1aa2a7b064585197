package health

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/wareledger/wareledger/internal/app/storage"
	"github.com/wareledger/wareledger/internal/logging"
)

// Report is the body of the health endpoint.
type Report struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Goroutines    int    `json:"goroutines"`
	RSSBytes      uint64 `json:"rss_bytes"`
}

// Service reports process and database health.
type Service struct {
	db      storage.Pinger
	started time.Time
	timeout time.Duration
	log     *logging.Logger
}

// New constructs a health service. db may be nil when no database is used.
func New(db storage.Pinger, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("health")
	}
	return &Service{db: db, started: time.Now(), timeout: 2 * time.Second, log: log}
}

// Check pings the database and samples the process. The status is "ok" or
// "degraded" when the database is unreachable.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{
		Status:        "ok",
		Database:      "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	if s.db == nil {
		report.Database = "none"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := s.db.Ping(pingCtx); err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("database ping failed")
			report.Status = "degraded"
			report.Database = "unreachable"
		}
	}

	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
			report.RSSBytes = mem.RSS
		}
	}
	return report
}
