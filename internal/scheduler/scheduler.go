// Package scheduler runs the planner's periodic jobs on a cron clock.
package scheduler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner with second-level specs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a Scheduler whose daily specs are read in loc. It does not
// run anything until Start.
func New(loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger: logger,
	}
}

// ScheduleDaily registers job to run every day at timeStr (HH:MM).
func (s *Scheduler) ScheduleDaily(name, timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		job()
		s.logger.Info("scheduled job finished",
			slog.String("job", name),
			slog.Duration("duration", time.Since(start)),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("scheduling %s: %w", name, err)
	}
	s.logger.Info("job scheduled", slog.String("job", name), slog.String("at", timeStr))
	return id, nil
}

// Next returns when the entry runs next. The zero time means never or unknown.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// Start runs the clock in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the clock and waits for running jobs to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

// cronLogger adapts slog to cron.Logger so recovered panics are logged.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
