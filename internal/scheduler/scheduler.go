package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/loan-engine/internal/domain"
)

// Runner is one reminder pass. *service.ReminderService satisfies it.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*domain.RunReport, error)
}

type Config struct {
	// Spec is a six-field cron expression (seconds first) or a descriptor such as @daily
	Spec     string
	Location *time.Location
}

// Scheduler fires the reminder run on a cron schedule. A run that is still
// going when the next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
	runner  Runner
	logger  *zap.Logger
	clock   func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(runner Runner, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	cronLog := cronLogger{logger: logger.Sugar()}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   c,
		runner: runner,
		logger: logger,
		clock:  time.Now,
		ctx:    ctx,
		cancel: cancel,
	}

	id, err := c.AddFunc(cfg.Spec, s.tick)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", cfg.Spec, err)
	}
	s.entryID = id

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("reminder scheduler started", zap.Time("next_run", s.Next()))
}

// Stop prevents new runs and waits for the current one to finish. If ctx ends
// first the running pass is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.cancel()
		s.logger.Info("reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// Next is the time of the next scheduled run, zero before Start
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// RunNow performs one pass immediately, outside the schedule
func (s *Scheduler) RunNow(ctx context.Context) (*domain.RunReport, error) {
	return s.run(ctx)
}

func (s *Scheduler) tick() {
	_, _ = s.run(s.ctx)
}

func (s *Scheduler) run(ctx context.Context) (*domain.RunReport, error) {
	now := s.clock()

	report, err := s.runner.Run(ctx, now)
	if err != nil {
		s.logger.Error("reminder run failed", zap.Time("now", now), zap.Error(err))
		return report, err
	}

	if report != nil && report.Failed() {
		s.logger.Warn("reminder run finished with failures",
			zap.Time("now", now),
			zap.Int("failures", len(report.Failures)),
		)
	}

	return report, nil
}

// cronLogger routes cron's own logging through zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
