package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/segyhp/loan-engine/internal/domain"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  []time.Time
	report *domain.RunReport
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, now time.Time) (*domain.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNew_InvalidSpec(t *testing.T) {
	_, err := New(&fakeRunner{}, Config{Spec: "not a schedule"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid reminder schedule")
}

func TestScheduler_NextUsesLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	s, err := New(&fakeRunner{}, Config{Spec: "0 0 9 * * *", Location: kolkata}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, s.Next().IsZero())

	s.Start()
	defer func() { require.NoError(t, s.Stop(context.Background())) }()

	next := s.Next().In(kolkata)
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestScheduler_RunNow(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fixed := time.Date(2024, 4, 13, 3, 30, 0, 0, time.UTC)

	runner := &fakeRunner{report: &domain.RunReport{Scanned: 4, Emitted: 2, Failures: []domain.LoanFailure{}}}
	s, err := New(runner, Config{Spec: "@daily"}, zap.New(core))
	require.NoError(t, err)
	s.clock = func() time.Time { return fixed }

	report, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Emitted)
	require.Equal(t, 1, runner.callCount())
	assert.Equal(t, fixed, runner.calls[0])

	assert.Zero(t, logs.Len())
}

func TestScheduler_FailedRunIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	runner := &fakeRunner{err: errors.New("database unavailable")}
	s, err := New(runner, Config{Spec: "@daily"}, zap.New(core))
	require.NoError(t, err)

	_, err = s.RunNow(context.Background())
	require.Error(t, err)

	failed := logs.FilterMessage("reminder run failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestScheduler_PartialFailureIsWarned(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	runner := &fakeRunner{report: &domain.RunReport{
		Scanned:  2,
		Failures: []domain.LoanFailure{{Error: "boom"}},
	}}
	s, err := New(runner, Config{Spec: "@daily"}, zap.New(core))
	require.NoError(t, err)

	_, err = s.RunNow(context.Background())
	require.NoError(t, err)

	warned := logs.FilterMessage("reminder run finished with failures").All()
	require.Len(t, warned, 1)
	assert.EqualValues(t, 1, warned[0].ContextMap()["failures"])
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	runner := &fakeRunner{report: &domain.RunReport{}}
	s, err := New(runner, Config{Spec: "* * * * * *"}, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return runner.callCount() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	stopped := runner.callCount()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, stopped, runner.callCount())
}
