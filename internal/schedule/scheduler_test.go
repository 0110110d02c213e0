package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reviewtools/sentiflow/internal/schedule"
)

const (
	testDailyCronExpressionConstant   = "30 9 * * *"
	testInvalidCronExpressionConstant = "not a cron expression"
)

func TestNewSchedulerRequiresRunFunc(testInstance *testing.T) {
	scheduler, creationError := schedule.NewScheduler(schedule.Dependencies{}, schedule.Options{})
	require.Nil(testInstance, scheduler)
	require.ErrorIs(testInstance, creationError, schedule.ErrRunFuncNotConfigured)
}

func TestNewSchedulerRejectsInvalidExpression(testInstance *testing.T) {
	_, creationError := schedule.NewScheduler(
		schedule.Dependencies{Run: func(context.Context) error { return nil }},
		schedule.Options{CronExpression: testInvalidCronExpressionConstant},
	)
	require.Error(testInstance, creationError)
	require.Contains(testInstance, creationError.Error(), testInvalidCronExpressionConstant)
}

func TestNewSchedulerDefaultsExpression(testInstance *testing.T) {
	scheduler, creationError := schedule.NewScheduler(
		schedule.Dependencies{Run: func(context.Context) error { return nil }},
		schedule.Options{},
	)
	require.NoError(testInstance, creationError)
	require.Equal(testInstance, schedule.DefaultCronExpression, scheduler.CronExpression())
}

func TestNextRunComputesMorningFiring(testInstance *testing.T) {
	scheduler, creationError := schedule.NewScheduler(
		schedule.Dependencies{Run: func(context.Context) error { return nil }},
		schedule.Options{CronExpression: testDailyCronExpressionConstant},
	)
	require.NoError(testInstance, creationError)

	reference := time.Date(2026, time.January, 15, 8, 0, 0, 0, time.UTC)
	nextRun := scheduler.NextRun(reference)
	require.Equal(testInstance, time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC), nextRun)

	afterFiring := scheduler.NextRun(nextRun)
	require.Equal(testInstance, time.Date(2026, time.January, 16, 9, 30, 0, 0, time.UTC), afterFiring)
}

func TestStartStopsOnContextCancellation(testInstance *testing.T) {
	scheduler, creationError := schedule.NewScheduler(
		schedule.Dependencies{Run: func(context.Context) error { return nil }},
		schedule.Options{CronExpression: testDailyCronExpressionConstant},
	)
	require.NoError(testInstance, creationError)

	executionContext, cancelExecution := context.WithCancel(context.Background())

	startResult := make(chan error, 1)
	go func() { startResult <- scheduler.Start(executionContext) }()

	cancelExecution()

	select {
	case startError := <-startResult:
		require.NoError(testInstance, startError)
	case <-time.After(5 * time.Second):
		testInstance.Fatal("scheduler did not stop after context cancellation")
	}
}
