package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// DefaultCronExpression fires the pipeline every day at 09:30.
	DefaultCronExpression = "30 9 * * *"

	runFuncMissingMessageConstant         = "schedule: run function not configured"
	cronExpressionInvalidTemplateConstant = "invalid cron expression %q: %w"
	schedulerStartedMessageConstant       = "scheduler started"
	schedulerStoppedMessageConstant       = "scheduler stopped"
	scheduledRunStartedMessageConstant    = "scheduled run started"
	scheduledRunCompletedMessageConstant  = "scheduled run completed"
	scheduledRunFailedMessageConstant     = "scheduled run failed"
	scheduledRunSkippedMessageConstant    = "scheduled run skipped, previous run still in progress"
	logFieldCronExpressionConstant        = "cron_expression"
	logFieldNextRunConstant               = "next_run"
	logFieldErrorConstant                 = "error"
)

// ErrRunFuncNotConfigured indicates the scheduler was created without a run function.
var ErrRunFuncNotConfigured = errors.New(runFuncMissingMessageConstant)

// RunFunc executes a single pipeline run.
type RunFunc func(executionContext context.Context) error

// Dependencies carries the collaborators required by the scheduler.
type Dependencies struct {
	Run    RunFunc
	Logger *zap.Logger
}

// Options adjusts scheduler behavior.
type Options struct {
	CronExpression string
}

// Scheduler runs the pipeline on a cron schedule, one run at a time.
type Scheduler struct {
	cronExpression string
	cronSchedule   cron.Schedule
	runCallback    RunFunc
	logger         *zap.Logger
	runInFlight    atomic.Bool
}

// NewScheduler validates the cron expression and returns a ready scheduler.
func NewScheduler(dependencies Dependencies, options Options) (*Scheduler, error) {
	if dependencies.Run == nil {
		return nil, ErrRunFuncNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cronExpression := options.CronExpression
	if len(cronExpression) == 0 {
		cronExpression = DefaultCronExpression
	}

	cronSchedule, parseError := cron.ParseStandard(cronExpression)
	if parseError != nil {
		return nil, fmt.Errorf(cronExpressionInvalidTemplateConstant, cronExpression, parseError)
	}

	scheduler := &Scheduler{
		cronExpression: cronExpression,
		cronSchedule:   cronSchedule,
		runCallback:    dependencies.Run,
		logger:         logger,
	}

	return scheduler, nil
}

// CronExpression returns the expression the scheduler fires on.
func (scheduler *Scheduler) CronExpression() string {
	return scheduler.cronExpression
}

// NextRun reports the first firing time after the supplied instant.
func (scheduler *Scheduler) NextRun(after time.Time) time.Time {
	return scheduler.cronSchedule.Next(after)
}

// Start blocks until the context is cancelled, firing runs on the schedule.
// In-progress runs finish before Start returns.
func (scheduler *Scheduler) Start(executionContext context.Context) error {
	cronRunner := cron.New()
	_, registrationError := cronRunner.AddFunc(scheduler.cronExpression, func() {
		scheduler.executeRun(executionContext)
	})
	if registrationError != nil {
		return fmt.Errorf(cronExpressionInvalidTemplateConstant, scheduler.cronExpression, registrationError)
	}

	scheduler.logger.Info(
		schedulerStartedMessageConstant,
		zap.String(logFieldCronExpressionConstant, scheduler.cronExpression),
		zap.Time(logFieldNextRunConstant, scheduler.NextRun(time.Now())),
	)

	cronRunner.Start()
	<-executionContext.Done()

	stopContext := cronRunner.Stop()
	<-stopContext.Done()

	scheduler.logger.Info(schedulerStoppedMessageConstant)

	return nil
}

func (scheduler *Scheduler) executeRun(executionContext context.Context) {
	if !scheduler.runInFlight.CompareAndSwap(false, true) {
		scheduler.logger.Warn(scheduledRunSkippedMessageConstant)
		return
	}
	defer scheduler.runInFlight.Store(false)

	scheduler.logger.Info(scheduledRunStartedMessageConstant)

	if runError := scheduler.runCallback(executionContext); runError != nil {
		scheduler.logger.Error(scheduledRunFailedMessageConstant, zap.String(logFieldErrorConstant, runError.Error()))
		return
	}

	scheduler.logger.Info(
		scheduledRunCompletedMessageConstant,
		zap.Time(logFieldNextRunConstant, scheduler.NextRun(time.Now())),
	)
}
