package schedule

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteRunSuppressesOverlappingRuns(testInstance *testing.T) {
	firstRunStarted := make(chan struct{})
	releaseFirstRun := make(chan struct{})

	runCounter := 0
	var runCounterMutex sync.Mutex

	scheduler, creationError := NewScheduler(
		Dependencies{Run: func(context.Context) error {
			runCounterMutex.Lock()
			runCounter++
			runCounterMutex.Unlock()
			close(firstRunStarted)
			<-releaseFirstRun
			return nil
		}},
		Options{},
	)
	require.NoError(testInstance, creationError)

	firstRunFinished := make(chan struct{})
	go func() {
		scheduler.executeRun(context.Background())
		close(firstRunFinished)
	}()

	<-firstRunStarted

	// Fires while the first run still holds the in-flight guard.
	scheduler.executeRun(context.Background())

	close(releaseFirstRun)
	<-firstRunFinished

	runCounterMutex.Lock()
	defer runCounterMutex.Unlock()
	require.Equal(testInstance, 1, runCounter)
}

func TestExecuteRunAllowsSequentialRuns(testInstance *testing.T) {
	runCounter := 0
	scheduler, creationError := NewScheduler(
		Dependencies{Run: func(context.Context) error {
			runCounter++
			return nil
		}},
		Options{},
	)
	require.NoError(testInstance, creationError)

	scheduler.executeRun(context.Background())
	scheduler.executeRun(context.Background())
	require.Equal(testInstance, 2, runCounter)
}
