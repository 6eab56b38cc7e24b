package events_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/koppalanaveenkumar/ai-guardrails/pkg/app/events"
)

func TestDispatcher_Dispatch_RunsTask(t *testing.T) {
	dispatcher := events.NewDispatcher(logrus.New(), 2, 10)

	var wg sync.WaitGroup
	wg.Add(1)
	dispatcher.Dispatch(func() {
		wg.Done()
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}

	dispatcher.Shutdown()
}

func TestDispatcher_Shutdown_DrainsQueuedTasks(t *testing.T) {
	dispatcher := events.NewDispatcher(logrus.New(), 2, 100)

	var counter int64
	for i := 0; i < 50; i++ {
		dispatcher.Dispatch(func() {
			atomic.AddInt64(&counter, 1)
		})
	}

	dispatcher.Shutdown()

	assert.Equal(t, int64(50), atomic.LoadInt64(&counter))
}

func TestDispatcher_Dispatch_AfterShutdownIsDropped(t *testing.T) {
	dispatcher := events.NewDispatcher(logrus.New(), 1, 10)
	dispatcher.Shutdown()

	// Must not panic on a closed queue.
	dispatcher.Dispatch(func() {
		t.Error("task must not run after shutdown")
	})
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	dispatcher := events.NewDispatcher(logrus.New(), 1, 10)

	dispatcher.Dispatch(func() {
		panic("boom")
	})

	var wg sync.WaitGroup
	wg.Add(1)
	dispatcher.Dispatch(func() {
		wg.Done()
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}

	dispatcher.Shutdown()
}

func TestDispatcher_Shutdown_Idempotent(t *testing.T) {
	dispatcher := events.NewDispatcher(logrus.New(), 1, 10)
	dispatcher.Shutdown()
	dispatcher.Shutdown()
}
