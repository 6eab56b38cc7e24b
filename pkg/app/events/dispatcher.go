package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Dispatcher runs detached background work behind its own error boundary so
// side effects like audit writes and alerts never unwind into the request
// path.
type Dispatcher interface {
	Dispatch(task func())
	Shutdown()
}

type dispatcher struct {
	logger   *logrus.Logger
	taskChan chan func()
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(logger *logrus.Logger, workers, buffer int) Dispatcher {
	if workers <= 0 {
		workers = 2
	}
	if buffer <= 0 {
		buffer = 1000
	}
	d := &dispatcher{
		logger:   logger,
		taskChan: make(chan func(), buffer),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *dispatcher) worker() {
	defer d.wg.Done()
	for task := range d.taskChan {
		d.run(task)
	}
}

func (d *dispatcher) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.WithField("panic", r).Error("recovered panic in background task")
		}
	}()
	task()
}

// Dispatch enqueues the task without blocking; when the queue is full the
// task is dropped with a warning.
func (d *dispatcher) Dispatch(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn("dispatcher closed, dropping background task")
		return
	}
	select {
	case d.taskChan <- task:
	default:
		d.logger.Warn("background task queue full, dropping task")
	}
}

// Shutdown stops accepting work and drains queued tasks.
func (d *dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.taskChan)
	d.mu.Unlock()

	d.wg.Wait()
}
