package detection

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Worker consumes re-detection requests emitted by the sync engine.
// The queue decouples detection from sync: a detection failure is
// logged and dropped, never propagated back into a sync result.
type Worker struct {
	detector *Detector
	queue    chan int64
	done     chan struct{}
}

// NewWorker creates a detection worker with the given queue depth
func NewWorker(detector *Detector, depth int) *Worker {
	if depth <= 0 {
		depth = 64
	}
	return &Worker{
		detector: detector,
		queue:    make(chan int64, depth),
		done:     make(chan struct{}),
	}
}

// Start begins consuming the queue until the context is cancelled
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case shiftID := <-w.queue:
				if _, err := w.detector.DetectTrips(shiftID); err != nil {
					logrus.Errorf("[DetectionWorker] Detection failed for shift %d: %v", shiftID, err)
				}
			}
		}
	}()
}

// Enqueue requests re-detection for the given shifts. Never blocks: if
// the queue is full the request is dropped and the next sync cycle
// will re-trigger it.
func (w *Worker) Enqueue(shiftIDs []int64) {
	for _, shiftID := range shiftIDs {
		select {
		case w.queue <- shiftID:
		default:
			logrus.Warnf("[DetectionWorker] Queue full, dropping re-detection for shift %d", shiftID)
		}
	}
}

// Wait blocks until the worker has stopped
func (w *Worker) Wait() {
	<-w.done
}
