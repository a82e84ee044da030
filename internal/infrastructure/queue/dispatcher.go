package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Processor handles a single photo job.
type Processor interface {
	Process(ctx context.Context, photo string) error
}

// Dispatcher routes photo jobs to a fixed set of workers using consistent
// hashing on the photo name, so jobs for the same photo never run
// concurrently.
type Dispatcher struct {
	workers   []chan string
	processor Processor
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor Processor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan string, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands photo to its worker. It never blocks the caller: when the
// worker's buffer is full the job is dropped and false is returned.
func (d *Dispatcher) Enqueue(photo string) bool {
	idx := d.shardIndex(photo)
	select {
	case d.workers[idx] <- photo:
		metrics.ThumbnailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.ThumbnailsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("photo", photo).Int("worker_id", idx).Msg("thumbnail queue full, job dropped")
		return false
	}
}

// shardIndex maps a photo name deterministically to a worker index.
func (d *Dispatcher) shardIndex(photo string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(photo))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case photo, ok := <-ch:
			if !ok {
				return
			}
			metrics.ThumbnailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.processor.Process(ctx, photo); err != nil {
				d.log.Error().Err(err).
					Str("photo", photo).
					Int("worker_id", id).
					Msg("thumbnail generation failed")
			}
		}
	}
}
