// Package worker provides background processing for freshly uploaded songs.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ewilliams-labs/encore/internal/core/ports"
)

// Processor handles one song id taken from the queue.
type Processor interface {
	Process(ctx context.Context, songID string) error
}

// Pool manages background workers for post-upload analysis.
type Pool struct {
	proc       Processor
	jobTimeout time.Duration
	jobs       chan string
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ ports.AnalysisQueue = (*Pool)(nil)

// NewPool creates a worker pool with the given queue size. jobTimeout bounds
// each job; zero means no limit.
func NewPool(proc Processor, queueSize int, jobTimeout time.Duration) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{proc: proc, jobTimeout: jobTimeout, jobs: make(chan string, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for songID := range p.jobs {
				p.processJob(songID)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Enqueue queues a song without blocking. When the queue is full or stopped
// the job is dropped with a warning.
func (p *Pool) Enqueue(songID string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Printf("WARN worker: pool stopped, dropping job for %s", songID)
		return
	}
	select {
	case p.jobs <- songID:
	default:
		log.Printf("WARN worker: queue full, dropping job for %s", songID)
	}
}

func (p *Pool) processJob(songID string) {
	ctx := context.Background()
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR worker: job for %s panicked: %v", songID, r)
		}
	}()

	start := time.Now()
	if err := p.proc.Process(ctx, songID); err != nil {
		log.Printf("WARN worker: failed to process song %s: %v", songID, err)
		return
	}
	log.Printf("worker: processed %s in %s", songID, time.Since(start).Round(time.Millisecond))
}
