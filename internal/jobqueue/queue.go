// Package jobqueue runs deferred work on the bot's own execution context.
package jobqueue

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type Job func(ctx context.Context)

type Queue struct {
	jobs chan Job
}

func New(size int) *Queue {
	return &Queue{jobs: make(chan Job, size)}
}

// Enqueue hands job over without blocking. It reports false when the queue is full.
func (q *Queue) Enqueue(job Job) bool {
	select {
	case q.jobs <- job:
		return true
	default:
		log.Warn("job queue is full, dropping job")
		return false
	}
}

// Run executes queued jobs one at a time until ctx is done.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			job(ctx)
		}
	}
}
