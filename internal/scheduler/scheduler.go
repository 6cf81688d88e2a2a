package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/iamwavecut/telegram-motivation-bot/internal/jobqueue"
)

type Enqueuer interface {
	Enqueue(job jobqueue.Job) bool
}

// Scheduler fires one job per calendar day at a fixed local time. The job is
// never run inline: it is handed over to the queue.
type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	job   jobqueue.Job
	now   func() time.Time

	mu        sync.Mutex
	entryID   cron.EntryID
	lastFired string
}

func New(queue Enqueuer, job jobqueue.Job) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(time.Local)),
		queue: queue,
		job:   job,
		now:   time.Now,
	}
}

// ParseClock parses "HH:MM" in 24-hour format.
func ParseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time %q: %w", clock, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Start registers the daily trigger and starts the cron loop.
func (s *Scheduler) Start(clock string) error {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID != 0 {
		return errors.New("scheduler already started")
	}
	s.entryID, err = s.cron.AddFunc(fmt.Sprintf("%d %d * * *", minute, hour), s.fire)
	if err != nil {
		return fmt.Errorf("register daily trigger: %w", err)
	}
	s.cron.Start()
	log.WithField("time", fmt.Sprintf("%02d:%02d", hour, minute)).Info("daily delivery scheduled")
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next returns the upcoming fire time, zero before Start.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

func (s *Scheduler) fire() {
	day := s.now().Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFired == day {
		log.WithField("day", day).Warn("daily delivery already fired, skipping")
		return
	}
	if s.queue.Enqueue(s.job) {
		s.lastFired = day
		log.WithField("day", day).Info("daily delivery enqueued")
	}
}
