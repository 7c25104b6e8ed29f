package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	JobBackup = "backup"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	maxRuns = 50
)

// Run is the record kept for each executed job, newest last.
type Run struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Details     json.RawMessage `json:"details,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type Func func(context.Context) (any, error)

// Schedule runs Job every Interval while the service is started.
type Schedule struct {
	Type     string
	Interval time.Duration
	Job      Func
}

type Service struct {
	schedules []Schedule
	queue     chan job

	mu   sync.Mutex
	runs []Run
	wg   sync.WaitGroup
}

type job struct {
	Type string
	Run  Func
}

func New(schedules ...Schedule) *Service {
	return &Service{
		schedules: schedules,
		queue:     make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	for _, sched := range s.schedules {
		if sched.Interval <= 0 || sched.Job == nil {
			continue
		}
		sched := sched
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.schedule(ctx, sched)
		}()
	}
}

// Wait blocks until the worker and schedulers exit after ctx is cancelled.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType string, run Func) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run Func) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// Runs returns a copy of the recent run records.
func (s *Service) Runs() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, len(s.runs))
	copy(out, s.runs)
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	id := s.begin(j.Type)

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	s.finish(id, status, detailsJSON, err)
	return details, err
}

func (s *Service) begin(jobType string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := Run{ID: uuid.NewString(), Type: jobType, Status: StatusRunning, StartedAt: time.Now().UTC()}
	s.runs = append(s.runs, run)
	if over := len(s.runs) - maxRuns; over > 0 {
		s.runs = s.runs[over:]
	}
	return run.ID
}

func (s *Service) finish(id, status string, details json.RawMessage, runErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID != id {
			continue
		}
		now := time.Now().UTC()
		s.runs[i].Status = status
		s.runs[i].CompletedAt = &now
		s.runs[i].Details = details
		if runErr != nil {
			s.runs[i].Error = runErr.Error()
		}
		return
	}
}

func (s *Service) schedule(ctx context.Context, sched Schedule) {
	ticker := time.NewTicker(sched.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sched.Type, sched.Job)
		}
	}
}
