package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dochub/internal/batch"
	"dochub/internal/domain"
	"dochub/internal/options"
	"dochub/internal/port"
)

// JobStatus is the externally visible state of one batch job.
type JobStatus struct {
	ID         uuid.UUID           `json:"id"`
	State      domain.JobState     `json:"state"`
	Total      int                 `json:"total"`
	Completed  int                 `json:"completed"`
	Successful int                 `json:"successful"`
	Failed     int                 `json:"failed"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
	Results    []domain.FileResult `json:"results,omitempty"`
}

// JobService runs batches asynchronously and tracks their lifecycle.
type JobService interface {
	StartBatch(paths []string, cfg domain.SessionConfig, notifyEmail string) (uuid.UUID, error)
	GetJob(id uuid.UUID) (*JobStatus, error)
	ListJobs() []JobStatus
	CancelJob(id uuid.UUID) error
}

type jobService struct {
	scheduler *batch.Scheduler
	runs      port.RunRepository
	email     port.EmailSender

	mu   sync.RWMutex
	jobs map[uuid.UUID]*jobState
}

type jobState struct {
	status JobStatus
	cancel context.CancelFunc
}

// NewJobService wires the asynchronous batch runner.
func NewJobService(scheduler *batch.Scheduler, runs port.RunRepository, email port.EmailSender) JobService {
	return &jobService{
		scheduler: scheduler,
		runs:      runs,
		email:     email,
		jobs:      make(map[uuid.UUID]*jobState),
	}
}

func (s *jobService) StartBatch(paths []string, cfg domain.SessionConfig, notifyEmail string) (uuid.UUID, error) {
	if len(paths) == 0 {
		return uuid.Nil, fmt.Errorf("%w: no paths given", domain.ErrValidationFailure)
	}
	opts := options.SessionToProcessorOptions(cfg)
	if v := options.Validate(opts); !v.Valid {
		msgs := make([]string, 0, len(v.Errors))
		for _, e := range v.Errors {
			msgs = append(msgs, e.Error())
		}
		return uuid.Nil, fmt.Errorf("%w: %s", domain.ErrValidationFailure, strings.Join(msgs, "; "))
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()

	s.mu.Lock()
	s.jobs[id] = &jobState{
		status: JobStatus{
			ID:        id,
			State:     domain.JobQueued,
			Total:     len(paths),
			StartedAt: time.Now(),
		},
		cancel: cancel,
	}
	s.mu.Unlock()

	go s.runBatch(ctx, id, paths, opts, notifyEmail)
	return id, nil
}

func (s *jobService) runBatch(ctx context.Context, id uuid.UUID, paths []string, opts domain.ProcessingOptions, notifyEmail string) {
	s.update(id, func(st *JobStatus) { st.State = domain.JobRunning })
	start := time.Now()

	progress := func(path string, completed, total int, r domain.ProcessingResult) {
		s.update(id, func(st *JobStatus) {
			st.Completed = completed
			if r.Success {
				st.Successful++
			} else {
				st.Failed++
			}
		})
		run := recordForResult(path, r)
		if err := s.runs.Insert(context.Background(), run); err != nil {
			log.Printf("[job %s] persisting run for %s: %v", id, path, err)
		}
	}

	result := s.scheduler.Run(ctx, paths, opts, progress)
	finished := time.Now()

	s.update(id, func(st *JobStatus) {
		if ctx.Err() != nil {
			st.State = domain.JobCanceled
		} else {
			st.State = domain.JobCompleted
		}
		st.Results = result.Results
		st.FinishedAt = &finished
	})
	log.Printf("[job %s] finished: %d/%d succeeded, %d failed",
		id, result.SuccessfulFiles, result.TotalFiles, result.FailedFiles)

	if notifyEmail != "" && s.email != nil {
		summary := summarize(id, result, finished.Sub(start))
		if err := s.email.SendBatchSummary(context.Background(), notifyEmail, summary); err != nil {
			log.Printf("[job %s] sending summary to %s: %v", id, notifyEmail, err)
		}
	}
}

func (s *jobService) GetJob(id uuid.UUID) (*JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	status := st.status
	return &status, nil
}

func (s *jobService) ListJobs() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, st := range s.jobs {
		out = append(out, st.status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// CancelJob stops scheduling new documents; documents in flight run to
// completion.
func (s *jobService) CancelJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	if st.status.State == domain.JobCompleted || st.status.State == domain.JobCanceled {
		return fmt.Errorf("%w: job already %s", domain.ErrValidationFailure, st.status.State)
	}
	st.cancel()
	return nil
}

func (s *jobService) update(id uuid.UUID, fn func(*JobStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.jobs[id]; ok {
		fn(&st.status)
	}
}

// summarize condenses a batch result for notification, surfacing the most
// frequent error messages.
func summarize(id uuid.UUID, result domain.BatchResult, duration time.Duration) domain.BatchSummary {
	freq := make(map[string]int)
	for _, fr := range result.Results {
		for _, msg := range fr.Result.ErrorMessages {
			freq[msg]++
		}
	}
	type entry struct {
		msg string
		n   int
	}
	entries := make([]entry, 0, len(freq))
	for msg, n := range freq {
		entries = append(entries, entry{msg, n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].n > entries[j].n })

	const maxTop = 5
	top := make([]string, 0, maxTop)
	for i, e := range entries {
		if i == maxTop {
			break
		}
		top = append(top, fmt.Sprintf("%s (x%d)", e.msg, e.n))
	}

	return domain.BatchSummary{
		JobID:           id,
		TotalFiles:      result.TotalFiles,
		SuccessfulFiles: result.SuccessfulFiles,
		FailedFiles:     result.FailedFiles,
		Duration:        duration,
		TopErrors:       top,
	}
}
