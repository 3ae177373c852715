// Package batch runs the document pipeline over many files with bounded
// concurrency, failure isolation, and periodic resource reclamation.
package batch

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"dochub/internal/domain"
	"dochub/internal/port"
)

// DocumentProcessor is the per-document pipeline the scheduler drives.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, path string, opts domain.ProcessingOptions) domain.ProcessingResult
}

// ProgressFunc is invoked exactly once per file, in completion order.
// completed is the number of files finished so far, including this one.
type ProgressFunc func(path string, completed, total int, result domain.ProcessingResult)

// Scheduler fans paths out over a bounded worker pool.
type Scheduler struct {
	processor    DocumentProcessor
	resources    port.ResourceManager
	concurrency  int64
	reclaimEvery int
}

// NewScheduler creates a scheduler running at most concurrency documents in
// flight, asking resources to reclaim after every reclaimEvery completions.
func NewScheduler(processor DocumentProcessor, resources port.ResourceManager, concurrency, reclaimEvery int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	if reclaimEvery < 1 {
		reclaimEvery = 10
	}
	return &Scheduler{
		processor:    processor,
		resources:    resources,
		concurrency:  int64(concurrency),
		reclaimEvery: reclaimEvery,
	}
}

// Run processes every path and returns the aggregate result. A failing
// document never aborts the batch. Cancelling the context stops scheduling
// new documents; documents already in flight run to completion and the
// unstarted remainder is reported failed.
func (s *Scheduler) Run(ctx context.Context, paths []string, opts domain.ProcessingOptions, progress ProgressFunc) domain.BatchResult {
	total := len(paths)
	result := domain.BatchResult{TotalFiles: total}

	sem := semaphore.NewWeighted(s.concurrency)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	finish := func(path string, r domain.ProcessingResult) {
		mu.Lock()
		defer mu.Unlock()
		completed++
		if r.Success {
			result.SuccessfulFiles++
		} else {
			result.FailedFiles++
		}
		result.Results = append(result.Results, domain.FileResult{Path: path, Result: r})
		if progress != nil {
			progress(path, completed, total, r)
		}
		if completed%s.reclaimEvery == 0 && s.resources != nil {
			s.resources.Reclaim()
		}
	}

	docCtx := context.WithoutCancel(ctx)
	for _, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Batch canceled: the remainder is never scheduled.
			finish(path, domain.ProcessingResult{
				Success:       false,
				ErrorMessages: []string{"batch canceled before processing"},
			})
			continue
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)
			log.Printf("[batch] processing %s", path)
			finish(path, s.processor.ProcessDocument(docCtx, path, opts))
		}(path)
	}
	wg.Wait()
	return result
}
