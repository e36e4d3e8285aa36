// Package worker runs imports and conflict resolutions in the background.
//
// Jobs are read from a channel by a fixed number of goroutines. Jobs of the
// same account never run concurrently, jobs of different accounts do.
package worker

import (
	"context"
	"log"
	"sync"

	"github.com/etnz/accounts"
)

// Job is one unit of work for an account: an import batch, or, when
// Resolutions is not nil, the application of conflict resolutions.
type Job struct {
	Account     accounts.Account
	Request     accounts.ImportRequest
	Resolutions []accounts.ResolvedConflict
}

// Result is what a Job produced.
type Result struct {
	Job        Job
	Import     accounts.ImportResult
	Resolution accounts.ResolutionResult
	Err        error
}

// Worker processes Jobs submitted to it.
type Worker struct {
	importer *accounts.Importer
	resolver *accounts.Resolver
	jobs     chan Job
	n        int

	// OnResult, if set, receives every Result. It is called from the worker
	// goroutines.
	OnResult func(Result)

	muMap map[int]*sync.Mutex // per account
	mapMu sync.Mutex          // protects muMap
}

// New creates a Worker running n goroutines over repo, with a queue of size
// queue. Import completions are sent to notifier if not nil.
func New(repo accounts.EntryRepository, notifier accounts.Notifier, n, queue int) *Worker {
	return &Worker{
		importer: &accounts.Importer{Repo: repo, Notifier: notifier},
		resolver: &accounts.Resolver{Repo: repo},
		jobs:     make(chan Job, queue),
		n:        max(n, 1),
		muMap:    make(map[int]*sync.Mutex),
	}
}

// Submit queues job. It blocks while the queue is full, until ctx is done.
// Submit must not be called after Close.
func (w *Worker) Submit(ctx context.Context, job Job) error {
	select {
	case w.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tells Run to return once the queue is drained.
func (w *Worker) Close() { close(w.jobs) }

// Run processes jobs until Close is called and the queue is empty, or until
// ctx is done. A failing job is logged and reported, it never stops the loop.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for range w.n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			r := w.process(ctx, job)
			if r.Err != nil {
				log.Printf("account %d: job failed: %v", job.Account.ID, r.Err)
			}
			if w.OnResult != nil {
				w.OnResult(r)
			}
		}
	}
}

func (w *Worker) accountLock(accountID int) *sync.Mutex {
	w.mapMu.Lock()
	defer w.mapMu.Unlock()

	if _, exists := w.muMap[accountID]; !exists {
		w.muMap[accountID] = &sync.Mutex{}
	}
	return w.muMap[accountID]
}

func (w *Worker) process(ctx context.Context, job Job) Result {
	mu := w.accountLock(job.Account.ID)
	mu.Lock()
	defer mu.Unlock()

	r := Result{Job: job}
	if job.Resolutions != nil {
		r.Resolution, r.Err = w.resolver.Apply(ctx, job.Account, job.Resolutions)
		return r
	}
	r.Import, r.Err = w.importer.Import(ctx, job.Account, job.Request)
	return r
}
