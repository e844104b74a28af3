package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/bhaveshprodev/OhOnePro/internal/doctree"
)

// BatchStatus represents the state of a load batch.
type BatchStatus string

const (
	StatusQueued    BatchStatus = "queued"
	StatusLoading   BatchStatus = "loading"
	StatusCompleted BatchStatus = "completed"
	StatusPartial   BatchStatus = "partial"
	StatusFailed    BatchStatus = "failed"
)

// Failure is one file that could not be turned into a document.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Err)
}

// Batch tracks the state of loading a set of files. Documents are kept in
// input order regardless of the order workers finish in.
type Batch struct {
	mu sync.Mutex

	Status   BatchStatus
	Progress Progress

	CreatedAt time.Time
	UpdatedAt time.Time

	docs     []*doctree.Document
	failures []Failure
}

// Progress tracks processing progress.
type Progress struct {
	Total  int      `json:"total"`
	Loaded int      `json:"loaded"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// NewBatch creates a queued batch for n inputs.
func NewBatch(n int) *Batch {
	now := time.Now()
	return &Batch{
		Status:    StatusQueued,
		Progress:  Progress{Total: n},
		CreatedAt: now,
		UpdatedAt: now,
		docs:      make([]*doctree.Document, n),
	}
}

// SetStatus updates batch status atomically.
func (b *Batch) SetStatus(status BatchStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Status = status
	b.UpdatedAt = time.Now()
}

// Put stores the document loaded for input i.
func (b *Batch) Put(i int, doc doctree.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[i] = &doc
	b.Progress.Loaded++
	b.UpdatedAt = time.Now()
}

// Fail records that input i could not be loaded.
func (b *Batch) Fail(path string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := Failure{Path: path, Err: err}
	b.failures = append(b.failures, f)
	b.Progress.Failed++
	b.Progress.Errors = append(b.Progress.Errors, f.Error())
	b.UpdatedAt = time.Now()
}

// Documents returns the loaded documents in input order.
func (b *Batch) Documents() []doctree.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]doctree.Document, 0, len(b.docs))
	for _, d := range b.docs {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

// Failures returns the recorded failures in completion order.
func (b *Batch) Failures() []Failure {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Failure, len(b.failures))
	copy(out, b.failures)
	return out
}

// finish settles the final status from the counters.
func (b *Batch) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.Progress.Failed == 0:
		b.Status = StatusCompleted
	case b.Progress.Loaded > 0:
		b.Status = StatusPartial
	default:
		b.Status = StatusFailed
	}
	b.UpdatedAt = time.Now()
}

// BatchSnapshot is a read-only copy of batch state.
type BatchSnapshot struct {
	Status   BatchStatus `json:"status"`
	Progress Progress    `json:"progress"`
}

// Snapshot returns a copy of the batch state.
func (b *Batch) Snapshot() BatchSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	errs := make([]string, len(b.Progress.Errors))
	copy(errs, b.Progress.Errors)
	return BatchSnapshot{
		Status: b.Status,
		Progress: Progress{
			Total:  b.Progress.Total,
			Loaded: b.Progress.Loaded,
			Failed: b.Progress.Failed,
			Errors: errs,
		},
	}
}
