package widget

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// completedItemTTL is how long a finished row stays visible before the queue
// drops it. Failed rows persist until the page reloads.
const completedItemTTL = 2500 * time.Millisecond

// ItemStatus is the lifecycle state of one queued file.
type ItemStatus string

const (
	StatusUploading ItemStatus = "uploading"
	StatusComplete  ItemStatus = "complete"
	StatusError     ItemStatus = "error"
)

// File is one user-selected file handed to the queue.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Data        io.Reader
}

// Item is one row of the upload queue.
type Item struct {
	Id       int64
	Name     string
	Status   ItemStatus
	Progress int    // percent, monotonically non-decreasing
	Message  string // populated when Status is StatusError
}

// UploadQueue renders per-file progress rows and dispatches selected files
// concurrently. Every file gets its own request and its own row, so one
// rejected file never blocks the others.
type UploadQueue struct {
	mu       sync.Mutex
	items    []*Item
	nextId   int64
	uploader Uploader
	gallery  *Gallery
	labels   Labels

	// schedule defers a callback; tests replace it to run removal
	// deterministically instead of waiting out the timer.
	schedule func(d time.Duration, fn func())

	wg sync.WaitGroup
}

func NewUploadQueue(cfg Config, uploader Uploader, gallery *Gallery) *UploadQueue {
	return &UploadQueue{
		uploader: uploader,
		gallery:  gallery,
		labels:   cfg.Labels,
		schedule: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Add enqueues the selected files and starts one upload per file. An empty
// selection changes nothing. The returned items reflect the initial state;
// use Items for progress snapshots.
func (q *UploadQueue) Add(ctx context.Context, files []File) []*Item {
	if len(files) == 0 {
		return nil
	}

	q.mu.Lock()
	started := make([]*Item, 0, len(files))
	for _, f := range files {
		q.nextId++
		item := &Item{Id: q.nextId, Name: f.Name, Status: StatusUploading}
		q.items = append(q.items, item)
		started = append(started, item)
	}
	q.mu.Unlock()

	for i, f := range files {
		item := started[i]
		q.wg.Add(1)
		go func(f File) {
			defer q.wg.Done()
			q.dispatch(ctx, item, f)
		}(f)
	}
	return started
}

func (q *UploadQueue) dispatch(ctx context.Context, item *Item, f File) {
	resp, err := q.uploader.Upload(ctx, f, func(sent, total int64) {
		if total > 0 {
			q.setProgress(item, int(sent*100/total))
		}
	})
	if err != nil {
		q.fail(item, q.errorMessage(err))
		return
	}

	// A single-file request that reaches here succeeded, but the shared
	// response shape still carries per-file errors; surface the first one
	// if this file's entry was rejected.
	if len(resp.Attachments) == 0 {
		q.fail(item, q.errorMessage(&RequestError{PerFile: resp.Errors}))
		return
	}

	for _, meta := range resp.Attachments {
		q.gallery.UpsertMeta(meta)
	}
	q.complete(item)
}

// errorMessage resolves what the failed row shows, in order of preference:
// the server's structured error field, then the first per-file validation
// error, then the generic fallback label.
func (q *UploadQueue) errorMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Message != "" {
			return reqErr.Message
		}
		for _, fe := range reqErr.PerFile {
			if len(fe.Errors) > 0 {
				return fe.Errors[0]
			}
		}
	}
	return q.labels.UploadFailed
}

func (q *UploadQueue) setProgress(item *Item, percent int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if percent > 100 {
		percent = 100
	}
	if item.Status == StatusUploading && percent > item.Progress {
		item.Progress = percent
	}
}

func (q *UploadQueue) complete(item *Item) {
	q.mu.Lock()
	item.Status = StatusComplete
	item.Progress = 100
	q.mu.Unlock()

	q.schedule(completedItemTTL, func() { q.removeItem(item.Id) })
}

func (q *UploadQueue) fail(item *Item, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	item.Status = StatusError
	item.Message = message
}

func (q *UploadQueue) removeItem(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, item := range q.items {
		if item.Id == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Items returns a snapshot of the visible rows in enqueue order.
func (q *UploadQueue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item, len(q.items))
	for i, item := range q.items {
		out[i] = *item
	}
	return out
}

// Wait blocks until every dispatched upload has settled. It exists so the
// page can flush pending uploads before navigation and so tests can join the
// worker goroutines.
func (q *UploadQueue) Wait() {
	q.wg.Wait()
}
