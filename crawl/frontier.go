package crawl

import (
	"container/heap"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Priority orders run targets. Higher values are processed first.
type Priority int

// Target priorities.
const (
	// PriorityStore is a store root that needs listing discovery first.
	PriorityStore Priority = 1
	// PriorityProduct is a product page that can be extracted directly.
	PriorityProduct Priority = 2
)

// Target is a URL queued for a run.
type Target struct {
	URL      string
	Priority Priority
}

// Frontier is an in-memory queue of run targets with Bloom filter
// deduplication. It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.BloomFilter
	queue *targetHeap
	seq   int
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &targetHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewWithEstimates(n, fpRate),
		queue: h,
	}
}

// Push adds a target to the frontier.
// Returns false if the URL has already been seen. URLs differing only by
// fragment are duplicates.
func (f *Frontier) Push(t Target) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	t.URL = stripFragment(t.URL)
	if f.seen.TestString(t.URL) {
		return false
	}
	f.seen.AddString(t.URL)

	heap.Push(f.queue, queued{Target: t, seq: f.seq})
	f.seq++
	return true
}

// Pop returns the next target by priority, in push order within a priority.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (Target, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queue.Len() == 0 {
		return Target{}, false
	}
	q, _ := heap.Pop(f.queue).(queued)
	return q.Target, true
}

// Drain pops every queued target.
func (f *Frontier) Drain() []Target {
	var out []Target
	for {
		t, ok := f.Pop()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Seen returns true if the URL has been processed or queued.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.TestString(stripFragment(rawURL))
}

func stripFragment(u string) string {
	if idx := strings.Index(u, "#"); idx != -1 {
		return u[:idx]
	}
	return u
}

type queued struct {
	Target
	seq int
}

// targetHeap implements heap.Interface as a max-heap on priority.
type targetHeap []queued

func (h targetHeap) Len() int { return len(h) }

func (h targetHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h targetHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *targetHeap) Push(x any) {
	q, _ := x.(queued)
	*h = append(*h, q)
}

func (h *targetHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
