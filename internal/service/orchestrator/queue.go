package orchestrator

import (
	"container/heap"

	"metasync/internal/domain"
)

// jobQueue is a priority heap of pending jobs, owned exclusively by the
// coordinator goroutine. Ordering is injective: priority ordinal, then
// scheduled time, then created time, then job id, so no two jobs ever
// compare equal.
type jobQueue struct {
	items []*domain.SyncJob
}

func newJobQueue() *jobQueue {
	q := &jobQueue{}
	heap.Init(q)
	return q
}

func (q *jobQueue) Len() int { return len(q.items) }

func (q *jobQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (q *jobQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *jobQueue) Push(x any) { q.items = append(q.items, x.(*domain.SyncJob)) }

func (q *jobQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

// push enqueues a pending job.
func (q *jobQueue) push(job *domain.SyncJob) { heap.Push(q, job) }

// peek returns the head of the queue without removing it.
func (q *jobQueue) peek() *domain.SyncJob {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// pop removes and returns the head of the queue.
func (q *jobQueue) pop() *domain.SyncJob {
	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(q).(*domain.SyncJob)
}

// remove drops the job with the given id from the queue, reporting whether
// it was present.
func (q *jobQueue) remove(jobID string) bool {
	for i, job := range q.items {
		if job.ID == jobID {
			heap.Remove(q, i)
			return true
		}
	}
	return false
}
