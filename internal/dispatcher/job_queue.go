package dispatcher

import (
	"sync"
	"time"
)

// MitigationAction is the remediation applied to an abusive actor.
type MitigationAction string

const (
	MitigateBan        MitigationAction = "ban"
	MitigateKick       MitigationAction = "kick"
	MitigateStripRoles MitigationAction = "strip_roles"
	MitigateTimeout    MitigationAction = "timeout"
)

// Valid reports whether a is a known mitigation action.
func (a MitigationAction) Valid() bool {
	switch a {
	case MitigateBan, MitigateKick, MitigateStripRoles, MitigateTimeout:
		return true
	}
	return false
}

type JobPriority uint8

const (
	PriorityLow JobPriority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Job is one queued mitigation call.
type Job struct {
	Priority   JobPriority
	GuildID    string
	TargetID   string
	Action     MitigationAction
	Reason     string
	EnqueuedAt time.Time
}

// PriorityQueue drains critical jobs before anything else; within a band,
// FIFO. Safe for concurrent producers and consumers.
type PriorityQueue struct {
	mu       sync.Mutex
	critical []*Job
	high     []*Job
	normal   []*Job
	low      []*Job
	notify   chan struct{}
}

func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{
		critical: make([]*Job, 0, 64),
		high:     make([]*Job, 0, 128),
		normal:   make([]*Job, 0, 256),
		low:      make([]*Job, 0, 256),
		notify:   make(chan struct{}, 1),
	}
}

func (pq *PriorityQueue) Enqueue(job *Job) {
	pq.mu.Lock()
	switch job.Priority {
	case PriorityCritical:
		pq.critical = append(pq.critical, job)
	case PriorityHigh:
		pq.high = append(pq.high, job)
	case PriorityNormal:
		pq.normal = append(pq.normal, job)
	default:
		pq.low = append(pq.low, job)
	}
	pq.mu.Unlock()

	select {
	case pq.notify <- struct{}{}:
	default:
	}
}

func (pq *PriorityQueue) Dequeue() (*Job, bool) {
	pq.mu.Lock()
	defer pq.mu.Unlock()

	for _, band := range []*[]*Job{&pq.critical, &pq.high, &pq.normal, &pq.low} {
		if len(*band) > 0 {
			job := (*band)[0]
			*band = (*band)[1:]
			return job, true
		}
	}
	return nil, false
}

// Wait blocks until a job may be available or the done channel closes.
func (pq *PriorityQueue) Wait(done <-chan struct{}) bool {
	select {
	case <-pq.notify:
		return true
	case <-done:
		return false
	}
}

func (pq *PriorityQueue) Size() int {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	return len(pq.critical) + len(pq.high) + len(pq.normal) + len(pq.low)
}
