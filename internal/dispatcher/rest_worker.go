package dispatcher

import (
	"sync"
	"time"

	"modguard/internal/guard"
	"modguard/internal/logging"
)

// Recorder persists which actors have been mitigated, so moderators can
// review and reverse.
type Recorder interface {
	AddMitigatedUser(guildID, userID, reason, actionTaken string) error
}

// Dispatcher drains the mitigation queue with a small worker pool. It is the
// sink for guard threshold crossings: Mitigate enqueues, workers execute.
type Dispatcher struct {
	queue    *PriorityQueue
	client   *RESTClient
	recorder Recorder
	action   MitigationAction

	// OnComplete, when set, observes every finished job. Used for log
	// channel notification.
	OnComplete func(job *Job, err error)

	done chan struct{}
	wg   sync.WaitGroup
}

func New(client *RESTClient, recorder Recorder, action MitigationAction) *Dispatcher {
	if !action.Valid() {
		action = MitigateBan
	}
	return &Dispatcher{
		queue:    NewPriorityQueue(),
		client:   client,
		recorder: recorder,
		action:   action,
		done:     make(chan struct{}),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start(workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run(i)
	}
}

// Stop halts the workers after the current jobs finish. Queued jobs that
// were never dequeued are dropped.
func (d *Dispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
	if n := d.queue.Size(); n > 0 {
		logging.Warn("Dispatcher stopped with %d mitigation jobs still queued", n)
	}
}

// Mitigate satisfies the guard's mitigation callback: threshold crossings
// become critical-priority jobs with the configured action.
func (d *Dispatcher) Mitigate(guildID, actorID string, summary guard.Summary) {
	d.Enqueue(&Job{
		Priority:   PriorityCritical,
		GuildID:    guildID,
		TargetID:   actorID,
		Action:     d.action,
		Reason:     summary.Reason,
		EnqueuedAt: time.Now(),
	})
}

func (d *Dispatcher) Enqueue(job *Job) {
	d.queue.Enqueue(job)
}

// QueueSize reports the current mitigation backlog.
func (d *Dispatcher) QueueSize() int {
	return d.queue.Size()
}

func (d *Dispatcher) run(id int) {
	defer d.wg.Done()
	for {
		job, ok := d.queue.Dequeue()
		if !ok {
			if !d.queue.Wait(d.done) {
				return
			}
			continue
		}
		d.execute(id, job)
	}
}

func (d *Dispatcher) execute(workerID int, job *Job) {
	var err error
	switch job.Action {
	case MitigateBan:
		err = d.client.Ban(job.GuildID, job.TargetID, job.Reason)
	case MitigateKick:
		err = d.client.Kick(job.GuildID, job.TargetID, job.Reason)
	case MitigateStripRoles:
		err = d.client.StripRoles(job.GuildID, job.TargetID, job.Reason)
	case MitigateTimeout:
		err = d.client.Timeout(job.GuildID, job.TargetID, time.Hour, job.Reason)
	default:
		logging.Error("Worker %d dropped job with unknown action %q", workerID, job.Action)
		return
	}

	if err != nil {
		logging.Error("Mitigation %s failed for actor %s in guild %s: %v",
			job.Action, job.TargetID, job.GuildID, err)
	} else {
		logging.Info("Mitigation %s applied to actor %s in guild %s (queued %v ago)",
			job.Action, job.TargetID, job.GuildID, time.Since(job.EnqueuedAt).Round(time.Millisecond))

		if d.recorder != nil {
			if rerr := d.recorder.AddMitigatedUser(job.GuildID, job.TargetID, job.Reason, string(job.Action)); rerr != nil {
				logging.Warn("Failed to record mitigated actor %s: %v", job.TargetID, rerr)
			}
		}
	}

	if d.OnComplete != nil {
		d.OnComplete(job, err)
	}
}
