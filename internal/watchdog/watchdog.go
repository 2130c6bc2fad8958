package watchdog

import (
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"modguard/internal/logging"
)

// Probe checks one component, returning an error when it is unhealthy.
type Probe func() error

type component struct {
	name    string
	probe   Probe
	healthy uint32
}

// Watchdog periodically probes registered components and logs transitions.
// It observes and reports; it never restarts anything itself.
type Watchdog struct {
	mu         sync.Mutex
	components []*component
	interval   time.Duration
	running    uint32
	done       chan struct{}
}

func New(interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watchdog{
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Register adds a component probe. Components start out healthy.
func (w *Watchdog) Register(name string, probe Probe) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.components = append(w.components, &component{name: name, probe: probe, healthy: 1})
}

func (w *Watchdog) Start() {
	if !atomic.CompareAndSwapUint32(&w.running, 0, 1) {
		return
	}
	go w.loop()
}

func (w *Watchdog) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkAll()
			w.logProcessStats()
		case <-w.done:
			return
		}
	}
}

// logProcessStats samples our own CPU and memory usage each tick. Debug level
// so production logs stay quiet unless someone is investigating.
func (w *Watchdog) logProcessStats() {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuPercent, _ := proc.CPUPercent()
	memPercent, _ := proc.MemoryPercent()
	logging.Debug("Process stats: cpu=%.1f%% mem=%.1f%% goroutines=%d",
		cpuPercent, memPercent, runtime.NumGoroutine())
}

func (w *Watchdog) checkAll() {
	w.mu.Lock()
	components := make([]*component, len(w.components))
	copy(components, w.components)
	w.mu.Unlock()

	for _, comp := range components {
		err := comp.probe()
		was := atomic.LoadUint32(&comp.healthy) == 1

		if err != nil {
			atomic.StoreUint32(&comp.healthy, 0)
			if was {
				logging.Error("Watchdog: %s unhealthy: %v", comp.name, err)
			}
			continue
		}

		atomic.StoreUint32(&comp.healthy, 1)
		if !was {
			logging.Info("Watchdog: %s recovered", comp.name)
		}
	}
}

// IsHealthy reports the last probe result for a component.
func (w *Watchdog) IsHealthy(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, comp := range w.components {
		if comp.name == name {
			return atomic.LoadUint32(&comp.healthy) == 1
		}
	}
	return false
}

// Status snapshots every component's health.
func (w *Watchdog) Status() map[string]bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	status := make(map[string]bool, len(w.components))
	for _, comp := range w.components {
		status[comp.name] = atomic.LoadUint32(&comp.healthy) == 1
	}
	return status
}

func (w *Watchdog) Stop() {
	if atomic.CompareAndSwapUint32(&w.running, 1, 0) {
		close(w.done)
	}
}
