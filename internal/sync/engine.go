package sync

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Options configures an Engine.
type Options struct {
	// ContextFn builds the run context from the current device registration.
	ContextFn func() Context

	// ParallelSync runs units of equal priority concurrently. Groups of
	// different priority always run strictly in order.
	ParallelSync bool

	// AutoSyncInterval enables the background ticker when > 0.
	AutoSyncInterval time.Duration

	// RunTimeout bounds one background run when > 0. Units not started
	// before the deadline are skipped and retried on the next run.
	RunTimeout time.Duration

	// SyncOnStartup queues a full run right after Start.
	SyncOnStartup bool

	Recorder Recorder
	Notifier Notifier
}

type syncRequest struct {
	reason string
}

// Engine runs the registered units in priority order and aggregates their
// results. One unit failing never stops the others.
type Engine struct {
	mu sync.RWMutex

	units        []Unit
	invalidators map[Doctype][]Invalidator
	opts         Options

	isRunning      bool
	syncInProgress bool
	lastSync       time.Time
	lastReport     *Report

	stopChan chan struct{}
	syncChan chan syncRequest
}

// NewEngine creates an engine over the given units. Units are kept sorted
// by descending priority.
func NewEngine(units []Unit, opts Options) *Engine {
	sorted := make([]Unit, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})

	return &Engine{
		units:        sorted,
		invalidators: make(map[Doctype][]Invalidator),
		opts:         opts,
		syncChan:     make(chan syncRequest, 100),
	}
}

// RegisterInvalidator invalidates inv whenever a run changes dt locally.
func (e *Engine) RegisterInvalidator(dt Doctype, inv Invalidator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invalidators[dt] = append(e.invalidators[dt], inv)
}

// Start launches the background worker and, if configured, the auto-sync
// ticker and the startup run. A stopped engine can be started again.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isRunning {
		return ErrEngineRunning
	}
	e.isRunning = true
	e.stopChan = make(chan struct{})

	log.Println("🔄 Sync engine starting...")
	go e.worker(e.stopChan)

	if e.opts.AutoSyncInterval > 0 {
		go e.autoSyncLoop(e.stopChan)
	}
	if e.opts.SyncOnStartup {
		go func() {
			time.Sleep(5 * time.Second)
			e.RequestSync("startup")
		}()
	}

	log.Println("✅ Sync engine started")
	return nil
}

// Stop shuts the background worker down.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning {
		return
	}
	e.isRunning = false
	close(e.stopChan)
	log.Println("🛑 Sync engine stopped")
}

// RequestSync queues a full run. It never blocks; when the queue is full
// the request is dropped because a run is already owed.
func (e *Engine) RequestSync(reason string) {
	select {
	case e.syncChan <- syncRequest{reason: reason}:
	default:
	}
}

func (e *Engine) worker(stop <-chan struct{}) {
	for {
		select {
		case req := <-e.syncChan:
			log.Printf("🔄 Sync requested (%s)", req.reason)
			ctx := context.Background()
			cancel := context.CancelFunc(func() {})
			if e.opts.RunTimeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, e.opts.RunTimeout)
			}
			if _, err := e.RunSync(ctx, e.opts.ContextFn()); err != nil {
				log.Printf("⚠️ Sync run not started: %v", err)
			}
			cancel()
		case <-stop:
			return
		}
	}
}

func (e *Engine) autoSyncLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(e.opts.AutoSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.RequestSync("auto")
		case <-stop:
			return
		}
	}
}

// RunSync executes one full run under the given context. Only one run may
// be in flight; a second call returns ErrSyncInProgress. The returned
// Report covers every unit that was started; units behind a cancelled
// context are skipped entirely.
func (e *Engine) RunSync(ctx context.Context, sc Context) (Report, error) {
	if err := sc.Validate(); err != nil {
		return Report{}, err
	}

	e.mu.Lock()
	if e.syncInProgress {
		e.mu.Unlock()
		return Report{}, ErrSyncInProgress
	}
	e.syncInProgress = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncInProgress = false
		e.mu.Unlock()
	}()

	rep := Report{StartedAt: time.Now(), Success: true}
	log.Printf("🔄 Sync run starting (%d units)", len(e.units))

	for start := 0; start < len(e.units); {
		if ctx.Err() != nil {
			log.Printf("⚠️ Sync run cancelled, %d unit(s) skipped", len(e.units)-start)
			rep.Success = false
			break
		}

		// One group = the run of consecutive units sharing a priority.
		end := start + 1
		for end < len(e.units) && e.units[end].Priority() == e.units[start].Priority() {
			end++
		}

		results := e.runGroup(ctx, e.units[start:end], sc)
		for _, res := range results {
			e.finishUnit(ctx, res)
			if !res.Success {
				rep.Success = false
			}
			rep.Results = append(rep.Results, res)
		}
		start = end
	}

	rep.Duration = time.Since(rep.StartedAt)

	e.mu.Lock()
	e.lastSync = time.Now()
	e.lastReport = &rep
	e.mu.Unlock()

	pushed, pulled, conflicts := rep.Totals()
	log.Printf("✅ Sync run finished in %v: %d pushed, %d pulled, %d conflict(s)",
		rep.Duration.Round(time.Millisecond), pushed, pulled, conflicts)

	if e.opts.Notifier != nil {
		e.opts.Notifier.NotifyReport(rep)
	}
	return rep, nil
}

func (e *Engine) runGroup(ctx context.Context, group []Unit, sc Context) []Result {
	results := make([]Result, len(group))

	if !e.opts.ParallelSync || len(group) == 1 {
		for i, u := range group {
			results[i] = u.Run(ctx, sc)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, u := range group {
		wg.Add(1)
		go func(i int, u Unit) {
			defer wg.Done()
			results[i] = u.Run(ctx, sc)
		}(i, u)
	}
	wg.Wait()
	return results
}

// finishUnit records the result and invalidates caches derived from the
// doctype when the run changed local state.
func (e *Engine) finishUnit(ctx context.Context, res Result) {
	if !res.Success {
		log.Printf("⚠️ Unit %s failed: %v", res.Unit, res.Err)
	}

	if e.opts.Recorder != nil {
		if err := e.opts.Recorder.RecordRun(ctx, res); err != nil {
			log.Printf("⚠️ Could not record run for %s: %v", res.Doctype, err)
		}
	}

	if res.Changed {
		e.mu.RLock()
		invs := e.invalidators[res.Doctype]
		e.mu.RUnlock()
		for _, inv := range invs {
			inv.Invalidate()
		}
	}
}

// EngineStatus is the snapshot exposed on the HTTP surface.
type EngineStatus struct {
	Running        bool      `json:"running"`
	SyncInProgress bool      `json:"sync_in_progress"`
	LastSync       time.Time `json:"last_sync"`
	LastReport     *Report   `json:"last_report,omitempty"`
}

// Status returns the engine's current state.
func (e *Engine) Status() EngineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return EngineStatus{
		Running:        e.isRunning,
		SyncInProgress: e.syncInProgress,
		LastSync:       e.lastSync,
		LastReport:     e.lastReport,
	}
}
