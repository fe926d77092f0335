package upload

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/tectonic3d/tectonic/engine/containers"
	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/renderer"
)

// State is the worker lifecycle state machine.
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Worker owns the secondary device context and the consumer goroutine that
// executes queued descriptors against it.
type Worker struct {
	device renderer.Device
	queue  *containers.TaskQueue[Descriptor]
	signal *CompletionSignal

	ctx    renderer.Context
	state  atomic.Int32
	stopCh chan struct{}
	done   chan struct{}

	processed atomic.Uint64

	resultsMu sync.Mutex
	results   []Result
}

func NewWorker(device renderer.Device, queue *containers.TaskQueue[Descriptor], signal *CompletionSignal) *Worker {
	return &Worker{
		device: device,
		queue:  queue,
		signal: signal,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Initialize creates the invisible secondary context sharing the resource
// namespace with the primary context. Must run on the thread owning the
// primary context. On failure the worker must not be started.
func (w *Worker) Initialize() error {
	if State(w.state.Load()) != StateUninitialized {
		return core.ErrAlreadyRunning
	}

	ctx, err := w.device.CreateSharedContext()
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrWorkerInit, err)
	}

	w.ctx = ctx
	w.state.Store(int32(StateInitialized))
	core.LogInfo("upload worker initialized")
	return nil
}

// Start spawns the consumer goroutine. Calling Start on a worker that is
// already running reports ErrAlreadyRunning instead of spawning a second
// consumer.
func (w *Worker) Start() error {
	if !w.state.CompareAndSwap(int32(StateInitialized), int32(StateRunning)) {
		switch State(w.state.Load()) {
		case StateUninitialized:
			return core.ErrWorkerInit
		default:
			return core.ErrAlreadyRunning
		}
	}

	go w.run()
	core.LogInfo("upload worker started")
	return nil
}

// RequestStop asks the consumer loop to terminate and wakes it if blocked.
// The in-flight descriptor always finishes; queued work past it is not
// drained.
func (w *Worker) RequestStop() {
	if w.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		close(w.stopCh)
	}
}

// Join waits for the consumer goroutine to exit and destroys the secondary
// context. Must run on the thread that owns context destruction (the
// producer thread).
func (w *Worker) Join() {
	switch State(w.state.Load()) {
	case StateStopping:
		<-w.done
	case StateInitialized:
		// Never started; nothing to join.
	default:
		return
	}

	if w.ctx != nil {
		w.ctx.Destroy()
		w.ctx = nil
	}
	w.state.Store(int32(StateStopped))
	core.LogInfo("upload worker stopped, processed %d tasks", w.processed.Load())
}

// Stop is the two-phase shutdown in one call: request, then join. Safe to
// call multiple times; repeat calls are no-ops.
func (w *Worker) Stop() {
	w.RequestStop()
	w.Join()
}

func (w *Worker) State() State {
	return State(w.state.Load())
}

// ProcessedCount returns the number of descriptors fully executed so far.
func (w *Worker) ProcessedCount() uint64 {
	return w.processed.Load()
}

// DrainResults returns the per-descriptor outcomes recorded since the last
// call and clears them.
func (w *Worker) DrainResults() []Result {
	w.resultsMu.Lock()
	defer w.resultsMu.Unlock()
	results := w.results
	w.results = nil
	return results
}

func (w *Worker) run() {
	// The device layer requires one context per thread; pin the goroutine
	// and make the secondary context current exactly once at loop entry.
	runtime.LockOSThread()
	w.ctx.MakeCurrent()

	defer func() {
		w.ctx.DetachCurrent()
		close(w.done)
	}()

	for {
		batch, ok := w.queue.DetachAll(w.stopCh)
		if !ok {
			return
		}

		for _, descriptor := range batch {
			select {
			case <-w.stopCh:
				// Stop observed between descriptors: the rest of the
				// batch is not drained.
				return
			default:
			}

			w.process(descriptor)
			w.processed.Add(1)
		}

		if w.queue.IsEmpty() {
			w.signal.NotifyDrained()
		}
	}
}

func (w *Worker) process(d Descriptor) {
	switch d.Kind {
	case KindUpload:
		res, err := w.device.CreateMesh(d.ResourceID, d.Vertices, d.Indices)
		if err != nil {
			// One bad resource must not stop the pipeline. The failure is
			// logged and surfaced through the result record; the
			// descriptor still counts as processed.
			core.LogError("upload of resource %d failed: %s", d.ResourceID, err)
		} else {
			core.LogDebug("uploaded resource %d (%d vertex bytes, %d index bytes)",
				d.ResourceID, res.VertexBytes, res.IndexBytes)
		}
		w.record(Result{ResourceID: d.ResourceID, Kind: d.Kind, Resource: res, Err: err})

	default:
		core.LogDebug("task kind %s for resource %d not implemented, skipping", d.Kind, d.ResourceID)
		w.record(Result{ResourceID: d.ResourceID, Kind: d.Kind})
	}
}

func (w *Worker) record(r Result) {
	w.resultsMu.Lock()
	w.results = append(w.results, r)
	w.resultsMu.Unlock()
}
