package upload

import (
	"sync/atomic"
	"time"

	"github.com/tectonic3d/tectonic/engine/containers"
	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/renderer"
)

// Pipeline is the producer-side facade over the upload worker. It owns the
// task queue, the completion signal and the worker for their full
// lifetime. One producer thread submits; one worker goroutine consumes.
type Pipeline struct {
	device renderer.Device
	queue  *containers.TaskQueue[Descriptor]
	signal *CompletionSignal
	worker *Worker

	submitted atomic.Uint64
	closed    atomic.Bool
}

func NewPipeline(device renderer.Device) *Pipeline {
	queue := containers.NewTaskQueue[Descriptor]()
	signal := NewCompletionSignal()
	return &Pipeline{
		device: device,
		queue:  queue,
		signal: signal,
		worker: NewWorker(device, queue, signal),
	}
}

// Startup initializes the worker's shared context and starts the consumer
// loop. Must run on the thread owning the primary device context.
func (p *Pipeline) Startup() error {
	if err := p.worker.Initialize(); err != nil {
		return err
	}
	return p.worker.Start()
}

// SubmitUpload copies both spans into a descriptor and queues it. The
// source buffers may be reused by the caller as soon as SubmitUpload
// returns. Zero-length spans are accepted as degenerate uploads.
func (p *Pipeline) SubmitUpload(resourceID uint32, vertices, indices []byte) error {
	if p.closed.Load() {
		return core.ErrPipelineClosed
	}
	if p.worker.State() != StateRunning {
		return core.ErrNotRunning
	}

	p.submitted.Add(1)
	p.queue.Submit(NewUploadDescriptor(resourceID, vertices, indices))
	return nil
}

// Flush blocks until every descriptor submitted so far has been processed,
// or the timeout elapses (ErrDrainTimeout). A timeout <= 0 waits
// indefinitely.
func (p *Pipeline) Flush(timeout time.Duration) error {
	return p.signal.WaitForDrain(timeout, p.Pending)
}

// Shutdown stops the worker and rejects all further submissions. Safe to
// call multiple times.
func (p *Pipeline) Shutdown() {
	if p.closed.CompareAndSwap(false, true) {
		p.worker.Stop()
		return
	}
	// Repeat call: make sure the join completed, then no-op.
	p.worker.Join()
}

// Pending returns the number of submitted descriptors not yet processed.
func (p *Pipeline) Pending() uint64 {
	return p.submitted.Load() - p.worker.ProcessedCount()
}

// ProcessedCount returns the number of descriptors fully executed.
func (p *Pipeline) ProcessedCount() uint64 {
	return p.worker.ProcessedCount()
}

// QueueDepth is a point-in-time snapshot for diagnostics only; it must not
// drive correctness decisions.
func (p *Pipeline) QueueDepth() int {
	return p.queue.Len()
}

// DrainResults returns the per-descriptor outcomes recorded since the last
// call.
func (p *Pipeline) DrainResults() []Result {
	return p.worker.DrainResults()
}

// State reports the worker lifecycle state.
func (p *Pipeline) State() State {
	return p.worker.State()
}
