package upload

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tectonic3d/tectonic/engine/containers"
	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/renderer"
	"github.com/tectonic3d/tectonic/engine/renderer/memory"
)

// brokenDevice rejects context creation, standing in for a device layer
// that refuses a second context.
type brokenDevice struct{}

func (brokenDevice) CreateSharedContext() (renderer.Context, error) {
	return nil, errors.New("no contexts available")
}

func (brokenDevice) CreateMesh(uint32, []byte, []byte) (*renderer.MeshResource, error) {
	return nil, errors.New("unreachable")
}

func (brokenDevice) DestroyMesh(*renderer.MeshResource) {}

func newWorker(device renderer.Device) *Worker {
	return NewWorker(device, containers.NewTaskQueue[Descriptor](), NewCompletionSignal())
}

func TestInitializeFailure(t *testing.T) {
	w := newWorker(brokenDevice{})
	err := w.Initialize()
	require.ErrorIs(t, err, core.ErrWorkerInit)
	assert.Equal(t, StateUninitialized, w.State())

	// Start after a failed Initialize must be rejected.
	assert.ErrorIs(t, w.Start(), core.ErrWorkerInit)
}

func TestStateTransitions(t *testing.T) {
	w := newWorker(memory.New())
	assert.Equal(t, StateUninitialized, w.State())

	require.NoError(t, w.Initialize())
	assert.Equal(t, StateInitialized, w.State())

	require.NoError(t, w.Start())
	assert.Equal(t, StateRunning, w.State())

	w.Stop()
	assert.Equal(t, StateStopped, w.State())
}

func TestStopBeforeStartDestroysContext(t *testing.T) {
	device := memory.New()
	w := newWorker(device)
	require.NoError(t, w.Initialize())
	require.Equal(t, 1, device.LiveContexts())

	w.Stop()
	assert.Equal(t, StateStopped, w.State())
	assert.Equal(t, 0, device.LiveContexts())
}

func TestSecondInitializeRejected(t *testing.T) {
	w := newWorker(memory.New())
	require.NoError(t, w.Initialize())
	assert.ErrorIs(t, w.Initialize(), core.ErrAlreadyRunning)
}

func TestWorkerNotifiesAfterDrain(t *testing.T) {
	device := memory.New()
	queue := containers.NewTaskQueue[Descriptor]()
	signal := NewCompletionSignal()
	w := NewWorker(device, queue, signal)
	require.NoError(t, w.Initialize())
	require.NoError(t, w.Start())
	defer w.Stop()

	queue.Submit(NewUploadDescriptor(1, []byte{1}, nil))

	deadline := time.Now().Add(5 * time.Second)
	for signal.Generation() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("worker never notified a drain")
		}
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, uint64(1), w.ProcessedCount())
}
