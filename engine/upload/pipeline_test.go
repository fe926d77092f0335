package upload

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/renderer/memory"
	"github.com/tectonic3d/tectonic/engine/terrain"
)

func startedPipeline(t *testing.T, device *memory.Device) *Pipeline {
	t.Helper()
	p := NewPipeline(device)
	require.NoError(t, p.Startup())
	t.Cleanup(p.Shutdown)
	return p
}

func TestSubmitBeforeStartupRejected(t *testing.T) {
	p := NewPipeline(memory.New())
	err := p.SubmitUpload(1, []byte{1}, []byte{2})
	assert.ErrorIs(t, err, core.ErrNotRunning)
}

func TestCountingProperty(t *testing.T) {
	for _, n := range []int{0, 1, 10, 10000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			device := memory.New()
			p := startedPipeline(t, device)

			for i := 0; i < n; i++ {
				require.NoError(t, p.SubmitUpload(uint32(i), []byte{byte(i)}, []byte{byte(i)}))
			}
			require.NoError(t, p.Flush(10*time.Second))

			assert.Equal(t, uint64(n), p.ProcessedCount())
			assert.Equal(t, n, device.UploadCount())
			assert.Equal(t, uint64(0), p.Pending())
		})
	}
}

func TestFIFOProcessingOrder(t *testing.T) {
	device := memory.New()
	p := startedPipeline(t, device)

	const n = 256
	for i := 0; i < n; i++ {
		require.NoError(t, p.SubmitUpload(uint32(i), []byte{byte(i)}, nil))
	}
	require.NoError(t, p.Flush(10*time.Second))

	uploads := device.Uploads()
	require.Len(t, uploads, n)
	for i, u := range uploads {
		assert.Equal(t, uint32(i), u.Resource.ID, "upload %d out of order", i)
	}
}

func TestZeroLengthSpansAccepted(t *testing.T) {
	device := memory.New()
	p := startedPipeline(t, device)

	require.NoError(t, p.SubmitUpload(7, nil, nil))
	require.NoError(t, p.Flush(5*time.Second))

	stored := device.Mesh(7)
	require.NotNil(t, stored)
	assert.Equal(t, 0, stored.Resource.VertexBytes)
	assert.Equal(t, 0, stored.Resource.IndexBytes)
	assert.True(t, stored.Resource.Ready)
}

func TestIdempotentShutdown(t *testing.T) {
	device := memory.New()
	p := NewPipeline(device)
	require.NoError(t, p.Startup())

	require.NoError(t, p.SubmitUpload(1, []byte{1}, []byte{2}))
	require.NoError(t, p.Flush(5*time.Second))

	p.Shutdown()
	processed := p.ProcessedCount()

	p.Shutdown()
	assert.Equal(t, processed, p.ProcessedCount())
	assert.Equal(t, StateStopped, p.State())
	assert.Equal(t, 0, device.LiveContexts())

	err := p.SubmitUpload(2, []byte{1}, []byte{2})
	assert.ErrorIs(t, err, core.ErrPipelineClosed)
}

func TestDoubleStartRejected(t *testing.T) {
	queue := NewPipeline(memory.New())
	require.NoError(t, queue.Startup())
	defer queue.Shutdown()

	err := queue.worker.Start()
	assert.ErrorIs(t, err, core.ErrAlreadyRunning)
}

func TestLifetimeDiscipline(t *testing.T) {
	device := memory.New()
	p := startedPipeline(t, device)

	source := bytes.Repeat([]byte{0xAB}, 1024)
	indices := bytes.Repeat([]byte{0xCD}, 256)
	require.NoError(t, p.SubmitUpload(42, source, indices))
	require.NoError(t, p.Flush(5*time.Second))

	// Mutating the source after a completed flush must not affect the
	// device-side copy.
	for i := range source {
		source[i] = 0x00
	}

	stored := device.Mesh(42)
	require.NotNil(t, stored)
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, 1024), stored.VertexData)
	assert.Equal(t, bytes.Repeat([]byte{0xCD}, 256), stored.IndexData)
}

func TestSixtyFourPatchScenario(t *testing.T) {
	device := memory.New()
	p := startedPipeline(t, device)

	const (
		patches       = 64
		vertexRecords = 1089
		indexRecords  = 6144
	)
	vertices := make([]byte, vertexRecords*terrain.VertexSize)
	indices := make([]byte, indexRecords*terrain.IndexSize)

	for i := 0; i < patches; i++ {
		require.NoError(t, p.SubmitUpload(uint32(i), vertices, indices))
	}
	require.NoError(t, p.Flush(30*time.Second))

	assert.Equal(t, uint64(patches), p.ProcessedCount())
	for i := 0; i < patches; i++ {
		stored := device.Mesh(uint32(i))
		require.NotNil(t, stored, "patch %d missing", i)
		assert.Equal(t, vertexRecords*terrain.VertexSize, stored.Resource.VertexBytes)
		assert.Equal(t, indexRecords*terrain.IndexSize, stored.Resource.IndexBytes)
		assert.Equal(t, vertexRecords, stored.Resource.VertexCount(terrain.VertexSize))
		assert.Equal(t, indexRecords, stored.Resource.IndexCount())
	}
}

func TestDuplicateResourceIDProducesTwoUploads(t *testing.T) {
	device := memory.New()
	p := startedPipeline(t, device)

	require.NoError(t, p.SubmitUpload(5, []byte{1}, nil))
	require.NoError(t, p.SubmitUpload(5, []byte{2}, nil))
	require.NoError(t, p.Flush(5*time.Second))

	assert.Equal(t, 2, device.UploadCount())
}

func TestFlushTimeoutOnSlowDevice(t *testing.T) {
	device := memory.New()
	device.UploadDelay = 50 * time.Millisecond
	p := startedPipeline(t, device)

	for i := 0; i < 100; i++ {
		require.NoError(t, p.SubmitUpload(uint32(i), []byte{1}, nil))
	}

	err := p.Flush(100 * time.Millisecond)
	assert.ErrorIs(t, err, core.ErrDrainTimeout)

	// A later flush without the timeout pressure still completes.
	require.NoError(t, p.Flush(30*time.Second))
	assert.Equal(t, uint64(100), p.ProcessedCount())
}

func TestShutdownWithPendingWorkJoinsInBoundedTime(t *testing.T) {
	device := memory.New()
	device.UploadDelay = 20 * time.Millisecond
	p := NewPipeline(device)
	require.NoError(t, p.Startup())

	const total = 50
	for i := 0; i < total; i++ {
		require.NoError(t, p.SubmitUpload(uint32(i), []byte{1}, nil))
	}

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not join the worker in bounded time")
	}

	assert.LessOrEqual(t, p.ProcessedCount(), uint64(total))
	assert.Equal(t, StateStopped, p.State())
	assert.Equal(t, 0, device.LiveContexts())
}

func TestPerDescriptorFailureSurfacedWithoutHaltingLoop(t *testing.T) {
	device := memory.New()
	deviceErr := errors.New("allocation rejected")
	device.FailUpload = func(id uint32) error {
		if id == 3 {
			return deviceErr
		}
		return nil
	}
	p := startedPipeline(t, device)

	for i := 0; i < 10; i++ {
		require.NoError(t, p.SubmitUpload(uint32(i), []byte{byte(i)}, nil))
	}
	require.NoError(t, p.Flush(10*time.Second))

	// The failed descriptor still counts as processed.
	assert.Equal(t, uint64(10), p.ProcessedCount())
	assert.Equal(t, 9, device.UploadCount())

	results := p.DrainResults()
	require.Len(t, results, 10)
	failures := 0
	for _, r := range results {
		if !r.Succeeded() {
			failures++
			assert.Equal(t, uint32(3), r.ResourceID)
			assert.ErrorIs(t, r.Err, deviceErr)
			assert.Nil(t, r.Resource)
		}
	}
	assert.Equal(t, 1, failures)

	// Results are consumed by the drain.
	assert.Empty(t, p.DrainResults())
}

func TestNonUploadKindsAreRecognizedNoOps(t *testing.T) {
	device := memory.New()
	p := startedPipeline(t, device)

	for _, kind := range []Kind{KindUpdateBuffer, KindRender, KindCleanup} {
		p.queue.Submit(Descriptor{ResourceID: 1, Kind: kind})
		p.submitted.Add(1)
	}
	require.NoError(t, p.Flush(5*time.Second))

	assert.Equal(t, uint64(3), p.ProcessedCount())
	assert.Equal(t, 0, device.UploadCount())

	for _, r := range p.DrainResults() {
		assert.True(t, r.Succeeded())
		assert.Nil(t, r.Resource)
	}
}

func TestQueueDepthDiagnostic(t *testing.T) {
	device := memory.New()
	device.UploadDelay = 10 * time.Millisecond
	p := startedPipeline(t, device)

	for i := 0; i < 20; i++ {
		require.NoError(t, p.SubmitUpload(uint32(i), []byte{1}, nil))
	}
	// Depth is a snapshot; all we can assert is that it is sane.
	assert.GreaterOrEqual(t, p.QueueDepth(), 0)
	assert.LessOrEqual(t, p.QueueDepth(), 20)

	require.NoError(t, p.Flush(30*time.Second))
	assert.Equal(t, 0, p.QueueDepth())
}
