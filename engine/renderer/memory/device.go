// Package memory implements a recording graphics device. It stands in for
// the OpenGL backend in tests and headless benchmark runs: uploads are
// copied into process memory where their bytes can be inspected, and
// failures or transfer latency can be injected.
package memory

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tectonic3d/tectonic/engine/renderer"
)

// StoredMesh is one recorded upload.
type StoredMesh struct {
	Resource   *renderer.MeshResource
	VertexData []byte
	IndexData  []byte
}

type Device struct {
	mu         sync.Mutex
	uploads    []*StoredMesh
	byID       map[uint32][]*StoredMesh
	nextHandle uint32

	// FailUpload, when set, is consulted per upload; a non-nil error makes
	// the upload fail without storing anything.
	FailUpload func(id uint32) error
	// UploadDelay emulates transfer cost per upload.
	UploadDelay time.Duration

	contexts atomic.Int32
}

func New() *Device {
	return &Device{
		byID: make(map[uint32][]*StoredMesh),
	}
}

type context struct {
	device  *Device
	current atomic.Bool
}

func (c *context) MakeCurrent()   { c.current.Store(true) }
func (c *context) DetachCurrent() { c.current.Store(false) }
func (c *context) Destroy()       { c.device.contexts.Add(-1) }

func (d *Device) CreateSharedContext() (renderer.Context, error) {
	d.contexts.Add(1)
	return &context{device: d}, nil
}

func (d *Device) CreateMesh(id uint32, vertices, indices []byte) (*renderer.MeshResource, error) {
	if d.UploadDelay > 0 {
		time.Sleep(d.UploadDelay)
	}
	if d.FailUpload != nil {
		if err := d.FailUpload(id); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", id, err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextHandle++
	res := &renderer.MeshResource{
		ID:          id,
		VAO:         d.nextHandle,
		VBO:         d.nextHandle + 1,
		EBO:         d.nextHandle + 2,
		VertexBytes: len(vertices),
		IndexBytes:  len(indices),
		Ready:       true,
	}
	d.nextHandle += 2

	stored := &StoredMesh{
		Resource:   res,
		VertexData: append([]byte(nil), vertices...),
		IndexData:  append([]byte(nil), indices...),
	}
	d.uploads = append(d.uploads, stored)
	d.byID[id] = append(d.byID[id], stored)

	return res, nil
}

func (d *Device) DestroyMesh(res *renderer.MeshResource) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.byID[res.ID][:0]
	for _, s := range d.byID[res.ID] {
		if s.Resource != res {
			kept = append(kept, s)
		}
	}
	d.byID[res.ID] = kept
}

// Mesh returns the most recent upload recorded for the given resource id.
func (d *Device) Mesh(id uint32) *StoredMesh {
	d.mu.Lock()
	defer d.mu.Unlock()

	stored := d.byID[id]
	if len(stored) == 0 {
		return nil
	}
	return stored[len(stored)-1]
}

// Uploads returns every recorded upload in execution order.
func (d *Device) Uploads() []*StoredMesh {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*StoredMesh(nil), d.uploads...)
}

// UploadCount returns the total number of recorded uploads.
func (d *Device) UploadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.uploads)
}

// LiveContexts returns the number of created but not yet destroyed
// contexts.
func (d *Device) LiveContexts() int {
	return int(d.contexts.Load())
}
