package renderer

// Context is one device execution context. A context may be current on at
// most one thread at a time; objects created in a context are visible to
// every context sharing its resource namespace.
type Context interface {
	// MakeCurrent binds the context to the calling thread. The caller must
	// keep running on that thread (LockOSThread) while the context is
	// current.
	MakeCurrent()
	// DetachCurrent unbinds whatever context is current on the calling
	// thread.
	DetachCurrent()
	// Destroy releases the context. Must not be called while current.
	Destroy()
}

// Device abstracts the graphics backend the upload pipeline targets. The
// real backend is OpenGL (renderer/gl); tests and headless benchmark runs
// use the recording backend (renderer/memory).
type Device interface {
	// CreateSharedContext creates an invisible secondary context sharing
	// the resource namespace with the device's primary context. Must be
	// called on the thread owning the primary context.
	CreateSharedContext() (Context, error)
	// CreateMesh creates the device-side vertex store, index store and
	// layout object for one mesh and transfers both spans. Requires a
	// current context on the calling thread.
	CreateMesh(id uint32, vertices, indices []byte) (*MeshResource, error)
	// DestroyMesh releases the device-side objects of a mesh.
	DestroyMesh(res *MeshResource)
}

// MeshResource records the device-side objects backing one uploaded mesh.
type MeshResource struct {
	ID uint32

	// Backend object handles: layout, vertex store, index store.
	VAO uint32
	VBO uint32
	EBO uint32

	VertexBytes int
	IndexBytes  int

	// Ready is set once the transfer has completed and the resource may be
	// bound from a sharing context.
	Ready bool
}

// VertexCount returns the number of vertex records given a record size.
func (r *MeshResource) VertexCount(recordSize int) int {
	if recordSize <= 0 {
		return 0
	}
	return r.VertexBytes / recordSize
}

// IndexCount returns the number of 4-byte index records.
func (r *MeshResource) IndexCount() int {
	return r.IndexBytes / 4
}
