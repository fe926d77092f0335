package upload

import "github.com/tectonic3d/tectonic/engine/renderer"

// Result is the recorded outcome of one processed descriptor. A failed
// upload does not stop the worker loop; it is surfaced here instead of
// being silently dropped.
type Result struct {
	ResourceID uint32
	Kind       Kind
	// Resource is the created device resource; nil when the device
	// rejected the upload or the kind performs no upload.
	Resource *renderer.MeshResource
	Err      error
}

func (r Result) Succeeded() bool {
	return r.Err == nil
}
