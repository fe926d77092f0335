package upload

import "fmt"

// Kind selects the operation a descriptor carries. Only KindUpload is
// exercised end to end; the remaining kinds are recognized extension
// points.
type Kind uint8

const (
	KindUpload Kind = iota
	KindUpdateBuffer
	KindRender
	KindCleanup
)

func (k Kind) String() string {
	switch k {
	case KindUpload:
		return "upload"
	case KindUpdateBuffer:
		return "update-buffer"
	case KindRender:
		return "render"
	case KindCleanup:
		return "cleanup"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Descriptor is one unit of upload work. Vertices and Indices are owned
// copies made at submission time, so the producer is free to mutate or
// release the source buffers the moment Submit returns.
type Descriptor struct {
	ResourceID uint32
	Kind       Kind
	Vertices   []byte
	Indices    []byte
}

// NewUploadDescriptor builds an upload descriptor, copying both spans.
// Zero-length spans are accepted and produce a degenerate but valid
// upload.
func NewUploadDescriptor(resourceID uint32, vertices, indices []byte) Descriptor {
	return Descriptor{
		ResourceID: resourceID,
		Kind:       KindUpload,
		Vertices:   append([]byte(nil), vertices...),
		Indices:    append([]byte(nil), indices...),
	}
}
