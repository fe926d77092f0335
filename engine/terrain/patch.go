package terrain

import (
	"unsafe"

	"github.com/tectonic3d/tectonic/engine/math"
)

// Vertex is one terrain vertex record. The field order matches the vertex
// attribute layout the device backends configure: position, normal, texture
// coordinate, color. All fields are float32 so the struct is packed at 44
// bytes with no padding.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
	Color    math.Vec3
}

// VertexSize is the size in bytes of one Vertex record.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// IndexSize is the size in bytes of one index record.
const IndexSize = 4

// Patch is one terrain mesh patch: a square grid of vertices plus the
// triangle indices that stitch them together.
type Patch struct {
	ID             uint32
	Vertices       []Vertex
	Indices        []uint32
	Center         math.Vec3
	BoundingRadius float32
	LodLevel       int

	// Uploaded belongs to the single-threaded fallback path. The async
	// pipeline tracks readiness on the device resource instead.
	Uploaded bool
}

// VertexBytes returns a raw byte view over the vertex records. The view
// aliases the patch's memory; callers that queue it across threads must
// copy it first.
func (p *Patch) VertexBytes() []byte {
	if len(p.Vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&p.Vertices[0])), len(p.Vertices)*VertexSize)
}

// IndexBytes returns a raw byte view over the index records. Same aliasing
// caveat as VertexBytes.
func (p *Patch) IndexBytes() []byte {
	if len(p.Indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&p.Indices[0])), len(p.Indices)*IndexSize)
}

// TriangleCount returns the number of triangles in the patch.
func (p *Patch) TriangleCount() int {
	return len(p.Indices) / 3
}
