package terrain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDefaultLayout(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	patches := g.Generate()

	// 8x8 patches of 32 cells: 33x33 vertices and 32*32*2 triangles each.
	require.Len(t, patches, 64)
	for _, p := range patches {
		assert.Len(t, p.Vertices, 1089)
		assert.Len(t, p.Indices, 6144)
		assert.Equal(t, 2048, p.TriangleCount())
	}

	assert.Equal(t, 64*1089, g.TotalVertices())
	assert.Equal(t, 64*2048, g.TotalTriangles())
}

func TestPatchByteViews(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	patches := g.Generate()

	p := patches[0]
	assert.Equal(t, 1089*VertexSize, len(p.VertexBytes()))
	assert.Equal(t, 6144*IndexSize, len(p.IndexBytes()))
	assert.Equal(t, 44, VertexSize)
}

func TestPatchIDsAreSequential(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	patches := g.Generate()
	for i, p := range patches {
		assert.Equal(t, uint32(i), p.ID)
	}
}

func TestDeterministicForSameSeed(t *testing.T) {
	config := DefaultConfig()
	a := NewGenerator(config).Generate()
	b := NewGenerator(config).Generate()

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, bytes.Equal(a[i].VertexBytes(), b[i].VertexBytes()), "patch %d differs", i)
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	configA := DefaultConfig()
	configB := DefaultConfig()
	configB.Seed = 99

	a := NewGenerator(configA).Generate()
	b := NewGenerator(configB).Generate()
	assert.False(t, bytes.Equal(a[0].VertexBytes(), b[0].VertexBytes()))
}

func TestVertexProperties(t *testing.T) {
	config := DefaultConfig()
	g := NewGenerator(config)
	patches := g.Generate()

	for _, v := range patches[0].Vertices {
		// Normals are unit length.
		assert.InDelta(t, 1.0, float64(v.Normal.Length()), 1e-4)

		// Colors are interpolations between the valley and peak colors.
		assert.GreaterOrEqual(t, v.Color.X, float32(0.2)-1e-4)
		assert.LessOrEqual(t, v.Color.X, float32(0.9)+1e-4)
	}
}

func TestBoundingSphereCoversVertices(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	p := g.Generate()[0]

	for _, v := range p.Vertices {
		assert.LessOrEqual(t, v.Position.Sub(p.Center).Length(), p.BoundingRadius+1e-3)
	}
}
