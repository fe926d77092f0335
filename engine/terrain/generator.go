package terrain

import (
	m "math"

	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/engine/math"
)

var (
	// Valley and peak colors the vertex color is interpolated between.
	valleyColor = math.NewVec3(0.2, 0.5, 0.1)
	peakColor   = math.NewVec3(0.9, 0.9, 0.7)
)

type Config struct {
	// GridSize is the number of cells along each side of the full terrain.
	GridSize int
	// PatchCount is the total number of patches; must be a perfect square.
	PatchCount int
	// CellSize is the world-space size of one grid cell.
	CellSize float32
	// HeightScale scales the sampled noise into world-space height.
	HeightScale float32
	// Seed drives the noise permutation table. Two generators with the
	// same config and seed produce identical terrain.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		GridSize:    256,
		PatchCount:  64,
		CellSize:    1.0,
		HeightScale: 20.0,
		Seed:        1,
	}
}

// Generator produces terrain patches from a procedural height field.
type Generator struct {
	config  Config
	noise   *noiseTable
	patches []*Patch
}

func NewGenerator(config Config) *Generator {
	return &Generator{
		config: config,
		noise:  newNoiseTable(config.Seed),
	}
}

// Generate builds all patches, replacing any previous result.
func (g *Generator) Generate() []*Patch {
	g.patches = g.patches[:0]

	patchesPerRow := int(m.Sqrt(float64(g.config.PatchCount)))
	if patchesPerRow < 1 {
		patchesPerRow = 1
	}
	patchCells := g.config.GridSize / patchesPerRow

	for row := 0; row < patchesPerRow; row++ {
		for col := 0; col < patchesPerRow; col++ {
			patch := g.createPatch(col*patchCells, row*patchCells, patchCells)
			patch.ID = uint32(row*patchesPerRow + col)
			g.patches = append(g.patches, patch)
		}
	}

	core.LogInfo("generated %d terrain patches (%d vertices, %d triangles)",
		len(g.patches), g.TotalVertices(), g.TotalTriangles())

	return g.patches
}

func (g *Generator) Patches() []*Patch {
	return g.patches
}

func (g *Generator) TotalVertices() int {
	total := 0
	for _, p := range g.patches {
		total += len(p.Vertices)
	}
	return total
}

func (g *Generator) TotalTriangles() int {
	total := 0
	for _, p := range g.patches {
		total += p.TriangleCount()
	}
	return total
}

func (g *Generator) height(x, z float32) float32 {
	return g.noise.sample(x*0.1, z*0.1, 4, 0.5) * g.config.HeightScale
}

// normal estimates the surface normal by central differences on the height
// field.
func (g *Generator) normal(x, z float32) math.Vec3 {
	const delta = 0.1
	hL := g.height(x-delta, z)
	hR := g.height(x+delta, z)
	hD := g.height(x, z-delta)
	hU := g.height(x, z+delta)

	return math.NewVec3(hL-hR, 2.0*delta, hD-hU).Normalized()
}

func (g *Generator) createPatch(startX, startZ, patchCells int) *Patch {
	patch := &Patch{
		Vertices: make([]Vertex, 0, (patchCells+1)*(patchCells+1)),
		Indices:  make([]uint32, 0, patchCells*patchCells*6),
	}

	for z := startZ; z <= startZ+patchCells; z++ {
		for x := startX; x <= startX+patchCells; x++ {
			worldX := float32(x) * g.config.CellSize
			worldZ := float32(z) * g.config.CellSize

			position := math.NewVec3(worldX, g.height(worldX, worldZ), worldZ)

			// Color by normalized height: valleys green, peaks light gray.
			heightFactor := (position.Y + g.config.HeightScale) / (2.0 * g.config.HeightScale)
			heightFactor = math.Clamp(heightFactor, 0.0, 1.0)

			patch.Vertices = append(patch.Vertices, Vertex{
				Position: position,
				Normal:   g.normal(worldX, worldZ),
				TexCoord: math.NewVec2(float32(x)/float32(g.config.GridSize), float32(z)/float32(g.config.GridSize)),
				Color:    math.LerpVec3(valleyColor, peakColor, heightFactor),
			})
		}
	}

	// Two triangles per grid cell.
	verticesPerRow := patchCells + 1
	for z := 0; z < patchCells; z++ {
		for x := 0; x < patchCells; x++ {
			topLeft := uint32(z*verticesPerRow + x)
			topRight := topLeft + 1
			bottomLeft := uint32((z+1)*verticesPerRow + x)
			bottomRight := bottomLeft + 1

			patch.Indices = append(patch.Indices,
				topLeft, bottomLeft, topRight,
				topRight, bottomLeft, bottomRight,
			)
		}
	}

	patch.Center = math.NewVec3Zero()
	for _, v := range patch.Vertices {
		patch.Center = patch.Center.Add(v.Position)
	}
	patch.Center = patch.Center.MulScalar(1.0 / float32(len(patch.Vertices)))

	for _, v := range patch.Vertices {
		distance := v.Position.Sub(patch.Center).Length()
		if distance > patch.BoundingRadius {
			patch.BoundingRadius = distance
		}
	}

	return patch
}
